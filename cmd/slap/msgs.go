package slap

// Message constants
const (
	MsgRootShort = "Set default applications for file extensions"
	MsgRootLong  = `slap registers, inspects, and retracts "default application for file
extension" associations, and synchronizes them to the operating system's
native file-association mechanism (Launch Services on macOS, the registry
on Windows).

Entries start out pending; --set activates them, records a shortcut offer,
and pushes the association to the OS immediately. 'slap sync' pushes all
active entries that drifted out of sync.`

	MsgRootExample = `  # Stage markdown files to open with Marked (pending, no OS change)
  slap /Applications/Marked.app --md

  # Activate immediately and create a shortcut offer
  slap /Applications/Marked.app --md --set

  # Deactivate the markdown default, keeping history
  slap chop --md --forget

  # Push all active defaults to the OS
  slap sync`

	MsgChopShort = "Retract the default for an extension"
	MsgChopLong  = `Retracts the live default for an extension. A pending default is
abandoned entirely. An active default requires --forget and moves to the
removed state: history is kept and the entry can be reactivated later with
'slap --set'.`

	MsgSyncShort = "Push active defaults to the OS"
	MsgSyncLong  = `Applies every active default to the operating system. Entries whose OS
default already matches are skipped. Failures are isolated per extension:
one bad entry never blocks the rest, and a partial failure is reported
with the list of failed extensions.`

	MsgListShort   = "List tracked defaults"
	MsgStatusShort = "Compare active defaults against the live OS state"

	MsgTopicsShort = "Display available documentation topics"

	MsgOffersShort       = "Manage shortcut offers"
	MsgOffersListShort   = "List offers"
	MsgOffersUseShort    = "Activate an offer"
	MsgOffersRejectShort = "Reject an offer"

	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun  = "Preview changes without executing them"
	MsgFlagNoColor = "Disable colored output"
	MsgFlagDataDir = "Override the data directory"
	MsgFlagFormat  = "Output format: auto, term, or text"
	MsgFlagSet     = "Activate immediately, create a shortcut offer, and push to the OS"
	MsgFlagName    = "Human-readable application label"
	MsgFlagOffer   = "Explicit shortcut offer id (default: derived from the application name)"
	MsgFlagForget  = "Deactivate an active default (keeps history)"
)
