package commands

import (
	"github.com/slapcli/slap/pkg/errors"
	"github.com/slapcli/slap/pkg/logging"
	"github.com/slapcli/slap/pkg/state"
	"github.com/slapcli/slap/pkg/types"
	"github.com/slapcli/slap/pkg/validate"
)

// ChopOptions defines the options for retracting a default.
type ChopOptions struct {
	Extension string
	// Forget deactivates an active default (active -> removed, history
	// kept). Chopping an active default without it is refused.
	Forget bool
	DryRun bool
}

// ChopResult is the outcome of a Chop call.
type ChopResult struct {
	// Entry is the affected entry. For an abandoned pending entry it is the
	// entry as it was before being purged.
	Entry *types.DefaultEntry
	// Abandoned is true when a pending entry was forgotten entirely
	// (the pending -> none transition; nothing stays in the store).
	Abandoned bool
	DryRun    bool

	// OSErr carries a non-fatal failure to remove the OS-side association;
	// the store transition already happened.
	OSErr error
}

// Chop retracts the live default for an extension.
//
// A pending entry is abandoned: pending -> none, which purges it from the
// store since no entry ever persists in state none. An active entry moves to
// removed (history kept) and requires Forget; the OS-side association is
// then removed best-effort. No live entry yields the NO_DEFAULT signal.
func Chop(env *Env, opts ChopOptions) (*ChopResult, error) {
	logger := logging.GetLogger("commands.chop")

	ext, err := validate.NormalizeExtension(opts.Extension)
	if err != nil {
		return nil, err
	}

	live, err := env.Defaults.FindByExtension(ext)
	if err != nil {
		return nil, err
	}
	if live == nil {
		// Canonical "chop with nothing set" diagnostic.
		return nil, state.ValidateDefaultTransition(types.StateNone, types.StateRemoved, ext)
	}

	result := &ChopResult{DryRun: opts.DryRun}

	switch live.State {
	case types.StatePending:
		if err := state.ValidateDefaultTransition(types.StatePending, types.StateNone, ext); err != nil {
			return nil, err
		}
		result.Entry = live
		result.Abandoned = true
		if !opts.DryRun {
			if err := env.Defaults.Delete(live.ID); err != nil {
				return nil, err
			}
		}

	case types.StateActive:
		if !opts.Forget {
			return nil, errors.Newf(errors.ErrInvalidTransition,
				"%s has an active default; re-run with --forget to deactivate it", ext).
				WithDetail("extension", ext).
				WithDetail("hint", "chop --forget")
		}
		if err := state.ValidateDefaultTransition(types.StateActive, types.StateRemoved, ext); err != nil {
			return nil, err
		}
		if opts.DryRun {
			entry := *live
			entry.State = types.StateRemoved
			result.Entry = &entry
			break
		}
		entry, err := env.Defaults.UpdateState(live.ID, types.StateRemoved)
		if err != nil {
			return nil, err
		}
		result.Entry = entry

		if live.OSSynced {
			if err := env.Platform.RemoveDefault(ext); err != nil {
				logger.Warn().Err(err).Str("extension", ext).
					Msg("Failed to remove OS association; store state already updated")
				result.OSErr = err
			} else if _, err := env.Defaults.MarkUnsynced(entry.ID); err != nil {
				result.OSErr = err
			}
		}

	default:
		return nil, errors.Newf(errors.ErrInternal,
			"live lookup returned entry %s in state %s", live.ID, live.State)
	}

	logger.Info().
		Str("extension", ext).
		Bool("forget", opts.Forget).
		Bool("abandoned", result.Abandoned).
		Bool("dryRun", opts.DryRun).
		Msg("Chop completed")
	return result, nil
}
