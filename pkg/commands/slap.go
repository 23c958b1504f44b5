package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/slapcli/slap/pkg/errors"
	"github.com/slapcli/slap/pkg/logging"
	"github.com/slapcli/slap/pkg/state"
	"github.com/slapcli/slap/pkg/types"
	"github.com/slapcli/slap/pkg/validate"
)

// SlapOptions defines the options for registering a default.
type SlapOptions struct {
	// AppPath is the application the extension should open with.
	AppPath string
	// Extension is the target extension (any accepted spelling; normalized
	// internally).
	Extension string
	// Name is an optional human-readable application label.
	Name string
	// Set activates the default immediately (instead of leaving it pending),
	// creates a shortcut offer, and pushes the association to the OS.
	Set bool
	// OfferID names the shortcut explicitly; empty means derive one from the
	// application name. Offers are only recorded on activation, so OfferID
	// requires Set.
	OfferID string
	// DryRun reports the intended changes without mutating anything.
	DryRun bool
}

// SlapResult is the outcome of a Slap call.
type SlapResult struct {
	Entry       *types.DefaultEntry
	Offer       *types.OfferEntry
	Reactivated bool
	DryRun      bool

	// SyncErr carries a non-fatal OS-sync failure: the entry was activated
	// and persisted, but the immediate OS push did not succeed. `slap sync`
	// can retry it later.
	SyncErr error
}

// Slap registers a default application for an extension.
//
// Without Set the entry is created pending (identified but not pushed to the
// OS). With Set the entry is created active, one auto-created offer is
// recorded, and the association is pushed to the OS immediately. When a
// removed entry exists for the same extension and application path, Set
// reactivates it instead of creating a new entry.
func Slap(env *Env, opts SlapOptions) (*SlapResult, error) {
	logger := logging.GetLogger("commands.slap")

	ext, err := validate.NormalizeExtension(opts.Extension)
	if err != nil {
		return nil, err
	}
	if err := validate.ValidateApplicationPath(opts.AppPath); err != nil {
		return nil, err
	}
	if opts.OfferID != "" {
		if !opts.Set {
			return nil, errors.Newf(errors.ErrInvalidOfferID,
				"an offer is only recorded when activating; pass --set together with --offer").
				WithDetail("offer_id", opts.OfferID).
				WithDetail("hint", "slap <app> --"+strings.TrimPrefix(ext, ".")+" --set --offer "+opts.OfferID)
		}
		if err := validate.ValidateOfferID(opts.OfferID); err != nil {
			return nil, err
		}
	}

	target := types.StatePending
	if opts.Set {
		target = types.StateActive
	}

	live, err := env.Defaults.FindByExtension(ext)
	if err != nil {
		return nil, err
	}

	result := &SlapResult{DryRun: opts.DryRun}

	switch {
	case live != nil && live.State == types.StatePending && opts.Set:
		// Activate the staged entry rather than creating a second one. The
		// pending entry's path is authoritative; a different path needs a
		// chop first.
		if filepath.Clean(live.ApplicationPath) != filepath.Clean(opts.AppPath) {
			return nil, errors.Newf(errors.ErrDefaultExists,
				"a pending default for %s already points at %s; chop it before slapping a different application",
				ext, live.ApplicationPath).
				WithDetail("extension", ext).
				WithDetail("pending_path", live.ApplicationPath)
		}
		if err := state.ValidateDefaultTransition(live.State, types.StateActive, ext); err != nil {
			return nil, err
		}
		if opts.DryRun {
			entry := *live
			entry.State = types.StateActive
			result.Entry = &entry
		} else {
			entry, err := env.Defaults.UpdateState(live.ID, types.StateActive)
			if err != nil {
				return nil, err
			}
			result.Entry = entry
		}

	case live != nil:
		// Creating over an existing live entry: let the state machine
		// produce the canonical diagnostic (DEFAULT_EXISTS for active,
		// generic invalid transition for pending->pending).
		if err := state.ValidateDefaultTransition(live.State, target, ext); err != nil {
			return nil, err
		}
		// The table allows pending->active only; that case was handled
		// above, so reaching here is a logic defect.
		return nil, errors.Newf(errors.ErrInvalidTransition,
			"unexpected live entry %s in state %s", live.ID, live.State)

	default:
		// No live entry. With Set, prefer reactivating a removed entry for
		// the same application over creating a fresh one.
		var reactivate *types.DefaultEntry
		if opts.Set {
			removed, err := env.Defaults.FindRemovedByExtension(ext)
			if err != nil {
				return nil, err
			}
			for i := range removed {
				if filepath.Clean(removed[i].ApplicationPath) == filepath.Clean(opts.AppPath) {
					reactivate = &removed[i]
					break
				}
			}
		}

		if reactivate != nil {
			if err := state.ValidateDefaultTransition(types.StateRemoved, types.StateActive, ext); err != nil {
				return nil, err
			}
			result.Reactivated = true
			if opts.DryRun {
				entry := *reactivate
				entry.State = types.StateActive
				result.Entry = &entry
			} else {
				entry, err := env.Defaults.UpdateState(reactivate.ID, types.StateActive)
				if err != nil {
					return nil, err
				}
				result.Entry = entry
			}
		} else {
			if err := state.ValidateDefaultTransition(types.StateNone, target, ext); err != nil {
				return nil, err
			}
			if opts.DryRun {
				result.Entry = &types.DefaultEntry{
					Extension:       ext,
					ApplicationPath: opts.AppPath,
					ApplicationName: opts.Name,
					State:           target,
				}
			} else {
				entry, err := env.Defaults.Add(ext, opts.AppPath, opts.Name, target)
				if err != nil {
					return nil, err
				}
				result.Entry = entry
			}
		}
	}

	// Set makes the association immediately usable: record the shortcut
	// offer and push to the OS.
	if opts.Set {
		offer, err := createOffer(env, result.Entry, opts, ext)
		if err != nil {
			return nil, err
		}
		result.Offer = offer

		if !opts.DryRun {
			res, err := env.Platform.SetDefault(ext, opts.AppPath, false)
			if err != nil {
				logger.Warn().Err(err).Str("extension", ext).
					Msg("OS registration failed; entry stays active, sync can retry")
				result.SyncErr = err
			} else if _, err := env.Defaults.MarkSynced(result.Entry.ID, res.PreviousDefault); err != nil {
				result.SyncErr = err
			}
		}
	}

	logger.Info().
		Str("extension", ext).
		Str("app", opts.AppPath).
		Bool("set", opts.Set).
		Bool("dryRun", opts.DryRun).
		Msg("Slap completed")
	return result, nil
}

func createOffer(env *Env, entry *types.DefaultEntry, opts SlapOptions, ext string) (*types.OfferEntry, error) {
	offerID := opts.OfferID
	autoCreated := offerID == ""
	if autoCreated {
		derived, err := deriveOfferID(env, opts.AppPath, opts.Name, ext)
		if err != nil {
			return nil, err
		}
		offerID = derived
	}

	existing, err := env.Offers.FindByID(offerID)
	if err != nil {
		return nil, err
	}
	current := types.OfferNone
	if existing != nil {
		current = existing.State
	}
	if err := state.ValidateOfferTransition(current, types.OfferCreated, offerID, false); err != nil {
		return nil, err
	}

	if opts.DryRun {
		return &types.OfferEntry{
			OfferID:     offerID,
			DefaultID:   entry.ID,
			State:       types.OfferCreated,
			AutoCreated: autoCreated,
		}, nil
	}
	return env.Offers.Add(offerID, entry.ID, "", autoCreated)
}

// deriveOfferID builds a usable offer id from the application name, e.g.
// "/Applications/Marked 2.app" -> "marked-2", suffixing a counter when the
// id is already taken by a non-rejected offer.
func deriveOfferID(env *Env, appPath, name, ext string) (string, error) {
	base := name
	if base == "" {
		base = strings.TrimSuffix(filepath.Base(appPath), filepath.Ext(appPath))
	}

	var b strings.Builder
	for _, r := range strings.ToLower(base) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '.':
			b.WriteByte('-')
		}
	}
	candidate := strings.Trim(b.String(), "-")
	if candidate == "" || candidate[0] < 'a' || candidate[0] > 'z' {
		candidate = "app-" + strings.TrimPrefix(ext, ".")
	}
	if len(candidate) > 32 {
		candidate = candidate[:32]
	}

	for i := 0; i < 100; i++ {
		id := candidate
		if i > 0 {
			suffix := fmt.Sprintf("-%d", i+1)
			if len(id)+len(suffix) > 32 {
				id = id[:32-len(suffix)]
			}
			id += suffix
		}
		if err := validate.ValidateOfferID(id); err != nil {
			// Reserved or malformed after trimming; fall back to a safe stem.
			candidate = "app-" + strings.TrimPrefix(ext, ".")
			continue
		}
		existing, err := env.Offers.FindByID(id)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return id, nil
		}
	}
	return "", errors.Newf(errors.ErrInvalidOfferID,
		"could not derive a free offer id from %q", base)
}
