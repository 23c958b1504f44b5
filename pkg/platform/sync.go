package platform

import (
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/slapcli/slap/pkg/errors"
	"github.com/slapcli/slap/pkg/logging"
	"github.com/slapcli/slap/pkg/store"
	"github.com/slapcli/slap/pkg/types"
)

// EntryStatus classifies what the orchestrator did with one active entry.
type EntryStatus string

const (
	EntrySynced    EntryStatus = "synced"
	EntrySkipped   EntryStatus = "skipped"
	EntryFailed    EntryStatus = "failed"
	EntryWouldSync EntryStatus = "would-sync" // dry-run
)

// EntryOutcome is the per-extension result of a sync run.
type EntryOutcome struct {
	Extension       string
	ApplicationPath string
	Status          EntryStatus
	PreviousDefault string
	Err             error
}

// SyncResult aggregates a full sync run. RunID correlates the run's log
// lines.
type SyncResult struct {
	RunID    string
	DryRun   bool
	Outcomes []EntryOutcome
	Synced   int
	Skipped  int
	Failed   int
}

// FailedExtensions lists the extensions whose sync failed.
func (r *SyncResult) FailedExtensions() []string {
	var out []string
	for _, o := range r.Outcomes {
		if o.Status == EntryFailed {
			out = append(out, o.Extension)
		}
	}
	return out
}

// SyncAll applies every active default entry to the OS.
//
// Entries already marked os_synced whose live OS query still matches (exact
// path, or bundle containment on macOS) are skipped without an OS mutation
// call. Failures are isolated per extension: one bad entry never aborts the
// rest of the batch. When any entry failed (and this is not a dry run) the
// returned error is a single PARTIAL_SYNC aggregate listing the failed
// extensions, distinct from a full-stop error; the SyncResult still carries
// everything that succeeded.
func SyncAll(handler Handler, defaults *store.DefaultsStore, dryRun bool) (*SyncResult, error) {
	logger := logging.GetLogger("platform.sync")

	result := &SyncResult{
		RunID:  uuid.NewString(),
		DryRun: dryRun,
	}
	logger = logger.With().Str("runID", result.RunID).Logger()

	entries, err := defaults.FindAll()
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if entry.State != types.StateActive {
			continue
		}
		outcome := syncEntry(handler, defaults, entry, dryRun, logger)
		result.Outcomes = append(result.Outcomes, outcome)
		switch outcome.Status {
		case EntrySynced, EntryWouldSync:
			result.Synced++
		case EntrySkipped:
			result.Skipped++
		case EntryFailed:
			result.Failed++
		}
	}

	logger.Info().
		Int("synced", result.Synced).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Bool("dryRun", dryRun).
		Msg("Sync run finished")

	if result.Failed > 0 && !dryRun {
		return result, errors.Newf(errors.ErrPartialSync,
			"%d of %d extensions failed to sync: %s",
			result.Failed, len(result.Outcomes),
			strings.Join(result.FailedExtensions(), ", ")).
			WithDetail("failed_extensions", result.FailedExtensions()).
			WithDetail("run_id", result.RunID)
	}
	return result, nil
}

func syncEntry(handler Handler, defaults *store.DefaultsStore, entry types.DefaultEntry,
	dryRun bool, logger zerolog.Logger) EntryOutcome {
	outcome := EntryOutcome{
		Extension:       entry.Extension,
		ApplicationPath: entry.ApplicationPath,
	}

	// Consistency probe first: a previously-synced entry whose OS default
	// still matches needs no OS mutation call at all.
	if entry.OSSynced {
		current, err := handler.CurrentDefault(entry.Extension)
		if err == nil && current != "" && PathsEquivalent(entry.ApplicationPath, current) {
			logger.Debug().
				Str("extension", entry.Extension).
				Str("current", current).
				Msg("OS default already consistent, skipping")
			outcome.Status = EntrySkipped
			return outcome
		}
	}

	res, err := handler.SetDefault(entry.Extension, entry.ApplicationPath, dryRun)
	if err != nil {
		logger.Warn().Err(err).
			Str("extension", entry.Extension).
			Msg("Failed to sync extension")
		outcome.Status = EntryFailed
		outcome.Err = err
		return outcome
	}

	outcome.PreviousDefault = res.PreviousDefault
	if dryRun {
		outcome.Status = EntryWouldSync
		return outcome
	}

	if _, err := defaults.MarkSynced(entry.ID, res.PreviousDefault); err != nil {
		// The OS change succeeded but the bookkeeping write failed; report
		// the entry as failed so the next run re-verifies it.
		outcome.Status = EntryFailed
		outcome.Err = err
		return outcome
	}

	outcome.Status = EntrySynced
	return outcome
}
