package commands

import (
	"github.com/slapcli/slap/pkg/platform"
	"github.com/slapcli/slap/pkg/types"
)

// SyncState classifies how a stored active default compares to the live OS.
type SyncState string

const (
	SyncStateInSync    SyncState = "in-sync"
	SyncStateOutOfSync SyncState = "out-of-sync"
	SyncStateUnknown   SyncState = "unknown" // OS has no opinion we can read
)

// ExtensionStatus is the per-extension diff row.
type ExtensionStatus struct {
	Entry     types.DefaultEntry
	OSDefault string
	State     SyncState
}

// StatusResult carries the status rows for rendering.
type StatusResult struct {
	Extensions []ExtensionStatus
}

// Status diffs each active default against the OS's live answer. Pending and
// removed entries are not diffed; they have no OS expectation.
func Status(env *Env) (*StatusResult, error) {
	entries, err := env.Defaults.FindAll()
	if err != nil {
		return nil, err
	}

	result := &StatusResult{}
	for _, entry := range entries {
		if entry.State != types.StateActive {
			continue
		}
		row := ExtensionStatus{Entry: entry}

		current, err := env.Platform.CurrentDefault(entry.Extension)
		switch {
		case err != nil || current == "":
			row.State = SyncStateUnknown
		case platform.PathsEquivalent(entry.ApplicationPath, current):
			row.OSDefault = current
			row.State = SyncStateInSync
		default:
			row.OSDefault = current
			row.State = SyncStateOutOfSync
		}
		result.Extensions = append(result.Extensions, row)
	}
	return result, nil
}
