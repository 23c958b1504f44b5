// pkg/platform/sync_test.go
// TEST TYPE: Integration Test (store on real filesystem, mock OS handler)
// DEPENDENCIES: pkg/testutil.MockHandler
// PURPOSE: Sync orchestration: skip-when-consistent, dry-run, per-extension
// fault isolation and the partial-failure aggregate

package platform_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slapcli/slap/pkg/errors"
	"github.com/slapcli/slap/pkg/paths"
	"github.com/slapcli/slap/pkg/platform"
	"github.com/slapcli/slap/pkg/store"
	"github.com/slapcli/slap/pkg/testutil"
	"github.com/slapcli/slap/pkg/types"
)

func newDefaultsStore(t *testing.T) *store.DefaultsStore {
	t.Helper()
	p, err := paths.New(t.TempDir())
	require.NoError(t, err)
	return store.NewDefaultsStore(p, store.Options{})
}

func TestSyncAll_AppliesActiveEntries(t *testing.T) {
	defaults := newDefaultsStore(t)
	handler := testutil.NewMockHandler()
	handler.Current[".md"] = "/Applications/OldEditor.app"

	entry, err := defaults.Add(".md", "/Applications/Editor.app", "Editor", types.StateActive)
	require.NoError(t, err)

	result, err := platform.SyncAll(handler, defaults, false)
	require.NoError(t, err)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 1, result.Synced)
	assert.Equal(t, 0, result.Failed)

	require.Len(t, handler.SetCalls, 1)
	assert.Equal(t, ".md", handler.SetCalls[0].Extension)

	// Bookkeeping: the entry is marked synced with the displaced OS default.
	stored, err := defaults.FindByID(entry.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.OSSynced)
	assert.Equal(t, "/Applications/OldEditor.app", stored.PreviousOSDefault)
}

func TestSyncAll_IgnoresPendingAndRemoved(t *testing.T) {
	defaults := newDefaultsStore(t)
	handler := testutil.NewMockHandler()

	_, err := defaults.Add(".md", "/Applications/Editor.app", "Editor", types.StatePending)
	require.NoError(t, err)
	removed, err := defaults.Add(".txt", "/Applications/Editor.app", "Editor", types.StateActive)
	require.NoError(t, err)
	_, err = defaults.UpdateState(removed.ID, types.StateRemoved)
	require.NoError(t, err)

	result, err := platform.SyncAll(handler, defaults, false)
	require.NoError(t, err)
	assert.Empty(t, result.Outcomes)
	assert.Empty(t, handler.SetCalls)
}

func TestSyncAll_SkipsConsistentEntriesWithoutOSCall(t *testing.T) {
	defaults := newDefaultsStore(t)
	handler := testutil.NewMockHandler()
	handler.Current[".md"] = "/Applications/Editor.app"

	entry, err := defaults.Add(".md", "/Applications/Editor.app", "Editor", types.StateActive)
	require.NoError(t, err)
	_, err = defaults.MarkSynced(entry.ID, "")
	require.NoError(t, err)

	result, err := platform.SyncAll(handler, defaults, false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 0, result.Synced)
	assert.Empty(t, handler.SetCalls, "consistent entry must not trigger an OS mutation")
}

func TestSyncAll_ResyncsWhenOSDriftedAway(t *testing.T) {
	defaults := newDefaultsStore(t)
	handler := testutil.NewMockHandler()
	handler.Current[".md"] = "/Applications/Intruder.app"

	entry, err := defaults.Add(".md", "/Applications/Editor.app", "Editor", types.StateActive)
	require.NoError(t, err)
	_, err = defaults.MarkSynced(entry.ID, "")
	require.NoError(t, err)

	result, err := platform.SyncAll(handler, defaults, false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Synced)
	require.Len(t, handler.SetCalls, 1)
	assert.Equal(t, "/Applications/Editor.app", handler.Current[".md"])
}

func TestSyncAll_BundleContainmentCountsAsConsistent(t *testing.T) {
	defaults := newDefaultsStore(t)
	handler := testutil.NewMockHandler()
	handler.Current[".md"] = "/Applications/Editor.app/Contents/MacOS/Editor"

	entry, err := defaults.Add(".md", "/Applications/Editor.app", "Editor", types.StateActive)
	require.NoError(t, err)
	_, err = defaults.MarkSynced(entry.ID, "")
	require.NoError(t, err)

	result, err := platform.SyncAll(handler, defaults, false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, handler.SetCalls)
}

func TestSyncAll_PartialFailureIsolation(t *testing.T) {
	defaults := newDefaultsStore(t)
	handler := testutil.NewMockHandler()
	handler.FailSet[".txt"] = fmt.Errorf("simulated OS refusal")

	_, err := defaults.Add(".md", "/Applications/Editor.app", "Editor", types.StateActive)
	require.NoError(t, err)
	_, err = defaults.Add(".txt", "/Applications/Editor.app", "Editor", types.StateActive)
	require.NoError(t, err)
	_, err = defaults.Add(".csv", "/Applications/Editor.app", "Editor", types.StateActive)
	require.NoError(t, err)

	result, err := platform.SyncAll(handler, defaults, false)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPartialSync))

	// The failure is isolated: the other two extensions still synced.
	require.NotNil(t, result)
	assert.Equal(t, 2, result.Synced)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, []string{".txt"}, result.FailedExtensions())

	details := errors.GetErrorDetails(err)
	assert.Equal(t, []string{".txt"}, details["failed_extensions"])
}

func TestSyncAll_DryRun(t *testing.T) {
	defaults := newDefaultsStore(t)
	handler := testutil.NewMockHandler()
	handler.FailSet[".txt"] = fmt.Errorf("simulated OS refusal")

	mdEntry, err := defaults.Add(".md", "/Applications/Editor.app", "Editor", types.StateActive)
	require.NoError(t, err)
	_, err = defaults.Add(".txt", "/Applications/Editor.app", "Editor", types.StateActive)
	require.NoError(t, err)

	result, err := platform.SyncAll(handler, defaults, true)

	// Dry-run reports failures in the outcomes but never as an error.
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Equal(t, 1, result.Synced)
	assert.Equal(t, 1, result.Failed)

	var statuses []platform.EntryStatus
	for _, o := range result.Outcomes {
		statuses = append(statuses, o.Status)
	}
	assert.Contains(t, statuses, platform.EntryWouldSync)

	// No OS state changed and no bookkeeping was written.
	assert.Empty(t, handler.Current)
	stored, err := defaults.FindByID(mdEntry.ID)
	require.NoError(t, err)
	assert.False(t, stored.OSSynced)
}
