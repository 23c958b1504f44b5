// pkg/commands/chop_test.go
// TEST TYPE: Integration Test (temp-dir stores, mock OS handler)
// DEPENDENCIES: pkg/testutil
// PURPOSE: Retraction scenarios: abandoning pending entries, deactivating
// active ones, the forget guard, and OS cleanup

package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slapcli/slap/pkg/commands"
	"github.com/slapcli/slap/pkg/errors"
	"github.com/slapcli/slap/pkg/testutil"
	"github.com/slapcli/slap/pkg/types"
)

func TestChop_NothingSet(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	_, err := commands.Chop(env.Env, commands.ChopOptions{Extension: "md"})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNoDefault))
}

func TestChop_AbandonsPendingEntry(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	created, err := commands.Slap(env.Env, commands.SlapOptions{
		AppPath: env.AppPath, Extension: "md",
	})
	require.NoError(t, err)

	result, err := commands.Chop(env.Env, commands.ChopOptions{Extension: "md"})
	require.NoError(t, err)
	assert.True(t, result.Abandoned)
	assert.Equal(t, created.Entry.ID, result.Entry.ID)

	// Abandonment purges: nothing remains, not even history.
	all, err := env.Env.Defaults.FindAll()
	require.NoError(t, err)
	assert.Empty(t, all)

	// And no OS association ever existed to remove.
	assert.Empty(t, env.Handler.RemoveCalls)
}

func TestChop_ActiveRequiresForget(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	_, err := commands.Slap(env.Env, commands.SlapOptions{
		AppPath: env.AppPath, Extension: "md", Set: true,
	})
	require.NoError(t, err)

	_, err = commands.Chop(env.Env, commands.ChopOptions{Extension: "md"})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidTransition))
	assert.Equal(t, "chop --forget", errors.GetErrorDetails(err)["hint"])

	// The refusal changed nothing.
	live, err := env.Env.Defaults.FindByExtension(".md")
	require.NoError(t, err)
	require.NotNil(t, live)
	assert.Equal(t, types.StateActive, live.State)
}

func TestChop_ForgetDeactivatesAndCleansOS(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	created, err := commands.Slap(env.Env, commands.SlapOptions{
		AppPath: env.AppPath, Extension: "md", Set: true,
	})
	require.NoError(t, err)
	require.NoError(t, created.SyncErr)

	result, err := commands.Chop(env.Env, commands.ChopOptions{Extension: "md", Forget: true})
	require.NoError(t, err)
	require.NoError(t, result.OSErr)
	assert.False(t, result.Abandoned)
	assert.Equal(t, types.StateRemoved, result.Entry.State)

	// OS association removed and bookkeeping cleared; history kept.
	assert.Equal(t, []string{".md"}, env.Handler.RemoveCalls)
	assert.NotContains(t, env.Handler.Current, ".md")

	stored, err := env.Env.Defaults.FindByID(created.Entry.ID)
	require.NoError(t, err)
	require.NotNil(t, stored, "removed entries stay on disk as history")
	assert.Equal(t, types.StateRemoved, stored.State)
	assert.False(t, stored.OSSynced)

	// A second chop sees no live entry.
	_, err = commands.Chop(env.Env, commands.ChopOptions{Extension: "md", Forget: true})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNoDefault))
}

func TestChop_UnsyncedActiveSkipsOSRemoval(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	// Active in the store but never pushed (the OS registration failed).
	env.Handler.FailSet[".md"] = errors.New(errors.ErrOSOperation, "simulated")
	created, err := commands.Slap(env.Env, commands.SlapOptions{
		AppPath: env.AppPath, Extension: "md", Set: true,
	})
	require.NoError(t, err)
	require.Error(t, created.SyncErr)

	result, err := commands.Chop(env.Env, commands.ChopOptions{Extension: "md", Forget: true})
	require.NoError(t, err)
	assert.Equal(t, types.StateRemoved, result.Entry.State)
	assert.Empty(t, env.Handler.RemoveCalls, "nothing was synced, nothing to remove")
}

func TestChop_DryRunLeavesFilesUntouched(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	_, err := commands.Slap(env.Env, commands.SlapOptions{
		AppPath: env.AppPath, Extension: "md", Set: true,
	})
	require.NoError(t, err)

	before := env.ReadFile(t, "defaults.json")

	result, err := commands.Chop(env.Env, commands.ChopOptions{
		Extension: "md", Forget: true, DryRun: true,
	})
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Equal(t, types.StateRemoved, result.Entry.State)

	assert.Equal(t, before, env.ReadFile(t, "defaults.json"))
	assert.Empty(t, env.Handler.RemoveCalls)

	// The real entry is still active.
	live, err := env.Env.Defaults.FindByExtension(".md")
	require.NoError(t, err)
	require.NotNil(t, live)
	assert.Equal(t, types.StateActive, live.State)
}
