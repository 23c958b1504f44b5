// pkg/commands/offers_test.go
// TEST TYPE: Integration Test (temp-dir stores, mock OS handler)
// DEPENDENCIES: pkg/testutil
// PURPOSE: Offer activation, rejection (including the active-offer warning
// path), purge, and listing

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

// seedOffer registers an active default with an explicit offer id and
// returns the environment ready for offer operations.
func seedOffer(t *testing.T, offerID string) (*testutil.TestEnvironment, *commands.SlapResult) {
	t.Helper()
	env := testutil.NewTestEnvironment(t)
	result, err := commands.Slap(env.Env, commands.SlapOptions{
		AppPath: env.AppPath, Extension: "md", Set: true, OfferID: offerID,
	})
	require.NoError(t, err)
	return env, result
}

func TestUseOffer_ActivatesAndResolvesDefault(t *testing.T) {
	env, seeded := seedOffer(t, "marked")

	result, err := commands.UseOffer(env.Env, commands.UseOfferOptions{OfferID: "marked"})
	require.NoError(t, err)
	assert.Equal(t, types.OfferActive, result.Offer.State)
	require.NotNil(t, result.Offer.UsedAt)

	require.NotNil(t, result.Default)
	assert.Equal(t, seeded.Entry.ID, result.Default.ID)
}

func TestUseOffer_UnknownOffer(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	_, err := commands.UseOffer(env.Env, commands.UseOfferOptions{OfferID: "ghost"})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrOfferNotFound))
}

func TestUseOffer_DanglingDefaultReference(t *testing.T) {
	env, _ := seedOffer(t, "marked")

	// Abandon the referenced default via chop --forget then purge by hand to
	// break the weak reference.
	_, err := commands.Chop(env.Env, commands.ChopOptions{Extension: "md", Forget: true})
	require.NoError(t, err)
	require.NoError(t, env.Env.Defaults.Delete("def-md-001"))

	result, err := commands.UseOffer(env.Env, commands.UseOfferOptions{OfferID: "marked"})
	require.NoError(t, err, "weak references do not block activation")
	assert.Equal(t, types.OfferActive, result.Offer.State)
	assert.Nil(t, result.Default)
}

func TestRejectOffer_CreatedOffer(t *testing.T) {
	env, _ := seedOffer(t, "marked")

	result, err := commands.RejectOffer(env.Env, commands.RejectOfferOptions{OfferID: "marked"})
	require.NoError(t, err)
	assert.Equal(t, types.OfferRejected, result.Offer.State)
	assert.False(t, result.WasActive)
	assert.False(t, result.Purged)

	// Rejection is terminal; using it afterwards fails as not-found since
	// rejected offers no longer satisfy lookups.
	_, err = commands.UseOffer(env.Env, commands.UseOfferOptions{OfferID: "marked"})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrOfferNotFound))
}

func TestRejectOffer_ActiveOfferIsFlagged(t *testing.T) {
	env, _ := seedOffer(t, "marked")

	_, err := commands.UseOffer(env.Env, commands.UseOfferOptions{OfferID: "marked"})
	require.NoError(t, err)

	result, err := commands.RejectOffer(env.Env, commands.RejectOfferOptions{OfferID: "marked"})
	require.NoError(t, err, "rejecting an active offer is allowed")
	assert.True(t, result.WasActive, "the caller warns on this flag")
}

func TestRejectOffer_Purge(t *testing.T) {
	env, _ := seedOffer(t, "marked")

	result, err := commands.RejectOffer(env.Env, commands.RejectOfferOptions{
		OfferID: "marked", Purge: true,
	})
	require.NoError(t, err)
	assert.True(t, result.Purged)

	any, err := env.Env.Offers.FindAnyByID("marked")
	require.NoError(t, err)
	assert.Nil(t, any, "purge leaves no record at all")
}

func TestRejectOffer_PurgeAfterIDReuse(t *testing.T) {
	env, first := seedOffer(t, "marked")

	// Keep the first rejection as history, then reuse the id for a second
	// default. Purging the reused offer must remove that offer, not the
	// historical record.
	_, err := commands.RejectOffer(env.Env, commands.RejectOfferOptions{OfferID: "marked"})
	require.NoError(t, err)
	_, err = commands.Slap(env.Env, commands.SlapOptions{
		AppPath: env.AppPath, Extension: "txt", Set: true, OfferID: "marked",
	})
	require.NoError(t, err)

	result, err := commands.RejectOffer(env.Env, commands.RejectOfferOptions{
		OfferID: "marked", Purge: true,
	})
	require.NoError(t, err)
	assert.True(t, result.Purged)

	live, err := env.Env.Offers.FindByID("marked")
	require.NoError(t, err)
	assert.Nil(t, live, "the purged offer must not stay persisted")

	history, err := env.Env.Offers.FindAnyByID("marked")
	require.NoError(t, err)
	require.NotNil(t, history)
	assert.Equal(t, types.OfferRejected, history.State)
	assert.Equal(t, first.Entry.ID, history.DefaultID,
		"the surviving record is the original history, not the purged offer")
}

func TestRejectOffer_PurgeAlreadyRejectedOffer(t *testing.T) {
	env, _ := seedOffer(t, "marked")

	_, err := commands.RejectOffer(env.Env, commands.RejectOfferOptions{OfferID: "marked"})
	require.NoError(t, err)

	// The rejected record lingers as history; a later purge removes it
	// without needing a reject transition.
	result, err := commands.RejectOffer(env.Env, commands.RejectOfferOptions{
		OfferID: "marked", Purge: true,
	})
	require.NoError(t, err)
	assert.True(t, result.Purged)

	any, err := env.Env.Offers.FindAnyByID("marked")
	require.NoError(t, err)
	assert.Nil(t, any)
}

func TestRejectOffer_UnknownOffer(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	_, err := commands.RejectOffer(env.Env, commands.RejectOfferOptions{OfferID: "ghost"})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrOfferNotFound))
}

func TestRejectOffer_DryRunLeavesFilesUntouched(t *testing.T) {
	env, _ := seedOffer(t, "marked")

	before := env.ReadFile(t, "offers.json")

	result, err := commands.RejectOffer(env.Env, commands.RejectOfferOptions{
		OfferID: "marked", Purge: true, DryRun: true,
	})
	require.NoError(t, err)
	assert.Equal(t, types.OfferRejected, result.Offer.State)
	assert.Equal(t, before, env.ReadFile(t, "offers.json"))

	// Still usable afterwards.
	_, err = commands.UseOffer(env.Env, commands.UseOfferOptions{OfferID: "marked"})
	assert.NoError(t, err)
}

func TestListOffers_FiltersRejectedByDefault(t *testing.T) {
	env, _ := seedOffer(t, "marked")

	_, err := commands.Slap(env.Env, commands.SlapOptions{
		AppPath: env.AppPath, Extension: "txt", Set: true, OfferID: "plain",
	})
	require.NoError(t, err)
	_, err = commands.RejectOffer(env.Env, commands.RejectOfferOptions{OfferID: "plain"})
	require.NoError(t, err)

	visible, err := commands.ListOffers(env.Env, false)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "marked", visible[0].OfferID)

	all, err := commands.ListOffers(env.Env, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
