package commands

import (
	"github.com/slapcli/slap/pkg/errors"
	"github.com/slapcli/slap/pkg/logging"
	"github.com/slapcli/slap/pkg/state"
	"github.com/slapcli/slap/pkg/types"
	"github.com/slapcli/slap/pkg/validate"
)

// UseOfferOptions defines the options for activating an offer.
type UseOfferOptions struct {
	OfferID string
	DryRun  bool
}

// UseOfferResult is the outcome of UseOffer.
type UseOfferResult struct {
	Offer *types.OfferEntry
	// Default is the referenced default entry, nil when the weak reference
	// no longer resolves.
	Default *types.DefaultEntry
	DryRun  bool
}

// UseOffer activates an offer (created -> active, stamping used_at on first
// activation).
func UseOffer(env *Env, opts UseOfferOptions) (*UseOfferResult, error) {
	if err := validate.ValidateOfferID(opts.OfferID); err != nil {
		return nil, err
	}

	offer, err := env.Offers.FindByID(opts.OfferID)
	if err != nil {
		return nil, err
	}
	current := types.OfferNone
	if offer != nil {
		current = offer.State
	}
	if current == types.OfferNone {
		return nil, errors.Newf(errors.ErrOfferNotFound,
			"offer %s not found", opts.OfferID).
			WithDetail("offer_id", opts.OfferID)
	}
	if err := state.ValidateOfferTransition(current, types.OfferActive, opts.OfferID, false); err != nil {
		return nil, err
	}

	result := &UseOfferResult{DryRun: opts.DryRun}
	if opts.DryRun {
		updated := *offer
		updated.State = types.OfferActive
		result.Offer = &updated
	} else {
		updated, err := env.Offers.UpdateState(opts.OfferID, types.OfferActive)
		if err != nil {
			return nil, err
		}
		result.Offer = updated
	}

	// The default_id reference is weak; resolve it best-effort for display.
	result.Default, err = env.Defaults.FindByID(result.Offer.DefaultID)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RejectOfferOptions defines the options for rejecting an offer.
type RejectOfferOptions struct {
	OfferID string
	// Purge completely deletes the entry instead of keeping the rejected
	// record as history. On an id whose offer was already rejected, Purge
	// removes that record without a further transition.
	Purge  bool
	DryRun bool
}

// RejectOfferResult is the outcome of RejectOffer.
type RejectOfferResult struct {
	Offer  *types.OfferEntry
	Purged bool
	// WasActive flags that an active offer was rejected; the CLI warns on
	// this since dependent workflows may still reference it.
	WasActive bool
	DryRun    bool
}

// RejectOffer moves an offer to its terminal rejected state. Rejecting an
// active offer is allowed but flagged so the caller can warn; no usage
// tracker populates the machine's in-use gate today.
func RejectOffer(env *Env, opts RejectOfferOptions) (*RejectOfferResult, error) {
	logger := logging.GetLogger("commands.offers")

	if err := validate.ValidateOfferID(opts.OfferID); err != nil {
		return nil, err
	}

	offer, err := env.Offers.FindByID(opts.OfferID)
	if err != nil {
		return nil, err
	}
	if offer == nil && opts.Purge {
		// No live offer, but a previously rejected record may still be
		// sitting in history; purging it needs no reject transition.
		return purgeRejected(env, opts)
	}
	current := types.OfferNone
	if offer != nil {
		current = offer.State
	}
	if err := state.ValidateOfferTransition(current, types.OfferRejected, opts.OfferID, false); err != nil {
		return nil, err
	}

	result := &RejectOfferResult{
		WasActive: current == types.OfferActive,
		DryRun:    opts.DryRun,
	}
	if opts.DryRun {
		updated := *offer
		updated.State = types.OfferRejected
		result.Offer = &updated
		result.Purged = opts.Purge
		return result, nil
	}

	updated, err := env.Offers.UpdateState(opts.OfferID, types.OfferRejected)
	if err != nil {
		return nil, err
	}
	result.Offer = updated

	if opts.Purge {
		if err := env.Offers.Delete(opts.OfferID); err != nil {
			return nil, err
		}
		result.Purged = true
	}

	logger.Info().
		Str("offerID", opts.OfferID).
		Bool("wasActive", result.WasActive).
		Bool("purged", result.Purged).
		Msg("Offer rejected")
	return result, nil
}

// purgeRejected deletes a rejected offer's record after the fact. Only
// rejected records can reach here: a live offer would have satisfied the
// normal lookup in RejectOffer.
func purgeRejected(env *Env, opts RejectOfferOptions) (*RejectOfferResult, error) {
	record, err := env.Offers.FindAnyByID(opts.OfferID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, errors.Newf(errors.ErrOfferNotFound,
			"offer %s not found", opts.OfferID).
			WithDetail("offer_id", opts.OfferID)
	}

	result := &RejectOfferResult{Offer: record, Purged: true, DryRun: opts.DryRun}
	if opts.DryRun {
		return result, nil
	}
	if err := env.Offers.Delete(opts.OfferID); err != nil {
		return nil, err
	}

	logger := logging.GetLogger("commands.offers")
	logger.Info().
		Str("offerID", opts.OfferID).
		Msg("Rejected offer purged")
	return result, nil
}

// ListOffers returns all offers, optionally including rejected history.
func ListOffers(env *Env, includeRejected bool) ([]types.OfferEntry, error) {
	offers, err := env.Offers.FindAll()
	if err != nil {
		return nil, err
	}
	if includeRejected {
		return offers, nil
	}
	var out []types.OfferEntry
	for _, offer := range offers {
		if offer.State != types.OfferRejected {
			out = append(out, offer)
		}
	}
	return out, nil
}
