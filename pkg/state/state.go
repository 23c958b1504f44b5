// Package state implements the two lifecycle state machines as explicit
// transition tables. Validation is pure: given (current, target) it either
// allows the transition or returns a coded error, with a handful of named
// cases layered on top of the generic invalid-transition signal so callers
// can render precise messages.
package state

import (
	"github.com/slapcli/slap/pkg/errors"
	"github.com/slapcli/slap/pkg/types"
)

// defaultTransitions is the adjacency map for default entries.
//
//	none    -> pending, active   (create as pending, or create-and-activate)
//	pending -> active, none      (activate, or abandon)
//	active  -> removed           (deactivate)
//	removed -> active            (reactivate)
var defaultTransitions = map[types.DefaultState][]types.DefaultState{
	types.StateNone:    {types.StatePending, types.StateActive},
	types.StatePending: {types.StateActive, types.StateNone},
	types.StateActive:  {types.StateRemoved},
	types.StateRemoved: {types.StateActive},
}

// offerTransitions is the adjacency map for offers. Rejected is terminal.
var offerTransitions = map[types.OfferState][]types.OfferState{
	types.OfferNone:     {types.OfferCreated},
	types.OfferCreated:  {types.OfferActive, types.OfferRejected},
	types.OfferActive:   {types.OfferRejected},
	types.OfferRejected: {},
}

// DefaultTransitions returns a copy of the default-entry adjacency map so
// tests can walk the full grid without reaching into package internals.
func DefaultTransitions() map[types.DefaultState][]types.DefaultState {
	out := make(map[types.DefaultState][]types.DefaultState, len(defaultTransitions))
	for from, tos := range defaultTransitions {
		out[from] = append([]types.DefaultState(nil), tos...)
	}
	return out
}

// OfferTransitions returns a copy of the offer adjacency map.
func OfferTransitions() map[types.OfferState][]types.OfferState {
	out := make(map[types.OfferState][]types.OfferState, len(offerTransitions))
	for from, tos := range offerTransitions {
		out[from] = append([]types.OfferState(nil), tos...)
	}
	return out
}

// ValidateDefaultTransition checks (current, target) against the table.
// extension is carried for diagnostics only.
//
// Named cases:
//   - none -> removed: NO_DEFAULT ("chop with nothing set")
//   - active -> pending|active: DEFAULT_EXISTS (re-create over an active one)
//   - pending -> removed: generic invalid transition; abandonment must target
//     none, a caller hitting this has a logic defect, not a user error
func ValidateDefaultTransition(current, target types.DefaultState, extension string) error {
	if allowed(defaultTransitions[current], target) {
		return nil
	}

	switch {
	case current == types.StateNone && target == types.StateRemoved:
		return errors.Newf(errors.ErrNoDefault,
			"no default exists for %s", extension).
			WithDetail("extension", extension)
	case current == types.StateActive &&
		(target == types.StatePending || target == types.StateActive):
		return errors.Newf(errors.ErrDefaultExists,
			"a default already exists for %s", extension).
			WithDetail("extension", extension)
	}

	return errors.Newf(errors.ErrInvalidTransition,
		"invalid default transition %s -> %s for %s", current, target, extension).
		WithDetail("current", string(current)).
		WithDetail("target", string(target)).
		WithDetail("extension", extension)
}

// ValidateOfferTransition checks (current, target) against the offer table.
//
// inUse is a caller-supplied flag for the active -> rejected case: when true
// the transition is refused with OFFER_IN_USE. No usage-tracking mechanism
// populates it today; it is an extension point (see DESIGN.md).
//
// Named cases:
//   - none -> rejected: OFFER_NOT_FOUND
//   - created|active -> created: OFFER_EXISTS
//   - rejected -> anything: generic invalid transition (terminal state)
func ValidateOfferTransition(current, target types.OfferState, offerID string, inUse bool) error {
	if current == types.OfferActive && target == types.OfferRejected && inUse {
		return errors.Newf(errors.ErrOfferInUse,
			"offer %s is in use and cannot be rejected", offerID).
			WithDetail("offer_id", offerID)
	}

	if allowed(offerTransitions[current], target) {
		return nil
	}

	switch {
	case current == types.OfferNone && target == types.OfferRejected:
		return errors.Newf(errors.ErrOfferNotFound,
			"offer %s not found", offerID).
			WithDetail("offer_id", offerID)
	case (current == types.OfferCreated || current == types.OfferActive) &&
		target == types.OfferCreated:
		return errors.Newf(errors.ErrOfferExists,
			"offer %s already exists", offerID).
			WithDetail("offer_id", offerID)
	}

	return errors.Newf(errors.ErrInvalidTransition,
		"invalid offer transition %s -> %s for %s", current, target, offerID).
		WithDetail("current", string(current)).
		WithDetail("target", string(target)).
		WithDetail("offer_id", offerID)
}

func allowed[S comparable](tos []S, target S) bool {
	for _, t := range tos {
		if t == target {
			return true
		}
	}
	return false
}
