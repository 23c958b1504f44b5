package commands

import (
	"github.com/slapcli/slap/pkg/types"
)

// ListOptions defines the options for listing tracked entries.
type ListOptions struct {
	// IncludeOffers also returns the offers collection.
	IncludeOffers bool
	// IncludeRemoved includes removed historical defaults.
	IncludeRemoved bool
}

// ListResult carries everything the list renderer needs.
type ListResult struct {
	Defaults []types.DefaultEntry
	Offers   []types.OfferEntry
}

// List returns the tracked defaults (live only unless IncludeRemoved) and,
// when asked, the offers.
func List(env *Env, opts ListOptions) (*ListResult, error) {
	entries, err := env.Defaults.FindAll()
	if err != nil {
		return nil, err
	}

	result := &ListResult{}
	for _, entry := range entries {
		if entry.Live() || opts.IncludeRemoved {
			result.Defaults = append(result.Defaults, entry)
		}
	}

	if opts.IncludeOffers {
		offers, err := env.Offers.FindAll()
		if err != nil {
			return nil, err
		}
		result.Offers = offers
	}
	return result, nil
}
