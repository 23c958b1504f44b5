package store

import (
	"time"

	"github.com/slapcli/slap/pkg/errors"
	"github.com/slapcli/slap/pkg/paths"
	"github.com/slapcli/slap/pkg/types"
)

// OffersStore persists offer entries in offers.json.
type OffersStore struct {
	store *JSONStore[types.OffersDocument]
	opts  Options
}

// NewOffersStore creates the offers store rooted at the given paths.
func NewOffersStore(p paths.Paths, opts Options) *OffersStore {
	return &OffersStore{
		store: NewJSONStore(p.OffersFilePath(), p.BackupsDir(),
			types.NewOffersDocument, offersSchema),
		opts: opts,
	}
}

// Load returns the full document.
func (s *OffersStore) Load() (*types.OffersDocument, error) {
	return s.store.Load()
}

// Save persists the full document under the store's persistence policy.
func (s *OffersStore) Save(doc *types.OffersDocument) error {
	return s.store.Save(doc, s.opts.BackupEnabled, s.opts.MaxBackups)
}

// FindAll returns every persisted offer.
func (s *OffersStore) FindAll() ([]types.OfferEntry, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	return doc.Offers, nil
}

// FindByID returns the non-rejected offer with the given id, or nil. Offer
// ids are unique among non-rejected offers; a rejected offer's id may be
// reused, so rejected entries do not satisfy lookups.
func (s *OffersStore) FindByID(offerID string) (*types.OfferEntry, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	for i := range doc.Offers {
		if doc.Offers[i].OfferID == offerID && doc.Offers[i].State != types.OfferRejected {
			offer := doc.Offers[i]
			return &offer, nil
		}
	}
	return nil, nil
}

// FindAnyByID returns the newest offer with the given id regardless of
// state, for purge and inspection paths.
func (s *OffersStore) FindAnyByID(offerID string) (*types.OfferEntry, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	for i := len(doc.Offers) - 1; i >= 0; i-- {
		if doc.Offers[i].OfferID == offerID {
			offer := doc.Offers[i]
			return &offer, nil
		}
	}
	return nil, nil
}

// FindByDefaultID returns all offers referencing the given default entry.
func (s *OffersStore) FindByDefaultID(defaultID string) ([]types.OfferEntry, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	var out []types.OfferEntry
	for i := range doc.Offers {
		if doc.Offers[i].DefaultID == defaultID {
			out = append(out, doc.Offers[i])
		}
	}
	return out, nil
}

// Add appends a freshly-stamped offer in the created state.
func (s *OffersStore) Add(offerID, defaultID, description string, autoCreated bool) (*types.OfferEntry, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}

	offer := types.OfferEntry{
		OfferID:     offerID,
		DefaultID:   defaultID,
		State:       types.OfferCreated,
		AutoCreated: autoCreated,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	doc.Offers = append(doc.Offers, offer)

	if err := s.Save(doc); err != nil {
		return nil, err
	}
	return &offer, nil
}

// UpdateState mutates the offer's state; first activation stamps used_at.
// The target state must already have been validated by the state machine.
func (s *OffersStore) UpdateState(offerID string, newState types.OfferState) (*types.OfferEntry, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	for i := range doc.Offers {
		if doc.Offers[i].OfferID != offerID || doc.Offers[i].State == types.OfferRejected {
			continue
		}
		doc.Offers[i].State = newState
		if newState == types.OfferActive && doc.Offers[i].UsedAt == nil {
			now := time.Now().UTC()
			doc.Offers[i].UsedAt = &now
		}
		if err := s.Save(doc); err != nil {
			return nil, err
		}
		offer := doc.Offers[i]
		return &offer, nil
	}
	return nil, errors.Newf(errors.ErrOfferNotFound, "offer %s not found", offerID).
		WithDetail("offer_id", offerID)
}

// Delete strips the newest offer with the id from the backing array entirely
// (complete delete). Rejected history can share an id with a live offer, so
// matching newest-first keeps Delete aligned with FindAnyByID: a purge removes
// the entry just rejected, never an older record.
func (s *OffersStore) Delete(offerID string) error {
	doc, err := s.Load()
	if err != nil {
		return err
	}
	for i := len(doc.Offers) - 1; i >= 0; i-- {
		if doc.Offers[i].OfferID == offerID {
			doc.Offers = append(doc.Offers[:i], doc.Offers[i+1:]...)
			return s.Save(doc)
		}
	}
	return errors.Newf(errors.ErrOfferNotFound, "offer %s not found", offerID).
		WithDetail("offer_id", offerID)
}
