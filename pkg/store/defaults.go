package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/slapcli/slap/pkg/errors"
	"github.com/slapcli/slap/pkg/paths"
	"github.com/slapcli/slap/pkg/types"
)

// Options carries the persistence policy from the resolved configuration.
type Options struct {
	BackupEnabled bool
	MaxBackups    int
}

// DefaultsStore persists default entries in defaults.json.
//
// All lookups are read-then-filter over the full document. There is no
// indexing; the expected scale is tens to low hundreds of entries.
type DefaultsStore struct {
	store *JSONStore[types.DefaultsDocument]
	opts  Options
}

// NewDefaultsStore creates the defaults store rooted at the given paths.
func NewDefaultsStore(p paths.Paths, opts Options) *DefaultsStore {
	return &DefaultsStore{
		store: NewJSONStore(p.DefaultsFilePath(), p.BackupsDir(),
			types.NewDefaultsDocument, defaultsSchema),
		opts: opts,
	}
}

// Load returns the full document.
func (s *DefaultsStore) Load() (*types.DefaultsDocument, error) {
	return s.store.Load()
}

// Save persists the full document under the store's persistence policy.
func (s *DefaultsStore) Save(doc *types.DefaultsDocument) error {
	return s.store.Save(doc, s.opts.BackupEnabled, s.opts.MaxBackups)
}

// FindAll returns every persisted entry.
func (s *DefaultsStore) FindAll() ([]types.DefaultEntry, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	return doc.Defaults, nil
}

// FindByExtension returns the single live (active or pending) entry for the
// extension, or nil when there is none. Removed historical entries are not
// considered.
func (s *DefaultsStore) FindByExtension(ext string) (*types.DefaultEntry, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	for i := range doc.Defaults {
		if doc.Defaults[i].Extension == ext && doc.Defaults[i].Live() {
			entry := doc.Defaults[i]
			return &entry, nil
		}
	}
	return nil, nil
}

// FindRemovedByExtension returns removed entries for the extension, newest
// first, for reactivation lookups.
func (s *DefaultsStore) FindRemovedByExtension(ext string) ([]types.DefaultEntry, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	var out []types.DefaultEntry
	for i := len(doc.Defaults) - 1; i >= 0; i-- {
		if doc.Defaults[i].Extension == ext && doc.Defaults[i].State == types.StateRemoved {
			out = append(out, doc.Defaults[i])
		}
	}
	return out, nil
}

// FindByID returns the entry with the given id, or nil when absent.
func (s *DefaultsStore) FindByID(id string) (*types.DefaultEntry, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	for i := range doc.Defaults {
		if doc.Defaults[i].ID == id {
			entry := doc.Defaults[i]
			return &entry, nil
		}
	}
	return nil, nil
}

// Add appends a freshly-stamped entry and persists it. The caller is
// responsible for the lookup-before-create invariant (at most one live entry
// per extension); Add itself only allocates the id and timestamps.
func (s *DefaultsStore) Add(ext, appPath, appName string, state types.DefaultState) (*types.DefaultEntry, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}

	entry := types.DefaultEntry{
		ID:              types.DefaultEntryID(ext, nextSequence(doc.Defaults, ext)),
		Extension:       ext,
		ApplicationPath: appPath,
		ApplicationName: appName,
		State:           state,
		CreatedAt:       time.Now().UTC(),
	}
	doc.Defaults = append(doc.Defaults, entry)

	if err := s.Save(doc); err != nil {
		return nil, err
	}
	return &entry, nil
}

// UpdateState mutates the entry's state and updated_at stamp. The target
// state must already have been validated by the state machine.
func (s *DefaultsStore) UpdateState(id string, newState types.DefaultState) (*types.DefaultEntry, error) {
	return s.mutate(id, func(entry *types.DefaultEntry) {
		entry.State = newState
		entry.Touch(time.Now())
	})
}

// MarkSynced records a successful OS push: os_synced plus the OS default
// that was observed before the push overwrote it.
func (s *DefaultsStore) MarkSynced(id, previousOSDefault string) (*types.DefaultEntry, error) {
	return s.mutate(id, func(entry *types.DefaultEntry) {
		entry.OSSynced = true
		entry.PreviousOSDefault = previousOSDefault
		entry.Touch(time.Now())
	})
}

// MarkUnsynced clears the os_synced flag, e.g. after the OS-side association
// was removed.
func (s *DefaultsStore) MarkUnsynced(id string) (*types.DefaultEntry, error) {
	return s.mutate(id, func(entry *types.DefaultEntry) {
		entry.OSSynced = false
		entry.Touch(time.Now())
	})
}

// Delete strips the entry from the backing array entirely. Normal removal is
// a state transition; this is the explicit complete-delete operation.
func (s *DefaultsStore) Delete(id string) error {
	doc, err := s.Load()
	if err != nil {
		return err
	}
	for i := range doc.Defaults {
		if doc.Defaults[i].ID == id {
			doc.Defaults = append(doc.Defaults[:i], doc.Defaults[i+1:]...)
			return s.Save(doc)
		}
	}
	return errors.Newf(errors.ErrNoDefault, "default entry %s not found", id).
		WithDetail("id", id)
}

func (s *DefaultsStore) mutate(id string, fn func(*types.DefaultEntry)) (*types.DefaultEntry, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	for i := range doc.Defaults {
		if doc.Defaults[i].ID == id {
			fn(&doc.Defaults[i])
			if err := s.Save(doc); err != nil {
				return nil, err
			}
			entry := doc.Defaults[i]
			return &entry, nil
		}
	}
	return nil, errors.Newf(errors.ErrNoDefault, "default entry %s not found", id).
		WithDetail("id", id)
}

// nextSequence allocates the next id sequence number for an extension by
// scanning existing ids, so purged entries never cause a reused id.
func nextSequence(entries []types.DefaultEntry, ext string) int {
	prefix := fmt.Sprintf("def-%s-", strings.TrimPrefix(ext, "."))
	max := 0
	for i := range entries {
		if !strings.HasPrefix(entries[i].ID, prefix) {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimPrefix(entries[i].ID, prefix)); err == nil && n > max {
			max = n
		}
	}
	return max + 1
}
