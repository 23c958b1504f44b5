// Package types defines the core data model: default entries, offers, their
// lifecycle states, and the JSON documents they are persisted in.
package types

import (
	"fmt"
	"strings"
	"time"
)

// DocumentVersion is the schema version written into every persisted document.
const DocumentVersion = "1.0.0"

// DefaultState is the lifecycle state of a default entry.
//
// StateNone is virtual: no persisted entry ever carries it. It denotes
// "entry does not exist or has been fully forgotten" and only appears as the
// source or target of a transition.
type DefaultState string

const (
	StateNone    DefaultState = "none"
	StatePending DefaultState = "pending"
	StateActive  DefaultState = "active"
	StateRemoved DefaultState = "removed"
)

// OfferState is the lifecycle state of an offer entry. OfferNone is virtual,
// like StateNone. OfferRejected is terminal.
type OfferState string

const (
	OfferNone     OfferState = "none"
	OfferCreated  OfferState = "created"
	OfferActive   OfferState = "active"
	OfferRejected OfferState = "rejected"
)

// DefaultEntry represents "this extension is associated with this application".
type DefaultEntry struct {
	ID                string       `json:"id"`
	Extension         string       `json:"extension"`
	ApplicationPath   string       `json:"application_path"`
	ApplicationName   string       `json:"application_name,omitempty"`
	State             DefaultState `json:"state"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         *time.Time   `json:"updated_at,omitempty"`
	OSSynced          bool         `json:"os_synced,omitempty"`
	PreviousOSDefault string       `json:"previous_os_default,omitempty"`
}

// OfferEntry is a named shortcut referencing a DefaultEntry. The reference is
// weak: validity is checked at creation time, not continuously enforced.
type OfferEntry struct {
	OfferID     string     `json:"offer_id"`
	DefaultID   string     `json:"default_id"`
	State       OfferState `json:"state"`
	AutoCreated bool       `json:"auto_created"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UsedAt      *time.Time `json:"used_at,omitempty"`
}

// DefaultsDocument is the persisted shape of defaults.json.
type DefaultsDocument struct {
	Version  string         `json:"version"`
	Defaults []DefaultEntry `json:"defaults"`
}

// OffersDocument is the persisted shape of offers.json.
type OffersDocument struct {
	Version string       `json:"version"`
	Offers  []OfferEntry `json:"offers"`
}

// NewDefaultsDocument returns a fresh empty document. Callers always get a
// new value, never a shared cached one.
func NewDefaultsDocument() *DefaultsDocument {
	return &DefaultsDocument{Version: DocumentVersion, Defaults: []DefaultEntry{}}
}

// NewOffersDocument returns a fresh empty document.
func NewOffersDocument() *OffersDocument {
	return &OffersDocument{Version: DocumentVersion, Offers: []OfferEntry{}}
}

// DefaultEntryID builds the stable id for a default entry from its extension
// and a per-extension sequence number, e.g. "def-md-001".
func DefaultEntryID(extension string, sequence int) string {
	return fmt.Sprintf("def-%s-%03d", strings.TrimPrefix(extension, "."), sequence)
}

// Live reports whether the entry occupies its extension's single
// active-or-pending slot.
func (e *DefaultEntry) Live() bool {
	return e.State == StateActive || e.State == StatePending
}

// Touch stamps UpdatedAt with the given time.
func (e *DefaultEntry) Touch(now time.Time) {
	t := now.UTC()
	e.UpdatedAt = &t
}
