// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package store

import (
	"maps"
	"slices"
	"strings"
)

// --- Contact types ---

// Contact is one address-book entry. The contact's name is not stored on the
// record; it is the key the record is filed under.
type Contact struct {
	Phone    string `json:"phone" yaml:"phone"`
	Email    string `json:"email" yaml:"email"`
	Address  string `json:"address" yaml:"address"`
	Group    string `json:"group" yaml:"group"`
	Favorite bool   `json:"favorite" yaml:"favorite"`
}

// NamedContact pairs a contact with its key, for ordered results.
type NamedContact struct {
	Name    string
	Contact Contact
}

// Key returns the identity key for a contact name.
func Key(name string) string {
	return strings.ToLower(name)
}

// --- Snapshot ---

// Snapshot is the full persisted state of the book. Backends load and save
// snapshots wholesale.
type Snapshot struct {
	Contacts      map[string]Contact  `json:"contacts" yaml:"contacts"`
	CallLog       map[string][]string `json:"call_log" yaml:"call_log"`
	Relationships map[string][]string `json:"relationships" yaml:"relationships"`
}

// NewSnapshot returns a snapshot with all maps initialised.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Contacts:      make(map[string]Contact),
		CallLog:       make(map[string][]string),
		Relationships: make(map[string][]string),
	}
}

// Normalize replaces nil maps with empty ones so decoded snapshots from
// partial or older data can be used directly.
func (s *Snapshot) Normalize() *Snapshot {
	if s.Contacts == nil {
		s.Contacts = make(map[string]Contact)
	}
	if s.CallLog == nil {
		s.CallLog = make(map[string][]string)
	}
	if s.Relationships == nil {
		s.Relationships = make(map[string][]string)
	}
	return s
}

// Clone returns a deep copy.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{
		Contacts:      maps.Clone(s.Contacts),
		CallLog:       cloneLists(s.CallLog),
		Relationships: cloneLists(s.Relationships),
	}
	return out.Normalize()
}

func cloneLists(m map[string][]string) map[string][]string {
	if m == nil {
		return nil
	}
	out := make(map[string][]string, len(m))
	for k, v := range m {
		out[k] = slices.Clone(v)
	}
	return out
}
