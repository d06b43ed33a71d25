// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package store

import (
	"maps"
	"slices"
)

// ContactStore is the live contact mapping the book indexes. Keys are
// lower-cased names; Put overwrites.
type ContactStore interface {
	Exists(key string) bool
	Get(key string) (Contact, bool)
	Put(key string, c Contact)
	Delete(key string) bool
	// Keys returns every key in sorted order.
	Keys() []string
	// All returns a copy of the whole mapping.
	All() map[string]Contact
	Len() int
}

// Compile-time interface check.
var _ ContactStore = ContactMap(nil)

// ContactMap is the in-memory ContactStore. It is not safe for concurrent use.
type ContactMap map[string]Contact

// NewContactMap returns a ContactMap holding a copy of contacts.
func NewContactMap(contacts map[string]Contact) ContactMap {
	m := make(ContactMap, len(contacts))
	maps.Copy(m, contacts)
	return m
}

// Exists reports whether key is stored.
func (m ContactMap) Exists(key string) bool {
	_, ok := m[key]
	return ok
}

// Get returns the contact under key and whether it was found.
func (m ContactMap) Get(key string) (Contact, bool) {
	c, ok := m[key]
	return c, ok
}

// Put stores c under key, replacing any existing contact.
func (m ContactMap) Put(key string, c Contact) {
	m[key] = c
}

// Delete removes key and reports whether it was present.
func (m ContactMap) Delete(key string) bool {
	if _, ok := m[key]; !ok {
		return false
	}
	delete(m, key)
	return true
}

// Keys returns every key in sorted order.
func (m ContactMap) Keys() []string {
	return slices.Sorted(maps.Keys(m))
}

// All returns a shallow copy of the mapping.
func (m ContactMap) All() map[string]Contact {
	return maps.Clone(map[string]Contact(m))
}

// Len returns the number of stored contacts.
func (m ContactMap) Len() int {
	return len(m)
}
