// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

// Package book is the contact-book service. A Book owns the live contact
// mapping, the prefix index over contact names, the relationship graph and
// the call log, and flushes all of them to a storage backend after every
// mutation.
//
// One mutex guards all four structures and the flush, because a contact
// deletion and the prefix index are not transactionally linked.
package book

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sigil-dev/rolodex/internal/calllog"
	"github.com/sigil-dev/rolodex/internal/relations"
	"github.com/sigil-dev/rolodex/internal/store"
	"github.com/sigil-dev/rolodex/internal/trie"
	sigilerr "github.com/sigil-dev/rolodex/pkg/errors"
)

// NewContact is the input to Add.
type NewContact struct {
	Name     string
	Phone    string
	Email    string
	Address  string
	Group    string
	Favorite bool
}

// ContactPatch is a partial update. Empty strings and a nil Favorite leave
// the stored value untouched.
type ContactPatch struct {
	Phone    string
	Email    string
	Address  string
	Group    string
	Favorite *bool
}

// Filter selects contacts by substring. Empty fields are ignored; the rest
// are AND-ed. Phone matching is case-sensitive, email and address are not.
type Filter struct {
	Phone   string
	Email   string
	Address string
}

// Stats summarises the book's contents.
type Stats struct {
	Contacts      int `json:"contacts"`
	IndexedNames  int `json:"indexed_names"`
	Relationships int `json:"relationships"`
	Calls         int `json:"calls"`
}

// Option configures a Book.
type Option func(*Book)

// WithClock overrides the time source used to stamp calls.
func WithClock(now func() time.Time) Option {
	return func(b *Book) { b.now = now }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(b *Book) { b.logger = l }
}

// Book is the contact-book service object.
type Book struct {
	mu       sync.Mutex
	backend  store.Backend
	contacts store.ContactStore
	index    *trie.Trie
	graph    *relations.Graph
	calls    *calllog.Log
	now      func() time.Time
	logger   *slog.Logger
}

// New loads the persisted snapshot from backend and rebuilds the in-memory
// structures, including the prefix index over every stored key.
func New(ctx context.Context, backend store.Backend, opts ...Option) (*Book, error) {
	b := &Book{
		backend: backend,
		index:   trie.New(),
		graph:   relations.New(),
		calls:   calllog.New(),
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}

	snap, err := backend.Load(ctx)
	if err != nil {
		return nil, sigilerr.Wrap(err, sigilerr.CodeStoreReadFailure, "loading contact book")
	}
	snap.Normalize()

	b.contacts = store.NewContactMap(snap.Contacts)
	for _, key := range b.contacts.Keys() {
		b.index.Insert(key)
		b.graph.AddVertex(key)
	}

	edges := make(map[string][]string, len(snap.Relationships))
	dropped := 0
	for key, neighbors := range snap.Relationships {
		for _, n := range neighbors {
			if !b.contacts.Exists(key) || !b.contacts.Exists(n) {
				dropped++
				continue
			}
			edges[key] = append(edges[key], n)
		}
	}
	if dropped > 0 {
		b.logger.Warn("dropped relationships to unknown contacts", "count", dropped)
	}
	if err := b.graph.Restore(edges); err != nil {
		return nil, sigilerr.Wrap(err, sigilerr.CodeStoreDecodeFailure, "restoring relationships")
	}

	b.calls.Restore(snap.CallLog)

	b.logger.Info("contact book loaded",
		"contacts", b.contacts.Len(),
		"relationships", b.graph.Edges(),
		"calls", b.calls.Len(),
	)
	return b, nil
}

// List returns every contact keyed by name.
func (b *Book) List(_ context.Context) map[string]store.Contact {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.contacts.All()
}

// Get returns the contact filed under name.
func (b *Book) Get(_ context.Context, name string) (store.Contact, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := store.Key(name)
	c, ok := b.contacts.Get(key)
	if !ok {
		return store.Contact{}, notFound(key)
	}
	return c, nil
}

// Add validates and stores a contact, overwriting any contact with the same
// key, and indexes its name.
func (b *Book) Add(ctx context.Context, in NewContact) error {
	if in.Name == "" || in.Phone == "" {
		return sigilerr.New(sigilerr.CodeBookContactInvalid, "Name and phone number are required")
	}
	if !ValidatePhone(in.Phone) {
		return invalidPhone(in.Name)
	}
	if in.Email != "" && !ValidateEmail(in.Email) {
		return invalidEmail(in.Name)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	key := store.Key(in.Name)
	b.contacts.Put(key, store.Contact{
		Phone:    in.Phone,
		Email:    in.Email,
		Address:  in.Address,
		Group:    in.Group,
		Favorite: in.Favorite,
	})
	b.indexInsert(in.Name)
	b.graph.AddVertex(key)

	b.logger.Info("contact added", "contact", key)
	return b.flush(ctx)
}

// indexInsert is the only mutation of the prefix index after startup.
func (b *Book) indexInsert(name string) {
	b.index.Insert(name)
}

// Update applies the non-empty fields of patch. A malformed phone or email
// rejects the whole update before anything changes.
func (b *Book) Update(ctx context.Context, name string, patch ContactPatch) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := store.Key(name)
	c, ok := b.contacts.Get(key)
	if !ok {
		return notFound(key)
	}

	if patch.Phone != "" && !ValidatePhone(patch.Phone) {
		return invalidPhone(key)
	}
	if patch.Email != "" && !ValidateEmail(patch.Email) {
		return invalidEmail(key)
	}

	if patch.Phone != "" {
		c.Phone = patch.Phone
	}
	if patch.Email != "" {
		c.Email = patch.Email
	}
	if patch.Address != "" {
		c.Address = patch.Address
	}
	if patch.Group != "" {
		c.Group = patch.Group
	}
	if patch.Favorite != nil {
		c.Favorite = *patch.Favorite
	}
	b.contacts.Put(key, c)

	b.logger.Info("contact updated", "contact", key)
	return b.flush(ctx)
}

// Delete removes a contact and its relationships. The prefix index keeps the
// name; Search filters it out against the live contacts. Call history is kept.
func (b *Book) Delete(ctx context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := store.Key(name)
	if !b.contacts.Delete(key) {
		return notFound(key)
	}
	b.graph.RemoveVertex(key)

	b.logger.Info("contact deleted", "contact", key)
	return b.flush(ctx)
}

// Search returns the contacts whose names start with query, compared
// case-insensitively, in prefix-index order. Stale index entries for deleted
// contacts are filtered out here.
func (b *Book) Search(_ context.Context, query string) []store.NamedContact {
	b.mu.Lock()
	defer b.mu.Unlock()

	names := b.index.Search(query)
	out := make([]store.NamedContact, 0, len(names))
	for _, name := range names {
		c, ok := b.contacts.Get(name)
		if !ok {
			continue
		}
		out = append(out, store.NamedContact{Name: name, Contact: c})
	}
	return out
}

// AdvancedSearch returns the contacts matching every non-empty field of f.
func (b *Book) AdvancedSearch(_ context.Context, f Filter) map[string]store.Contact {
	b.mu.Lock()
	defer b.mu.Unlock()

	email := strings.ToLower(f.Email)
	address := strings.ToLower(f.Address)

	out := make(map[string]store.Contact)
	for key, c := range b.contacts.All() {
		if f.Phone != "" && !strings.Contains(c.Phone, f.Phone) {
			continue
		}
		if email != "" && !strings.Contains(strings.ToLower(c.Email), email) {
			continue
		}
		if address != "" && !strings.Contains(strings.ToLower(c.Address), address) {
			continue
		}
		out[key] = c
	}
	return out
}

// Favorites returns the contacts flagged as favorite.
func (b *Book) Favorites(_ context.Context) map[string]store.Contact {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make(map[string]store.Contact)
	for key, c := range b.contacts.All() {
		if c.Favorite {
			out[key] = c
		}
	}
	return out
}

// AddRelationship relates two existing contacts in both directions. Relating
// a contact to itself is allowed and shows up once in Graph.
func (b *Book) AddRelationship(ctx context.Context, a, c string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	ka, kc := store.Key(a), store.Key(c)
	if !b.contacts.Exists(ka) || !b.contacts.Exists(kc) {
		return sigilerr.New(sigilerr.CodeBookContactNotFound, "One or both contacts not found",
			sigilerr.Field("contacts", []string{ka, kc}))
	}
	if err := b.graph.AddEdge(ka, kc); err != nil {
		return sigilerr.Wrap(err, sigilerr.CodeBookRelationshipFailure, "adding relationship",
			sigilerr.FieldContact(ka))
	}

	b.logger.Info("relationship added", "contact", ka, "related", kc)
	return b.flush(ctx)
}

// Graph returns the relationship adjacency for every related contact.
func (b *Book) Graph(_ context.Context) map[string][]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.graph.Snapshot()
}

// RecordCall appends the current time to a contact's call history and
// returns the recorded timestamp.
func (b *Book) RecordCall(ctx context.Context, name string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := store.Key(name)
	if !b.contacts.Exists(key) {
		return "", notFound(key)
	}
	ts := b.now().Format(calllog.TimeFormat)
	b.calls.Record(key, ts)

	b.logger.Info("call logged", "contact", key, "at", ts, "calls", len(b.calls.Calls(key)))
	if err := b.flush(ctx); err != nil {
		return "", err
	}
	return ts, nil
}

// CallLog returns every contact's call history.
func (b *Book) CallLog(_ context.Context) map[string][]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls.Snapshot()
}

// Stats reports counts across the book.
func (b *Book) Stats(_ context.Context) Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Stats{
		Contacts:      b.contacts.Len(),
		IndexedNames:  b.index.Len(),
		Relationships: b.graph.Edges(),
		Calls:         b.calls.Len(),
	}
}

// flush writes the full state to the backend. Callers hold b.mu. A failed
// flush leaves the in-memory mutation in place.
func (b *Book) flush(ctx context.Context) error {
	snap := &store.Snapshot{
		Contacts:      b.contacts.All(),
		CallLog:       b.calls.Snapshot(),
		Relationships: b.graph.Snapshot(),
	}
	if err := b.backend.Save(ctx, snap); err != nil {
		b.logger.Error("persisting contact book", "error", err)
		return sigilerr.Wrap(err, sigilerr.CodeBookPersistFailure, "persisting contact book")
	}
	return nil
}

func notFound(key string) error {
	return sigilerr.New(sigilerr.CodeBookContactNotFound, "Contact not found", sigilerr.FieldContact(key))
}

func invalidPhone(name string) error {
	return sigilerr.New(sigilerr.CodeBookContactInvalid, "Invalid phone number format", sigilerr.FieldContact(store.Key(name)))
}

func invalidEmail(name string) error {
	return sigilerr.New(sigilerr.CodeBookContactInvalid, "Invalid email format", sigilerr.FieldContact(store.Key(name)))
}
