// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

// Package sqlite persists book snapshots in a single SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/sigil-dev/rolodex/internal/store"
	sigilerr "github.com/sigil-dev/rolodex/pkg/errors"
)

// Compile-time interface check.
var _ store.Backend = (*Backend)(nil)

// Backend implements store.Backend backed by SQLite.
type Backend struct {
	db *sql.DB
}

// New opens (or creates) a SQLite database at dbPath and initialises the
// contacts, calls and relationships tables.
func New(dbPath string) (*Backend, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, sigilerr.Wrap(err, sigilerr.CodeStoreWriteFailure, "creating data directory", sigilerr.FieldPath(dbPath))
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, sigilerr.Wrap(err, sigilerr.CodeStoreDatabaseFailure, "opening sqlite db", sigilerr.FieldPath(dbPath))
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, sigilerr.Wrap(err, sigilerr.CodeStoreDatabaseFailure, "pinging sqlite db", sigilerr.FieldPath(dbPath))
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, sigilerr.Wrap(err, sigilerr.CodeStoreDatabaseFailure, "migrating sqlite db", sigilerr.FieldPath(dbPath))
	}

	return &Backend{db: db}, nil
}

func migrate(db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS contacts (
	name          TEXT PRIMARY KEY,
	phone         TEXT NOT NULL,
	email         TEXT NOT NULL DEFAULT '',
	address       TEXT NOT NULL DEFAULT '',
	contact_group TEXT NOT NULL DEFAULT '',
	favorite      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS calls (
	id        TEXT PRIMARY KEY,
	contact   TEXT NOT NULL,
	seq       INTEGER NOT NULL,
	called_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_calls_contact ON calls(contact, seq);

CREATE TABLE IF NOT EXISTS relationships (
	contact  TEXT NOT NULL,
	neighbor TEXT NOT NULL,
	PRIMARY KEY (contact, neighbor)
);
`
	_, err := db.Exec(ddl)
	return err
}

// Close closes the underlying database connection.
func (b *Backend) Close() error {
	return b.db.Close()
}

func (b *Backend) Load(ctx context.Context) (*store.Snapshot, error) {
	snap := store.NewSnapshot()

	if err := b.loadContacts(ctx, snap); err != nil {
		return nil, err
	}
	if err := b.loadCalls(ctx, snap); err != nil {
		return nil, err
	}
	if err := b.loadRelationships(ctx, snap); err != nil {
		return nil, err
	}

	return snap, nil
}

func (b *Backend) loadContacts(ctx context.Context, snap *store.Snapshot) error {
	const q = `SELECT name, phone, email, address, contact_group, favorite FROM contacts`

	rows, err := b.db.QueryContext(ctx, q)
	if err != nil {
		return sigilerr.Wrap(err, sigilerr.CodeStoreDatabaseFailure, "querying contacts")
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var c store.Contact
		var favorite int
		if err := rows.Scan(&name, &c.Phone, &c.Email, &c.Address, &c.Group, &favorite); err != nil {
			return sigilerr.Wrap(err, sigilerr.CodeStoreDatabaseFailure, "scanning contact")
		}
		c.Favorite = favorite != 0
		snap.Contacts[name] = c
	}
	if err := rows.Err(); err != nil {
		return sigilerr.Wrap(err, sigilerr.CodeStoreDatabaseFailure, "iterating contacts")
	}
	return nil
}

func (b *Backend) loadCalls(ctx context.Context, snap *store.Snapshot) error {
	const q = `SELECT contact, called_at FROM calls ORDER BY contact, seq`

	rows, err := b.db.QueryContext(ctx, q)
	if err != nil {
		return sigilerr.Wrap(err, sigilerr.CodeStoreDatabaseFailure, "querying calls")
	}
	defer rows.Close()

	for rows.Next() {
		var contact, calledAt string
		if err := rows.Scan(&contact, &calledAt); err != nil {
			return sigilerr.Wrap(err, sigilerr.CodeStoreDatabaseFailure, "scanning call")
		}
		snap.CallLog[contact] = append(snap.CallLog[contact], calledAt)
	}
	if err := rows.Err(); err != nil {
		return sigilerr.Wrap(err, sigilerr.CodeStoreDatabaseFailure, "iterating calls")
	}
	return nil
}

func (b *Backend) loadRelationships(ctx context.Context, snap *store.Snapshot) error {
	const q = `SELECT contact, neighbor FROM relationships ORDER BY contact, neighbor`

	rows, err := b.db.QueryContext(ctx, q)
	if err != nil {
		return sigilerr.Wrap(err, sigilerr.CodeStoreDatabaseFailure, "querying relationships")
	}
	defer rows.Close()

	for rows.Next() {
		var contact, neighbor string
		if err := rows.Scan(&contact, &neighbor); err != nil {
			return sigilerr.Wrap(err, sigilerr.CodeStoreDatabaseFailure, "scanning relationship")
		}
		snap.Relationships[contact] = append(snap.Relationships[contact], neighbor)
	}
	if err := rows.Err(); err != nil {
		return sigilerr.Wrap(err, sigilerr.CodeStoreDatabaseFailure, "iterating relationships")
	}
	return nil
}

// Save replaces every row in one transaction.
func (b *Backend) Save(ctx context.Context, snap *store.Snapshot) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return sigilerr.Wrap(err, sigilerr.CodeStoreDatabaseFailure, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"contacts", "calls", "relationships"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return sigilerr.Wrap(err, sigilerr.CodeStoreDatabaseFailure, "clearing "+table)
		}
	}

	const insContact = `INSERT INTO contacts (name, phone, email, address, contact_group, favorite) VALUES (?, ?, ?, ?, ?, ?)`
	for name, c := range snap.Contacts {
		favorite := 0
		if c.Favorite {
			favorite = 1
		}
		if _, err := tx.ExecContext(ctx, insContact, name, c.Phone, c.Email, c.Address, c.Group, favorite); err != nil {
			return sigilerr.Wrap(err, sigilerr.CodeStoreDatabaseFailure, "inserting contact", sigilerr.FieldContact(name))
		}
	}

	const insCall = `INSERT INTO calls (id, contact, seq, called_at) VALUES (?, ?, ?, ?)`
	for contact, calls := range snap.CallLog {
		for seq, calledAt := range calls {
			if _, err := tx.ExecContext(ctx, insCall, uuid.NewString(), contact, seq, calledAt); err != nil {
				return sigilerr.Wrap(err, sigilerr.CodeStoreDatabaseFailure, "inserting call", sigilerr.FieldContact(contact))
			}
		}
	}

	const insRel = `INSERT OR IGNORE INTO relationships (contact, neighbor) VALUES (?, ?)`
	for contact, neighbors := range snap.Relationships {
		for _, n := range neighbors {
			if _, err := tx.ExecContext(ctx, insRel, contact, n); err != nil {
				return sigilerr.Wrap(err, sigilerr.CodeStoreDatabaseFailure, "inserting relationship", sigilerr.FieldContact(contact))
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return sigilerr.Wrap(err, sigilerr.CodeStoreDatabaseFailure, "committing snapshot")
	}
	return nil
}
