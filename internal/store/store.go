// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package store

import "context"

// Backend persists book snapshots. Implementations rewrite the whole
// snapshot on every Save; there is no incremental persistence.
type Backend interface {
	// Load returns the persisted snapshot. A backend with no data yet
	// returns an empty snapshot, not an error.
	Load(ctx context.Context) (*Snapshot, error)
	// Save replaces the persisted state with snap.
	Save(ctx context.Context, snap *Snapshot) error
	Close() error
}
