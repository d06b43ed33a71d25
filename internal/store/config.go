// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package store

// StorageConfig controls which backend the store factory uses.
type StorageConfig struct {
	Backend string // "file", "sqlite" or "memory"; empty means "file".
	Format  string // Snapshot encoding for the file backend: "json" or "yaml".
}
