// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sigil-dev/rolodex/internal/store"
	"github.com/sigil-dev/rolodex/internal/store/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDBPath returns a temp SQLite database path.
func testDBPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name+".db")
}

func openBackend(t *testing.T, path string) *sqlite.Backend {
	t.Helper()
	b, err := sqlite.New(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestBackend_EmptyDatabase(t *testing.T) {
	b := openBackend(t, testDBPath(t, "empty"))

	snap, err := b.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Contacts)
	assert.Empty(t, snap.CallLog)
	assert.Empty(t, snap.Relationships)
}

func TestBackend_SaveLoad(t *testing.T) {
	ctx := context.Background()
	path := testDBPath(t, "roundtrip")
	b := openBackend(t, path)

	snap := store.NewSnapshot()
	snap.Contacts["alice"] = store.Contact{
		Phone: "1234567890", Email: "alice@example.com", Address: "1 Main St", Group: "friends", Favorite: true,
	}
	snap.Contacts["bob"] = store.Contact{Phone: "0987654321"}
	snap.CallLog["alice"] = []string{"2026-01-02 10:00:00", "2026-01-01 09:00:00", "2026-01-03 11:00:00"}
	snap.Relationships["alice"] = []string{"alice", "bob"}
	snap.Relationships["bob"] = []string{"alice"}

	require.NoError(t, b.Save(ctx, snap))
	require.NoError(t, b.Close())

	reopened := openBackend(t, path)
	got, err := reopened.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, snap.Contacts, got.Contacts)
	// Call order is recording order, not chronological order.
	assert.Equal(t, snap.CallLog["alice"], got.CallLog["alice"])
	assert.Equal(t, snap.Relationships, got.Relationships)
}

func TestBackend_SaveReplacesRows(t *testing.T) {
	ctx := context.Background()
	b := openBackend(t, testDBPath(t, "replace"))

	first := store.NewSnapshot()
	first.Contacts["alice"] = store.Contact{Phone: "1234567890"}
	first.CallLog["alice"] = []string{"2026-01-01 00:00:00"}
	require.NoError(t, b.Save(ctx, first))

	second := store.NewSnapshot()
	second.Contacts["bob"] = store.Contact{Phone: "0987654321"}
	require.NoError(t, b.Save(ctx, second))

	got, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.Contacts, got.Contacts)
	assert.Empty(t, got.CallLog)
}

func TestOpen_RegisteredAsSQLite(t *testing.T) {
	dir := t.TempDir()
	b, err := store.Open(&store.StorageConfig{Backend: "sqlite"}, dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	assert.IsType(t, &sqlite.Backend{}, b)
	assert.FileExists(t, filepath.Join(dir, "rolodex.db"))
}
