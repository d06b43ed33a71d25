// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package sqlite

import (
	"path/filepath"

	"github.com/sigil-dev/rolodex/internal/store"
)

func init() {
	store.RegisterBackend("sqlite", newBackend)
}

func newBackend(_ *store.StorageConfig, dataPath string) (store.Backend, error) {
	return New(filepath.Join(dataPath, "rolodex.db"))
}
