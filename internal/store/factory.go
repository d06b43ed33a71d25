// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package store

import (
	"slices"
	"sync"

	sigilerr "github.com/sigil-dev/rolodex/pkg/errors"
)

// BackendFactory creates a backend rooted at dataPath.
type BackendFactory func(cfg *StorageConfig, dataPath string) (Backend, error)

var (
	backendFactories = map[string]BackendFactory{}
	factoriesMu      sync.RWMutex
)

// RegisterBackend registers the factory for a named storage backend.
// Backend packages call this from init(). This function is goroutine-safe.
func RegisterBackend(name string, factory BackendFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	backendFactories[name] = factory
}

// Backends returns the registered backend names in sorted order.
func Backends() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(backendFactories))
	for name := range backendFactories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// resolveBackend returns the effective backend name, defaulting to "file".
func resolveBackend(cfg *StorageConfig) string {
	if cfg == nil || cfg.Backend == "" {
		return "file"
	}
	return cfg.Backend
}

// Open creates the configured backend. The dataPath directory holds any
// files the backend writes.
func Open(cfg *StorageConfig, dataPath string) (Backend, error) {
	backend := resolveBackend(cfg)

	factoriesMu.RLock()
	factory, ok := backendFactories[backend]
	factoriesMu.RUnlock()
	if !ok {
		return nil, sigilerr.New(sigilerr.CodeStoreBackendUnsupported,
			"unsupported storage backend: "+backend, sigilerr.FieldBackend(backend))
	}

	if cfg == nil {
		cfg = &StorageConfig{}
	}
	return factory(cfg, dataPath)
}
