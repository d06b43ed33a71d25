// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

// Package file persists book snapshots as human-readable JSON or YAML files,
// one file per structure, each rewritten in full on every save.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/sigil-dev/rolodex/internal/store"
	sigilerr "github.com/sigil-dev/rolodex/pkg/errors"
)

func init() {
	store.RegisterBackend("file", func(cfg *store.StorageConfig, dataPath string) (store.Backend, error) {
		return New(dataPath, cfg.Format)
	})
}

// Compile-time interface check.
var _ store.Backend = (*Backend)(nil)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

type codec struct {
	ext       string
	marshal   func(any) ([]byte, error)
	unmarshal func([]byte, any) error
}

var codecs = map[string]codec{
	FormatJSON: {
		ext: ".json",
		marshal: func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		},
		unmarshal: json.Unmarshal,
	},
	FormatYAML: {
		ext:       ".yaml",
		marshal:   yaml.Marshal,
		unmarshal: yaml.Unmarshal,
	},
}

// Backend stores contacts, call log and relationships as three files in dir.
type Backend struct {
	dir   string
	codec codec
}

// New returns a file backend writing into dir using the given format.
// An empty format selects JSON.
func New(dir, format string) (*Backend, error) {
	if format == "" {
		format = FormatJSON
	}
	c, ok := codecs[format]
	if !ok {
		return nil, sigilerr.New(sigilerr.CodeStoreBackendUnsupported,
			"unsupported snapshot format: "+format, sigilerr.FieldBackend("file"))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, sigilerr.Wrap(err, sigilerr.CodeStoreWriteFailure, "creating data directory", sigilerr.FieldPath(dir))
	}
	return &Backend{dir: dir, codec: c}, nil
}

// Path returns the file a named structure is stored in.
func (b *Backend) Path(name string) string {
	return filepath.Join(b.dir, name+b.codec.ext)
}

func (b *Backend) Load(_ context.Context) (*store.Snapshot, error) {
	snap := store.NewSnapshot()

	if err := b.read("contacts", &snap.Contacts); err != nil {
		return nil, err
	}
	if err := b.read("call_log", &snap.CallLog); err != nil {
		return nil, err
	}
	if err := b.read("relationships", &snap.Relationships); err != nil {
		return nil, err
	}

	return snap.Normalize(), nil
}

func (b *Backend) Save(_ context.Context, snap *store.Snapshot) error {
	if err := b.write("contacts", snap.Contacts); err != nil {
		return err
	}
	if err := b.write("call_log", snap.CallLog); err != nil {
		return err
	}
	return b.write("relationships", snap.Relationships)
}

func (b *Backend) Close() error { return nil }

func (b *Backend) read(name string, dest any) error {
	path := b.Path(name)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return sigilerr.Wrap(err, sigilerr.CodeStoreReadFailure, "reading "+name, sigilerr.FieldPath(path))
	}
	if len(data) == 0 {
		return nil
	}
	if err := b.codec.unmarshal(data, dest); err != nil {
		return sigilerr.Wrap(err, sigilerr.CodeStoreDecodeFailure, "decoding "+name, sigilerr.FieldPath(path))
	}
	return nil
}

// write replaces the file via a temp file and rename so a failed write never
// leaves a truncated snapshot behind.
func (b *Backend) write(name string, v any) error {
	path := b.Path(name)

	data, err := b.codec.marshal(v)
	if err != nil {
		return sigilerr.Wrap(err, sigilerr.CodeStoreWriteFailure, "encoding "+name, sigilerr.FieldPath(path))
	}

	tmp, err := os.CreateTemp(b.dir, name+".*.tmp")
	if err != nil {
		return sigilerr.Wrap(err, sigilerr.CodeStoreWriteFailure, "creating temp file for "+name, sigilerr.FieldPath(path))
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return sigilerr.Wrap(err, sigilerr.CodeStoreWriteFailure, "writing "+name, sigilerr.FieldPath(path))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return sigilerr.Wrap(err, sigilerr.CodeStoreWriteFailure, "closing "+name, sigilerr.FieldPath(path))
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return sigilerr.Wrap(err, sigilerr.CodeStoreWriteFailure, "replacing "+name, sigilerr.FieldPath(path))
	}
	return nil
}
