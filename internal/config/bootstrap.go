// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package config

import (
	_ "embed"
	"log/slog"
	"os"
	"path/filepath"

	sigilerr "github.com/sigil-dev/rolodex/pkg/errors"
)

//go:embed rolodex.yaml.default
var DefaultConfigYAML []byte

// DefaultConfigPath returns ~/.config/rolodex/rolodex.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", sigilerr.Errorf(sigilerr.CodeConfigLoadReadFailure, "resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "rolodex", "rolodex.yaml"), nil
}

// WriteDefault writes the commented default config to path unless a file
// already exists there. It reports whether a file was written.
func WriteDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, sigilerr.Wrap(err, sigilerr.CodeCLISetupFailure, "creating config directory", sigilerr.FieldPath(path))
	}
	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		return false, sigilerr.Wrap(err, sigilerr.CodeCLISetupFailure, "writing default config", sigilerr.FieldPath(path))
	}

	slog.Info("created default config", "path", path)
	return true, nil
}
