// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigil-dev/rolodex/internal/book"
	"github.com/sigil-dev/rolodex/internal/server"
	"github.com/sigil-dev/rolodex/internal/store"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

// runningServer serves a seeded contact book and returns its host:port.
func runningServer(t *testing.T) string {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	b, err := book.New(context.Background(), store.NewMemoryBackend(), book.WithLogger(logger))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, b.Add(ctx, book.NewContact{Name: "Alice", Phone: "1234567890", Email: "alice@example.com"}))
	require.NoError(t, b.Add(ctx, book.NewContact{Name: "Alicia", Phone: "0987654321"}))
	require.NoError(t, b.Add(ctx, book.NewContact{Name: "Bob", Phone: "5551234567"}))

	srv, err := server.New(server.Config{ListenAddr: "127.0.0.1:0", Book: b, Logger: logger})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Close()
	})
	return strings.TrimPrefix(ts.URL, "http://")
}

func closedAddress(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func TestRootCommand_Help(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)
	for _, sub := range []string{"rolodex", "init", "start", "status", "search", "version"} {
		assert.Contains(t, out, sub)
	}
}

func TestRootCommand_GlobalFlags(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "--config")
	assert.Contains(t, out, "--data-dir")
	assert.Contains(t, out, "--verbose")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "rolodex dev")
}

func TestStartCommand_MissingConfigFile(t *testing.T) {
	_, err := execute(t, "start", "--config", "/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestStartCommand_InvalidConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "rolodex.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("storage:\n  backend: postgres\n"), 0o644))

	_, err := execute(t, "start", "--config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.backend")
}

func TestStartCommand_ServesUntilCancelled(t *testing.T) {
	addr := closedAddress(t)
	dataDir := t.TempDir()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	root := NewRootCmd()
	var out, logs bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&logs)
	root.SetArgs([]string{"start", "--listen", addr, "--data-dir", dataDir})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(ctx) }()

	client := &http.Client{Timeout: time.Second, Transport: &http.Transport{DisableKeepAlives: true}}
	require.Eventually(t, func() bool {
		resp, err := client.Post("http://"+addr+"/contacts", "application/json",
			strings.NewReader(`{"name":"Carol","phone":"1112223333"}`))
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusCreated
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("start did not return after cancel")
	}

	assert.Contains(t, out.String(), "Starting rolodex on "+addr)
	assert.FileExists(t, filepath.Join(dataDir, "contacts.json"))
	data, err := os.ReadFile(filepath.Join(dataDir, "contacts.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"carol"`)
}

func TestStatusCommand(t *testing.T) {
	addr := runningServer(t)

	out, err := execute(t, "status", "--address", addr)
	require.NoError(t, err)
	assert.Contains(t, out, "rolodex at "+addr+": ok")
	assert.Contains(t, out, "contacts:      3")
}

func TestStatusCommand_NotRunning(t *testing.T) {
	addr := closedAddress(t)

	out, err := execute(t, "status", "--address", addr)
	require.NoError(t, err)
	assert.Contains(t, out, "is not running")
}

func TestStatusCommand_DefaultsToConfiguredListen(t *testing.T) {
	addr := closedAddress(t)
	t.Setenv("ROLODEX_NETWORKING_LISTEN", addr)

	out, err := execute(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "rolodex at "+addr)
}

func TestSearchCommand(t *testing.T) {
	addr := runningServer(t)

	out, err := execute(t, "search", "ALI", "--address", addr)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "alice "), lines[0])
	assert.Contains(t, lines[0], "1234567890")
	assert.True(t, strings.HasPrefix(lines[1], "alicia "), lines[1])
}

func TestSearchCommand_NoPrefixListsAll(t *testing.T) {
	addr := runningServer(t)

	out, err := execute(t, "search", "--address", addr)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 3)
}

func TestSearchCommand_NoMatch(t *testing.T) {
	addr := runningServer(t)

	out, err := execute(t, "search", "zed", "--address", addr)
	require.NoError(t, err)
	assert.Contains(t, out, `No contacts match "zed"`)
}

func TestSearchCommand_NotRunning(t *testing.T) {
	_, err := execute(t, "search", "a", "--address", closedAddress(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not running")
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rolodex.yaml")

	out, err := execute(t, "init", "--path", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote default config to "+path)
	assert.FileExists(t, path)

	out, err = execute(t, "init", "--path", path)
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")
}
