// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package calllog_test

import (
	"testing"

	"github.com/sigil-dev/rolodex/internal/calllog"
	"github.com/stretchr/testify/assert"
)

func TestRecord_PreservesCallOrder(t *testing.T) {
	l := calllog.New()
	l.Record("alice", "2026-01-02 10:00:00")
	l.Record("alice", "2026-01-01 09:00:00")
	l.Record("bob", "2026-01-03 08:00:00")

	assert.Equal(t, []string{"2026-01-02 10:00:00", "2026-01-01 09:00:00"}, l.Calls("alice"))
	assert.Equal(t, 3, l.Len())
}

func TestSnapshot_IsACopy(t *testing.T) {
	l := calllog.New()
	l.Record("alice", "t1")

	snap := l.Snapshot()
	snap["alice"][0] = "changed"
	snap["bob"] = []string{"t2"}

	assert.Equal(t, []string{"t1"}, l.Calls("alice"))
	assert.Empty(t, l.Calls("bob"))
}

func TestRestore_ReplacesContents(t *testing.T) {
	l := calllog.New()
	l.Record("zed", "t0")

	src := map[string][]string{"alice": {"t1", "t2"}}
	l.Restore(src)
	src["alice"][0] = "changed"

	assert.Equal(t, []string{"t1", "t2"}, l.Calls("alice"))
	assert.Empty(t, l.Calls("zed"))
	assert.Equal(t, map[string][]string{"alice": {"t1", "t2"}}, l.Snapshot())
}
