// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

// Package calllog records, per contact, the timestamps of calls in the order
// they were made.
package calllog

import (
	"maps"
	"slices"
)

// TimeFormat is the layout of recorded timestamps.
const TimeFormat = "2006-01-02 15:04:05"

// Log maps contact keys to their call timestamps. It is append-only and not
// safe for concurrent use.
type Log struct {
	calls map[string][]string
}

// New returns an empty log.
func New() *Log {
	return &Log{calls: make(map[string][]string)}
}

// Record appends ts to key's history.
func (l *Log) Record(key, ts string) {
	l.calls[key] = append(l.calls[key], ts)
}

// Calls returns a copy of key's history, oldest call first.
func (l *Log) Calls(key string) []string {
	return slices.Clone(l.calls[key])
}

// Len returns the total number of recorded calls.
func (l *Log) Len() int {
	n := 0
	for _, c := range l.calls {
		n += len(c)
	}
	return n
}

// Snapshot returns a deep copy of the whole log.
func (l *Log) Snapshot() map[string][]string {
	out := maps.Clone(l.calls)
	for k, v := range out {
		out[k] = slices.Clone(v)
	}
	return out
}

// Restore replaces the log's contents with a copy of calls.
func (l *Log) Restore(calls map[string][]string) {
	l.calls = make(map[string][]string, len(calls))
	for k, v := range calls {
		l.calls[k] = slices.Clone(v)
	}
}
