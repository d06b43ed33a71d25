// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

// Package trie implements the case-insensitive prefix index over contact names.
//
// The index is append-only. Names are folded to lower case on insert and on
// lookup, and results are returned in their folded form. Children are visited
// in the order they were first created, so results are deterministic for a
// fixed insertion history. A Trie is not safe for concurrent use.
package trie

import "strings"

type node struct {
	children map[rune]*node
	order    []rune // creation order of children
	terminal bool
}

func newNode() *node {
	return &node{children: make(map[rune]*node)}
}

func (n *node) child(r rune) *node {
	return n.children[r]
}

func (n *node) addChild(r rune) *node {
	if c, ok := n.children[r]; ok {
		return c
	}
	c := newNode()
	n.children[r] = c
	n.order = append(n.order, r)
	return c
}

// Trie is a prefix tree keyed by runes.
type Trie struct {
	root  *node
	words int
}

// New returns an empty Trie.
func New() *Trie {
	return &Trie{root: newNode()}
}

// Insert adds the lower-cased form of name. Inserting the same name twice
// leaves the index unchanged.
func (t *Trie) Insert(name string) {
	n := t.root
	for _, r := range strings.ToLower(name) {
		n = n.addChild(r)
	}
	if !n.terminal {
		n.terminal = true
		t.words++
	}
}

// Len returns the number of distinct names in the index.
func (t *Trie) Len() int {
	return t.words
}

// Search returns every indexed name starting with prefix, compared
// case-insensitively. The empty prefix matches every name. A prefix with no
// match yields an empty, non-nil slice.
//
// Results are produced by a pre-order depth-first walk: a terminal node's own
// word comes before the words below it, and siblings follow creation order.
func (t *Trie) Search(prefix string) []string {
	folded := strings.ToLower(prefix)
	start := t.find(folded)
	if start == nil {
		return []string{}
	}
	return collect(start, folded)
}

func (t *Trie) find(folded string) *node {
	n := t.root
	for _, r := range folded {
		n = n.child(r)
		if n == nil {
			return nil
		}
	}
	return n
}

type frame struct {
	n    *node
	word string
}

// collect walks the subtree with an explicit stack so deep names cannot
// exhaust the goroutine stack.
func collect(start *node, prefix string) []string {
	words := []string{}
	stack := []frame{{n: start, word: prefix}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.n.terminal {
			words = append(words, f.word)
		}
		// Push in reverse so the first-created child is popped first.
		for i := len(f.n.order) - 1; i >= 0; i-- {
			r := f.n.order[i]
			stack = append(stack, frame{n: f.n.children[r], word: f.word + string(r)})
		}
	}

	return words
}
