// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

// Package relations tracks the undirected relationship graph between contacts.
package relations

import (
	"errors"
	"slices"

	"github.com/dominikbraun/graph"
)

// Graph is a symmetric adjacency structure over contact keys. It is not safe
// for concurrent use.
type Graph struct {
	g graph.Graph[string, string]
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{g: graph.New(graph.StringHash)}
}

// AddVertex registers a contact key. Adding a known key is a no-op.
func (r *Graph) AddVertex(key string) {
	// ErrVertexAlreadyExists is the only failure for string vertices.
	_ = r.g.AddVertex(key)
}

// RemoveVertex drops key and every edge touching it.
func (r *Graph) RemoveVertex(key string) {
	for _, n := range r.Neighbors(key) {
		_ = r.g.RemoveEdge(key, n)
	}
	_ = r.g.RemoveVertex(key)
}

// AddEdge relates a and b in both directions. Repeated calls are no-ops.
// Both vertices are added if missing; callers check contact existence.
// a == b stores a self-loop listed once under a.
func (r *Graph) AddEdge(a, b string) error {
	r.AddVertex(a)
	r.AddVertex(b)
	if err := r.g.AddEdge(a, b); err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return err
	}
	return nil
}

// Neighbors returns the keys related to key in sorted order.
func (r *Graph) Neighbors(key string) []string {
	adj, err := r.g.AdjacencyMap()
	if err != nil {
		return nil
	}
	return sortedKeys(adj[key])
}

// Edges returns the number of relationships.
func (r *Graph) Edges() int {
	adj, err := r.g.AdjacencyMap()
	if err != nil {
		return 0
	}
	pairs, loops := 0, 0
	for key, edges := range adj {
		for n := range edges {
			if n == key {
				loops++
			} else {
				pairs++
			}
		}
	}
	// A pair appears under both endpoints, a self-loop only once.
	return pairs/2 + loops
}

// Snapshot returns every key with at least one neighbor, mapped to its
// neighbors in sorted order.
func (r *Graph) Snapshot() map[string][]string {
	out := make(map[string][]string)
	adj, err := r.g.AdjacencyMap()
	if err != nil {
		return out
	}
	for key, edges := range adj {
		if len(edges) == 0 {
			continue
		}
		out[key] = sortedKeys(edges)
	}
	return out
}

// Restore adds every edge in adj. One-sided entries are made symmetric.
func (r *Graph) Restore(adj map[string][]string) error {
	for key, neighbors := range adj {
		for _, n := range neighbors {
			if err := r.AddEdge(key, n); err != nil {
				return err
			}
		}
	}
	return nil
}

func sortedKeys(m map[string]graph.Edge[string]) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
