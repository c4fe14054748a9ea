// Copyright © 2023-2024 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package cluster groups near-identical genomes into connected components
// of a threshold graph, and chooses a representative for each group.
package cluster

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/shenwei356/bacsort/bacsort/distance"
)

// ErrIncompleteDistances means some genome pairs were never observed.
var ErrIncompleteDistances = errors.New("cluster: incomplete pairwise distances")

// ErrInvalidThreshold means the clustering threshold is not positive.
var ErrInvalidThreshold = errors.New("cluster: invalid threshold")

type set map[string]struct{}

// Graph is an undirected threshold graph.
// An edge (a, b) exists if and only if distance(a, b) < Threshold.
// All observed partners are also recorded, to make sure no pairs are missing.
type Graph struct {
	Threshold float64

	nodes set
	edges map[string]set
	all   map[string]set
}

// NewGraph creates an empty graph.
func NewGraph(threshold float64) (*Graph, error) {
	if !(threshold > 0) {
		return nil, errors.Wrapf(ErrInvalidThreshold, "%f", threshold)
	}
	return &Graph{
		Threshold: threshold,
		nodes:     make(set, 1024),
		edges:     make(map[string]set, 1024),
		all:       make(map[string]set, 1024),
	}, nil
}

func addTo(m map[string]set, a, b string) {
	s, ok := m[a]
	if !ok {
		s = make(set, 8)
		m[a] = s
	}
	s[b] = struct{}{}
}

// Add adds a distance record. Self pairs only register the genome.
func (g *Graph) Add(r distance.Record) {
	g.nodes[r.A] = struct{}{}
	g.nodes[r.B] = struct{}{}

	if r.A == r.B {
		return
	}

	addTo(g.all, r.A, r.B)
	addTo(g.all, r.B, r.A)

	if r.Distance < g.Threshold {
		addTo(g.edges, r.A, r.B)
		addTo(g.edges, r.B, r.A)
	}
}

// BuildGraph creates a graph from a distance file.
func BuildGraph(rdr *distance.Reader, threshold float64) (*Graph, error) {
	g, err := NewGraph(threshold)
	if err != nil {
		return nil, err
	}
	for rdr.Next() {
		g.Add(rdr.Record())
	}
	if err = rdr.Err(); err != nil {
		return nil, err
	}
	return g, nil
}

// Genomes returns sorted genome IDs.
func (g *Graph) Genomes() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NumGenomes returns the number of genomes.
func (g *Graph) NumGenomes() int { return len(g.nodes) }

// NumEdges returns the number of edges under the threshold.
func (g *Graph) NumEdges() int {
	var n int
	for _, s := range g.edges {
		n += len(s)
	}
	return n / 2
}

// Neighbors returns sorted genomes connected to a genome.
func (g *Graph) Neighbors(id string) []string {
	s := g.edges[id]
	ids := make([]string, 0, len(s))
	for b := range s {
		ids = append(ids, b)
	}
	sort.Strings(ids)
	return ids
}

// Validate checks that every genome has distances to all other genomes.
func (g *Graph) Validate() error {
	n := len(g.nodes) - 1

	var bad []string
	var m int
	for _, id := range g.Genomes() {
		if m = len(g.all[id]); m != n {
			bad = append(bad, fmt.Sprintf("%s (%d)", id, m))
		}
	}
	if len(bad) == 0 {
		return nil
	}

	const maxShow = 5
	more := ""
	if len(bad) > maxShow {
		more = fmt.Sprintf(" and %d more", len(bad)-maxShow)
		bad = bad[:maxShow]
	}
	return errors.Wrapf(ErrIncompleteDistances,
		"%d genomes expected to have %d partners each, but found: %s%s",
		len(g.nodes), n, strings.Join(bad, ", "), more)
}
