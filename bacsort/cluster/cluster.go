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

package cluster

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shenwei356/bacsort/bacsort/util"
)

// Cluster is a connected component of the threshold graph.
type Cluster struct {
	Num            int      // 1-based, in the order of seed genomes
	Members        []string // sorted
	Representative string
}

// Name returns the cluster name, e.g., Klebsiella_007 for width 3.
func (c *Cluster) Name(prefix string, width int) string {
	return fmt.Sprintf("%s_%0*d", prefix, width, c.Num)
}

// NumWidth returns the width for zero-padding cluster numbers.
func NumWidth(nClusters int) int {
	return util.NumDigits(nClusters)
}

// Clusters partitions genomes into connected components.
// Genomes are visited in sorted order and each unvisited one seeds a new cluster,
// so both membership and numbering only depend on the input distances and threshold.
func (g *Graph) Clusters() []*Cluster {
	genomes := g.Genomes()

	visited := make(set, len(genomes))
	clusters := make([]*Cluster, 0, 64)

	var ok bool
	for _, id := range genomes {
		if _, ok = visited[id]; ok {
			continue
		}

		members := g.component(id, visited)
		sort.Strings(members)

		clusters = append(clusters, &Cluster{
			Num:     len(clusters) + 1,
			Members: members,
		})
	}

	return clusters
}

// component collects all genomes reachable from start with an explicit stack.
func (g *Graph) component(start string, visited set) []string {
	members := make([]string, 0, 8)
	stack := make([]string, 0, 64)
	stack = append(stack, start)

	var v string
	var ok bool
	for len(stack) > 0 {
		v = stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, ok = visited[v]; ok {
			continue
		}
		visited[v] = struct{}{}
		members = append(members, v)

		for b := range g.edges[v] {
			if _, ok = visited[b]; !ok {
				stack = append(stack, b)
			}
		}
	}
	return members
}

// Record is one line of the cluster accession file.
type Record struct {
	Name           string
	Members        []string
	Representative string
}

// NewRecord creates a Record for a cluster.
func NewRecord(c *Cluster, prefix string, width int) Record {
	return Record{
		Name:           c.Name(prefix, width),
		Members:        c.Members,
		Representative: c.Representative,
	}
}

// String returns the tab-delimited line without a trailing newline.
func (r Record) String() string {
	return r.Name + "\t" + strings.Join(r.Members, ",") + "\t" + r.Representative
}

// Display returns a human-readable line with the representative marked by "*".
func (r Record) Display() string {
	members := make([]string, len(r.Members))
	for i, m := range r.Members {
		if m == r.Representative {
			members[i] = m + "*"
		} else {
			members[i] = m
		}
	}
	return r.Name + "\t" + strings.Join(members, ",")
}
