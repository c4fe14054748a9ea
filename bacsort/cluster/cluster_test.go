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
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/shenwei356/bacsort/bacsort/distance"
)

func buildGraph(t *testing.T, data string, threshold float64) *Graph {
	records, err := distance.Parse(strings.NewReader(data), "test", distance.ModeDistance)
	if err != nil {
		t.Fatal(err)
	}
	g, err := NewGraph(threshold)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range records {
		g.Add(r)
	}
	return g
}

func members(clusters []*Cluster) [][]string {
	s := make([][]string, len(clusters))
	for i, c := range clusters {
		s[i] = c.Members
	}
	return s
}

const abc = `A A 0
A B 0.001
A C 0.5
B A 0.001
B B 0
B C 0.5
C A 0.5
C B 0.5
C C 0
`

func TestClusters(t *testing.T) {
	g := buildGraph(t, abc, 0.005)
	if err := g.Validate(); err != nil {
		t.Error(err)
		return
	}
	if g.NumGenomes() != 3 || g.NumEdges() != 1 {
		t.Errorf("expected: 3 genomes and 1 edge, results: %d, %d", g.NumGenomes(), g.NumEdges())
	}

	clusters := g.Clusters()
	expected := [][]string{{"A", "B"}, {"C"}}
	if !reflect.DeepEqual(members(clusters), expected) {
		t.Errorf("expected: %v, results: %v", expected, members(clusters))
	}
	for i, c := range clusters {
		if c.Num != i+1 {
			t.Errorf("expected cluster number: %d, results: %d", i+1, c.Num)
		}
	}

	// a larger threshold merges everything
	g = buildGraph(t, abc, 0.6)
	if n := len(g.Clusters()); n != 1 {
		t.Errorf("expected: 1 cluster, results: %d", n)
	}

	// the threshold is exclusive
	g = buildGraph(t, abc, 0.001)
	if n := len(g.Clusters()); n != 3 {
		t.Errorf("expected: 3 clusters, results: %d", n)
	}
}

func TestTransitiveChaining(t *testing.T) {
	// A-B and B-C are close, A-C is not, and they still form one cluster.
	data := `A B 0.003
A C 0.008
A D 0.9
B C 0.003
B D 0.9
C D 0.9
`
	g := buildGraph(t, data, 0.005)
	if err := g.Validate(); err != nil {
		t.Error(err)
		return
	}
	expected := [][]string{{"A", "B", "C"}, {"D"}}
	if result := members(g.Clusters()); !reflect.DeepEqual(result, expected) {
		t.Errorf("expected: %v, results: %v", expected, result)
	}
	if nb := g.Neighbors("B"); !reflect.DeepEqual(nb, []string{"A", "C"}) {
		t.Errorf("expected: [A C], results: %v", nb)
	}
}

func TestValidate(t *testing.T) {
	data := `A B 0.001
A C 0.5
A D 0.5
B C 0.5
`
	g := buildGraph(t, data, 0.005)
	err := g.Validate()
	if !errors.Is(err, ErrIncompleteDistances) {
		t.Errorf("expected: %s, results: %v", ErrIncompleteDistances, err)
		return
	}
	if !strings.Contains(err.Error(), "D (1)") {
		t.Errorf("error should list the genome with missing partners: %s", err)
	}

	if _, err = NewGraph(0); !errors.Is(err, ErrInvalidThreshold) {
		t.Errorf("expected: %s, results: %v", ErrInvalidThreshold, err)
	}
}

func TestThresholdMonotonicity(t *testing.T) {
	var sb strings.Builder
	ids := []string{"g01", "g02", "g03", "g04", "g05", "g06", "g07", "g08"}
	for i := range ids {
		for j := i + 1; j < len(ids); j++ {
			fmt.Fprintf(&sb, "%s\t%s\t%f\n", ids[i], ids[j], float64((i*7+j*13)%50)/1000)
		}
	}
	data := sb.String()

	// every cluster at a smaller threshold is inside a cluster at a larger one
	var prev map[string]int
	for _, threshold := range []float64{0.005, 0.01, 0.02, 0.04} {
		clusters := buildGraph(t, data, threshold).Clusters()
		cur := make(map[string]int, len(ids))
		for _, c := range clusters {
			for _, m := range c.Members {
				cur[m] = c.Num
			}
		}
		if prev != nil {
			for _, a := range ids {
				for _, b := range ids {
					if prev[a] == prev[b] && cur[a] != cur[b] {
						t.Errorf("threshold %f: %s and %s were split", threshold, a, b)
					}
				}
			}
		}
		prev = cur

		// deterministic
		again := buildGraph(t, data, threshold).Clusters()
		if !reflect.DeepEqual(members(clusters), members(again)) {
			t.Errorf("threshold %f: clustering is not deterministic", threshold)
		}
	}
}

func TestName(t *testing.T) {
	c := &Cluster{Num: 7}
	if name := c.Name("Klebsiella", NumWidth(120)); name != "Klebsiella_007" {
		t.Errorf("expected: Klebsiella_007, results: %s", name)
	}
	if name := c.Name("Klebsiella", NumWidth(9)); name != "Klebsiella_7" {
		t.Errorf("expected: Klebsiella_7, results: %s", name)
	}
}

func TestSelectRepresentative(t *testing.T) {
	n50s := map[string]int{"A": 100, "B": 300, "C": 300, "D": 50}
	n50 := func(id string) (int, error) {
		n, ok := n50s[id]
		if !ok {
			return 0, fmt.Errorf("no assembly: %s", id)
		}
		return n, nil
	}

	rep, err := SelectRepresentative([]string{"A", "B", "C", "D"}, n50)
	if err != nil {
		t.Error(err)
		return
	}
	if rep != "C" {
		t.Errorf("expected: C, results: %s", rep)
	}

	// single member does not need assemblies
	rep, err = SelectRepresentative([]string{"X"}, n50)
	if err != nil || rep != "X" {
		t.Errorf("expected: X, results: %s, %v", rep, err)
	}

	if _, err = SelectRepresentative([]string{"A", "X"}, n50); err == nil {
		t.Errorf("error expected for a missing assembly")
	}
}

func TestAssemblyN50(t *testing.T) {
	dir := t.TempDir()
	fasta := ">c1\n" + strings.Repeat("A", 60) + "\n>c2 desc\n" + strings.Repeat("C", 10) +
		"\n>c3\n" + strings.Repeat("G", 10) + "\n>c4\n" + strings.Repeat("T", 20) + "\n"
	if err := os.WriteFile(filepath.Join(dir, "a.fna"), []byte(fasta), 0644); err != nil {
		t.Error(err)
		return
	}

	n, err := N50FromDir(dir)("a.fna")
	if err != nil {
		t.Error(err)
		return
	}
	if n != 60 {
		t.Errorf("expected: 60, results: %d", n)
	}

	if _, err = AssemblyN50(filepath.Join(dir, "missing.fna")); err == nil {
		t.Errorf("error expected for a missing file")
	}
}

func TestAccessionWriter(t *testing.T) {
	file := filepath.Join(t.TempDir(), "cluster_accessions")

	g := buildGraph(t, abc, 0.005)
	clusters := g.Clusters()
	clusters[0].Representative = "B"
	clusters[1].Representative = "C"

	width := NumWidth(len(clusters))
	for round := 0; round < 2; round++ {
		w, err := NewAccessionWriter(file)
		if err != nil {
			t.Error(err)
			return
		}
		for _, c := range clusters {
			if err = w.Write(NewRecord(c, "Escherichia", width)); err != nil {
				t.Error(err)
				return
			}
		}
		if err = w.Close(); err != nil {
			t.Error(err)
			return
		}
	}

	data, err := os.ReadFile(file)
	if err != nil {
		t.Error(err)
		return
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Errorf("expected: 4 lines after two appends, results: %d", len(lines))
	}
	if lines[0] != "Escherichia_1\tA,B\tB" {
		t.Errorf("unexpected record: %s", lines[0])
	}

	if s := NewRecord(clusters[0], "Escherichia", width).Display(); s != "Escherichia_1\tA,B*" {
		t.Errorf("unexpected display: %s", s)
	}
}
