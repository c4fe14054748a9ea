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

package phylip

import (
	"bytes"
	"math"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func randomMatrix(n int, seed int64) *Matrix {
	r := rand.New(rand.NewSource(seed))
	ids := make([]string, n)
	for i := range ids {
		ids[i] = "GCF_" + string(rune('A'+(n-i-1)%26)) + strings.Repeat("x", i/26)
	}
	m := New(ids)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			m.SetAt(i, j, r.Float64())
		}
	}
	return m
}

func TestRoundTrip(t *testing.T) {
	m := randomMatrix(30, 1)

	var buf bytes.Buffer
	if err := m.Write(&buf); err != nil {
		t.Error(err)
		return
	}

	m2, err := Read(&buf)
	if err != nil {
		t.Error(err)
		return
	}

	if m2.Len() != m.Len() {
		t.Errorf("expected: %d genomes, results: %d", m.Len(), m2.Len())
		return
	}

	for i, a := range m.IDs() {
		for j, b := range m.IDs() {
			d1 := m.At(i, j)
			d2, err := m2.Get(a, b)
			if err != nil {
				t.Error(err)
				return
			}
			if math.Abs(d1-d2) > 5e-7 {
				t.Errorf("%s vs %s, expected: %.6f, results: %.6f", a, b, d1, d2)
			}
			d3, _ := m2.Get(b, a)
			if d2 != d3 {
				t.Errorf("asymmetric: %s vs %s", a, b)
			}
		}
	}
}

func TestWriteToFile(t *testing.T) {
	m := randomMatrix(5, 2).Sorted()

	for _, name := range []string{"m.phylip", "m.phylip.gz"} {
		file := filepath.Join(t.TempDir(), name)
		if err := m.WriteToFile(file); err != nil {
			t.Error(err)
			return
		}
		m2, err := ReadFromFile(file)
		if err != nil {
			t.Error(err)
			return
		}
		for i := range m.IDs() {
			if m.IDs()[i] != m2.IDs()[i] {
				t.Errorf("%s: genome order changed", name)
			}
		}
	}
}

func TestSorted(t *testing.T) {
	m := New([]string{"c", "a", "b"})
	m.Set("a", "b", 0.1)
	m.Set("a", "c", 0.2)
	m.Set("b", "c", 0.3)

	s := m.Sorted()
	if strings.Join(s.IDs(), ",") != "a,b,c" {
		t.Errorf("unexpected order: %v", s.IDs())
	}
	for _, p := range [][2]string{{"a", "b"}, {"a", "c"}, {"c", "b"}} {
		d1, _ := m.Get(p[0], p[1])
		d2, _ := s.Get(p[0], p[1])
		if d1 != d2 {
			t.Errorf("%v: expected: %f, results: %f", p, d1, d2)
		}
	}
}

func TestReadErrors(t *testing.T) {
	cases := map[string]struct {
		data string
		err  error
	}{
		"empty":       {"", ErrInvalidFormat},
		"bad count":   {"x\n", ErrInvalidFormat},
		"few rows":    {"2\na\t0\t0.1\n", ErrInvalidFormat},
		"many rows":   {"1\na\t0\nb\t0\n", ErrInvalidFormat},
		"few columns": {"2\na\t0\nb\t0.1\t0\n", ErrInvalidFormat},
		"duplicated":  {"2\na\t0\t0.1\na\t0.1\t0\n", ErrInvalidFormat},
		"bad value":   {"2\na\t0\tx\nb\t0.1\t0\n", ErrInvalidFormat},
		"asymmetric":  {"2\na\t0\t0.1\nb\t0.2\t0\n", ErrAsymmetric},
		"diagonal":    {"2\na\t0.5\t0.1\nb\t0.1\t0\n", ErrNonZeroDiagonal},
	}

	for name, c := range cases {
		_, err := Read(strings.NewReader(c.data))
		if err == nil {
			t.Errorf("%s: error expected", name)
			continue
		}
		if !errors.Is(err, c.err) {
			t.Errorf("%s: expected: %s, results: %s", name, c.err, err)
		}
	}
}

func TestReadSpaces(t *testing.T) {
	data := "3\nA 0 0.1 0.2\nB 0.1 0 0.3\nC 0.2 0.3 0\n"
	m, err := Read(strings.NewReader(data))
	if err != nil {
		t.Error(err)
		return
	}
	d, _ := m.Get("C", "B")
	if d != 0.3 {
		t.Errorf("expected: 0.3, results: %f", d)
	}
}

func TestSameIDs(t *testing.T) {
	m1 := New([]string{"a", "b", "c"})
	m2 := New([]string{"c", "a", "b"})
	m3 := New([]string{"a", "b", "d"})

	if !m1.SameIDs(m2) {
		t.Errorf("same genome sets in different orders should match")
	}
	if m1.SameIDs(m3) {
		t.Errorf("different genome sets should not match")
	}
	onlyA, onlyB := m1.DiffIDs(m3)
	if len(onlyA) != 1 || onlyA[0] != "c" || len(onlyB) != 1 || onlyB[0] != "d" {
		t.Errorf("unexpected differences: %v, %v", onlyA, onlyB)
	}
}

func TestUnknownGenome(t *testing.T) {
	m := New([]string{"a", "b"})
	if _, err := m.Get("a", "x"); !errors.Is(err, ErrUnknownGenome) {
		t.Errorf("expected: %s, results: %v", ErrUnknownGenome, err)
	}
	if err := m.Set("x", "a", 1); !errors.Is(err, ErrUnknownGenome) {
		t.Errorf("expected: %s, results: %v", ErrUnknownGenome, err)
	}
}
