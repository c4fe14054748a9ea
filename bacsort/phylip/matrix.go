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

// Package phylip provides a symmetric distance matrix keyed by genome IDs,
// which can be read from and written to PHYLIP-style text files.
package phylip

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"github.com/shenwei356/bacsort/bacsort/util"
	"gonum.org/v1/gonum/mat"
)

// ErrInvalidFormat means the file is not a valid PHYLIP distance matrix.
var ErrInvalidFormat = errors.New("phylip: invalid distance matrix")

// ErrAsymmetric means M[a][b] != M[b][a].
var ErrAsymmetric = errors.New("phylip: asymmetric distance matrix")

// ErrNonZeroDiagonal means M[a][a] != 0.
var ErrNonZeroDiagonal = errors.New("phylip: non-zero diagonal")

// ErrUnknownGenome means a genome ID is not in the matrix.
var ErrUnknownGenome = errors.New("phylip: unknown genome")

// Matrix is a square symmetric distance matrix with a zero diagonal.
// Genome IDs keep the order they are given or read in.
type Matrix struct {
	ids   []string
	index map[string]int
	data  *mat.SymDense // nil for an empty matrix
}

// New creates a zero matrix for the given genome IDs, which should be distinct.
func New(ids []string) *Matrix {
	_ids := make([]string, len(ids))
	copy(_ids, ids)

	index := make(map[string]int, len(ids))
	for i, id := range _ids {
		index[id] = i
	}

	m := &Matrix{ids: _ids, index: index}
	if len(ids) > 0 {
		m.data = mat.NewSymDense(len(ids), nil)
	}
	return m
}

// Len returns the number of genomes.
func (m *Matrix) Len() int { return len(m.ids) }

// IDs returns the genome IDs. Please do not modify it.
func (m *Matrix) IDs() []string { return m.ids }

// Index returns the position of a genome.
func (m *Matrix) Index(id string) (int, bool) {
	i, ok := m.index[id]
	return i, ok
}

// At returns the distance of the ith and jth genomes.
func (m *Matrix) At(i, j int) float64 {
	return m.data.At(i, j)
}

// SetAt sets the distance of the ith and jth genomes, in both directions.
func (m *Matrix) SetAt(i, j int, d float64) {
	m.data.SetSym(i, j, d)
}

// Get returns the distance between two genomes.
func (m *Matrix) Get(a, b string) (float64, error) {
	i, ok := m.index[a]
	if !ok {
		return 0, errors.Wrap(ErrUnknownGenome, a)
	}
	j, ok := m.index[b]
	if !ok {
		return 0, errors.Wrap(ErrUnknownGenome, b)
	}
	return m.data.At(i, j), nil
}

// Set sets the distance between two genomes, in both directions.
func (m *Matrix) Set(a, b string, d float64) error {
	i, ok := m.index[a]
	if !ok {
		return errors.Wrap(ErrUnknownGenome, a)
	}
	j, ok := m.index[b]
	if !ok {
		return errors.Wrap(ErrUnknownGenome, b)
	}
	m.data.SetSym(i, j, d)
	return nil
}

// Sorted returns a copy with genome IDs in lexicographic order.
func (m *Matrix) Sorted() *Matrix {
	ids := make([]string, len(m.ids))
	copy(ids, m.ids)
	sort.Strings(ids)

	s := New(ids)
	var i0, j0 int
	for i, a := range ids {
		i0 = m.index[a]
		for j := i; j < len(ids); j++ {
			j0 = m.index[ids[j]]
			s.data.SetSym(i, j, m.data.At(i0, j0))
		}
	}
	return s
}

// SameIDs tells whether two matrices have the same genome set, ignoring order.
func (m *Matrix) SameIDs(o *Matrix) bool {
	if len(m.ids) != len(o.ids) {
		return false
	}
	var ok bool
	for _, id := range m.ids {
		if _, ok = o.index[id]; !ok {
			return false
		}
	}
	return true
}

// DiffIDs returns genome IDs only in m and only in o.
func (m *Matrix) DiffIDs(o *Matrix) (onlyM []string, onlyO []string) {
	var ok bool
	for _, id := range m.ids {
		if _, ok = o.index[id]; !ok {
			onlyM = append(onlyM, id)
		}
	}
	for _, id := range o.ids {
		if _, ok = m.index[id]; !ok {
			onlyO = append(onlyO, id)
		}
	}
	sort.Strings(onlyM)
	sort.Strings(onlyO)
	return
}

// Check checks the invariants: distinct IDs, non-negative values, and zero diagonal.
// Symmetry is guaranteed by the storage.
func (m *Matrix) Check() error {
	if len(m.index) != len(m.ids) {
		return errors.Wrap(ErrInvalidFormat, "duplicated genome IDs")
	}

	var d float64
	for i, a := range m.ids {
		if d = m.data.At(i, i); !util.Equal(d, 0) {
			return errors.Wrapf(ErrNonZeroDiagonal, "%s: %f", a, d)
		}
		for j := i + 1; j < len(m.ids); j++ {
			if d = m.data.At(i, j); d < 0 {
				return errors.Wrapf(ErrInvalidFormat, "negative distance between %s and %s: %f", a, m.ids[j], d)
			}
		}
	}
	return nil
}

func (m *Matrix) String() string {
	return fmt.Sprintf("distance matrix of %d genomes", len(m.ids))
}
