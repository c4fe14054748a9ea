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

package distance

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"github.com/shenwei356/bacsort/bacsort/phylip"
)

// DefaultMaxAsymmetry is the default maximum difference between
// the distances of (a, b) and (b, a).
var DefaultMaxAsymmetry = 0.01

// ErrAsymmetric means the two directions of a pair disagree too much.
var ErrAsymmetric = errors.New("distance: asymmetric distances")

// ErrMissingPair means some genome pairs have no distance.
var ErrMissingPair = errors.New("distance: missing genome pairs")

type pairKey struct {
	a, b string // a <= b
}

func newPairKey(a, b string) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// PairTable collects distances of genome pairs.
// If a pair is observed more than once, e.g., (a, b) and (b, a),
// the stored value is the mean.
type PairTable struct {
	MaxAsymmetry float64

	ids   map[string]interface{}
	dists map[pairKey]float64
}

// NewPairTable creates a PairTable.
func NewPairTable() *PairTable {
	return &PairTable{
		MaxAsymmetry: DefaultMaxAsymmetry,
		ids:          make(map[string]interface{}, 1024),
		dists:        make(map[pairKey]float64, 1<<16),
	}
}

// Add adds a record.
func (t *PairTable) Add(r Record) error {
	t.ids[r.A] = struct{}{}
	t.ids[r.B] = struct{}{}

	key := newPairKey(r.A, r.B)
	d, ok := t.dists[key]
	if !ok {
		t.dists[key] = r.Distance
		return nil
	}

	if math.Abs(d-r.Distance) > t.MaxAsymmetry {
		return errors.Wrapf(ErrAsymmetric, "%s vs %s: %f and %f differ by more than %f",
			r.A, r.B, d, r.Distance, t.MaxAsymmetry)
	}
	t.dists[key] = (d + r.Distance) / 2
	return nil
}

// AddReader adds all records from a Reader.
func (t *PairTable) AddReader(rdr *Reader) error {
	for rdr.Next() {
		if err := t.Add(rdr.Record()); err != nil {
			return errors.Wrap(err, rdr.File())
		}
	}
	return rdr.Err()
}

// Get returns the distance of a pair.
func (t *PairTable) Get(a, b string) (float64, bool) {
	if a == b {
		d, ok := t.dists[pairKey{a: a, b: a}]
		if !ok {
			_, ok = t.ids[a]
		}
		return d, ok
	}
	d, ok := t.dists[newPairKey(a, b)]
	return d, ok
}

// IDs returns sorted genome IDs.
func (t *PairTable) IDs() []string {
	ids := make([]string, 0, len(t.ids))
	for id := range t.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Missing returns at most n genome pairs without distances, n <= 0 for all.
func (t *PairTable) Missing(n int) [][2]string {
	ids := t.IDs()
	missing := make([][2]string, 0, 8)
	var ok bool
	for i, a := range ids {
		for _, b := range ids[i+1:] {
			if _, ok = t.dists[pairKey{a: a, b: b}]; !ok {
				missing = append(missing, [2]string{a, b})
				if n > 0 && len(missing) >= n {
					return missing
				}
			}
		}
	}
	return missing
}

// ToMatrix builds a distance matrix with genome IDs in sorted order.
// Distances are capped at maxDist. Diagonal values are always 0.
// A missing pair is an error, unless fillMissing is true,
// where maxDist is used.
func (t *PairTable) ToMatrix(maxDist float64, fillMissing bool) (*phylip.Matrix, error) {
	ids := t.IDs()
	m := phylip.New(ids)

	var d float64
	var ok bool
	for i, a := range ids {
		for j := i + 1; j < len(ids); j++ {
			d, ok = t.dists[pairKey{a: a, b: ids[j]}]
			if !ok {
				if !fillMissing {
					return nil, errors.Wrapf(ErrMissingPair, "no distance for %s and %s", a, ids[j])
				}
				d = maxDist
			}
			if d > maxDist {
				d = maxDist
			}
			m.SetAt(i, j, d)
		}
	}
	return m, nil
}
