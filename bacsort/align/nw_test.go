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

package align

import (
	"math/rand"
	"testing"
)

func TestGlobal(t *testing.T) {
	alg := NewAligner(EditDistanceOptions)

	r := alg.Global([]byte("ACGTACGT"), []byte("ACGTACGT"))
	if r.Score != 0 || r.Len != 8 || r.Matches != 8 || r.Identity() != 1 {
		t.Errorf("unexpected result for identical sequences: %+v", r)
	}

	r = alg.Global([]byte("acgtACGT"), []byte("ACGTacgt"))
	if r.Matches != 8 {
		t.Errorf("expected: 8 matches ignoring cases, results: %d", r.Matches)
	}

	alg.Options.SaveAlignments = true
	r = alg.Global([]byte("ACGT"), []byte("AGT"))
	if r.Score != -1 || r.Len != 4 || r.Matches != 3 || r.Gaps != 1 || r.EditDistance() != 1 {
		t.Errorf("unexpected result: %+v", r)
	}
	if r.String() != "ACGT\n| ||\nA-GT" {
		t.Errorf("unexpected alignment:\n%s", r.String())
	}

	r = alg.Global([]byte("ACGT"), []byte("AGGT"))
	if r.Len != 4 || r.Mismatches != 1 || r.Gaps != 0 {
		t.Errorf("unexpected result: %+v", r)
	}

	r = alg.Global(nil, []byte("ACG"))
	if r.Len != 3 || r.Gaps != 3 || r.Matches != 0 || r.Score != -3 {
		t.Errorf("unexpected result for an empty sequence: %+v", r)
	}

	r = alg.Global(nil, nil)
	if r.Len != 0 || r.Identity() != 0 {
		t.Errorf("unexpected result for two empty sequences: %+v", r)
	}
}

func TestGlobalEditDistance(t *testing.T) {
	alg := NewAligner(EditDistanceOptions)
	r := rand.New(rand.NewSource(11))
	bases := []byte("ACGT")

	// the score of a unit-cost alignment is the negative edit distance
	for round := 0; round < 50; round++ {
		a := make([]byte, 50+r.Intn(100))
		for i := range a {
			a[i] = bases[r.Intn(4)]
		}
		b := make([]byte, 0, len(a)+10)
		for _, c := range a {
			switch r.Intn(20) {
			case 0: // deletion
			case 1: // insertion
				b = append(b, c, bases[r.Intn(4)])
			case 2:
				b = append(b, bases[r.Intn(4)])
			default:
				b = append(b, c)
			}
		}

		res := alg.Global(a, b)
		if int(-res.Score) != res.EditDistance() {
			t.Errorf("round %d: score %d does not equal negative edit distance %d", round, res.Score, res.EditDistance())
		}
		if res.Matches+res.Mismatches+res.Gaps != res.Len {
			t.Errorf("round %d: inconsistent counts: %+v", round, res)
		}
		if d := levenshtein(a, b); d != res.EditDistance() {
			t.Errorf("round %d: expected edit distance: %d, results: %d", round, d, res.EditDistance())
		}
	}
}

func TestGlobalLargeMatrix(t *testing.T) {
	alg := NewAligner(EditDistanceOptions)
	a := make([]byte, 1500)
	for i := range a {
		a[i] = "ACGT"[i%4]
	}
	r := alg.Global(a, a)
	if r.Matches != len(a) {
		t.Errorf("expected: %d matches, results: %d", len(a), r.Matches)
	}
}

func levenshtein(a, b []byte) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j-1]+cost, prev[j]+1, cur[j-1]+1)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
