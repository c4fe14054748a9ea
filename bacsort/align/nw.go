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

// Package align implements global pairwise alignment of marker genes.
package align

import (
	"bytes"
)

// op records which neighbour the best score of a cell comes from.
type op uint8

const (
	opNone op = iota // the top-left corner
	opUp             // gap in b
	opLeft           // gap in a
	opMismatch
	opMatch
)

// Options contains scoring and output options.
type Options struct {
	Match    int32 // score for a match
	Mismatch int32 // score for a mismatch
	Gap      int32 // linear gap score

	// compare bases ignoring cases
	IgnoreCase bool

	// save alignment strings
	// AT-GTTAT
	// || | ||
	// ATCG-TAC
	SaveAlignments bool
}

// EditDistanceOptions scores alignments with negative unit edit costs,
// so the optimal global alignment has the minimum edit distance.
var EditDistanceOptions = Options{
	Match:    0,
	Mismatch: -1,
	Gap:      -1,

	IgnoreCase: true,
}

// Result holds the summary of a global alignment.
type Result struct {
	Score      int32
	Len        int // alignment length, including gaps
	Matches    int
	Mismatches int
	Gaps       int

	AlignA []byte
	AlignM []byte // "|" for match, " " for mismatch or gap
	AlignB []byte
}

// Identity returns matches / alignment length, and 0 for an empty alignment.
func (r *Result) Identity() float64 {
	if r.Len == 0 {
		return 0
	}
	return float64(r.Matches) / float64(r.Len)
}

// EditDistance returns the number of mismatches and gaps.
func (r *Result) EditDistance() int {
	return r.Mismatches + r.Gaps
}

// String returns the three-line alignment if it is saved.
func (r *Result) String() string {
	var buf bytes.Buffer
	buf.Write(r.AlignA)
	buf.WriteByte('\n')
	buf.Write(r.AlignM)
	buf.WriteByte('\n')
	buf.Write(r.AlignB)
	return buf.String()
}

// Aligner implements the Needleman-Wunsch algorithm.
// The matrices are reused between alignments, so an Aligner
// should not be shared by goroutines.
type Aligner struct {
	Options Options

	scores []int32
	ops    []op
}

// NewAligner returns an aligner.
func NewAligner(opt Options) *Aligner {
	return &Aligner{
		Options: opt,
		scores:  make([]int32, 1<<20),
		ops:     make([]op, 1<<20),
	}
}

func lower(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + 32
	}
	return c
}

// Global aligns two sequences end to end.
func (alg *Aligner) Global(a, b []byte) Result {
	h := len(a) + 1 // rows
	w := len(b) + 1 // columns
	n := h * w

	if n > len(alg.scores) {
		alg.scores = make([]int32, n)
		alg.ops = make([]op, n)
	}
	scores := alg.scores[:n]
	ops := alg.ops[:n]

	match := alg.Options.Match
	mismatch := alg.Options.Mismatch
	gap := alg.Options.Gap
	ignoreCase := alg.Options.IgnoreCase

	var i, j, k int

	scores[0] = 0
	ops[0] = opNone
	for i = 1; i < h; i++ {
		k = i * w
		scores[k] = gap * int32(i)
		ops[k] = opUp
	}
	for j = 1; j < w; j++ {
		scores[j] = gap * int32(j)
		ops[j] = opLeft
	}

	var ca, cb byte
	var best, s int32
	var o op
	for i = 1; i < h; i++ {
		ca = a[i-1]
		if ignoreCase {
			ca = lower(ca)
		}
		k = i * w
		for j = 1; j < w; j++ {
			k++
			cb = b[j-1]
			if ignoreCase {
				cb = lower(cb)
			}

			if ca == cb {
				best, o = scores[k-w-1]+match, opMatch
			} else {
				best, o = scores[k-w-1]+mismatch, opMismatch
			}
			if s = scores[k-w] + gap; s > best {
				best, o = s, opUp
			}
			if s = scores[k-1] + gap; s > best {
				best, o = s, opLeft
			}

			scores[k] = best
			ops[k] = o
		}
	}

	// traceback

	var r Result
	i, j = h-1, w-1
	r.Score = scores[i*w+j]

	save := alg.Options.SaveAlignments
	if save {
		r.AlignA = make([]byte, 0, h+w)
		r.AlignM = make([]byte, 0, h+w)
		r.AlignB = make([]byte, 0, h+w)
	}

	for o = ops[i*w+j]; o != opNone; o = ops[i*w+j] {
		r.Len++

		switch o {
		case opMatch:
			r.Matches++
			if save {
				r.AlignA = append(r.AlignA, a[i-1])
				r.AlignM = append(r.AlignM, '|')
				r.AlignB = append(r.AlignB, b[j-1])
			}
			i--
			j--
		case opMismatch:
			r.Mismatches++
			if save {
				r.AlignA = append(r.AlignA, a[i-1])
				r.AlignM = append(r.AlignM, ' ')
				r.AlignB = append(r.AlignB, b[j-1])
			}
			i--
			j--
		case opUp:
			r.Gaps++
			if save {
				r.AlignA = append(r.AlignA, a[i-1])
				r.AlignM = append(r.AlignM, ' ')
				r.AlignB = append(r.AlignB, '-')
			}
			i--
		case opLeft:
			r.Gaps++
			if save {
				r.AlignA = append(r.AlignA, '-')
				r.AlignM = append(r.AlignM, ' ')
				r.AlignB = append(r.AlignB, b[j-1])
			}
			j--
		}
	}

	if save {
		reverse(r.AlignA)
		reverse(r.AlignM)
		reverse(r.AlignB)
	}

	return r
}

func reverse(s []byte) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
