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

package util

import (
	"math"
	"sort"
)

// Epsilon is the tolerance used for all float comparisons of distances:
// matrix symmetry, zero diagonals, blend window width and
// the variance of regression windows.
var Epsilon = 1e-6

// Equal tells whether two distances are equal within Epsilon.
func Equal(a, b float64) bool {
	return math.Abs(a-b) <= Epsilon
}

// N50 returns the length L such that contigs of length >= L
// cover at least half of the total assembly length.
// It returns 0 for an empty assembly.
func N50(lengths []int) int {
	if len(lengths) == 0 {
		return 0
	}

	_lengths := make([]int, len(lengths))
	copy(_lengths, lengths)
	sort.Sort(sort.Reverse(sort.IntSlice(_lengths)))

	var total int
	for _, l := range _lengths {
		total += l
	}
	if total == 0 {
		return 0
	}

	target := float64(total) * 0.5
	var sum int
	for _, l := range _lengths {
		sum += l
		if float64(sum) >= target {
			return l
		}
	}
	return 0
}

// NumDigits returns the number of decimal digits of a non-negative integer.
func NumDigits(n int) int {
	if n < 10 {
		return 1
	}
	var d int
	for n > 0 {
		d++
		n /= 10
	}
	return d
}
