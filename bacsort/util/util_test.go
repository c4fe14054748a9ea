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

import "testing"

func TestN50(t *testing.T) {
	cases := []struct {
		lengths []int
		n50     int
	}{
		{nil, 0},
		{[]int{100}, 100},
		{[]int{10, 20, 30, 40}, 30},
		{[]int{60, 10, 10, 10, 10}, 60},
		{[]int{25, 25, 25, 25}, 25},
		{[]int{1, 2, 3, 4, 5, 6, 7}, 5}, // 7+6+5 >= 14
		{[]int{0, 0}, 0},
	}

	for i, c := range cases {
		if n := N50(c.lengths); n != c.n50 {
			t.Errorf("case %d: expected: %d, results: %d", i, c.n50, n)
		}
	}
}

func TestN50KeepsInput(t *testing.T) {
	lengths := []int{1, 5, 3}
	N50(lengths)
	if lengths[0] != 1 || lengths[1] != 5 || lengths[2] != 3 {
		t.Errorf("input modified: %v", lengths)
	}
}

func TestNumDigits(t *testing.T) {
	for n, d := range map[int]int{0: 1, 9: 1, 10: 2, 99: 2, 100: 3, 12345: 5} {
		if NumDigits(n) != d {
			t.Errorf("%d: expected: %d, results: %d", n, d, NumDigits(n))
		}
	}
}

func TestEqual(t *testing.T) {
	if !Equal(0.1, 0.1+Epsilon/2) {
		t.Errorf("values within epsilon should be equal")
	}
	if Equal(0.1, 0.1+Epsilon*2) {
		t.Errorf("values beyond epsilon should not be equal")
	}
}
