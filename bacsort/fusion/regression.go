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

// Package fusion combines two distance matrices computed by different methods,
// each reliable in a different distance range, into one matrix.
// Distances of the secondary matrix are first adjusted to the scale of the
// primary one with a linear regression over a trusted window,
// then the two are blended in a transition zone.
package fusion

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"github.com/shenwei356/bacsort/bacsort/phylip"
	"github.com/shenwei356/bacsort/bacsort/util"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrDegenerateWindow means the regression window does not
// contain enough informative points to fit a line.
var ErrDegenerateWindow = errors.New("fusion: degenerate regression window")

// Transform maps secondary distances onto the scale of the primary metric.
type Transform struct {
	Slope     float64 `toml:"slope"`
	Intercept float64 `toml:"intercept"`
}

// Apply returns the adjusted distance.
func (t Transform) Apply(d float64) float64 {
	return t.Slope*d + t.Intercept
}

func (t Transform) String() string {
	return fmt.Sprintf("%.6f * secondary + %.6f", t.Slope, t.Intercept)
}

// Points are regression data points, X for secondary distances
// and Y for primary distances.
type Points struct {
	X []float64
	Y []float64
}

// Len returns the number of points.
func (p *Points) Len() int { return len(p.X) }

// Window is the range of primary distances used for regression.
type Window struct {
	Min, Max     float64
	ExclusiveMin bool // (Min, Max) instead of [Min, Max)
}

// Contains tells whether a primary distance is in the window.
func (w Window) Contains(d float64) bool {
	if d >= w.Max {
		return false
	}
	if w.ExclusiveMin {
		return d > w.Min
	}
	return d >= w.Min
}

func (w Window) String() string {
	if w.ExclusiveMin {
		return fmt.Sprintf("(%f, %f)", w.Min, w.Max)
	}
	return fmt.Sprintf("[%f, %f)", w.Min, w.Max)
}

// CollectWindow collects distances of genome pairs (i <= j, the diagonal included)
// whose primary distances fall in the window.
// The two matrices should have the same genome set.
func CollectWindow(primary, secondary *phylip.Matrix, w Window) (*Points, error) {
	if !primary.SameIDs(secondary) {
		return nil, mismatchError(primary, secondary)
	}

	ids := primary.IDs()
	idx := make([]int, len(ids)) // index in the secondary matrix
	for i, id := range ids {
		idx[i], _ = secondary.Index(id)
	}

	p := &Points{
		X: make([]float64, 0, 1024),
		Y: make([]float64, 0, 1024),
	}
	var d float64
	for i := range ids {
		for j := i; j < len(ids); j++ {
			d = primary.At(i, j)
			if !w.Contains(d) {
				continue
			}
			p.X = append(p.X, secondary.At(idx[i], idx[j]))
			p.Y = append(p.Y, d)
		}
	}
	return p, nil
}

// Fit fits primary = slope * secondary + intercept with ordinary least squares.
// With throughOrigin, the intercept is fixed at 0.
func Fit(p *Points, throughOrigin bool) (Transform, error) {
	var t Transform

	n := p.Len()
	if n < 2 {
		return t, errors.Wrapf(ErrDegenerateWindow, "%d points in the window", n)
	}

	if throughOrigin {
		if floats.Dot(p.X, p.X) <= util.Epsilon {
			return t, errors.Wrap(ErrDegenerateWindow, "all secondary distances are zero")
		}
	} else if floats.Max(p.X)-floats.Min(p.X) <= util.Epsilon {
		return t, errors.Wrapf(ErrDegenerateWindow, "no variance in %d secondary distances", n)
	}

	t.Intercept, t.Slope = stat.LinearRegression(p.X, p.Y, nil, throughOrigin)

	if math.IsNaN(t.Slope) || math.IsNaN(t.Intercept) ||
		math.IsInf(t.Slope, 0) || math.IsInf(t.Intercept, 0) {
		return Transform{}, errors.Wrapf(ErrDegenerateWindow, "invalid fit: %s", t)
	}
	return t, nil
}

// RSquared returns the coefficient of determination of a fitted transform.
func RSquared(p *Points, t Transform) float64 {
	return stat.RSquared(p.X, p.Y, nil, t.Intercept, t.Slope)
}
