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

package fusion

import (
	"math"
	"strings"

	"github.com/pkg/errors"
	"github.com/shenwei356/bacsort/bacsort/phylip"
	"github.com/shenwei356/bacsort/bacsort/util"
)

// ErrInvalidOptions means the regression or blend windows are invalid.
var ErrInvalidOptions = errors.New("fusion: invalid options")

// ErrGenomeSetMismatch means the two matrices have different genomes.
var ErrGenomeSetMismatch = errors.New("fusion: genome sets of the two matrices differ")

// Options contains the regression and blend windows,
// all in the scale of the primary metric.
type Options struct {
	RegressionMin float64
	RegressionMax float64
	ExclusiveMin  bool // the regression window is (min, max) rather than [min, max)

	BlendMin float64
	BlendMax float64

	ThroughOrigin bool // fit a slope only
}

// DefaultOptions fits a slope and an intercept over [0, 0.2),
// and blends distances between 0.17 and 0.20.
var DefaultOptions = Options{
	RegressionMin: 0,
	RegressionMax: 0.20,
	BlendMin:      0.17,
	BlendMax:      0.20,
}

// TwoThresholdOptions returns options with a regression window of (t1, t2)
// and a blend zone of [t2, t3], with a slope-only fit.
func TwoThresholdOptions(t1, t2, t3 float64) Options {
	return Options{
		RegressionMin: t1,
		RegressionMax: t2,
		ExclusiveMin:  true,
		BlendMin:      t2,
		BlendMax:      t3,
		ThroughOrigin: true,
	}
}

// Window returns the regression window.
func (o Options) Window() Window {
	return Window{Min: o.RegressionMin, Max: o.RegressionMax, ExclusiveMin: o.ExclusiveMin}
}

// Validate checks the options.
func (o Options) Validate() error {
	for _, v := range []float64{o.RegressionMin, o.RegressionMax, o.BlendMin, o.BlendMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Wrap(ErrInvalidOptions, "windows should be finite numbers")
		}
	}
	if o.RegressionMax-o.RegressionMin <= util.Epsilon {
		return errors.Wrapf(ErrInvalidOptions, "regression max (%f) should be larger than regression min (%f)",
			o.RegressionMax, o.RegressionMin)
	}
	if o.BlendMax-o.BlendMin <= util.Epsilon {
		return errors.Wrapf(ErrInvalidOptions, "blend max (%f) should be larger than blend min (%f)",
			o.BlendMax, o.BlendMin)
	}
	return nil
}

// Blend combines a primary distance and an adjusted secondary distance.
// The weight of the secondary distance grows linearly with the position
// of the primary distance in the blend zone.
func Blend(primary, adjusted, blendMin, blendMax float64) float64 {
	if primary <= blendMin {
		return primary
	}
	if primary >= blendMax {
		return adjusted
	}
	w := (primary - blendMin) / (blendMax - blendMin)
	return (1-w)*primary + w*adjusted
}

func mismatchError(primary, secondary *phylip.Matrix) error {
	onlyP, onlyS := primary.DiffIDs(secondary)
	const maxShow = 5
	if len(onlyP) > maxShow {
		onlyP = onlyP[:maxShow]
	}
	if len(onlyS) > maxShow {
		onlyS = onlyS[:maxShow]
	}
	return errors.Wrapf(ErrGenomeSetMismatch, "%d vs %d genomes, only in primary: [%s], only in secondary: [%s]",
		primary.Len(), secondary.Len(), strings.Join(onlyP, ", "), strings.Join(onlyS, ", "))
}

// Fuse builds a combined matrix in sorted genome order.
// The diagonal is always 0, and negative adjusted distances are clamped to 0.
func Fuse(primary, secondary *phylip.Matrix, t Transform, opt Options) (*phylip.Matrix, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	if !primary.SameIDs(secondary) {
		return nil, mismatchError(primary, secondary)
	}

	fused := primary.Sorted()
	ids := fused.IDs()

	idx := make([]int, len(ids))
	for i, id := range ids {
		idx[i], _ = secondary.Index(id)
	}

	var p, d float64
	for i := range ids {
		for j := i + 1; j < len(ids); j++ {
			p = fused.At(i, j)
			d = Blend(p, t.Apply(secondary.At(idx[i], idx[j])), opt.BlendMin, opt.BlendMax)
			if d < 0 {
				d = 0
			}
			fused.SetAt(i, j, d)
		}
	}
	return fused, nil
}

// Result is the outcome of Combine.
type Result struct {
	Matrix    *phylip.Matrix
	Transform Transform
	Points    *Points
	RSquared  float64
}

// Combine fits a transform in the regression window and fuses the two matrices.
func Combine(primary, secondary *phylip.Matrix, opt Options) (*Result, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}

	points, err := CollectWindow(primary, secondary, opt.Window())
	if err != nil {
		return nil, err
	}

	t, err := Fit(points, opt.ThroughOrigin)
	if err != nil {
		return nil, errors.Wrapf(err, "regression window %s", opt.Window())
	}

	fused, err := Fuse(primary, secondary, t, opt)
	if err != nil {
		return nil, err
	}

	return &Result{
		Matrix:    fused,
		Transform: t,
		Points:    points,
		RSquared:  RSquared(points, t),
	}, nil
}
