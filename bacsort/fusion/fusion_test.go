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
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/shenwei356/bacsort/bacsort/phylip"
)

func TestFit(t *testing.T) {
	p := &Points{X: []float64{0.1, 0.2, 0.3}, Y: []float64{0.1, 0.2, 0.3}}
	tr, err := Fit(p, false)
	if err != nil {
		t.Error(err)
		return
	}
	if math.Abs(tr.Slope-1) > 1e-9 || math.Abs(tr.Intercept) > 1e-9 {
		t.Errorf("expected: slope 1 and intercept 0, results: %s", tr)
	}

	p = &Points{X: []float64{0.1, 0.2, 0.4}, Y: []float64{0.25, 0.45, 0.85}}
	tr, err = Fit(p, false)
	if err != nil {
		t.Error(err)
		return
	}
	if math.Abs(tr.Slope-2) > 1e-9 || math.Abs(tr.Intercept-0.05) > 1e-9 {
		t.Errorf("expected: slope 2 and intercept 0.05, results: %s", tr)
	}
	if r2 := RSquared(p, tr); math.Abs(r2-1) > 1e-9 {
		t.Errorf("expected: R^2 of 1, results: %f", r2)
	}

	p = &Points{X: []float64{0.1, 0.2, 0.3}, Y: []float64{0.05, 0.1, 0.15}}
	tr, err = Fit(p, true)
	if err != nil {
		t.Error(err)
		return
	}
	if math.Abs(tr.Slope-0.5) > 1e-9 || tr.Intercept != 0 {
		t.Errorf("expected: slope 0.5 through the origin, results: %s", tr)
	}
}

func TestFitDegenerate(t *testing.T) {
	for _, c := range []struct {
		p      *Points
		origin bool
	}{
		{&Points{}, false},
		{&Points{X: []float64{0.1}, Y: []float64{0.1}}, false},
		{&Points{X: []float64{0.1, 0.1, 0.1}, Y: []float64{0.1, 0.2, 0.3}}, false},
		{&Points{X: []float64{0, 0}, Y: []float64{0.1, 0.2}}, true},
	} {
		if _, err := Fit(c.p, c.origin); !errors.Is(err, ErrDegenerateWindow) {
			t.Errorf("%v: expected: %s, results: %v", c.p.X, ErrDegenerateWindow, err)
		}
	}
}

func TestBlend(t *testing.T) {
	opt := DefaultOptions

	// short distances are kept
	if d := Blend(0.1, 0.9, opt.BlendMin, opt.BlendMax); d != 0.1 {
		t.Errorf("expected: 0.1, results: %f", d)
	}
	// boundaries
	if d := Blend(opt.BlendMin, 0.9, opt.BlendMin, opt.BlendMax); d != opt.BlendMin {
		t.Errorf("expected: %f, results: %f", opt.BlendMin, d)
	}
	if d := Blend(opt.BlendMax, 0.9, opt.BlendMin, opt.BlendMax); d != 0.9 {
		t.Errorf("expected: 0.9, results: %f", d)
	}
	// the middle
	if d := Blend(0.185, 0.285, opt.BlendMin, opt.BlendMax); math.Abs(d-0.235) > 1e-9 {
		t.Errorf("expected: 0.235, results: %f", d)
	}

	// continuity at both ends
	tr := Transform{Slope: 0.8, Intercept: 0.02}
	secondary := func(p float64) float64 { return 1.3*p + 0.01 }
	fused := func(p float64) float64 {
		return Blend(p, tr.Apply(secondary(p)), opt.BlendMin, opt.BlendMax)
	}
	const h = 1e-9
	for _, b := range []float64{opt.BlendMin, opt.BlendMax} {
		if diff := math.Abs(fused(b-h) - fused(b+h)); diff > 1e-6 {
			t.Errorf("discontinuity at %f: %g", b, diff)
		}
	}
	prev := fused(0.15)
	for p := 0.15; p <= 0.25; p += 0.0005 {
		cur := fused(p)
		if math.Abs(cur-prev) > 0.002 {
			t.Errorf("jump at %f: %f -> %f", p, prev, cur)
		}
		prev = cur
	}
}

func TestValidate(t *testing.T) {
	if err := DefaultOptions.Validate(); err != nil {
		t.Error(err)
	}

	bad := []Options{
		{RegressionMin: 0, RegressionMax: 0.2, BlendMin: 0.2, BlendMax: 0.2},
		{RegressionMin: 0, RegressionMax: 0.2, BlendMin: 0.2, BlendMax: 0.1},
		{RegressionMin: 0.2, RegressionMax: 0.2, BlendMin: 0.1, BlendMax: 0.2},
		{RegressionMin: 0, RegressionMax: math.NaN(), BlendMin: 0.1, BlendMax: 0.2},
	}
	for _, opt := range bad {
		if err := opt.Validate(); !errors.Is(err, ErrInvalidOptions) {
			t.Errorf("%+v: expected: %s, results: %v", opt, ErrInvalidOptions, err)
		}
	}

	if err := TwoThresholdOptions(0, 0.16, 0.2).Validate(); err != nil {
		t.Error(err)
	}
}

// primary = 0.5 * secondary for all pairs, and the secondary matrix lists genomes in reverse order.
func testMatrices() (*phylip.Matrix, *phylip.Matrix) {
	ids := []string{"g5", "g3", "g1", "g0", "g4", "g2"}
	rev := make([]string, len(ids))
	for i, id := range ids {
		rev[len(ids)-1-i] = id
	}

	primary := phylip.New(ids)
	secondary := phylip.New(rev)
	var d float64
	for i := range ids {
		for j := i + 1; j < len(ids); j++ {
			d = 0.05 * float64(i+j)
			secondary.Set(ids[i], ids[j], d)
			primary.Set(ids[i], ids[j], 0.5*d)
		}
	}
	return primary, secondary
}

func TestCollectWindow(t *testing.T) {
	primary, secondary := testMatrices()

	p, err := CollectWindow(primary, secondary, Window{Min: 0, Max: 0.2})
	if err != nil {
		t.Error(err)
		return
	}
	// 6 diagonal cells, and pairs with i+j <= 7
	if p.Len() != 6+13 {
		t.Errorf("expected: 19 points, results: %d", p.Len())
	}
	for i := range p.X {
		if math.Abs(p.Y[i]-0.5*p.X[i]) > 1e-12 {
			t.Errorf("unexpected point: (%f, %f)", p.X[i], p.Y[i])
		}
	}

	p, err = CollectWindow(primary, secondary, Window{Min: 0, Max: 0.2, ExclusiveMin: true})
	if err != nil {
		t.Error(err)
		return
	}
	if p.Len() != 13 {
		t.Errorf("expected: 13 points, results: %d", p.Len())
	}
}

func TestCombine(t *testing.T) {
	primary, secondary := testMatrices()

	res, err := Combine(primary, secondary, DefaultOptions)
	if err != nil {
		t.Error(err)
		return
	}
	if math.Abs(res.Transform.Slope-0.5) > 1e-9 || math.Abs(res.Transform.Intercept) > 1e-9 {
		t.Errorf("expected: slope 0.5 and intercept 0, results: %s", res.Transform)
	}

	fused := res.Matrix
	if err = fused.Check(); err != nil {
		t.Error(err)
		return
	}
	ids := fused.IDs()
	for i := 1; i < len(ids); i++ {
		if ids[i-1] > ids[i] {
			t.Errorf("genomes should be sorted: %v", ids)
			break
		}
	}

	// the transform is exact, so the fused matrix equals the primary one
	for _, a := range ids {
		for _, b := range ids {
			d1, _ := primary.Get(a, b)
			d2, _ := fused.Get(a, b)
			if math.Abs(d1-d2) > 1e-9 {
				t.Errorf("%s vs %s: expected: %f, results: %f", a, b, d1, d2)
			}
		}
	}
}

func TestFuse(t *testing.T) {
	primary, secondary := testMatrices()
	tr := Transform{Slope: 1, Intercept: 0.1}

	fused, err := Fuse(primary, secondary, tr, DefaultOptions)
	if err != nil {
		t.Error(err)
		return
	}

	// g0 vs g5: primary 0.075, kept
	if d, _ := fused.Get("g0", "g5"); math.Abs(d-0.075) > 1e-12 {
		t.Errorf("expected: 0.075, results: %f", d)
	}
	// g4 vs g2: primary 0.225, secondary 0.45, adjusted 0.55
	if d, _ := fused.Get("g2", "g4"); math.Abs(d-0.55) > 1e-12 {
		t.Errorf("expected: 0.55, results: %f", d)
	}
	// g0 vs g4: primary 0.175, secondary 0.35, adjusted 0.45, weight 1/6
	expected := 0.175*5/6 + 0.45/6
	if d, _ := fused.Get("g4", "g0"); math.Abs(d-expected) > 1e-9 {
		t.Errorf("expected: %f, results: %f", expected, d)
	}
	if d, _ := fused.Get("g4", "g4"); d != 0 {
		t.Errorf("expected a zero diagonal, results: %f", d)
	}
}

func TestGenomeSetMismatch(t *testing.T) {
	primary, _ := testMatrices()
	other := phylip.New([]string{"g0", "g1", "g2", "g3", "g4", "x"})

	if _, err := Combine(primary, other, DefaultOptions); !errors.Is(err, ErrGenomeSetMismatch) {
		t.Errorf("expected: %s, results: %v", ErrGenomeSetMismatch, err)
	}
	if _, err := Fuse(primary, other, Transform{Slope: 1}, DefaultOptions); !errors.Is(err, ErrGenomeSetMismatch) {
		t.Errorf("expected: %s, results: %v", ErrGenomeSetMismatch, err)
	}
}

func TestEmptyWindow(t *testing.T) {
	primary, secondary := testMatrices()
	opt := DefaultOptions
	opt.RegressionMin, opt.RegressionMax = 0.5, 0.9

	if _, err := Combine(primary, secondary, opt); !errors.Is(err, ErrDegenerateWindow) {
		t.Errorf("expected: %s, results: %v", ErrDegenerateWindow, err)
	}
}

func TestTransformFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "transform.toml")

	info := &TransformInfo{
		Primary:       "fastani.phylip",
		Secondary:     "mash.phylip",
		RegressionMin: 0,
		RegressionMax: 0.2,
		Points:        1234,
		RSquared:      0.97,
		Transform:     Transform{Slope: 0.912345, Intercept: -0.001},
	}
	if err := WriteTransform(file, info); err != nil {
		t.Error(err)
		return
	}
	info2, err := ReadTransform(file)
	if err != nil {
		t.Error(err)
		return
	}
	if *info2 != *info {
		t.Errorf("expected: %+v, results: %+v", info, info2)
	}

	if _, err = ReadTransform(filepath.Join(dir, "missing.toml")); err == nil {
		t.Errorf("error expected for a missing file")
	}
}

func TestPlotRegression(t *testing.T) {
	file := filepath.Join(t.TempDir(), "regression.svg")
	p := &Points{X: []float64{0.1, 0.2, 0.3}, Y: []float64{0.12, 0.19, 0.31}}
	tr, err := Fit(p, false)
	if err != nil {
		t.Error(err)
		return
	}
	if err = PlotRegression(file, p, tr, &DefaultPlotOptions); err != nil {
		t.Error(err)
	}
}
