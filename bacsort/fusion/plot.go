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
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// PlotOptions contains plot options.
type PlotOptions struct {
	Title  string
	XLabel string
	YLabel string
	Width  vg.Length
	Height vg.Length
}

// DefaultPlotOptions is the default PlotOptions.
var DefaultPlotOptions = PlotOptions{
	Title:  "Distance regression",
	XLabel: "secondary distance",
	YLabel: "primary distance",
	Width:  6 * vg.Inch,
	Height: 6 * vg.Inch,
}

// PlotRegression plots the regression points and the fitted line.
// The image format is decided by the file extension, e.g., .png, .pdf, .svg.
func PlotRegression(file string, p *Points, t Transform, opt *PlotOptions) error {
	if p.Len() == 0 {
		return errors.Wrap(ErrDegenerateWindow, "no points to plot")
	}

	pl := plot.New()
	pl.Title.Text = opt.Title
	pl.X.Label.Text = opt.XLabel
	pl.Y.Label.Text = opt.YLabel

	xys := make(plotter.XYs, p.Len())
	for i := range p.X {
		xys[i].X = p.X[i]
		xys[i].Y = p.Y[i]
	}

	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return errors.Wrap(err, "failed to plot regression points")
	}
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	scatter.GlyphStyle.Radius = vg.Points(1.5)

	line := plotter.NewFunction(t.Apply)
	line.XMin = floats.Min(p.X)
	line.XMax = floats.Max(p.X)
	line.Width = vg.Points(1.5)

	pl.Add(plotter.NewGrid(), scatter, line)
	pl.Legend.Add(fmt.Sprintf("y = %s", t), line)
	pl.Legend.Top = true
	pl.Legend.Left = true

	if err = pl.Save(opt.Width, opt.Height, file); err != nil {
		return errors.Wrapf(err, "failed to save plot: %s", file)
	}
	return nil
}
