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

package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/shenwei356/bacsort/bacsort/fusion"
	"github.com/shenwei356/bacsort/bacsort/phylip"
	"github.com/spf13/cobra"
)

var fuseCmd = &cobra.Command{
	Use:   "fuse",
	Short: "Combine two distance matrices via regression and blending",
	Long: `Combine two distance matrices via regression and blending

Input:
  Two PHYLIP distance matrices of the same genomes, in any order:
    1. the primary one, trusted at short distances, e.g., from FastANI or Mash.
    2. the secondary one, trusted at long distances, e.g., from rMLST identities.

Method:
  1. Regression. Genome pairs (the diagonal included) with primary distances in
     [--regression-min, --regression-max) are used to fit
       primary = slope * secondary + intercept
     with ordinary least squares (--through-origin for slope only).
     A fitted transform can be saved (--transform-out) and reused (--transform-in).
  2. Fusion. For each pair, with primary distance p and adjusted secondary
     distance s:
       p <= blend-min:            p
       p >= blend-max:            s
       blend-min < p < blend-max: (1 - w) * p + w * s,
                                  w = (p - blend-min) / (blend-max - blend-min)

  --two-threshold <t2,t3> follows the FastANI/rMLST recipe: a slope-only
  fit over (0, t2), and blending between t2 and t3.

Output:
  A PHYLIP distance matrix with genomes in lexicographic order.
  Optionally, a plot of the regression (--plot, .png/.pdf/.svg).

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)

		defer startLog(opt)()

		// ---------------------------------------------------------------

		if len(args) != 2 {
			checkError(fmt.Errorf("two distance matrices needed"))
		}
		filePrimary, fileSecondary := expandPath(args[0]), expandPath(args[1])

		fopt := fusion.Options{
			RegressionMin: getFlagFloat64(cmd, "regression-min"),
			RegressionMax: getFlagFloat64(cmd, "regression-max"),
			BlendMin:      getFlagFloat64(cmd, "blend-min"),
			BlendMax:      getFlagFloat64(cmd, "blend-max"),
			ThroughOrigin: getFlagBool(cmd, "through-origin"),
		}
		if cmd.Flags().Changed("two-threshold") {
			ts, err := cmd.Flags().GetFloat64Slice("two-threshold")
			checkError(err)
			if len(ts) != 2 {
				checkError(fmt.Errorf("two values needed for --two-threshold"))
			}
			fopt = fusion.TwoThresholdOptions(0, ts[0], ts[1])
		}
		checkError(fopt.Validate())

		transformIn := expandPath(getFlagString(cmd, "transform-in"))
		transformOut := expandPath(getFlagString(cmd, "transform-out"))
		plotFile := expandPath(getFlagString(cmd, "plot"))
		outFile := expandPath(getFlagString(cmd, "out-file"))

		if transformIn != "" && plotFile != "" {
			checkError(fmt.Errorf("flag --plot is not supported with --transform-in"))
		}

		// ---------------------------------------------------------------

		if opt.Verbose {
			log.Infof("reading primary matrix: %s", filePrimary)
		}
		primary, err := phylip.ReadFromFile(filePrimary)
		checkError(err)

		if opt.Verbose {
			log.Infof("reading secondary matrix: %s", fileSecondary)
		}
		secondary, err := phylip.ReadFromFile(fileSecondary)
		checkError(err)

		if opt.Verbose {
			log.Infof("  %d genomes", primary.Len())
		}

		var fused *phylip.Matrix
		if transformIn != "" {
			info, err := fusion.ReadTransform(transformIn)
			checkError(err)
			if opt.Verbose {
				log.Infof("using transform from %s: %s", transformIn, info.Transform)
			}

			fused, err = fusion.Fuse(primary, secondary, info.Transform, fopt)
			checkError(err)
		} else {
			if opt.Verbose {
				log.Infof("fitting in the regression window %s", fopt.Window())
			}

			res, err := fusion.Combine(primary, secondary, fopt)
			checkError(err)
			fused = res.Matrix

			if opt.Verbose {
				log.Infof("  %d genome pairs in the window", res.Points.Len())
				log.Infof("  primary = %s", res.Transform)
				log.Infof("  R^2: %f", res.RSquared)
			}

			if transformOut != "" {
				checkError(fusion.WriteTransform(transformOut, &fusion.TransformInfo{
					Primary:       filePrimary,
					Secondary:     fileSecondary,
					RegressionMin: fopt.RegressionMin,
					RegressionMax: fopt.RegressionMax,
					ThroughOrigin: fopt.ThroughOrigin,
					Points:        res.Points.Len(),
					RSquared:      res.RSquared,
					Transform:     res.Transform,
				}))
				if opt.Verbose {
					log.Infof("transform saved to %s", transformOut)
				}
			}

			if plotFile != "" {
				popt := fusion.DefaultPlotOptions
				popt.XLabel = fmt.Sprintf("distance (%s)", fileSecondary)
				popt.YLabel = fmt.Sprintf("distance (%s)", filePrimary)
				checkError(fusion.PlotRegression(plotFile, res.Points, res.Transform, &popt))
				if opt.Verbose {
					log.Infof("regression plot saved to %s", plotFile)
				}
			}
		}

		checkError(errors.Wrap(fused.Check(), "fused matrix"))
		checkError(fused.WriteToFile(outFile))

		if opt.Verbose && !isStdout(outFile) {
			log.Infof("fused distance matrix saved to %s", outFile)
		}
	},
}

func init() {
	RootCmd.AddCommand(fuseCmd)

	fuseCmd.Flags().Float64P("regression-min", "", fusion.DefaultOptions.RegressionMin,
		formatFlagUsage(`Lower end of the regression window (inclusive), in primary distances.`))

	fuseCmd.Flags().Float64P("regression-max", "", fusion.DefaultOptions.RegressionMax,
		formatFlagUsage(`Upper end of the regression window (exclusive), in primary distances.`))

	fuseCmd.Flags().Float64P("blend-min", "", fusion.DefaultOptions.BlendMin,
		formatFlagUsage(`Lower end of the blend zone, in primary distances.`))

	fuseCmd.Flags().Float64P("blend-max", "", fusion.DefaultOptions.BlendMax,
		formatFlagUsage(`Upper end of the blend zone, in primary distances.`))

	fuseCmd.Flags().BoolP("through-origin", "", false,
		formatFlagUsage(`Fit a slope only, with the intercept fixed at 0.`))

	fuseCmd.Flags().Float64SliceP("two-threshold", "", []float64{0.16, 0.2},
		formatFlagUsage(`Two thresholds t2,t3 for the FastANI/rMLST recipe, overriding other window flags when given.`))

	fuseCmd.Flags().StringP("transform-in", "", "",
		formatFlagUsage(`Use a transform saved by --transform-out, instead of fitting one.`))

	fuseCmd.Flags().StringP("transform-out", "", "",
		formatFlagUsage(`Save the fitted transform to a TOML file.`))

	fuseCmd.Flags().StringP("plot", "", "",
		formatFlagUsage(`Plot the regression to a file (.png, .pdf, .svg).`))

	fuseCmd.Flags().StringP("out-file", "o", "-",
		formatFlagUsage(`Out file, supports the ".gz" suffix ("-" for stdout).`))

	fuseCmd.SetUsageTemplate(usageTemplate("[flags] <primary matrix> <secondary matrix>"))
}
