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

	"github.com/shenwei356/bacsort/bacsort/distance"
	"github.com/spf13/cobra"
)

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Convert pairwise distances/identities into a PHYLIP distance matrix",
	Long: `Convert pairwise distances/identities into a PHYLIP distance matrix

Input:
  Tab- or space-delimited pairwise records with at least three columns:
  genome A, genome B, and a distance or a percentage identity (-m/--mode).
  Extra columns are ignored, so outputs of "mash dist" and FastANI
  can be used directly.

Method:
  1. Identities are converted into distances: 1 - identity/100.
  2. If both (A, B) and (B, A) are given, their mean is used,
     and a difference larger than --max-asymmetry is reported as an error.
  3. Distances larger than --max-dist are capped.
  4. Missing pairs are reported as errors, unless --fill-missing is given,
     in which case --max-dist is used.

Output:
  A PHYLIP distance matrix with genomes in lexicographic order.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)

		defer startLog(opt)()

		// ---------------------------------------------------------------

		mode, err := distance.ParseMode(getFlagString(cmd, "mode"))
		checkError(err)
		maxDist := getFlagPositiveFloat64(cmd, "max-dist")
		maxAsym := getFlagNonNegativeFloat64(cmd, "max-asymmetry")
		fillMissing := getFlagBool(cmd, "fill-missing")
		outFile := expandPath(getFlagString(cmd, "out-file"))

		files := getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)
		if opt.Verbose {
			if len(files) == 1 && isStdin(files[0]) {
				log.Info("no files given, reading from stdin")
			} else {
				log.Infof("%d input file(s) given", len(files))
			}
		}

		// ---------------------------------------------------------------

		pairs := distance.NewPairTable()
		pairs.MaxAsymmetry = maxAsym

		for _, file := range files {
			rdr, err := distance.NewReader(file, mode)
			checkError(err)
			checkError(pairs.AddReader(rdr))
			checkError(rdr.Close())
		}

		ids := pairs.IDs()
		if len(ids) == 0 {
			checkError(fmt.Errorf("no pairwise records found"))
		}
		if opt.Verbose {
			log.Infof("pairwise distances of %d genomes loaded", len(ids))
		}

		if fillMissing && opt.Verbose {
			if missing := pairs.Missing(0); len(missing) > 0 {
				log.Warningf("%d missing pairs are filled with the max distance %f", len(missing), maxDist)
			}
		}

		m, err := pairs.ToMatrix(maxDist, fillMissing)
		checkError(err)

		checkError(m.WriteToFile(outFile))

		if opt.Verbose && !isStdout(outFile) {
			log.Infof("distance matrix of %d genomes saved to %s", m.Len(), outFile)
		}
	},
}

func init() {
	RootCmd.AddCommand(matrixCmd)

	matrixCmd.Flags().StringP("mode", "m", "distance",
		formatFlagUsage(`Type of the third column: distance, or identity (percentage, e.g., FastANI).`))

	matrixCmd.Flags().Float64P("max-dist", "d", 1.0,
		formatFlagUsage(`Maximum distance, larger ones are capped.`))

	matrixCmd.Flags().Float64P("max-asymmetry", "", distance.DefaultMaxAsymmetry,
		formatFlagUsage(`Maximum difference between distances of (A, B) and (B, A).`))

	matrixCmd.Flags().BoolP("fill-missing", "", false,
		formatFlagUsage(`Fill missing pairs with the max distance, instead of reporting errors.`))

	matrixCmd.Flags().StringP("infile-list", "X", "",
		formatFlagUsage(`File of input file list (one file per line). If given, they are appended to files from CLI arguments.`))

	matrixCmd.Flags().StringP("out-file", "o", "-",
		formatFlagUsage(`Out file, supports the ".gz" suffix ("-" for stdout).`))

	matrixCmd.SetUsageTemplate(usageTemplate("[-m <mode>] [-o <out file>] [<pairwise files> ...]"))
}
