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
	"strings"
	"sync"

	"github.com/shenwei356/bacsort/bacsort/classify"
	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify samples from Mash distances to sorted references",
	Long: `Classify samples from Mash distances to sorted references

Input:
  One "mash dist" output file per sample, where the first column is the
  reference path relative to the reference directory, organised as
  <genus>/<species>/<assembly>, and the second column is the sample.

    Klebsiella/pneumoniae/GCF_000240185.1.fna.gz  sample_1.fastq.gz  0.0123  0  ...

Method:
  1. The reference with the smallest distance at or below -t/--threshold
     is the best match, and ties are resolved in favor of the earlier line.
  2. With --contamination-threshold, if the best distances of the two
     closest genera differ by less than the value, the call is flagged.

Output (tab-delimited):
  sample name, "Genus species" (or "none"), identity percentage.

  Sample names are derived from the query file names by stripping sequence
  extensions, and the "_1" or "_R1" suffix for reads.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)

		defer startLog(opt)()

		// ---------------------------------------------------------------

		threshold := getFlagNonNegativeFloat64(cmd, "threshold")
		if threshold > 100 {
			checkError(fmt.Errorf("value of flag -t/--threshold should be in range of [0, 100]"))
		}
		contamination := getFlagNonNegativeFloat64(cmd, "contamination-threshold")
		useFileName := getFlagBool(cmd, "file-name")
		outFile := expandPath(getFlagString(cmd, "out-file"))

		files := getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)

		copt := classify.Options{
			Threshold:              threshold / 100,
			ContaminationThreshold: contamination / 100,
		}

		if opt.Verbose {
			log.Infof("classifying %d samples ...", len(files))
		}

		// ---------------------------------------------------------------

		calls := make([]classify.Call, len(files))
		var wg sync.WaitGroup
		tokens := make(chan int, opt.NumCPUs)
		for i, file := range files {
			wg.Add(1)
			tokens <- 1
			go func(i int, file string) {
				defer func() {
					wg.Done()
					<-tokens
				}()

				call, err := classify.Classify(file, copt)
				checkError(err)
				calls[i] = call
			}(i, file)
		}
		wg.Wait()

		// ---------------------------------------------------------------

		outfh, gw, w, err := outStream(outFile, strings.HasSuffix(outFile, ".gz"), opt.CompressionLevel)
		checkError(err)
		defer func() {
			outfh.Flush()
			if gw != nil {
				gw.Close()
			}
			w.Close()
		}()

		var sample string
		var nFound, nContaminated int
		for i, call := range calls {
			if useFileName || call.Query == "" {
				sample = classify.SampleName(files[i], false)
			} else {
				sample = classify.SampleName(call.Query, classify.IsReads(call.Query))
			}

			outfh.WriteString(call.Format(sample))
			outfh.WriteByte('\n')

			if call.Found {
				nFound++
			}
			if call.Contaminated {
				nContaminated++
			}
		}

		if opt.Verbose {
			log.Infof("%d/%d samples classified", nFound, len(calls))
			if contamination > 0 {
				log.Infof("%d samples flagged as contaminated", nContaminated)
			}
		}
	},
}

func init() {
	RootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().Float64P("threshold", "t", 5,
		formatFlagUsage(`Maximum Mash distance (percentage) for a match.`))

	classifyCmd.Flags().Float64P("contamination-threshold", "c", 0,
		formatFlagUsage(`Flag samples whose two closest genera differ by less than this distance (percentage). 0 for no checking.`))

	classifyCmd.Flags().BoolP("file-name", "n", false,
		formatFlagUsage(`Derive sample names from distance file names instead of the query column.`))

	classifyCmd.Flags().StringP("infile-list", "X", "",
		formatFlagUsage(`File of input file list (one file per line). If given, they are appended to files from CLI arguments.`))

	classifyCmd.Flags().StringP("out-file", "o", "-",
		formatFlagUsage(`Out file, supports the ".gz" suffix ("-" for stdout).`))

	classifyCmd.SetUsageTemplate(usageTemplate("[-t <threshold>] <mash dist file> ... [-o <out file>]"))
}
