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
	"strconv"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/shenwei356/bacsort/bacsort/cluster"
	"github.com/shenwei356/bacsort/bacsort/util"
	"github.com/shenwei356/bio/seq"
	"github.com/spf13/cobra"
)

var n50Cmd = &cobra.Command{
	Use:   "n50",
	Short: "Compute contig N50 of assemblies",
	Long: `Compute contig N50 of assemblies

N50 is the length of the contig at which the cumulative length, from the
longest contig downward, first reaches half of the assembly size.
It is the criterion for choosing cluster representatives in "cluster".

Output (tab-delimited):
  file, number of contigs, total bases, N50.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		seq.ValidateSeq = false

		defer startLog(opt)()

		// ---------------------------------------------------------------

		minLen := getFlagNonNegativeInt(cmd, "min-len")
		noHeader := getFlagBool(cmd, "no-header-row")
		outFile := expandPath(getFlagString(cmd, "out-file"))

		files := getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)

		type stats struct {
			contigs, bases, n50 int
		}
		results := make([]stats, len(files))

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

				lengths, err := cluster.ContigLengths(file)
				checkError(err)

				kept := lengths[:0]
				var bases int
				for _, l := range lengths {
					if l < minLen {
						continue
					}
					kept = append(kept, l)
					bases += l
				}

				results[i] = stats{contigs: len(kept), bases: bases, n50: util.N50(kept)}
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

		if !noHeader {
			outfh.WriteString("file\tcontigs\tbases\tN50\n")
		}
		var total int
		for i, file := range files {
			r := results[i]
			total += r.bases
			outfh.WriteString(file + "\t" + strconv.Itoa(r.contigs) + "\t" +
				strconv.Itoa(r.bases) + "\t" + strconv.Itoa(r.n50) + "\n")
		}

		if opt.Verbose {
			log.Infof("%d assemblies with %s bases in total", len(files), humanize.Comma(int64(total)))
		}
	},
}

func init() {
	RootCmd.AddCommand(n50Cmd)

	n50Cmd.Flags().IntP("min-len", "m", 0,
		formatFlagUsage(`Contigs shorter than this are ignored.`))

	n50Cmd.Flags().BoolP("no-header-row", "H", false,
		formatFlagUsage(`Do not print header row.`))

	n50Cmd.Flags().StringP("infile-list", "X", "",
		formatFlagUsage(`File of input file list (one file per line). If given, they are appended to files from CLI arguments.`))

	n50Cmd.Flags().StringP("out-file", "o", "-",
		formatFlagUsage(`Out file, supports the ".gz" suffix ("-" for stdout).`))

	n50Cmd.SetUsageTemplate(usageTemplate("<assembly> ... [-o <out file>]"))
}
