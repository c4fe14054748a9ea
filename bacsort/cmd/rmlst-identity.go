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
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/shenwei356/bacsort/bacsort/identity"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/util/pathutil"
	"github.com/spf13/cobra"
)

var rmlstIdentityCmd = &cobra.Command{
	Use:   "rmlst-identity",
	Short: "Compute pairwise identities from rMLST marker genes",
	Long: `Compute pairwise identities from rMLST marker genes

Input:
  A directory of assemblies, each with a FASTA file of its rMLST genes
  named <assembly>.rmlst, where sequence IDs are gene names.

    GCF_000240185.1.fna.gz
    GCF_000240185.1.fna.gz.rmlst

Method:
  1. For each pair of genomes, each shared gene is aligned end to end
     with unit edit costs.
  2. The worst alignments, whose mean gene lengths add up to at most
     --discard percent of the total, are discarded, to guard against
     poor gene extraction.
  3. Identity = 100 * matches / alignment length, summed over kept genes.
     A genome with itself is 100, and genomes sharing no genes are 0.

Output (tab-delimited, sorted, with pairs i <= j):
  assembly_i, assembly_j, identity with 6 decimal places.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		seq.ValidateSeq = false

		defer startLog(opt)()

		// ---------------------------------------------------------------

		inDir := expandPath(getFlagString(cmd, "in-dir"))
		if inDir == "" {
			checkError(fmt.Errorf("flag -I/--in-dir needed"))
		}
		isDir, err := pathutil.IsDir(inDir)
		if err != nil {
			checkError(errors.Wrapf(err, "checking -I/--in-dir"))
		}
		if !isDir {
			checkError(fmt.Errorf("value of -I/--in-dir should be a directory: %s", inDir))
		}

		reFileStr := getFlagString(cmd, "file-regexp")
		if !strings.HasPrefix(reFileStr, "(?i)") {
			reFileStr = "(?i)" + reFileStr
		}
		reFile, err := regexp.Compile(reFileStr)
		checkError(errors.Wrapf(err, "failed to parse regular expression for matching file: %s", reFileStr))

		discard := getFlagNonNegativeFloat64(cmd, "discard")
		if discard >= 100 {
			checkError(fmt.Errorf("value of flag --discard should be in range of [0, 100)"))
		}
		outFile := expandPath(getFlagString(cmd, "out-file"))

		// ---------------------------------------------------------------
		// assemblies

		if opt.Verbose {
			log.Info("checking input files ...")
		}

		files, err := getFileListFromDir(inDir, reFile, opt.NumCPUs)
		if err != nil {
			checkError(errors.Wrapf(err, "walking dir: %s", inDir))
		}
		if len(files) == 0 {
			checkError(fmt.Errorf("no files matching regular expression: %s", reFileStr))
		}
		sort.Strings(files)

		for _, file := range files {
			ok, err := pathutil.Exists(identity.MarkerFile(file))
			checkError(err)
			if !ok {
				checkError(fmt.Errorf("rMLST gene file missing: %s", identity.MarkerFile(file)))
			}
		}

		if opt.Verbose {
			log.Infof("  %d assemblies found", len(files))
			log.Info("loading rMLST genes ...")
		}

		genomes := make([]*identity.Genome, len(files))
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

				g, err := identity.LoadAssemblyMarkers(file)
				checkError(err)
				genomes[i] = g
			}(i, file)
		}
		wg.Wait()

		seen := make(map[string]string, len(genomes))
		for i, g := range genomes {
			if f, ok := seen[g.Name]; ok {
				checkError(fmt.Errorf("duplicated assembly names: %s, %s", f, files[i]))
			}
			seen[g.Name] = files[i]
		}

		// ---------------------------------------------------------------
		// identities

		nPairs := identity.NumPairs(len(genomes))
		if opt.Verbose {
			log.Infof("computing identities of %s genome pairs with %d threads ...",
				humanize.Comma(int64(nPairs)), opt.NumCPUs)
		}

		iopt := identity.DefaultOptions
		iopt.Threads = opt.NumCPUs
		iopt.Discard = discard / 100

		var chDuration chan time.Duration
		var waitBar func()
		if opt.Verbose {
			chDuration, waitBar = progressBar(nPairs, "processed pairs: ", opt.NumCPUs)
			iopt.Progress = func(t time.Duration) {
				chDuration <- t
			}
		}

		results, err := identity.Compute(context.Background(), genomes, &iopt)
		checkError(err) // exit before waiting for an unfinished bar
		if opt.Verbose {
			waitBar()
		}

		// ---------------------------------------------------------------
		// output

		outfh, gw, w, err := outStream(outFile, strings.HasSuffix(outFile, ".gz"), opt.CompressionLevel)
		checkError(err)
		defer func() {
			outfh.Flush()
			if gw != nil {
				gw.Close()
			}
			w.Close()
		}()

		for _, r := range results {
			outfh.WriteString(r.Format(genomes))
			outfh.WriteByte('\n')
		}

		if opt.Verbose && !isStdout(outFile) {
			log.Infof("%s pairwise identities saved to %s", humanize.Comma(int64(len(results))), outFile)
		}
	},
}

func init() {
	RootCmd.AddCommand(rmlstIdentityCmd)

	rmlstIdentityCmd.Flags().StringP("in-dir", "I", "",
		formatFlagUsage(`Directory containing assemblies and rMLST gene files. Directory symlinks are followed.`))

	rmlstIdentityCmd.Flags().StringP("file-regexp", "r", `\.(fa|fas|fna|fasta)(\.gz)?$`,
		formatFlagUsage(`Regular expression for matching assembly files in -I/--in-dir, case ignored.`))

	rmlstIdentityCmd.Flags().Float64P("discard", "", 20,
		formatFlagUsage(`Percentage of the worst alignments (by gene length) to discard.`))

	rmlstIdentityCmd.Flags().StringP("out-file", "o", "-",
		formatFlagUsage(`Out file, supports the ".gz" suffix ("-" for stdout).`))

	rmlstIdentityCmd.SetUsageTemplate(usageTemplate("-I <assembly dir> [-o <out file>]"))
}
