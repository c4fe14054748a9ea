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
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/shenwei356/bacsort/bacsort/cluster"
	"github.com/shenwei356/bacsort/bacsort/distance"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/util/pathutil"
	"github.com/spf13/cobra"
)

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Cluster near-identical genomes of each genus",
	Long: `Cluster near-identical genomes of each genus

Input:
  The assembly directory should contain one subdirectory per genus,
  with assembly files and a file of pairwise distances (-f/--dist-file),
  e.g., created by "mash dist":

    assemblies/
    └── Klebsiella
        ├── GCF_000240185.1.fna.gz
        ├── GCF_000742135.1.fna.gz
        └── mash_distances

  Every genome pair should be present, self pairs are optional.
  A genus without the distance file is skipped with a warning.

Method:
  1. Genomes with a distance smaller than -t/--threshold are connected,
     and each connected component is a cluster.
  2. Clusters are numbered in the order of their lexicographically
     smallest genomes, and named as <genus>_<zero-padded number>.
  3. The genome with the largest N50 is chosen as the representative.

Output:
  1. Cluster records are appended to the accession file (-a/--accessions):
     cluster name, comma-separated members, representative.
  2. Clusters are also printed to stdout, with representatives marked by "*".
  3. Representatives are copied to <out-dir>/<cluster name>.fna.gz,
     unless --no-copy is given. Use --force to start from an empty <out-dir>.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		seq.ValidateSeq = false

		defer startLog(opt)()

		// ---------------------------------------------------------------

		inDir := expandPath(getFlagString(cmd, "in-dir"))
		distFile := getFlagString(cmd, "dist-file")
		threshold := getFlagPositiveFloat64(cmd, "threshold")
		accFile := expandPath(getFlagString(cmd, "accessions"))
		outDir := expandPath(getFlagString(cmd, "out-dir"))
		noCopy := getFlagBool(cmd, "no-copy")
		force := getFlagBool(cmd, "force")

		mode, err := distance.ParseMode(getFlagString(cmd, "mode"))
		checkError(err)

		genera := make([]string, 0, len(args))
		for _, arg := range args {
			genera = append(genera, strings.Fields(arg)...)
		}
		if len(genera) == 0 {
			checkError(fmt.Errorf("at least one genus needed"))
		}

		isDir, err := pathutil.IsDir(inDir)
		if err != nil {
			checkError(errors.Wrapf(err, "checking -I/--in-dir"))
		}
		if !isDir {
			checkError(fmt.Errorf("value of -I/--in-dir should be a directory: %s", inDir))
		}

		if !noCopy {
			if force {
				makeOutDir(outDir, force, "-O/--out-dir", opt.Verbose)
			} else {
				checkError(os.MkdirAll(outDir, 0755))
			}
		}

		accWriter, err := cluster.NewAccessionWriter(accFile)
		checkError(err)
		defer func() {
			checkError(accWriter.Close())
		}()

		outfh, gw, w, err := outStream("-", false, opt.CompressionLevel)
		checkError(err)
		defer func() {
			outfh.Flush()
			if gw != nil {
				gw.Close()
			}
			w.Close()
		}()

		var nGenera, nClusters int
		for _, genus := range genera {
			if opt.Verbose {
				log.Infof("clustering %s ...", genus)
			}

			file := filepath.Join(inDir, genus, distFile)
			ok, err := pathutil.Exists(file)
			checkError(errors.Wrap(err, file))
			if !ok {
				log.Warningf("  pairwise distance file not found, skipping genus: %s", file)
				continue
			}

			rdr, err := distance.NewReader(file, mode)
			checkError(err)
			g, err := cluster.BuildGraph(rdr, threshold)
			checkError(err)
			checkError(rdr.Close())

			checkError(errors.Wrap(g.Validate(), file))

			clusters := g.Clusters()
			if opt.Verbose {
				log.Infof("  %d genomes, %d edges, %d clusters", g.NumGenomes(), g.NumEdges(), len(clusters))
			}

			checkError(cluster.SelectRepresentatives(clusters, cluster.N50FromDir(filepath.Join(inDir, genus))))

			width := cluster.NumWidth(len(clusters))
			for _, c := range clusters {
				r := cluster.NewRecord(c, genus, width)
				checkError(accWriter.Write(r))

				outfh.WriteString(r.Display())
				outfh.WriteByte('\n')

				if !noCopy {
					checkError(cluster.CopyFile(filepath.Join(inDir, genus, c.Representative),
						filepath.Join(outDir, r.Name+".fna.gz")))
				}
			}
			outfh.WriteByte('\n')
			outfh.Flush()

			nGenera++
			nClusters += len(clusters)
		}

		if opt.Verbose {
			log.Infof("%d clusters of %d genera appended to %s", nClusters, nGenera, accFile)
			if !noCopy {
				log.Infof("representatives copied to %s", outDir)
			}
		}
	},
}

func init() {
	RootCmd.AddCommand(clusterCmd)

	clusterCmd.Flags().StringP("in-dir", "I", "assemblies",
		formatFlagUsage(`Assembly directory, with one subdirectory per genus.`))

	clusterCmd.Flags().StringP("dist-file", "f", "mash_distances",
		formatFlagUsage(`Name of the pairwise distance file in each genus directory, supports the ".gz" suffix.`))

	clusterCmd.Flags().StringP("mode", "m", "distance",
		formatFlagUsage(`Type of the third column of the distance file: distance, or identity (percentage, e.g., FastANI).`))

	clusterCmd.Flags().Float64P("threshold", "t", 0.005,
		formatFlagUsage(`Genomes with a distance smaller than this are connected.`))

	clusterCmd.Flags().StringP("accessions", "a", "cluster_accessions",
		formatFlagUsage(`Cluster accession file, to which records are appended.`))

	clusterCmd.Flags().StringP("out-dir", "O", "clusters",
		formatFlagUsage(`Directory for copies of representative assemblies.`))

	clusterCmd.Flags().BoolP("no-copy", "", false,
		formatFlagUsage(`Do not copy representative assemblies.`))

	clusterCmd.Flags().BoolP("force", "", false,
		formatFlagUsage(`Remove the old -O/--out-dir before copying. By default, copies of earlier runs are kept.`))

	clusterCmd.SetUsageTemplate(usageTemplate("[-I <assembly dir>] [-t <threshold>] <genus> [<genus> ...]"))
}
