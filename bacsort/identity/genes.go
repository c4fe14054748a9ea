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

// Package identity computes pairwise identities of genomes
// from alignments of their shared marker genes.
package identity

import (
	"io"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seqio/fastx"
)

// ErrDuplicateGene means a gene name appears more than once in a marker gene file.
var ErrDuplicateGene = errors.New("identity: duplicated gene name")

// Genome holds marker gene sequences of an assembly.
// It should not be modified after being loaded.
type Genome struct {
	Name  string
	Genes map[string][]byte
}

// LoadMarkerGenes reads marker genes from a FASTA file,
// using the first word of the header as the gene name.
func LoadMarkerGenes(name, file string) (*Genome, error) {
	fastxReader, err := fastx.NewReader(nil, file, "")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read marker genes: %s", file)
	}
	defer fastxReader.Close()

	g := &Genome{Name: name, Genes: make(map[string][]byte, 64)}

	var record *fastx.Record
	var ok bool
	var gene string
	for {
		record, err = fastxReader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.Wrapf(err, "failed to read marker genes: %s", file)
		}

		gene = string(record.ID)
		if _, ok = g.Genes[gene]; ok {
			return nil, errors.Wrapf(ErrDuplicateGene, "%s: %s", file, gene)
		}

		// the record is reused by the reader
		seq := make([]byte, len(record.Seq.Seq))
		copy(seq, record.Seq.Seq)
		g.Genes[gene] = seq
	}

	return g, nil
}

// MarkerFileExt is the suffix of a marker gene file next to its assembly.
const MarkerFileExt = ".rmlst"

// MarkerFile returns the marker gene file of an assembly.
func MarkerFile(assembly string) string {
	return assembly + MarkerFileExt
}

// LoadAssemblyMarkers loads marker genes of an assembly,
// named by the base name of the assembly file.
func LoadAssemblyMarkers(assembly string) (*Genome, error) {
	return LoadMarkerGenes(filepath.Base(assembly), MarkerFile(assembly))
}

// SharedGenes returns names of genes present in both genomes, sorted.
func SharedGenes(a, b *Genome) []string {
	small, large := a, b
	if len(b.Genes) < len(a.Genes) {
		small, large = b, a
	}
	genes := make([]string, 0, len(small.Genes))
	var ok bool
	for gene := range small.Genes {
		if _, ok = large.Genes[gene]; ok {
			genes = append(genes, gene)
		}
	}
	sort.Strings(genes)
	return genes
}
