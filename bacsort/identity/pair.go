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

package identity

import (
	"math"
	"sort"

	"github.com/shenwei356/bacsort/bacsort/align"
	"github.com/zeebo/wyhash"
)

// GeneAlignment is the global alignment summary of a shared gene.
type GeneAlignment struct {
	Identity   float64 // Matches / Length
	Matches    int
	Length     int // alignment length
	MeanLength int // rounded mean length of the two sequences
}

// Trim discards the worst alignments, whose mean gene lengths add up to
// at most a fraction of the total, to guard against poor gene extraction.
// Alignments are sorted by identity in ascending order in place,
// and the kept ones are returned.
func Trim(alns []GeneAlignment, discard float64) []GeneAlignment {
	sort.SliceStable(alns, func(i, j int) bool { return alns[i].Identity < alns[j].Identity })

	var total int
	for _, a := range alns {
		total += a.MeanLength
	}
	if total == 0 || discard <= 0 {
		return alns
	}

	var dropped, first int
	for first = 0; first < len(alns)-1; first++ {
		if float64(dropped+alns[first].MeanLength)/float64(total) > discard {
			break
		}
		dropped += alns[first].MeanLength
	}
	return alns[first:]
}

// meanLength rounds half to even.
func meanLength(a, b int) int {
	return int(math.RoundToEven(float64(a+b) / 2))
}

type seqPair struct {
	a, b uint64
}

// pairAligner aligns gene pairs and caches results of identical sequence pairs,
// which are common as many genomes share the same alleles.
// It is not safe for concurrent use.
type pairAligner struct {
	aligner *align.Aligner
	cache   map[seqPair]GeneAlignment
}

const hashSeed = 1

func newPairAligner(opt align.Options, cacheSize int) *pairAligner {
	return &pairAligner{
		aligner: align.NewAligner(opt),
		cache:   make(map[seqPair]GeneAlignment, cacheSize),
	}
}

func (pa *pairAligner) align(s1, s2 []byte) GeneAlignment {
	key := seqPair{wyhash.Hash(s1, hashSeed), wyhash.Hash(s2, hashSeed)}
	if a, ok := pa.cache[key]; ok {
		return a
	}

	r := pa.aligner.Global(s1, s2)
	a := GeneAlignment{
		Identity:   r.Identity(),
		Matches:    r.Matches,
		Length:     r.Len,
		MeanLength: meanLength(len(s1), len(s2)),
	}
	pa.cache[key] = a
	return a
}

// PairIdentity returns the percentage identity of two genomes
// over their shared marker genes, after discarding the worst alignments.
// A genome compared with itself is 100, and genomes sharing no genes are 0.
func PairIdentity(g1, g2 *Genome, discard float64, aligner *align.Aligner) float64 {
	return pairIdentity(g1, g2, discard, func(s1, s2 []byte) GeneAlignment {
		r := aligner.Global(s1, s2)
		return GeneAlignment{
			Identity:   r.Identity(),
			Matches:    r.Matches,
			Length:     r.Len,
			MeanLength: meanLength(len(s1), len(s2)),
		}
	})
}

func pairIdentity(g1, g2 *Genome, discard float64, alignFunc func(s1, s2 []byte) GeneAlignment) float64 {
	if g1.Name == g2.Name {
		return 100
	}

	genes := SharedGenes(g1, g2)
	if len(genes) == 0 {
		return 0
	}

	alns := make([]GeneAlignment, len(genes))
	for i, gene := range genes {
		alns[i] = alignFunc(g1.Genes[gene], g2.Genes[gene])
	}

	var matches, length int
	for _, a := range Trim(alns, discard) {
		matches += a.Matches
		length += a.Length
	}
	if length == 0 {
		return 0
	}
	return 100 * float64(matches) / float64(length)
}
