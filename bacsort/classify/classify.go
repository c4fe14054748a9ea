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

// Package classify assigns a species to a sample from its Mash distances
// to reference assemblies organised as Genus/species/assembly files.
package classify

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shenwei356/bacsort/bacsort/distance"
)

// ErrInvalidReference means a reference path is not like Genus/species/file.
var ErrInvalidReference = errors.New("classify: invalid reference path")

// Unclassified is the species name when no reference matches.
const Unclassified = "none"

// Options contains classification options.
type Options struct {
	// distances at or below this count as a match, in the range of [0, 1]
	Threshold float64

	// if the best distances of two genera differ by less than this,
	// the sample is marked as contaminated. 0 for no checking.
	ContaminationThreshold float64
}

// DefaultOptions uses a threshold of 5%.
var DefaultOptions = Options{
	Threshold: 0.05,
}

// ParseReference extracts genus and species from a reference path,
// only the first two path components are used.
func ParseReference(ref string) (genus, species string, err error) {
	items := strings.Split(filepath.ToSlash(ref), "/")
	if len(items) < 2 || items[0] == "" || items[1] == "" {
		return "", "", errors.Wrap(ErrInvalidReference, ref)
	}
	return items[0], items[1], nil
}

// Call is the classification result of a sample.
type Call struct {
	Query          string // the query column of the first record
	Genus, Species string
	Distance       float64
	Found          bool
	Contaminated   bool
}

// Binomial returns "Genus species", or "none".
func (c Call) Binomial() string {
	if !c.Found {
		return Unclassified
	}
	return c.Genus + " " + c.Species
}

// Identity returns the percentage identity with two decimal places,
// or an empty string if nothing matches.
func (c Call) Identity() string {
	if !c.Found {
		return ""
	}
	return strconv.FormatFloat(100*(1-c.Distance), 'f', 2, 64) + "%"
}

// Format returns a tab-delimited line without a trailing newline.
func (c Call) Format(sample string) string {
	species := c.Binomial()
	if c.Contaminated {
		species += " (contaminated)"
	}
	return sample + "\t" + species + "\t" + c.Identity()
}

// Classifier keeps the best match among distance records.
type Classifier struct {
	opt Options

	query        string
	best         Call
	bestPerGenus map[string]float64
}

// NewClassifier creates a Classifier.
func NewClassifier(opt Options) *Classifier {
	return &Classifier{
		opt:          opt,
		best:         Call{Distance: 1},
		bestPerGenus: make(map[string]float64, 64),
	}
}

// Add adds a record whose first column is the reference path.
// Ties are resolved in favor of the earlier record.
// Mash reports the reference first and the query second.
func (c *Classifier) Add(r distance.Record) error {
	genus, species, err := ParseReference(r.A)
	if err != nil {
		return err
	}
	if c.query == "" {
		c.query = r.B
	}

	if r.Distance <= c.opt.Threshold && r.Distance < c.best.Distance {
		c.best = Call{Genus: genus, Species: species, Distance: r.Distance, Found: true}
	}

	if d, ok := c.bestPerGenus[genus]; !ok || r.Distance < d {
		c.bestPerGenus[genus] = r.Distance
	}
	return nil
}

// Call returns the classification result.
func (c *Classifier) Call() Call {
	call := c.best
	call.Query = c.query
	if !call.Found || c.opt.ContaminationThreshold <= 0 || len(c.bestPerGenus) < 2 {
		return call
	}

	// two smallest distances of different genera
	d1, d2 := 2.0, 2.0
	for _, d := range c.bestPerGenus {
		if d < d1 {
			d1, d2 = d, d1
		} else if d < d2 {
			d2 = d
		}
	}
	call.Contaminated = d2-d1 < c.opt.ContaminationThreshold
	return call
}

// Classify classifies a sample from a Mash distance file.
func Classify(file string, opt Options) (Call, error) {
	rdr, err := distance.NewReader(file, distance.ModeDistance)
	if err != nil {
		return Call{}, err
	}
	defer rdr.Close()

	c := NewClassifier(opt)
	for rdr.Next() {
		if err = c.Add(rdr.Record()); err != nil {
			return Call{}, errors.Wrap(err, file)
		}
	}
	if err = rdr.Err(); err != nil {
		return Call{}, err
	}
	return c.Call(), nil
}

var seqSuffixes = []string{".gz", ".fna", ".fasta", ".fastq", ".fq"}

// SampleName derives a sample name from an input file name,
// stripping sequence file extensions and, for reads, the suffix of the first mate.
func SampleName(file string, reads bool) string {
	name := filepath.Base(file)
	for _, s := range seqSuffixes {
		name = strings.TrimSuffix(name, s)
	}
	if reads {
		if strings.HasSuffix(name, "_1") {
			name = name[:len(name)-2]
		}
		if strings.HasSuffix(name, "_R1") {
			name = name[:len(name)-3]
		}
	}
	return name
}

// IsReads tells whether a file looks like a FASTQ file of reads.
func IsReads(file string) bool {
	name := strings.TrimSuffix(filepath.Base(file), ".gz")
	return strings.HasSuffix(name, ".fastq") || strings.HasSuffix(name, ".fq")
}
