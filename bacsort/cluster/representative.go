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

package cluster

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/shenwei356/bacsort/bacsort/util"
	"github.com/shenwei356/bio/seqio/fastx"
)

// ContigLengths returns lengths of all sequences in a FASTA file.
func ContigLengths(file string) ([]int, error) {
	fastxReader, err := fastx.NewReader(nil, file, "")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read assembly: %s", file)
	}
	defer fastxReader.Close()

	lengths := make([]int, 0, 128)
	var record *fastx.Record
	for {
		record, err = fastxReader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.Wrapf(err, "failed to read assembly: %s", file)
		}
		lengths = append(lengths, len(record.Seq.Seq))
	}
	return lengths, nil
}

// AssemblyN50 returns the N50 of an assembly file.
func AssemblyN50(file string) (int, error) {
	lengths, err := ContigLengths(file)
	if err != nil {
		return 0, err
	}
	return util.N50(lengths), nil
}

// N50Func returns the N50 of a genome.
type N50Func func(id string) (int, error)

// N50FromDir returns a N50Func reading assemblies from a directory,
// where genome IDs are file names relative to the directory.
func N50FromDir(dir string) N50Func {
	return func(id string) (int, error) {
		return AssemblyN50(filepath.Join(dir, id))
	}
}

// SelectRepresentative chooses the genome with the largest N50.
// Ties are broken by choosing the lexicographically largest ID.
// A single-member cluster does not need to call n50.
func SelectRepresentative(members []string, n50 N50Func) (string, error) {
	switch len(members) {
	case 0:
		return "", errors.New("cluster: empty cluster")
	case 1:
		return members[0], nil
	}

	var best string
	bestN50 := -1
	for _, id := range members {
		n, err := n50(id)
		if err != nil {
			return "", err
		}
		if n > bestN50 || (n == bestN50 && id > best) {
			best, bestN50 = id, n
		}
	}
	return best, nil
}

// SelectRepresentatives fills the representatives of all clusters.
func SelectRepresentatives(clusters []*Cluster, n50 N50Func) error {
	var err error
	for _, c := range clusters {
		c.Representative, err = SelectRepresentative(c.Members, n50)
		if err != nil {
			return errors.Wrapf(err, "cluster %d", c.Num)
		}
	}
	return nil
}

// AccessionWriter appends cluster records to a file,
// which accumulates clusters of multiple genera or runs.
type AccessionWriter struct {
	fh *os.File
	w  *bufio.Writer
}

// NewAccessionWriter opens a file in append mode.
func NewAccessionWriter(file string) (*AccessionWriter, error) {
	fh, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open cluster accession file: %s", file)
	}
	return &AccessionWriter{fh: fh, w: bufio.NewWriter(fh)}, nil
}

// Write writes a record.
func (w *AccessionWriter) Write(r Record) error {
	w.w.WriteString(r.String())
	return w.w.WriteByte('\n')
}

// Close flushes and closes the file.
func (w *AccessionWriter) Close() error {
	if err := w.w.Flush(); err != nil {
		w.fh.Close()
		return err
	}
	return w.fh.Close()
}

// CopyFile copies a representative assembly to a new path.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err = os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
