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

// Package distance parses pairwise distance or identity records
// emitted by external tools like Mash, FastANI, or rmlst-identity.
package distance

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shenwei356/xopen"
)

// Mode tells how to interpret the third column of a record.
type Mode uint8

const (
	// ModeDistance means the value is a distance, e.g., Mash distance.
	ModeDistance Mode = iota
	// ModeIdentity means the value is a percentage identity, e.g., FastANI output.
	ModeIdentity
)

func (m Mode) String() string {
	switch m {
	case ModeDistance:
		return "distance"
	case ModeIdentity:
		return "identity"
	}
	return "unknown"
}

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "distance", "dist", "d":
		return ModeDistance, nil
	case "identity", "ident", "ani", "i":
		return ModeIdentity, nil
	}
	return ModeDistance, fmt.Errorf("invalid value type: %s, available: distance, identity", s)
}

// ErrInvalidRecord means a line could not be parsed.
var ErrInvalidRecord = errors.New("distance: invalid record")

// Record is a distance between two genomes.
type Record struct {
	A, B     string
	Distance float64
}

func (r Record) String() string {
	return fmt.Sprintf("%s\t%s\t%.6f", r.A, r.B, r.Distance)
}

// IdentityToDistance converts a percentage identity to a distance.
func IdentityToDistance(identity float64) float64 {
	return 1.0 - identity/100.0
}

// ParseLine parses a whitespace-delimited line with at least 3 columns:
// genome A, genome B, and a distance or percentage identity.
// Extra columns are ignored.
// In identity mode, self pairs always have a distance of 0.
func ParseLine(line string, mode Mode) (Record, error) {
	var r Record

	items := strings.Fields(line)
	if len(items) < 3 {
		return r, errors.Wrapf(ErrInvalidRecord, "at least 3 columns needed, %d given", len(items))
	}

	v, err := strconv.ParseFloat(items[2], 64)
	if err != nil {
		return r, errors.Wrapf(ErrInvalidRecord, "invalid value: %s", items[2])
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return r, errors.Wrapf(ErrInvalidRecord, "invalid value: %s", items[2])
	}

	r.A, r.B = items[0], items[1]

	switch mode {
	case ModeIdentity:
		if v > 100 {
			return r, errors.Wrapf(ErrInvalidRecord, "percentage identity should be in range of [0, 100]: %s", items[2])
		}
		if r.A == r.B {
			r.Distance = 0
		} else {
			r.Distance = IdentityToDistance(v)
		}
	default:
		r.Distance = v
	}

	return r, nil
}

// Reader reads records from a plain or gzipped file.
type Reader struct {
	file string
	mode Mode

	fh      *xopen.Reader
	scanner *bufio.Scanner
	line    int
	err     error
	record  Record
}

// NewReader creates a Reader. "-" stands for stdin.
func NewReader(file string, mode Mode) (*Reader, error) {
	fh, err := xopen.Ropen(file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read distance file: %s", file)
	}

	scanner := bufio.NewScanner(fh)
	scanner.Buffer(make([]byte, 0, 64<<10), 16<<20)

	return &Reader{
		file:    file,
		mode:    mode,
		fh:      fh,
		scanner: scanner,
	}, nil
}

// Next reads the next record. It returns false at the end of the file
// or after an error, which can be checked with Err().
func (r *Reader) Next() bool {
	if r.err != nil {
		return false
	}

	var line string
	for r.scanner.Scan() {
		r.line++
		line = strings.TrimRight(r.scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}

		r.record, r.err = ParseLine(line, r.mode)
		if r.err != nil {
			r.err = errors.Wrapf(r.err, "%s:%d", r.file, r.line)
			return false
		}
		return true
	}
	if err := r.scanner.Err(); err != nil {
		r.err = errors.Wrapf(err, "%s:%d", r.file, r.line)
	}
	return false
}

// Record returns the current record.
func (r *Reader) Record() Record { return r.record }

// Err returns the first error during reading.
func (r *Reader) Err() error { return r.err }

// File returns the file name.
func (r *Reader) File() string { return r.file }

// Close closes the file.
func (r *Reader) Close() error {
	return r.fh.Close()
}

// ReadAll reads all records from a file.
func ReadAll(file string, mode Mode) ([]Record, error) {
	rdr, err := NewReader(file, mode)
	if err != nil {
		return nil, err
	}
	defer rdr.Close()

	records := make([]Record, 0, 1024)
	for rdr.Next() {
		records = append(records, rdr.Record())
	}
	if err = rdr.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// Parse reads all records from a reader, name is only used in error messages.
func Parse(rd io.Reader, name string, mode Mode) ([]Record, error) {
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, 64<<10), 16<<20)

	records := make([]Record, 0, 1024)
	var n int
	var line string
	for scanner.Scan() {
		n++
		line = strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		r, err := ParseLine(line, mode)
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d", name, n)
		}
		records = append(records, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, name)
	}
	return records, nil
}
