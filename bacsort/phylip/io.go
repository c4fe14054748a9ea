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

package phylip

import (
	"bufio"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shenwei356/bacsort/bacsort/util"
	"github.com/shenwei356/xopen"
)

// ReadFromFile reads a matrix from a plain or gzipped file.
// All errors are prefixed with the file name.
func ReadFromFile(file string) (*Matrix, error) {
	fh, err := xopen.Ropen(file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read distance matrix: %s", file)
	}
	defer fh.Close()

	m, err := Read(fh)
	if err != nil {
		return nil, errors.Wrap(err, file)
	}
	return m, nil
}

// Read reads a PHYLIP-style distance matrix:
//
//	N
//	id_1  d_11  d_12 ... d_1N
//	...
//	id_N  d_N1  d_N2 ... d_NN
//
// Values are separated by tabs or spaces, and the column order follows the row order.
// Distances of a pair and its reverse should be equal within util.Epsilon,
// and the mean is stored.
func Read(r io.Reader) (*Matrix, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<30)

	var line string
	var n, nLine int
	var err error
	var found bool

	// count line
	for scanner.Scan() {
		nLine++
		line = strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		n, err = strconv.Atoi(line)
		if err != nil || n < 0 {
			return nil, errors.Wrapf(ErrInvalidFormat, "line %d: invalid genome count: %s", nLine, line)
		}
		found = true
		break
	}
	if err = scanner.Err(); err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Wrap(ErrInvalidFormat, "empty file")
	}

	ids := make([]string, 0, n)
	rows := make([][]float64, 0, n)
	seen := make(map[string]interface{}, n)
	var items []string
	var row []float64
	var v float64
	var ok bool
	for scanner.Scan() {
		nLine++
		line = strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}

		if len(ids) == n {
			return nil, errors.Wrapf(ErrInvalidFormat, "line %d: more than %d rows", nLine, n)
		}

		items = strings.Fields(line)
		if len(items) != n+1 {
			return nil, errors.Wrapf(ErrInvalidFormat, "line %d: %d distances found, %d expected",
				nLine, len(items)-1, n)
		}

		if _, ok = seen[items[0]]; ok {
			return nil, errors.Wrapf(ErrInvalidFormat, "line %d: duplicated genome ID: %s", nLine, items[0])
		}
		seen[items[0]] = struct{}{}

		row = make([]float64, n)
		for j, s := range items[1:] {
			v, err = strconv.ParseFloat(s, 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errors.Wrapf(ErrInvalidFormat, "line %d: invalid distance: %s", nLine, s)
			}
			row[j] = v
		}

		ids = append(ids, items[0])
		rows = append(rows, row)
	}
	if err = scanner.Err(); err != nil {
		return nil, err
	}
	if len(ids) != n {
		return nil, errors.Wrapf(ErrInvalidFormat, "%d rows found, %d expected", len(ids), n)
	}

	m := New(ids)
	var a, b float64
	for i := 0; i < n; i++ {
		if !util.Equal(rows[i][i], 0) {
			return nil, errors.Wrapf(ErrNonZeroDiagonal, "%s: %f", ids[i], rows[i][i])
		}
		for j := i + 1; j < n; j++ {
			a, b = rows[i][j], rows[j][i]
			if !util.Equal(a, b) {
				return nil, errors.Wrapf(ErrAsymmetric, "%s vs %s: %f, %s vs %s: %f",
					ids[i], ids[j], a, ids[j], ids[i], b)
			}
			m.SetAt(i, j, (a+b)/2)
		}
	}

	return m, nil
}

// Write writes the matrix with 6 decimal places, in the current genome order.
func (m *Matrix) Write(w io.Writer) error {
	bw := bufio.NewWriterSize(w, 1<<16)

	bw.WriteString(strconv.Itoa(len(m.ids)))
	bw.WriteByte('\n')

	buf := make([]byte, 0, 32)
	for i, id := range m.ids {
		bw.WriteString(id)
		for j := range m.ids {
			bw.WriteByte('\t')
			buf = strconv.AppendFloat(buf[:0], m.data.At(i, j), 'f', 6, 64)
			bw.Write(buf)
		}
		bw.WriteByte('\n')
	}

	return bw.Flush()
}

// WriteToFile writes the matrix to a file, optional with file extension of .gz, .xz, .zst, .bz2.
// The content is written to a temporary file first, which is renamed after success,
// so a failed run never leaves a partial matrix.
func (m *Matrix) WriteToFile(file string) error {
	if file == "-" {
		return m.Write(os.Stdout)
	}

	tmp := filepath.Join(filepath.Dir(file), ".tmp."+filepath.Base(file)) // keep the extension for xopen

	outfh, err := xopen.Wopen(tmp)
	if err != nil {
		return errors.Wrapf(err, "failed to write distance matrix: %s", file)
	}

	if err = m.Write(outfh); err != nil {
		outfh.Close()
		os.Remove(tmp)
		return errors.Wrapf(err, "failed to write distance matrix: %s", file)
	}
	if err = outfh.Close(); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "failed to write distance matrix: %s", file)
	}

	return os.Rename(tmp, file)
}
