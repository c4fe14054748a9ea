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

package classify

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/shenwei356/bacsort/bacsort/distance"
)

const mashOutput = `Klebsiella/pneumoniae/GCF_000240185.fna.gz	sample.fna	0.0123	0	812/1000
Klebsiella/variicola/GCF_000019565.fna.gz	sample.fna	0.0234	0	611/1000
Escherichia/coli/GCF_000005845.fna.gz	sample.fna	0.1921	1e-100	5/1000
Klebsiella/quasipneumoniae/GCF_000751755.fna.gz	sample.fna	0.0123	0	812/1000
`

func classifyString(t *testing.T, data string, opt Options) Call {
	records, err := distance.Parse(strings.NewReader(data), "mash", distance.ModeDistance)
	if err != nil {
		t.Fatal(err)
	}
	c := NewClassifier(opt)
	for _, r := range records {
		if err = c.Add(r); err != nil {
			t.Fatal(err)
		}
	}
	return c.Call()
}

func TestClassify(t *testing.T) {
	call := classifyString(t, mashOutput, DefaultOptions)
	if !call.Found || call.Binomial() != "Klebsiella pneumoniae" {
		t.Errorf("expected: Klebsiella pneumoniae, results: %s", call.Binomial())
	}
	if line := call.Format("sample"); line != "sample\tKlebsiella pneumoniae\t98.77%" {
		t.Errorf("unexpected line: %s", line)
	}

	// nothing under 1%
	opt := DefaultOptions
	opt.Threshold = 0.01
	call = classifyString(t, mashOutput, opt)
	if call.Found {
		t.Errorf("expected no match, results: %s", call.Binomial())
	}
	if line := call.Format("sample"); line != "sample\tnone\t" {
		t.Errorf("unexpected line: %q", line)
	}

	// the threshold is inclusive
	opt.Threshold = 0.0123
	if call = classifyString(t, mashOutput, opt); !call.Found {
		t.Errorf("expected a match at the threshold")
	}
}

func TestContamination(t *testing.T) {
	opt := DefaultOptions
	opt.ContaminationThreshold = 0.02
	if call := classifyString(t, mashOutput, opt); call.Contaminated {
		t.Errorf("unexpected contamination")
	}

	data := mashOutput + "Escherichia/coli/GCF_000008865.fna.gz\tsample.fna\t0.0201\t0\t700/1000\n"
	call := classifyString(t, data, opt)
	if !call.Contaminated {
		t.Errorf("expected contamination")
	}
	if line := call.Format("s"); line != "s\tKlebsiella pneumoniae (contaminated)\t98.77%" {
		t.Errorf("unexpected line: %s", line)
	}
}

func TestClassifyFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "mash.tsv")
	if err := os.WriteFile(file, []byte(mashOutput), 0644); err != nil {
		t.Error(err)
		return
	}
	call, err := Classify(file, DefaultOptions)
	if err != nil {
		t.Error(err)
		return
	}
	if call.Query != "sample.fna" {
		t.Errorf("expected: sample.fna, results: %s", call.Query)
	}
	if call.Species != "pneumoniae" {
		t.Errorf("expected: pneumoniae, results: %s", call.Species)
	}

	bad := filepath.Join(dir, "bad.tsv")
	if err = os.WriteFile(bad, []byte("GCF_1.fna\tsample.fna\t0.01\n"), 0644); err != nil {
		t.Error(err)
		return
	}
	if _, err = Classify(bad, DefaultOptions); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("expected: %s, results: %v", ErrInvalidReference, err)
	}
}

func TestSampleName(t *testing.T) {
	for _, c := range []struct {
		file     string
		reads    bool
		expected string
	}{
		{"/data/GCF_000001.fna.gz", false, "GCF_000001"},
		{"sample.fasta", false, "sample"},
		{"reads/ERR123_1.fastq.gz", true, "ERR123"},
		{"ERR123_R1.fq.gz", true, "ERR123"},
		{"ERR123_1.fastq.gz", false, "ERR123_1"},
	} {
		if name := SampleName(c.file, c.reads); name != c.expected {
			t.Errorf("%s: expected: %s, results: %s", c.file, c.expected, name)
		}
	}

	if !IsReads("a_1.fq.gz") || IsReads("a.fna.gz") {
		t.Errorf("unexpected input type detection")
	}
}
