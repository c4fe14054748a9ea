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
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/shenwei356/bacsort/bacsort/align"
	"github.com/twotwotwo/sorts"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidOptions means invalid options for Compute.
var ErrInvalidOptions = errors.New("identity: invalid options")

// Options contains options for Compute.
type Options struct {
	Threads int
	Discard float64 // fraction of total gene length to discard, in [0, 1)

	Align align.Options

	// Progress is called after each pair with its computation time,
	// from multiple goroutines.
	Progress func(time.Duration)
}

// DefaultOptions discards the worst 20% of alignments.
var DefaultOptions = Options{
	Threads: 8,
	Discard: 0.2,
	Align:   align.EditDistanceOptions,
}

// Validate checks the options.
func (o *Options) Validate() error {
	if o.Threads < 1 {
		return errors.Wrapf(ErrInvalidOptions, "threads should be positive: %d", o.Threads)
	}
	if math.IsNaN(o.Discard) || o.Discard < 0 || o.Discard >= 1 {
		return errors.Wrapf(ErrInvalidOptions, "discard fraction should be in range of [0, 1): %f", o.Discard)
	}
	return nil
}

// Result is the identity of the Ith and Jth genomes, I <= J.
type Result struct {
	I, J     int
	Identity float64
}

// Results is a list of Result, sorted by (I, J).
type Results []Result

func (r Results) Len() int      { return len(r) }
func (r Results) Swap(i, j int) { r[i], r[j] = r[j], r[i] }
func (r Results) Less(i, j int) bool {
	if r[i].I == r[j].I {
		return r[i].J < r[j].J
	}
	return r[i].I < r[j].I
}

// Format returns a tab-delimited line without a trailing newline.
func (r Result) Format(genomes []*Genome) string {
	return genomes[r.I].Name + "\t" + genomes[r.J].Name + "\t" +
		strconv.FormatFloat(r.Identity, 'f', 6, 64)
}

// NumPairs returns the number of pairs i <= j of n genomes.
func NumPairs(n int) int {
	return n * (n + 1) / 2
}

// Compute computes identities of all genome pairs (i, j), i <= j.
//
// Pairs are enumerated in the nested-loop order, and the nth pair is
// computed by the worker n % Threads, so the work partition is fixed.
// Each worker owns an aligner and an alignment cache, and sends its
// results once after finishing all its pairs.
// If a worker fails or ctx is canceled, other workers stop and the error is returned.
//
// The returned results are sorted by (I, J), regardless of the number of threads.
func Compute(ctx context.Context, genomes []*Genome, opt *Options) (Results, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}

	threads := opt.Threads
	total := NumPairs(len(genomes))
	discard := opt.Discard
	progress := opt.Progress

	batches := make(chan Results, threads)
	eg, ctx := errgroup.WithContext(ctx)

	for w := 0; w < threads; w++ {
		w := w
		eg.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("identity worker %d: %v", w, r)
				}
			}()

			pa := newPairAligner(opt.Align, 4096)
			batch := make(Results, 0, total/threads+1)

			var n int
			var identity float64
			var t time.Time
			for i := range genomes {
				for j := i; j < len(genomes); j++ {
					if n%threads != w {
						n++
						continue
					}
					n++

					if err = ctx.Err(); err != nil {
						return err
					}

					t = time.Now()
					identity = pairIdentity(genomes[i], genomes[j], discard, pa.align)
					batch = append(batch, Result{I: i, J: j, Identity: identity})

					if progress != nil {
						progress(time.Since(t))
					}
				}
			}

			batches <- batch
			return nil
		})
	}

	err := eg.Wait()
	close(batches)
	if err != nil {
		return nil, err
	}

	results := make(Results, 0, total)
	var nBatches int
	for batch := range batches {
		results = append(results, batch...)
		nBatches++
	}
	if nBatches != threads {
		return nil, fmt.Errorf("identity: %d result batches received, %d expected", nBatches, threads)
	}
	if len(results) != total {
		return nil, fmt.Errorf("identity: %d results received, %d expected", len(results), total)
	}

	sorts.Quicksort(results)

	return results, nil
}
