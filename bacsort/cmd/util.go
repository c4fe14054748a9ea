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
	"regexp"
	"runtime"
	"time"

	"github.com/iafan/cwalk"
	"github.com/pkg/errors"
	"github.com/shenwei356/util/pathutil"
	"github.com/spf13/cobra"
	"github.com/twotwotwo/sorts"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Options contains the global flags
type Options struct {
	NumCPUs int
	Verbose bool

	LogFile  string
	Log2File bool

	CompressionLevel int
}

func getOptions(cmd *cobra.Command) *Options {
	threads := getFlagNonNegativeInt(cmd, "threads")
	if threads == 0 {
		threads = runtime.NumCPU()
	}

	sorts.MaxProcs = threads
	runtime.GOMAXPROCS(threads)

	logfile := expandPath(getFlagString(cmd, "log"))
	return &Options{
		NumCPUs: threads,
		Verbose: !getFlagBool(cmd, "quiet"),

		LogFile:  logfile,
		Log2File: logfile != "",

		CompressionLevel: -1,
	}
}

// startLog sets up the optional log file and returns a function
// logging the elapsed time, which should be deferred.
func startLog(opt *Options) func() {
	var fhLog *os.File
	if opt.Log2File {
		fhLog = addLog(opt.LogFile, opt.Verbose)
	}
	timeStart := time.Now()
	return func() {
		if opt.Verbose || opt.Log2File {
			log.Info()
			log.Infof("elapsed time: %s", time.Since(timeStart))
			log.Info()
		}
		if opt.Log2File {
			fhLog.Close()
		}
	}
}

func makeOutDir(outDir string, force bool, logname string, verbose bool) {
	pwd, _ := os.Getwd()
	if outDir == "./" || outDir == "." || pwd == filepath.Clean(outDir) {
		checkError(fmt.Errorf("%s should not be current directory", logname))
	}

	existed, err := pathutil.DirExists(outDir)
	checkError(errors.Wrap(err, outDir))
	if existed {
		empty, err := pathutil.IsEmpty(outDir)
		checkError(errors.Wrap(err, outDir))
		if !empty {
			if force {
				if verbose {
					log.Infof("removing old output directory: %s", outDir)
				}
				checkError(os.RemoveAll(outDir))
			} else {
				checkError(fmt.Errorf("%s not empty: %s, use --force to overwrite", logname, outDir))
			}
		} else {
			checkError(os.RemoveAll(outDir))
		}
	}
	checkError(os.MkdirAll(outDir, 0777))
}

func getFileListFromDir(path string, pattern *regexp.Regexp, threads int) ([]string, error) {
	files := make([]string, 0, 512)
	ch := make(chan string, threads)
	done := make(chan int)
	go func() {
		for file := range ch {
			files = append(files, file)
		}
		done <- 1
	}()

	cwalk.NumWorkers = threads
	err := cwalk.WalkWithSymlinks(path, func(_path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && pattern.MatchString(info.Name()) {
			ch <- filepath.Join(path, _path)
		}
		return nil
	})
	close(ch)
	<-done
	if err != nil {
		return nil, err
	}

	return files, err
}

// progressBar returns a bar fed by durations of finished tasks,
// and a function waiting for the bar to complete.
func progressBar(total int, name string, threads int) (chan time.Duration, func()) {
	pbs := mpb.New(mpb.WithWidth(40), mpb.WithOutput(os.Stderr))
	bar := pbs.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name(name, decor.WC{W: len(name), C: decor.DindentRight}),
			decor.Name("", decor.WCSyncSpaceR),
			decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.Name("ETA: ", decor.WC{W: len("ETA: ")}),
			decor.EwmaETA(decor.ET_STYLE_GO, 20),
			decor.OnComplete(decor.Name(""), ". done"),
		),
	)

	chDuration := make(chan time.Duration, threads)
	doneDuration := make(chan int)
	go func() {
		for t := range chDuration {
			bar.EwmaIncrBy(1, t)
		}
		doneDuration <- 1
	}()

	return chDuration, func() {
		close(chDuration)
		<-doneDuration
		pbs.Wait()
	}
}
