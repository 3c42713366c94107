// Copyright © 2017 Will Rowe <will.rowe@stfc.ac.uk>
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
	"log"
	"os"
	"runtime"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/will-rowe/kmerbank/src/misc"
	"github.com/will-rowe/kmerbank/src/pipeline"
	"github.com/will-rowe/kmerbank/src/version"
)

// the command line arguments
var (
	proc       *int    // number of processors to use
	profiling  *bool   // create profile for go pprof
	logFile    *string // file to log to (stderr if empty)
	configFile *string // TOML file holding the run parameters
	progress   *bool   // show a progress bar
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "kmerbank",
	Short: "count, dump and explore the k-mers of sequence banks",
	Long: `
#####################################################################################
		kmerbank: k-mer counting and exploration of sequence banks
#####################################################################################

 kmerbank k-merizes FASTA, FASTQ and packed binary banks using 2 bits per nucleotide
 and k-mers of up to 127 bases.

 The count command buckets the canonical k-mers on disk by their minimizer and counts
 each bucket in parallel, keeping the solid k-mers. The other commands read the result
 back (dump, histo), walk the de Bruijn graph of the k-mers (graph) or compare banks
 using MinHash sketches (sketch).`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// a function to initialise the command line arguments
func init() {
	proc = RootCmd.PersistentFlags().IntP("processors", "p", 1, "number of processors to use")
	profiling = RootCmd.PersistentFlags().Bool("profiling", false, "create the files needed to profile kmerbank using the go tool pprof")
	logFile = RootCmd.PersistentFlags().String("log", "", "filename for log file (default is stderr)")
	configFile = RootCmd.PersistentFlags().String("config", "", "TOML file of run parameters (flags set on the command line take precedence)")
	progress = RootCmd.PersistentFlags().Bool("progress", false, "show a progress bar while k-merizing")
}

// newInfo returns the runtime info for a command: the defaults, then the config file
func newInfo() *pipeline.Info {
	info := pipeline.NewInfo()
	if *configFile != "" {
		misc.ErrorCheck(misc.CheckFile(*configFile))
		misc.ErrorCheck(info.LoadConfig(*configFile))
	}
	info.Version = version.GetVersion()
	info.Profiling = *profiling
	info.ProgressBar = *progress

	// set number of processors to use
	if *proc <= 0 || *proc > runtime.NumCPU() {
		*proc = runtime.NumCPU()
	}
	runtime.GOMAXPROCS(*proc)
	info.NumProc = *proc
	return info
}

// startRun sets up profiling and logging for a command, the returned function must be called when the command is done
func startRun(command string) func() {
	stops := []func(){}
	if *profiling {
		stops = append(stops, profile.Start(profile.ProfilePath("./")).Stop)
	}
	if *logFile != "" {
		logFH := misc.StartLogging(*logFile)
		log.SetOutput(logFH)
		stops = append(stops, func() { logFH.Close() })
	}
	log.Printf("kmerbank (version %s)", version.GetVersion())
	log.Printf("starting the %v subcommand", command)
	return func() {
		for i := len(stops) - 1; i >= 0; i-- {
			stops[i]()
		}
	}
}
