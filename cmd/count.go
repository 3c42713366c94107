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
	"time"

	"github.com/spf13/cobra"
	"github.com/will-rowe/kmerbank/src/bank"
	"github.com/will-rowe/kmerbank/src/misc"
	"github.com/will-rowe/kmerbank/src/pipeline"
)

// the command line arguments
var (
	inputs        *[]string                                                     // the sequence banks to count
	kSize         *int                                                          // size of k-mer
	mSize         *int                                                          // size of minimizer
	minAbundance  *int                                                          // abundance threshold for solid k-mers
	numPart       *int                                                          // number of partitions
	outDir        *string                                                       // directory to save the storage to
	archiveOut    *string                                                       // archive the storage to this file
	defaultOutDir = "./kmerbank-" + string(time.Now().Format("20060102150405")) // a default dir to store the counted k-mers
)

// the count command (used by cobra)
var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Count the k-mers of a set of sequence banks",
	Long: `Count the canonical k-mers of a set of sequence banks (FASTA, FASTQ, optionally gzipped, or binary).

The k-mers are bucketed on disk by their minimizer, then each bucket is counted on its own
and the k-mers seen at least minAbundance times are kept.`,
	Run: func(cmd *cobra.Command, args []string) {
		runCount(cmd)
	},
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return misc.CheckRequiredFlags(cmd.Flags())
	},
}

// a function to initialise the command line arguments
func init() {
	inputs = countCmd.Flags().StringSliceP("inputs", "i", []string{}, "sequence banks to count")
	kSize = countCmd.Flags().IntP("kmerSize", "k", 31, "size of k-mer")
	mSize = countCmd.Flags().IntP("minimizerSize", "m", 10, "size of minimizer")
	minAbundance = countCmd.Flags().Int("minAbundance", 2, "minimum abundance of a solid k-mer")
	numPart = countCmd.Flags().Int("partitions", 8, "number of partitions the k-mers are bucketed into")
	outDir = countCmd.Flags().StringP("outDir", "o", defaultOutDir, "directory to save the counted k-mers to")
	archiveOut = countCmd.Flags().String("archive", "", "also archive the counted k-mers to this file (e.g. counts.tar.gz)")
	RootCmd.AddCommand(countCmd)
}

// a function to check user supplied parameters
func countParamCheck(cmd *cobra.Command, info *pipeline.Info) error {
	flags := cmd.Flags()
	if flags.Changed("inputs") || len(info.Inputs) == 0 {
		info.Inputs = *inputs
	}
	if flags.Changed("kmerSize") {
		info.KmerSize = *kSize
	}
	if flags.Changed("minimizerSize") {
		info.MmerSize = *mSize
	}
	if flags.Changed("minAbundance") {
		info.MinAbundance = *minAbundance
	}
	if flags.Changed("partitions") {
		info.NumPart = *numPart
	}
	if flags.Changed("outDir") || info.StorageDir == "" {
		info.StorageDir = *outDir
	}
	if flags.Changed("archive") {
		info.Archive = *archiveOut
	}
	if len(info.Inputs) == 0 {
		return fmt.Errorf("no input banks specified - run `kmerbank count --help` for more info on the command")
	}
	for _, input := range info.Inputs {
		if err := misc.CheckFile(input); err != nil {
			return err
		}
		if _, err := bank.Open(input); err != nil {
			return err
		}
	}
	return info.Check()
}

// runCount is the main function for the count command
func runCount(cmd *cobra.Command) {
	defer startRun("count")()
	info := newInfo()

	// check the supplied files and then log some stuff
	log.Printf("checking parameters...")
	misc.ErrorCheck(countParamCheck(cmd, info))
	log.Printf("\tprocessors: %d", info.NumProc)
	log.Printf("\tk-mer size: %d", info.KmerSize)
	log.Printf("\tminimizer size: %d", info.MmerSize)
	log.Printf("\tpartitions: %d", info.NumPart)
	log.Printf("\tminimum abundance: %d", info.MinAbundance)
	log.Printf("\tnumber of input banks: %d", len(info.Inputs))
	log.Printf("\tstorage directory: %v", info.StorageDir)

	log.Printf("counting k-mers...")
	misc.ErrorCheck(pipeline.RunCount(info))
	log.Printf("\tsequences: %d", info.Stats.NbSequences)
	log.Printf("\tk-mers: %d", info.Stats.NbKmers)
	log.Printf("\tmemory: %v", misc.PrintMemUsage())
	log.Printf("finished")
}
