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
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/will-rowe/kmerbank/src/misc"
	"github.com/will-rowe/kmerbank/src/pipeline"
)

// the command line arguments
var (
	storageDir *string // directory holding the counted k-mers
	bankOut    *string // binary bank to copy the solid k-mers to
	mmerBank   *string // binary bank to write the (k-1)-mer minimizers to
)

// the dump command (used by cobra)
var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the solid k-mers of a count",
	Long:  `Print the solid k-mers of a count, one per line: k-mer, minimizer and abundance (tab separated)`,
	Run: func(cmd *cobra.Command, args []string) {
		runDump()
	},
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return misc.CheckRequiredFlags(cmd.Flags())
	},
}

// a function to initialise the command line arguments
func init() {
	storageDir = dumpCmd.Flags().StringP("storageDir", "d", "", "directory holding the counted k-mers - required")
	bankOut = dumpCmd.Flags().String("bank", "", "also write the solid k-mers to this binary bank (.bin)")
	mmerBank = dumpCmd.Flags().String("minimizerBank", "", "also write the minimizers of the two (k-1)-mers of each solid k-mer to this binary bank (.bin)")
	dumpCmd.MarkFlagRequired("storageDir")
	RootCmd.AddCommand(dumpCmd)
}

// runDump is the main function for the dump command
func runDump() {
	defer startRun("dump")()
	info := newInfo()
	info.StorageDir = *storageDir
	info.DumpOpts.BankOut = *bankOut
	if info.DumpOpts.BankOut != "" {
		misc.ErrorCheck(misc.CheckExt(info.DumpOpts.BankOut, []string{"bin"}))
	}
	info.DumpOpts.MinimizerBankOut = *mmerBank
	if info.DumpOpts.MinimizerBankOut != "" {
		misc.ErrorCheck(misc.CheckExt(info.DumpOpts.MinimizerBankOut, []string{"bin"}))
	}
	misc.ErrorCheck(pipeline.RunDump(info, os.Stdout))
	log.Printf("finished")
}
