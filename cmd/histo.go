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
	"github.com/will-rowe/kmerbank/src/reporting"
)

// the command line arguments
var (
	histoDir     *string // directory holding the counted k-mers
	maxAbundance *int    // number of histogram bins
	plotOut      *string // file to save the plot to
)

// the histo command (used by cobra)
var histoCmd = &cobra.Command{
	Use:   "histo",
	Short: "Print (and plot) the abundance histogram of the solid k-mers",
	Long:  `Print (and plot) the abundance histogram of the solid k-mers, one "abundance count" line per non empty bin`,
	Run: func(cmd *cobra.Command, args []string) {
		runHisto()
	},
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return misc.CheckRequiredFlags(cmd.Flags())
	},
}

// a function to initialise the command line arguments
func init() {
	histoDir = histoCmd.Flags().StringP("storageDir", "d", "", "directory holding the counted k-mers - required")
	maxAbundance = histoCmd.Flags().Int("maxAbundance", reporting.DefaultMaxAbundance, "last bin of the histogram (higher abundances are added to it)")
	plotOut = histoCmd.Flags().String("plot", "", "save a plot of the histogram to this file (e.g. histo.png)")
	histoCmd.MarkFlagRequired("storageDir")
	RootCmd.AddCommand(histoCmd)
}

// runHisto is the main function for the histo command
func runHisto() {
	defer startRun("histo")()
	info := newInfo()
	info.StorageDir = *histoDir
	info.Histo.MaxAbundance = *maxAbundance
	info.Histo.PlotOut = *plotOut
	_, err := pipeline.RunHisto(info, os.Stdout)
	misc.ErrorCheck(err)
	log.Printf("finished")
}
