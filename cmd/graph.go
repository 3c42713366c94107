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

	"github.com/spf13/cobra"
	"github.com/will-rowe/kmerbank/src/graph"
	"github.com/will-rowe/kmerbank/src/misc"
	"github.com/will-rowe/kmerbank/src/pipeline"
)

// the command line arguments
var (
	graphInputs *[]string // sequence banks to build the graph from
	graphDir    *string   // directory holding counted k-mers to build the graph from
	graphK      *int      // size of k-mer (when building from banks)
	node        *string   // the node to start from
	gfaOut      *string   // file to save the graph to
	bloom       *bool     // use a bloom filter for the k-mer set
	maxSteps    *int      // maximum length of a simple path
)

// the graph command (used by cobra)
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Build the de Bruijn graph of a set of k-mers and walk it from a node",
	Long: `Build the de Bruijn graph of a set of k-mers (the k-mers of some banks, or the solid k-mers of a count)
and print the neighbours of a node, plus the first branching node found along each of its successors`,
	Run: func(cmd *cobra.Command, args []string) {
		runGraph()
	},
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return misc.CheckRequiredFlags(cmd.Flags())
	},
}

// a function to initialise the command line arguments
func init() {
	graphInputs = graphCmd.Flags().StringSliceP("inputs", "i", []string{}, "sequence banks to build the graph from")
	graphDir = graphCmd.Flags().StringP("storageDir", "d", "", "directory holding counted k-mers to build the graph from (instead of --inputs)")
	graphK = graphCmd.Flags().IntP("kmerSize", "k", 31, "size of k-mer (ignored with --storageDir)")
	node = graphCmd.Flags().StringP("node", "n", "", "sequence starting with the node to walk from - required")
	gfaOut = graphCmd.Flags().String("gfa", "", "save the graph to this GFA file")
	bloom = graphCmd.Flags().Bool("bloom", false, "hold the k-mers in a bloom filter (less memory, some false positives)")
	maxSteps = graphCmd.Flags().Int("maxSteps", graph.DefaultMaxSteps, "maximum number of nodes followed along a simple path")
	graphCmd.MarkFlagRequired("node")
	RootCmd.AddCommand(graphCmd)
}

// a function to check user supplied parameters
func graphParamCheck(info *pipeline.Info) error {
	if (len(*graphInputs) == 0) == (*graphDir == "") {
		return fmt.Errorf("set either --inputs or --storageDir - run `kmerbank graph --help` for more info on the command")
	}
	for _, input := range *graphInputs {
		if err := misc.CheckFile(input); err != nil {
			return err
		}
	}
	if *bloom && *gfaOut != "" {
		return fmt.Errorf("a bloom filter graph can't be saved as GFA")
	}
	info.Inputs = *graphInputs
	info.StorageDir = *graphDir
	info.KmerSize = *graphK
	info.Graph = pipeline.GraphCmd{Node: *node, GFAout: *gfaOut, Bloom: *bloom, MaxSteps: *maxSteps}
	return nil
}

// runGraph is the main function for the graph command
func runGraph() {
	defer startRun("graph")()
	info := newInfo()
	misc.ErrorCheck(graphParamCheck(info))
	_, err := pipeline.RunGraph(info, os.Stdout)
	misc.ErrorCheck(err)
	log.Printf("finished")
}
