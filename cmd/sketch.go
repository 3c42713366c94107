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
	"github.com/will-rowe/kmerbank/src/misc"
	"github.com/will-rowe/kmerbank/src/pipeline"
)

// the command line arguments
var (
	sketchInputs *[]string // sequence banks to compare
	sketchK      *int      // size of k-mer
	sketchSize   *int      // size of MinHash sketch
	flavour      *string   // MinHash flavour
)

// the sketch command (used by cobra)
var sketchCmd = &cobra.Command{
	Use:   "sketch",
	Short: "Compare sequence banks using MinHash sketches of their k-mers",
	Long:  `Compare sequence banks using MinHash sketches of their k-mers, printing the estimated Jaccard similarity of each pair`,
	Run: func(cmd *cobra.Command, args []string) {
		runSketch(cmd)
	},
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return misc.CheckRequiredFlags(cmd.Flags())
	},
}

// a function to initialise the command line arguments
func init() {
	sketchInputs = sketchCmd.Flags().StringSliceP("inputs", "i", []string{}, "sequence banks to compare (at least 2)")
	sketchK = sketchCmd.Flags().IntP("kmerSize", "k", 21, "size of k-mer")
	sketchSize = sketchCmd.Flags().IntP("sketchSize", "s", 1000, "size of MinHash sketch")
	flavour = sketchCmd.Flags().String("flavour", "kmv", "MinHash flavour (kmv or khf)")
	RootCmd.AddCommand(sketchCmd)
}

// a function to check user supplied parameters
func sketchParamCheck(cmd *cobra.Command, info *pipeline.Info) error {
	flags := cmd.Flags()
	if flags.Changed("inputs") || len(info.Inputs) == 0 {
		info.Inputs = *sketchInputs
	}
	if flags.Changed("kmerSize") || *configFile == "" {
		info.KmerSize = *sketchK
	}
	if flags.Changed("sketchSize") {
		info.SketchSize = *sketchSize
	}
	if flags.Changed("flavour") {
		info.Flavour = *flavour
	}
	if len(info.Inputs) < 2 {
		return fmt.Errorf("need at least 2 banks to compare - run `kmerbank sketch --help` for more info on the command")
	}
	for _, input := range info.Inputs {
		if err := misc.CheckFile(input); err != nil {
			return err
		}
	}
	return nil
}

// runSketch is the main function for the sketch command
func runSketch(cmd *cobra.Command) {
	defer startRun("sketch")()
	info := newInfo()
	misc.ErrorCheck(sketchParamCheck(cmd, info))
	log.Printf("\tk-mer size: %d", info.KmerSize)
	log.Printf("\tsketch size: %d (%v)", info.SketchSize, info.Flavour)
	_, err := pipeline.RunSketch(info, os.Stdout)
	misc.ErrorCheck(err)
	log.Printf("finished")
}
