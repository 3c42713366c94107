package pipeline

/*
 this part of the pipeline streams the sequences of several banks to a pool of minions that sketch them, then compares the banks
*/

import (
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/will-rowe/kmerbank/src/bank"
	"github.com/will-rowe/kmerbank/src/misc"
	"github.com/will-rowe/kmerbank/src/progress"
	"github.com/will-rowe/kmerbank/src/sketch"
)

// sketchJob is one sequence to add to the sketch of a bank
type sketchJob struct {
	bank int
	seq  []byte
}

// Similarity is the estimated Jaccard similarity of the k-mer content of two banks
type Similarity struct {
	A, B       string
	Similarity float64
}

// SequenceStreamer is a pipeline process that streams the sequences of each bank
type SequenceStreamer struct {
	info   *Info
	input  []string
	output chan sketchJob
}

// NewSequenceStreamer is the constructor
func NewSequenceStreamer(info *Info) *SequenceStreamer {
	return &SequenceStreamer{info: info, output: make(chan sketchJob, BUFFERSIZE)}
}

// Connect is the method to connect the SequenceStreamer to some data source
func (proc *SequenceStreamer) Connect(input []string) {
	proc.input = input
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *SequenceStreamer) Run() {
	defer close(proc.output)
	for i, input := range proc.input {
		b, err := bank.Open(input)
		misc.ErrorCheck(err)
		seqs, err := b.Iterator()
		misc.ErrorCheck(err)
		counter := progress.NewLog(fmt.Sprintf("sketching %v", input), 0)
		it := bank.NewProgressIterator(seqs, bank.ProgressModulo, counter)
		for it.First(); !it.IsDone(); it.Next() {
			if it.Item().Data.Size() < proc.info.KmerSize {
				continue
			}
			// copy the residues, the iterator reuses its buffer
			proc.output <- sketchJob{bank: i, seq: []byte(it.Item().String())}
		}
		misc.ErrorCheck(it.Err())
		misc.ErrorCheck(it.Close())
	}
}

// SketchBoss is a pipeline process that runs the sketching minions and compares the merged sketches
type SketchBoss struct {
	info     *Info
	input    chan sketchJob
	out      io.Writer
	sketches []sketch.MinHash
	results  []Similarity
	received int
	sync.Mutex
}

// NewSketchBoss is the constructor, the pairwise similarities are printed to out
func NewSketchBoss(info *Info, out io.Writer) *SketchBoss {
	return &SketchBoss{info: info, out: out}
}

// Connect is the method to connect the SketchBoss to the output of a SequenceStreamer
func (proc *SketchBoss) Connect(previous *SequenceStreamer) {
	proc.input = previous.output
}

// newSketches returns one empty sketch per input bank
func (proc *SketchBoss) newSketches() []sketch.MinHash {
	sketches := make([]sketch.MinHash, len(proc.info.Inputs))
	for i := range sketches {
		mh, err := sketch.New(proc.info.Flavour, uint(proc.info.KmerSize), uint(proc.info.SketchSize))
		misc.ErrorCheck(err)
		sketches[i] = mh
	}
	return sketches
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *SketchBoss) Run() {
	proc.sketches = proc.newSketches()

	// each minion keeps its own sketches, which are merged into the boss's once the input is drained
	var wg sync.WaitGroup
	for i := 0; i < proc.info.NumProc; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sketches := proc.newSketches()
			received := 0
			for job := range proc.input {
				misc.ErrorCheck(sketches[job.bank].AddSequence(job.seq))
				received++
			}
			proc.Lock()
			defer proc.Unlock()
			proc.received += received
			for i, mh := range sketches {
				misc.ErrorCheck(proc.sketches[i].Merge(mh))
			}
		}()
	}
	wg.Wait()
	log.Printf("\tsketched %d sequences from %d banks", proc.received, len(proc.sketches))

	// compare every pair of banks
	for i := 0; i < len(proc.sketches); i++ {
		for j := i + 1; j < len(proc.sketches); j++ {
			similarity, err := proc.sketches[i].GetSimilarity(proc.sketches[j])
			misc.ErrorCheck(err)
			result := Similarity{A: proc.info.Inputs[i], B: proc.info.Inputs[j], Similarity: similarity}
			proc.results = append(proc.results, result)
			fmt.Fprintf(proc.out, "%v\t%v\t%.4f\n", result.A, result.B, result.Similarity)
		}
	}
}

// Sketches returns the merged sketch of each bank
func (proc *SketchBoss) Sketches() []sketch.MinHash {
	return proc.sketches
}

// Results returns the similarity of each pair of banks
func (proc *SketchBoss) Results() []Similarity {
	return proc.results
}

// RunSketch sketches each input bank and prints the similarity of every pair
func RunSketch(info *Info, w io.Writer) ([]Similarity, error) {
	if len(info.Inputs) < 2 {
		return nil, fmt.Errorf("at least two banks are needed for a comparison")
	}
	if info.KmerSize < 1 || info.SketchSize < 1 {
		return nil, fmt.Errorf("k-mer size and sketch size must be positive")
	}
	if _, err := sketch.New(info.Flavour, uint(info.KmerSize), uint(info.SketchSize)); err != nil {
		return nil, err
	}
	if info.NumProc < 1 {
		info.NumProc = 1
	}
	sketchPipeline := NewPipeline()

	// initialise processes
	streamer := NewSequenceStreamer(info)
	boss := NewSketchBoss(info, w)

	// connect the pipeline processes
	streamer.Connect(info.Inputs)
	boss.Connect(streamer)

	// submit each process to the pipeline and run it
	sketchPipeline.AddProcesses(streamer, boss)
	sketchPipeline.Run()
	return boss.Results(), nil
}
