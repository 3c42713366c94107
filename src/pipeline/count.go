package pipeline

/*
 this part of the pipeline counts the k-mers of a set of banks: k-mers are bucketed on disk by their minimizer, then each bucket is counted on its own
*/

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"

	"github.com/will-rowe/kmerbank/src/bank"
	"github.com/will-rowe/kmerbank/src/dispatch"
	"github.com/will-rowe/kmerbank/src/kmer"
	"github.com/will-rowe/kmerbank/src/largeint"
	"github.com/will-rowe/kmerbank/src/misc"
	"github.com/will-rowe/kmerbank/src/progress"
	"github.com/will-rowe/kmerbank/src/storage"
)

// group and partition names used by the counting stage
const (
	GroupName    = "dsk"
	RawPartition = "raw"
	SolidName    = "solid"
)

// BATCHSIZE is the number of k-mers collected for a partition before they are sent on
const BATCHSIZE int = 4096

// kmerBatch is a set of k-mers that go to the same partition
type kmerBatch[T largeint.Integer[T]] struct {
	part   int
	values []T
}

// KmerPartitioner is a pipeline process that streams the k-mers of the banks and buckets them by minimizer
type KmerPartitioner[T largeint.Integer[T]] struct {
	info   *Info
	input  []string
	output chan kmerBatch[T]
}

// NewKmerPartitioner is the constructor
func NewKmerPartitioner[T largeint.Integer[T]](info *Info) *KmerPartitioner[T] {
	return &KmerPartitioner[T]{info: info, output: make(chan kmerBatch[T], BUFFERSIZE)}
}

// Connect is the method to connect the KmerPartitioner to some data source
func (proc *KmerPartitioner[T]) Connect(input []string) {
	proc.input = input
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *KmerPartitioner[T]) Run() {
	defer close(proc.output)
	model, err := kmer.NewMinimizerModel[T](proc.info.KmerSize, proc.info.MmerSize)
	misc.ErrorCheck(err)
	nbParts := uint64(proc.info.NumPart)
	batches := make([][]T, nbParts)
	for i := range batches {
		batches[i] = make([]T, 0, BATCHSIZE)
	}
	kmerIterator := model.NewIterator()
	for _, input := range proc.input {
		b, err := bank.Open(input)
		misc.ErrorCheck(err)
		seqs, err := b.Iterator()
		misc.ErrorCheck(err)
		counter := progress.NewLog(fmt.Sprintf("k-merizing %v", filepath.Base(input)), 0)
		it := bank.NewKmerIterator(seqs, kmerIterator, counter)
		if proc.info.ProgressBar {
			it.AddListener(progress.NewBar(0, os.Stderr))
		}
		nbKmers := uint64(0)
		for it.First(); !it.IsDone(); it.Next() {
			item := it.Item()
			part := item.Minimizer().Hash64() % nbParts
			batches[part] = append(batches[part], item.Value())
			if len(batches[part]) == BATCHSIZE {
				proc.output <- kmerBatch[T]{part: int(part), values: batches[part]}
				batches[part] = make([]T, 0, BATCHSIZE)
			}
			nbKmers++
		}
		misc.ErrorCheck(it.Err())
		misc.ErrorCheck(it.Close())
		log.Printf("\t%v: %d sequences, %d k-mers", input, counter.Done(), nbKmers)
		atomic.AddUint64(&proc.info.Stats.NbSequences, counter.Done())
		atomic.AddUint64(&proc.info.Stats.NbKmers, nbKmers)
	}
	for part, batch := range batches {
		if len(batch) != 0 {
			proc.output <- kmerBatch[T]{part: part, values: batch}
		}
	}
}

// PartitionWriter is a pipeline process that writes the bucketed k-mers to the raw partition
type PartitionWriter[T largeint.Integer[T]] struct {
	info   *Info
	input  chan kmerBatch[T]
	output chan *storage.Group
}

// NewPartitionWriter is the constructor
func NewPartitionWriter[T largeint.Integer[T]](info *Info) *PartitionWriter[T] {
	return &PartitionWriter[T]{info: info, output: make(chan *storage.Group)}
}

// Connect is the method to connect the PartitionWriter to the output of a KmerPartitioner
func (proc *PartitionWriter[T]) Connect(previous *KmerPartitioner[T]) {
	proc.input = previous.output
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *PartitionWriter[T]) Run() {
	defer close(proc.output)
	store, err := storage.Create(proc.info.StorageDir)
	misc.ErrorCheck(err)
	group, err := store.Group(GroupName)
	misc.ErrorCheck(err)
	raw, err := storage.CreatePartition[T](group, RawPartition, proc.info.NumPart)
	misc.ErrorCheck(err)
	for batch := range proc.input {
		bag := raw.Bag(batch.part)
		for _, value := range batch.values {
			misc.ErrorCheck(bag.Insert(kmer.Count[T]{Value: value, Abundance: 1}))
		}
	}
	misc.ErrorCheck(raw.Close())
	proc.output <- group
}

// PartitionCounter is a pipeline process that counts each raw part and keeps the solid k-mers
type PartitionCounter[T largeint.Integer[T]] struct {
	info  *Info
	input chan *storage.Group
}

// NewPartitionCounter is the constructor
func NewPartitionCounter[T largeint.Integer[T]](info *Info) *PartitionCounter[T] {
	return &PartitionCounter[T]{info: info}
}

// Connect is the method to connect the PartitionCounter to the output of a PartitionWriter
func (proc *PartitionCounter[T]) Connect(previous *PartitionWriter[T]) {
	proc.input = previous.output
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *PartitionCounter[T]) Run() {
	for group := range proc.input {
		raw, err := storage.GetPartition[T](group, RawPartition, proc.info.NumPart)
		misc.ErrorCheck(err)
		solid, err := storage.CreatePartition[T](group, SolidName, proc.info.NumPart)
		misc.ErrorCheck(err)

		// one command per part, the raw file is removed once its command is released
		cmds := make([]dispatch.Command, proc.info.NumPart)
		counters := make([]*countCommand[T], proc.info.NumPart)
		for i := range cmds {
			counters[i] = newCountCommand(raw, solid, i, uint16(proc.info.MinAbundance))
			cmds[i] = counters[i]
		}
		post := dispatch.Func(func() error {
			if err := solid.Close(); err != nil {
				return err
			}
			for _, cmd := range counters {
				proc.info.Stats.NbDistinct += cmd.nbDistinct
				proc.info.Stats.NbSolid += cmd.nbSolid
			}
			group.SetProperty(storage.PropNbPartitions, proc.info.NumPart)
			group.SetProperty(storage.PropKmerSize, proc.info.KmerSize)
			group.SetProperty(storage.PropMmerSize, proc.info.MmerSize)
			group.SetProperty(storage.PropMinAbundance, proc.info.MinAbundance)
			group.SetProperty(storage.PropNbSolid, proc.info.Stats.NbSolid)
			return group.Save()
		})
		dispatcher := dispatch.New(proc.info.NumProc)
		log.Printf("\tcounting %d partitions (%d units)", proc.info.NumPart, dispatcher.NbUnits())
		misc.ErrorCheck(dispatcher.DispatchCommands(cmds, post))
		log.Printf("\tdistinct k-mers: %d", proc.info.Stats.NbDistinct)
		log.Printf("\tsolid k-mers (abundance >= %d): %d", proc.info.MinAbundance, proc.info.Stats.NbSolid)
	}
}

// countCommand counts the k-mers of one raw part
type countCommand[T largeint.Integer[T]] struct {
	dispatch.RefCount
	raw          *storage.Partition[T]
	solid        *storage.Partition[T]
	part         int
	minAbundance uint16
	nbDistinct   uint64
	nbSolid      uint64
}

func newCountCommand[T largeint.Integer[T]](raw, solid *storage.Partition[T], part int, minAbundance uint16) *countCommand[T] {
	cmd := &countCommand[T]{raw: raw, solid: solid, part: part, minAbundance: minAbundance}
	cmd.SetRelease(func() {
		if err := os.Remove(raw.PartPath(part)); err != nil {
			log.Printf("\tcould not remove %v: %v", raw.PartPath(part), err)
		}
	})
	return cmd
}

// Execute sorts the part and writes each distinct k-mer seen at least minAbundance times
func (cmd *countCommand[T]) Execute() error {
	records, err := cmd.raw.ReadPart(cmd.part)
	if err != nil {
		return err
	}
	counts := CountKmers(records)
	cmd.nbDistinct = uint64(len(counts))
	bag := cmd.solid.Bag(cmd.part)
	for _, c := range counts {
		if c.Abundance < cmd.minAbundance {
			continue
		}
		if err := bag.Insert(c); err != nil {
			return err
		}
		cmd.nbSolid++
	}
	return bag.Flush()
}

// CountKmers merges the records holding the same k-mer, summing their abundance (capped at the maximum)
// The records are sorted in place and the result is in k-mer order.
func CountKmers[T largeint.Integer[T]](records []kmer.Count[T]) []kmer.Count[T] {
	sort.Slice(records, func(i, j int) bool { return records[i].Value.Less(records[j].Value) })
	counts := records[:0]
	for _, r := range records {
		if n := len(counts); n > 0 && counts[n-1].Value == r.Value {
			if total := int(counts[n-1].Abundance) + int(r.Abundance); total < storage.MaxAbundance {
				counts[n-1].Abundance = uint16(total)
			} else {
				counts[n-1].Abundance = storage.MaxAbundance
			}
			continue
		}
		counts = append(counts, r)
	}
	return counts
}

// RunCount runs the counting pipeline over the input banks, using the narrowest integer that holds the k-mers
func RunCount(info *Info) error {
	if err := info.Check(); err != nil {
		return err
	}
	switch {
	case info.KmerSize < 32:
		runCount[largeint.Uint64](info)
	case info.KmerSize < 64:
		runCount[largeint.Uint128](info)
	default:
		runCount[largeint.Uint256](info)
	}
	if err := info.Dump(filepath.Join(info.StorageDir, InfoFile)); err != nil {
		return err
	}
	if info.Archive == "" {
		return nil
	}
	store, err := storage.Load(info.StorageDir)
	if err != nil {
		return err
	}
	log.Printf("\tarchiving storage to %v", info.Archive)
	return store.Archive(info.Archive)
}

func runCount[T largeint.Integer[T]](info *Info) {
	countingPipeline := NewPipeline()

	// initialise processes
	partitioner := NewKmerPartitioner[T](info)
	writer := NewPartitionWriter[T](info)
	counter := NewPartitionCounter[T](info)

	// connect the pipeline processes
	partitioner.Connect(info.Inputs)
	writer.Connect(partitioner)
	counter.Connect(writer)

	// submit each process to the pipeline and run it
	countingPipeline.AddProcesses(partitioner, writer, counter)
	countingPipeline.Run()
}
