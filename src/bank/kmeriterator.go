package bank

import (
	"github.com/pkg/errors"
	"github.com/will-rowe/kmerbank/src/kmer"
	"github.com/will-rowe/kmerbank/src/progress"
)

// ProgressModulo is the number of sequences between two progress notifications
const ProgressModulo = 1 << 10

// KmerIterator is a pull iterator over every k-mer of every sequence of a bank
// It owns the sequence iterator (closed by Close) and borrows the k-mer iterator. Sequences
// shorter than k give no k-mers and are skipped.
type KmerIterator[K any] struct {
	progress.Subject
	seqs     Iterator
	kmers    *kmer.Iterator[K]
	count    uint64
	done     bool
	finished bool
	err      error
}

// NewKmerIterator is the KmerIterator constructor
func NewKmerIterator[K any](seqs Iterator, kmers *kmer.Iterator[K], listeners ...progress.Listener) *KmerIterator[K] {
	it := &KmerIterator[K]{seqs: seqs, kmers: kmers, done: true}
	for _, l := range listeners {
		it.AddListener(l)
	}
	return it
}

// First moves to the first k-mer of the bank
func (it *KmerIterator[K]) First() {
	it.NotifyInit()
	it.count, it.done, it.finished, it.err = 0, false, false, nil
	it.seqs.First()
	it.load()
}

// Next moves to the next k-mer, moving on to the next sequence when needed
func (it *KmerIterator[K]) Next() {
	if it.done {
		return
	}
	it.kmers.Next()
	if !it.kmers.IsDone() {
		return
	}
	it.nextSequence()
	it.load()
}

// load positions the k-mer iterator on the first k-mer of the current sequence, skipping
// sequences without k-mers
func (it *KmerIterator[K]) load() {
	for !it.seqs.IsDone() {
		seq := it.seqs.Item()
		if err := it.kmers.SetData(seq.Data); err != nil {
			it.stop(errors.Wrapf(err, "could not k-merize sequence %d (%v)", seq.Index, seq.Comment))
			return
		}
		it.kmers.First()
		if !it.kmers.IsDone() {
			return
		}
		it.nextSequence()
	}
	it.stop(it.seqs.Err())
}

func (it *KmerIterator[K]) nextSequence() {
	it.seqs.Next()
	it.count++
	if it.count == ProgressModulo {
		it.NotifyInc(it.count)
		it.count = 0
	}
}

// stop ends the iteration, the remaining progress and Finish are notified once
func (it *KmerIterator[K]) stop(err error) {
	it.done = true
	it.err = err
	if it.finished {
		return
	}
	if it.count > 0 {
		it.NotifyInc(it.count)
		it.count = 0
	}
	it.NotifyFinish()
	it.finished = true
}

// IsDone is true once every k-mer has been visited or an error stopped the iteration
func (it *KmerIterator[K]) IsDone() bool {
	return it.done
}

// Item returns the current k-mer
func (it *KmerIterator[K]) Item() K {
	return it.kmers.Item()
}

// Sequence returns the sequence holding the current k-mer
func (it *KmerIterator[K]) Sequence() *Sequence {
	return it.seqs.Item()
}

// Err returns the error that stopped the iteration, if any
func (it *KmerIterator[K]) Err() error {
	return it.err
}

// Close closes the sequence iterator
func (it *KmerIterator[K]) Close() error {
	it.done = true
	return it.seqs.Close()
}
