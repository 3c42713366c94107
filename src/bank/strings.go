package bank

import (
	"fmt"

	"github.com/will-rowe/kmerbank/src/data"
)

// Strings is an in memory bank of ASCII sequences
type Strings struct {
	seqs []string
}

// NewStrings is the Strings constructor
func NewStrings(seqs ...string) *Strings {
	return &Strings{seqs: seqs}
}

// ID returns a description of the bank
func (b *Strings) ID() string {
	return fmt.Sprintf("strings(%d)", len(b.seqs))
}

// Iterator returns an iterator over the sequences
func (b *Strings) Iterator() (Iterator, error) {
	return &stringsIterator{seqs: b.seqs, pos: len(b.seqs)}, nil
}

type stringsIterator struct {
	seqs []string
	pos  int
	item Sequence
}

func (it *stringsIterator) First() {
	it.pos = 0
	it.load()
}

func (it *stringsIterator) Next() {
	if it.pos < len(it.seqs) {
		it.pos++
		it.load()
	}
}

func (it *stringsIterator) load() {
	if it.pos < len(it.seqs) {
		it.item = Sequence{
			Comment: fmt.Sprintf("seq_%d", it.pos),
			Data:    data.NewFromString(it.seqs[it.pos]),
			Index:   it.pos,
		}
	}
}

func (it *stringsIterator) IsDone() bool   { return it.pos >= len(it.seqs) }
func (it *stringsIterator) Item() *Sequence { return &it.item }
func (it *stringsIterator) Err() error      { return nil }
func (it *stringsIterator) Close() error    { return nil }
