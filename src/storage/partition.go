package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/will-rowe/kmerbank/src/kmer"
	"github.com/will-rowe/kmerbank/src/largeint"
)

// Partition is a named collection of Count records split over several files
type Partition[T largeint.Integer[T]] struct {
	group   *Group
	name    string
	nbParts int
	bags    []*Bag[T]
}

// CreatePartition makes a new partition of nbParts empty files in a group
func CreatePartition[T largeint.Integer[T]](g *Group, name string, nbParts int) (*Partition[T], error) {
	if nbParts < 1 {
		return nil, errors.Errorf("a partition needs at least one part, got %d", nbParts)
	}
	p := &Partition[T]{group: g, name: name, nbParts: nbParts, bags: make([]*Bag[T], nbParts)}
	for i := range p.bags {
		bag, err := NewBag[T](p.PartPath(i))
		if err != nil {
			p.Close()
			return nil, err
		}
		p.bags[i] = bag
	}
	return p, nil
}

// GetPartition opens an existing partition for reading
func GetPartition[T largeint.Integer[T]](g *Group, name string, nbParts int) (*Partition[T], error) {
	p := &Partition[T]{group: g, name: name, nbParts: nbParts}
	for i := 0; i < nbParts; i++ {
		if _, err := os.Stat(p.PartPath(i)); err != nil {
			return nil, errors.Wrapf(err, "partition %v of group %v is incomplete", name, g.Name())
		}
	}
	return p, nil
}

// Name returns the partition name
func (p *Partition[T]) Name() string {
	return p.name
}

// Size returns the number of parts
func (p *Partition[T]) Size() int {
	return p.nbParts
}

// PartPath returns the file holding part i
func (p *Partition[T]) PartPath(i int) string {
	return filepath.Join(p.group.Dir(), fmt.Sprintf("%v.%d", p.name, i))
}

// Bag returns the writer of part i
func (p *Partition[T]) Bag(i int) *Bag[T] {
	return p.bags[i]
}

// Insert appends a record to part i
// Note: the parts can be written concurrently, but a single part can't
func (p *Partition[T]) Insert(i int, c kmer.Count[T]) error {
	if p.bags == nil {
		return errors.Errorf("partition %v is not open for writing", p.name)
	}
	return p.bags[i].Insert(c)
}

// Flush flushes every part
func (p *Partition[T]) Flush() error {
	for _, bag := range p.bags {
		if err := bag.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every part
func (p *Partition[T]) Close() error {
	var err error
	for _, bag := range p.bags {
		if bag == nil {
			continue
		}
		if cerr := bag.Close(); err == nil {
			err = cerr
		}
	}
	p.bags = nil
	return err
}

// ReadPart loads every record of part i
func (p *Partition[T]) ReadPart(i int) ([]kmer.Count[T], error) {
	return ReadBag[T](p.PartPath(i))
}

// Iterator returns a pull iterator over the records of every part, in part order
func (p *Partition[T]) Iterator() *Iterator[T] {
	paths := make([]string, p.nbParts)
	for i := range paths {
		paths[i] = p.PartPath(i)
	}
	return &Iterator[T]{paths: paths, done: true}
}

// Iterator is a pull iterator over Count records
type Iterator[T largeint.Integer[T]] struct {
	paths  []string
	part   int
	reader *bagReader[T]
	item   kmer.Count[T]
	done   bool
	err    error
}

// First moves to the first record
func (it *Iterator[T]) First() {
	it.Close()
	it.part, it.done, it.err = -1, false, nil
	it.nextPart()
	it.Next()
}

func (it *Iterator[T]) nextPart() bool {
	if it.reader != nil {
		it.reader.close()
		it.reader = nil
	}
	it.part++
	if it.part >= len(it.paths) {
		return false
	}
	r, err := openBag[T](it.paths[it.part])
	if err != nil {
		it.err = err
		return false
	}
	it.reader = r
	return true
}

// Next moves to the next record, moving on to the next part when needed
func (it *Iterator[T]) Next() {
	for !it.done {
		if it.reader == nil {
			it.done = true
			return
		}
		c, err := it.reader.read()
		if err == nil {
			it.item = c
			return
		}
		if err != io.EOF {
			it.err, it.done = err, true
			return
		}
		if !it.nextPart() {
			it.done = true
		}
	}
}

// IsDone is true once every record has been read or an error stopped the iteration
func (it *Iterator[T]) IsDone() bool {
	return it.done
}

// Item returns the current record
func (it *Iterator[T]) Item() kmer.Count[T] {
	return it.item
}

// Part returns the index of the part holding the current record
func (it *Iterator[T]) Part() int {
	return it.part
}

// Err returns the error that stopped the iteration, if any
func (it *Iterator[T]) Err() error {
	return it.err
}

// Close releases the open file
func (it *Iterator[T]) Close() error {
	it.done = true
	if it.reader == nil {
		return nil
	}
	err := it.reader.close()
	it.reader = nil
	return err
}
