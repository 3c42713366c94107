package kmer

import (
	"github.com/will-rowe/kmerbank/src/data"
)

// Builder materialises the items of a sequence (the k-mer models satisfy this)
type Builder[K any] interface {
	Build(d *data.Data, items []K) ([]K, bool, error)
}

// iterator states
const (
	uninitialized = iota
	ready
	done
)

// Iterator is a pull iterator over the items of one sequence at a time
// It owns the slice it fills and reuses it from one sequence to the next.
type Iterator[K any] struct {
	builder Builder[K]
	items   []K
	pos     int
	state   int
}

// NewIterator is the Iterator constructor
func NewIterator[K any](builder Builder[K]) *Iterator[K] {
	return &Iterator[K]{
		builder: builder,
		items:   make([]K, 0, 256),
		state:   uninitialized,
	}
}

// SetData builds the items of a new sequence, the iterator must then be restarted with First
func (it *Iterator[K]) SetData(d *data.Data) error {
	it.state = uninitialized
	it.pos = 0
	items, _, err := it.builder.Build(d, it.items)
	it.items = items
	return err
}

// First moves to the first item
func (it *Iterator[K]) First() {
	it.pos = 0
	it.update()
}

// Next moves to the next item
func (it *Iterator[K]) Next() {
	if it.state != ready {
		return
	}
	it.pos++
	it.update()
}

func (it *Iterator[K]) update() {
	if it.pos < len(it.items) {
		it.state = ready
	} else {
		it.state = done
	}
}

// IsDone is true unless the iterator is on an item
func (it *Iterator[K]) IsDone() bool {
	return it.state != ready
}

// Item returns the current item
func (it *Iterator[K]) Item() K {
	if it.state != ready {
		panic("kmer: Item called on an iterator that is not positioned on an item")
	}
	return it.items[it.pos]
}

// Len returns the number of items built for the current sequence
func (it *Iterator[K]) Len() int {
	return len(it.items)
}
