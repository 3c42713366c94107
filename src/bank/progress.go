package bank

import (
	"github.com/will-rowe/kmerbank/src/progress"
)

// ProgressIterator wraps a sequence iterator and notifies its listeners every modulo sequences
type ProgressIterator struct {
	progress.Subject
	Iterator
	modulo   uint64
	count    uint64
	finished bool
}

// NewProgressIterator is the ProgressIterator constructor
func NewProgressIterator(it Iterator, modulo uint64, listeners ...progress.Listener) *ProgressIterator {
	if modulo == 0 {
		modulo = 1
	}
	pit := &ProgressIterator{Iterator: it, modulo: modulo}
	for _, l := range listeners {
		pit.AddListener(l)
	}
	return pit
}

// First restarts the iteration and notifies Init
func (it *ProgressIterator) First() {
	it.count, it.finished = 0, false
	it.NotifyInit()
	it.Iterator.First()
	it.checkFinish()
}

// Next moves on and notifies Inc every modulo sequences
func (it *ProgressIterator) Next() {
	if it.Iterator.IsDone() {
		return
	}
	it.Iterator.Next()
	it.count++
	if it.count == it.modulo {
		it.NotifyInc(it.count)
		it.count = 0
	}
	it.checkFinish()
}

func (it *ProgressIterator) checkFinish() {
	if it.finished || !it.Iterator.IsDone() {
		return
	}
	if it.count > 0 {
		it.NotifyInc(it.count)
		it.count = 0
	}
	it.NotifyFinish()
	it.finished = true
}
