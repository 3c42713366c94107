// Package graph contains a minimal de Bruijn graph built from a set of k-mers. Nodes are oriented k-mers, edges are
// not stored: two nodes are linked when they overlap by k-1 nucleotides and both are in the set. The set is either
// exact (with abundances) or a bloom filter.
package graph

import (
	"fmt"
	"sort"

	"github.com/will-rowe/kmerbank/src/bank"
	"github.com/will-rowe/kmerbank/src/kmer"
	"github.com/will-rowe/kmerbank/src/largeint"
	"github.com/will-rowe/kmerbank/src/storage"
)

// DefaultMaxSteps bounds the walks along simple paths
const DefaultMaxSteps = 100000

// Node is a k-mer of the graph, read on one strand
type Node[T largeint.Integer[T]] struct {
	Value     T
	Abundance uint16
}

// Graph is a de Bruijn graph
type Graph[T largeint.Integer[T]] struct {
	model *kmer.Model[T]
	kmers map[T]uint16
	bloom *BloomFilter
	size  uint64
}

// New returns an empty graph using an exact k-mer set
func New[T largeint.Integer[T]](kmerSize int) (*Graph[T], error) {
	model, err := kmer.NewModel[T](kmerSize, kmer.Minimum)
	if err != nil {
		return nil, err
	}
	return &Graph[T]{model: model, kmers: make(map[T]uint16)}, nil
}

// NewWithBloom returns an empty graph using a bloom filter sized for nbKmers k-mers
func NewWithBloom[T largeint.Integer[T]](kmerSize int, nbKmers uint64, fpRate float64) (*Graph[T], error) {
	model, err := kmer.NewModel[T](kmerSize, kmer.Minimum)
	if err != nil {
		return nil, err
	}
	return &Graph[T]{model: model, bloom: NewBloomFilter(nbKmers, fpRate)}, nil
}

// FromBank builds a graph from every k-mer of a bank
func FromBank[T largeint.Integer[T]](b bank.Bank, kmerSize int, useBloom bool) (*Graph[T], error) {
	var g *Graph[T]
	var err error
	if useBloom {
		var dataSize uint64
		if _, dataSize, err = bank.Estimate(b); err != nil {
			return nil, err
		}
		g, err = NewWithBloom[T](kmerSize, dataSize, 0.01)
	} else {
		g, err = New[T](kmerSize)
	}
	if err != nil {
		return nil, err
	}
	return g, g.AddBank(b)
}

// AddBank adds every k-mer of a bank, once per occurrence
func (g *Graph[T]) AddBank(b bank.Bank) error {
	seqs, err := b.Iterator()
	if err != nil {
		return err
	}
	it := bank.NewKmerIterator(seqs, g.model.NewIterator())
	defer it.Close()
	for it.First(); !it.IsDone(); it.Next() {
		g.Add(it.Item().Value(), 1)
	}
	return it.Err()
}

// FromPartition builds a graph from the records of a partition
func FromPartition[T largeint.Integer[T]](p *storage.Partition[T], kmerSize int, useBloom bool, nbKmers uint64) (*Graph[T], error) {
	var g *Graph[T]
	var err error
	if useBloom {
		g, err = NewWithBloom[T](kmerSize, nbKmers, 0.01)
	} else {
		g, err = New[T](kmerSize)
	}
	if err != nil {
		return nil, err
	}
	it := p.Iterator()
	defer it.Close()
	for it.First(); !it.IsDone(); it.Next() {
		g.Add(it.Item().Value, it.Item().Abundance)
	}
	return g, it.Err()
}

// Model returns the k-mer model of the graph
func (g *Graph[T]) Model() *kmer.Model[T] {
	return g.model
}

// KmerSize returns the size of the nodes
func (g *Graph[T]) KmerSize() int {
	return g.model.KmerSize()
}

// Len returns the number of distinct k-mers added (bloom graphs count every insertion)
func (g *Graph[T]) Len() uint64 {
	return g.size
}

// Add inserts a k-mer (either strand), adding to its abundance
func (g *Graph[T]) Add(value T, abundance uint16) {
	canonical := g.model.Canonical(value)
	if g.bloom != nil {
		g.bloom.Add(canonical.Hash64())
		g.size++
		return
	}
	current, ok := g.kmers[canonical]
	if !ok {
		g.size++
	}
	if total := int(current) + int(abundance); total < storage.MaxAbundance {
		g.kmers[canonical] = uint16(total)
	} else {
		g.kmers[canonical] = storage.MaxAbundance
	}
}

// Contains reports if a k-mer (either strand) is in the graph
func (g *Graph[T]) Contains(value T) bool {
	canonical := g.model.Canonical(value)
	if g.bloom != nil {
		return g.bloom.Check(canonical.Hash64())
	}
	_, ok := g.kmers[canonical]
	return ok
}

func (g *Graph[T]) node(value T) Node[T] {
	n := Node[T]{Value: value}
	if g.kmers != nil {
		n.Abundance = g.kmers[g.model.Canonical(value)]
	}
	return n
}

// BuildNode returns the node of the first k nucleotides of seq
func (g *Graph[T]) BuildNode(seq string) (Node[T], error) {
	k := g.model.KmerSize()
	if len(seq) < k {
		return Node[T]{}, fmt.Errorf("sequence is shorter than the k-mer size (%d < %d)", len(seq), k)
	}
	value, err := g.model.Encode(seq[:k])
	if err != nil {
		return Node[T]{}, err
	}
	if !g.Contains(value) {
		return Node[T]{}, fmt.Errorf("%v is not in the graph", seq[:k])
	}
	return g.node(value), nil
}

// Successors returns the nodes reached by adding one nucleotide to the right of n
func (g *Graph[T]) Successors(n Node[T]) []Node[T] {
	nodes := []Node[T]{}
	for c := byte(0); c < 4; c++ {
		if next := g.model.ExtendRight(n.Value, c); g.Contains(next) {
			nodes = append(nodes, g.node(next))
		}
	}
	return nodes
}

// Predecessors returns the nodes reached by adding one nucleotide to the left of n
func (g *Graph[T]) Predecessors(n Node[T]) []Node[T] {
	nodes := []Node[T]{}
	for c := byte(0); c < 4; c++ {
		if prev := g.model.ExtendLeft(n.Value, c); g.Contains(prev) {
			nodes = append(nodes, g.node(prev))
		}
	}
	return nodes
}

// Neighbors returns the canonical k-mers of the graph that overlap n on either side
func (g *Graph[T]) Neighbors(n Node[T]) []Node[T] {
	nodes := []Node[T]{}
	g.model.IterateNeighbors(n.Value, func(neighbor T) {
		if g.Contains(neighbor) {
			nodes = append(nodes, g.node(neighbor))
		}
	})
	return nodes
}

// Outdegree returns the number of successors of n
func (g *Graph[T]) Outdegree(n Node[T]) int {
	return len(g.Successors(n))
}

// Indegree returns the number of predecessors of n
func (g *Graph[T]) Indegree(n Node[T]) int {
	return len(g.Predecessors(n))
}

// IsBranching reports if n is not on a simple path (it does not have exactly one predecessor and one successor)
func (g *Graph[T]) IsBranching(n Node[T]) bool {
	return !(g.Indegree(n) == 1 && g.Outdegree(n) == 1)
}

// BranchingSuccessors returns, for each successor of n, the first branching node found by following the simple path
// that starts there. A walk stops after maxSteps nodes or if it comes back to n.
func (g *Graph[T]) BranchingSuccessors(n Node[T], maxSteps int) []Node[T] {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	nodes := []Node[T]{}
	for _, current := range g.Successors(n) {
		for steps := 0; steps < maxSteps && !g.IsBranching(current); steps++ {
			next := g.Successors(current)[0]
			if next.Value == n.Value {
				break
			}
			current = next
		}
		nodes = append(nodes, current)
	}
	return nodes
}

// String returns the nucleotides of a node
func (g *Graph[T]) String(n Node[T]) string {
	return g.model.String(n.Value)
}

// Kmers returns the canonical k-mers of an exact graph, sorted
func (g *Graph[T]) Kmers() ([]T, error) {
	if g.kmers == nil {
		return nil, fmt.Errorf("the k-mers of a bloom filter graph can't be listed")
	}
	kmers := make([]T, 0, len(g.kmers))
	for k := range g.kmers {
		kmers = append(kmers, k)
	}
	sort.Slice(kmers, func(i, j int) bool { return kmers[i].Less(kmers[j]) })
	return kmers, nil
}
