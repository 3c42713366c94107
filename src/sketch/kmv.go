package sketch

import (
	"container/heap"
	"fmt"
	"sort"

	"github.com/will-rowe/ntHash"
)

// KMVsketch is the K-Minimum Values MinHash sketch of a set of k-mers
type KMVsketch struct {
	kmerSize   uint
	sketchSize uint
	heap       *IntHeap
	members    map[uint64]struct{}
}

// NewKMVsketch is the constructor for a KMVsketch
func NewKMVsketch(k, s uint) *KMVsketch {
	newSketch := &KMVsketch{
		kmerSize:   k,
		sketchSize: s,
		heap:       &IntHeap{},
		members:    make(map[uint64]struct{}, s),
	}
	heap.Init(newSketch.heap)
	return newSketch
}

// AddSequence is a method to decompose a sequence to canonical k-mers, hash them and add any minimums to the sketch
func (kmv *KMVsketch) AddSequence(sequence []byte) error {
	if len(sequence) < int(kmv.kmerSize) {
		return fmt.Errorf("sequence length (%d) is shorter than k-mer length (%d)", len(sequence), kmv.kmerSize)
	}
	hasher, err := ntHash.New(&sequence, kmv.kmerSize)
	if err != nil {
		return err
	}
	for hv := range hasher.Hash(CANONICAL) {
		kmv.add(hv)
	}
	return nil
}

// add keeps hv if it is one of the sketchSize smallest distinct values seen
func (kmv *KMVsketch) add(hv uint64) {
	if _, ok := kmv.members[hv]; ok {
		return
	}
	if len(*kmv.heap) < int(kmv.sketchSize) {
		heap.Push(kmv.heap, hv)
		kmv.members[hv] = struct{}{}
		return
	}
	if hv < (*kmv.heap)[0] {
		delete(kmv.members, (*kmv.heap)[0])
		(*kmv.heap)[0] = hv
		kmv.members[hv] = struct{}{}
		heap.Fix(kmv.heap, 0)
	}
}

// GetSketch is a method to return the sketch values, sorted from min to max
func (kmv *KMVsketch) GetSketch() []uint64 {
	sketch := make([]uint64, len(*kmv.heap))
	copy(sketch, *kmv.heap)
	sort.Slice(sketch, func(i, j int) bool { return sketch[i] < sketch[j] })
	return sketch
}

// Merge is a method to add the values of another KMV sketch, giving the sketch of the union of the two sets
func (kmv *KMVsketch) Merge(mh MinHash) error {
	other, err := kmv.check(mh)
	if err != nil {
		return err
	}
	for _, hv := range *other.heap {
		kmv.add(hv)
	}
	return nil
}

func (kmv *KMVsketch) check(mh MinHash) (*KMVsketch, error) {
	other, ok := mh.(*KMVsketch)
	if !ok {
		return nil, fmt.Errorf("mismatched MinHash types: %T vs. %T", kmv, mh)
	}
	if other.kmerSize != kmv.kmerSize || other.sketchSize != kmv.sketchSize {
		return nil, fmt.Errorf("sketches were built with different parameters (k=%d,s=%d vs. k=%d,s=%d)", kmv.kmerSize, kmv.sketchSize, other.kmerSize, other.sketchSize)
	}
	return other, nil
}

// GetSimilarity estimates the Jaccard similarity of two k-mer sets: the fraction of the smallest values of the
// union that are found in both sketches
func (kmv *KMVsketch) GetSimilarity(mh MinHash) (float64, error) {
	other, err := kmv.check(mh)
	if err != nil {
		return 0.0, err
	}
	a, b := kmv.GetSketch(), other.GetSketch()
	if len(a) == 0 || len(b) == 0 {
		return 0.0, fmt.Errorf("can't compare empty sketches")
	}
	size := len(a)
	if len(b) > size {
		size = len(b)
	}
	i, j, union, shared := 0, 0, 0, 0
	for union < size && (i < len(a) || j < len(b)) {
		switch {
		case j == len(b) || (i < len(a) && a[i] < b[j]):
			i++
		case i == len(a) || b[j] < a[i]:
			j++
		default:
			shared++
			i++
			j++
		}
		union++
	}
	return float64(shared) / float64(union), nil
}
