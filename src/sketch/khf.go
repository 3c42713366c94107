package sketch

import (
	"fmt"
	"math"

	"github.com/will-rowe/kmerbank/src/data"
	"github.com/will-rowe/kmerbank/src/kmer"
	"github.com/will-rowe/kmerbank/src/largeint"
)

// KHFsketch is the K-Hash Functions MinHash sketch of a set of k-mers
type KHFsketch struct {
	kmerSize   uint
	sketchSize uint
	sketch     []uint64
	model      *kmer.Model[largeint.Uint64]
}

// NewKHFsketch is the constructor for a KHFsketch, k must be below 32
func NewKHFsketch(k, s uint) (*KHFsketch, error) {
	model, err := kmer.NewModel[largeint.Uint64](int(k), kmer.Minimum)
	if err != nil {
		return nil, err
	}
	sketch := make([]uint64, s)
	for i := range sketch {
		sketch[i] = math.MaxUint64
	}
	return &KHFsketch{
		kmerSize:   k,
		sketchSize: s,
		sketch:     sketch,
		model:      model,
	}, nil
}

// AddSequence is a method to decompose a sequence to canonical k-mers, hash them and add any minimums to the sketch
// K-mers containing residues other than ACGT are skipped.
func (mh *KHFsketch) AddSequence(sequence []byte) error {
	if uint(len(sequence)) < mh.kmerSize {
		return fmt.Errorf("sequence length (%d) is shorter than k-mer length (%d)", len(sequence), mh.kmerSize)
	}
	start := 0
	for i := 0; i <= len(sequence); i++ {
		if i < len(sequence) && isNucleotide(sequence[i]) {
			continue
		}
		if err := mh.addChunk(sequence[start:i]); err != nil {
			return err
		}
		start = i + 1
	}
	return nil
}

func (mh *KHFsketch) addChunk(chunk []byte) error {
	if uint(len(chunk)) < mh.kmerSize {
		return nil
	}
	d, err := data.NewFromBytes(chunk, len(chunk), data.ASCII)
	if err != nil {
		return err
	}
	_, err = mh.model.Iterate(d, func(k kmer.Kmer[largeint.Uint64], _ int) {
		hv1 := k.Value().Hash64()
		hv2 := hv1<<8 | uint64(mh.kmerSize)
		for j, min := range mh.sketch {
			if hv := hv1 + uint64(j)*hv2; hv < min {
				mh.sketch[j] = hv
			}
		}
	})
	return err
}

func isNucleotide(c byte) bool {
	switch c {
	case 'A', 'C', 'G', 'T', 'a', 'c', 'g', 't':
		return true
	}
	return false
}

// GetSketch is a method to return the sketch
func (mh *KHFsketch) GetSketch() []uint64 {
	return mh.sketch
}

// Merge is a method to combine another KHF sketch, giving the sketch of the union of the two sets
func (mh *KHFsketch) Merge(other MinHash) error {
	querySketch, err := mh.check(other)
	if err != nil {
		return err
	}
	for i, v := range querySketch.sketch {
		if v < mh.sketch[i] {
			mh.sketch[i] = v
		}
	}
	return nil
}

func (mh *KHFsketch) check(other MinHash) (*KHFsketch, error) {
	querySketch, ok := other.(*KHFsketch)
	if !ok {
		return nil, fmt.Errorf("mismatched MinHash types: %T vs. %T", mh, other)
	}
	if len(mh.sketch) != len(querySketch.sketch) || mh.kmerSize != querySketch.kmerSize {
		return nil, fmt.Errorf("sketches were built with different parameters (k=%d,s=%d vs. k=%d,s=%d)", mh.kmerSize, len(mh.sketch), querySketch.kmerSize, len(querySketch.sketch))
	}
	return querySketch, nil
}

// GetSimilarity estimates the Jaccard similarity of two k-mer sets based on the KHF sketch
func (mh *KHFsketch) GetSimilarity(other MinHash) (float64, error) {
	querySketch, err := mh.check(other)
	if err != nil {
		return 0.0, err
	}
	intersect := 0
	for i := range mh.sketch {
		if mh.sketch[i] == querySketch.sketch[i] {
			intersect++
		}
	}
	return float64(intersect) / float64(mh.sketchSize), nil
}
