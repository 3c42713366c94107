package kmer

import (
	"github.com/pkg/errors"
	"github.com/will-rowe/kmerbank/src/data"
	"github.com/will-rowe/kmerbank/src/largeint"
)

// MinimizerKmer is a canonical k-mer plus its minimizer
type MinimizerKmer[T largeint.Integer[T]] struct {
	Kmer[T]
	minimizer T
	position  int
}

// Minimizer returns the canonical m-mer with the smallest value in the k-mer
func (k MinimizerKmer[T]) Minimizer() T { return k.minimizer }

// Position returns the offset of the minimizer within the k-mer value
func (k MinimizerKmer[T]) Position() int { return k.position }

// MinimizerModel reduces canonical k-mers to their minimizer
type MinimizerModel[T largeint.Integer[T]] struct {
	kmerModel *Model[T]
	mmerModel *Model[T]
	nbWindows int
}

// NewMinimizerModel is the MinimizerModel constructor
func NewMinimizerModel[T largeint.Integer[T]](kmerSize, mmerSize int) (*MinimizerModel[T], error) {
	if mmerSize < 1 || mmerSize >= kmerSize {
		return nil, errors.Wrapf(ErrConfiguration, "minimizer size %d must be between 1 and k-1 (k=%d)", mmerSize, kmerSize)
	}
	kmerModel, err := NewModel[T](kmerSize, Minimum)
	if err != nil {
		return nil, err
	}
	mmerModel, err := NewModel[T](mmerSize, Minimum)
	if err != nil {
		return nil, err
	}
	return &MinimizerModel[T]{
		kmerModel: kmerModel,
		mmerModel: mmerModel,
		nbWindows: kmerSize - mmerSize + 1,
	}, nil
}

// KmersModel returns the canonical k-mer model
func (mm *MinimizerModel[T]) KmersModel() *Model[T] { return mm.kmerModel }

// MmersModel returns the canonical m-mer model
func (mm *MinimizerModel[T]) MmersModel() *Model[T] { return mm.mmerModel }

// KmerSize returns the size of the k-mers
func (mm *MinimizerModel[T]) KmerSize() int { return mm.kmerModel.kmerSize }

// window returns the canonical m-mer starting at base p of the k-mer
func (mm *MinimizerModel[T]) window(kmer T, p int) T {
	shift := uint(2 * (mm.nbWindows - 1 - p))
	return mm.mmerModel.Canonical(kmer.Shr(shift).And(mm.mmerModel.kmerMask))
}

// Minimizer returns the minimizer of a k-mer value and its position
// On ties the leftmost window is kept.
func (mm *MinimizerModel[T]) Minimizer(kmer T) (T, int) {
	best, pos := mm.window(kmer, 0), 0
	for p := 1; p < mm.nbWindows; p++ {
		if w := mm.window(kmer, p); w.Less(best) {
			best, pos = w, p
		}
	}
	return best, pos
}

// MinimizerValue returns the minimizer of a k-mer value
func (mm *MinimizerModel[T]) MinimizerValue(kmer T) T {
	minimizer, _ := mm.Minimizer(kmer)
	return minimizer
}

// Iterate k-merizes the data, calling fn with each canonical k-mer and its minimizer
// While consecutive k-mers are canonical on the same strand the minimizer is rolled with them, and it is
// only recomputed when it leaves the window or the strand changes.
func (mm *MinimizerModel[T]) Iterate(d *data.Data, fn func(kmer MinimizerKmer[T], idx int)) (bool, error) {
	var (
		prev    MinimizerKmer[T]
		started bool
		last    = mm.nbWindows - 1
	)
	return mm.kmerModel.Iterate(d, func(kmer Kmer[T], idx int) {
		cur := MinimizerKmer[T]{Kmer: kmer}
		switch {
		case started && kmer.IsForward() && prev.IsForward() && prev.position > 0:
			// value slid left, the new window is the last one
			cur.minimizer, cur.position = prev.minimizer, prev.position-1
			if w := mm.window(kmer.value, last); w.Less(cur.minimizer) {
				cur.minimizer, cur.position = w, last
			}
		case started && !kmer.IsForward() && !prev.IsForward() && prev.position < last:
			// value slid right, the new window is the first one and wins ties
			cur.minimizer, cur.position = prev.minimizer, prev.position+1
			if w := mm.window(kmer.value, 0); !cur.minimizer.Less(w) {
				cur.minimizer, cur.position = w, 0
			}
		default:
			cur.minimizer, cur.position = mm.Minimizer(kmer.value)
		}
		prev, started = cur, true
		fn(cur, idx)
	})
}

// Build collects the minimizer k-mers of the data into kmers (which is reset and reused)
func (mm *MinimizerModel[T]) Build(d *data.Data, kmers []MinimizerKmer[T]) ([]MinimizerKmer[T], bool, error) {
	kmers = kmers[:0]
	ok, err := mm.Iterate(d, func(kmer MinimizerKmer[T], idx int) {
		kmers = append(kmers, kmer)
	})
	if err != nil {
		return kmers[:0], false, err
	}
	return kmers, ok, nil
}

// NewIterator returns a model iterator over the minimizer k-mers of this model
func (mm *MinimizerModel[T]) NewIterator() *Iterator[MinimizerKmer[T]] {
	return NewIterator[MinimizerKmer[T]](mm)
}
