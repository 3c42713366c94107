// Package kmer contains the k-mer models. A model converts nucleotides to fixed-width integers (2 bits per base)
// under one of three modes (direct, reverse complement, canonical) and k-merizes sequences using a rolling update.
package kmer

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/will-rowe/kmerbank/src/data"
	"github.com/will-rowe/kmerbank/src/largeint"
)

// MaxKmerSize is the largest k-mer size supported (by a Uint256 model)
const MaxKmerSize = 127

// Mode selects which strand a model reports
type Mode int

const (
	// Direct reports the k-mer as read
	Direct Mode = iota

	// Revcomp reports the reverse complement of the k-mer
	Revcomp

	// Minimum reports the canonical k-mer (the smaller of the k-mer and its reverse complement)
	Minimum
)

// String returns the name of the mode
func (m Mode) String() string {
	switch m {
	case Direct:
		return "direct"
	case Revcomp:
		return "revcomp"
	case Minimum:
		return "minimum"
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}

// Kmer holds both strands of a k-mer, plus the value selected by the model mode
type Kmer[T largeint.Integer[T]] struct {
	value     T
	forward   T
	revcomp   T
	isForward bool
}

// Value returns the k-mer under the model mode
func (k Kmer[T]) Value() T { return k.value }

// Forward returns the k-mer as read
func (k Kmer[T]) Forward() T { return k.forward }

// Revcomp returns the reverse complement of the k-mer
func (k Kmer[T]) Revcomp() T { return k.revcomp }

// IsForward reports if the value was taken from the forward strand, matching the flag returned by GetKmer
func (k Kmer[T]) IsForward() bool { return k.isForward }

// Count is a k-mer and the number of times it was seen
type Count[T largeint.Integer[T]] struct {
	Value     T
	Abundance uint16
}

// Model converts nucleotides to k-mers of a fixed size
// Note: a Model is read-only once built and can be shared between go routines
type Model[T largeint.Integer[T]] struct {
	kmerSize     int
	mode         Mode
	kmerMask     T
	revcompTable [4]T
}

// NewModel is the Model constructor
func NewModel[T largeint.Integer[T]](kmerSize int, mode Mode) (*Model[T], error) {
	var zero T
	if kmerSize < 1 || kmerSize >= zero.Span() {
		return nil, errors.Wrapf(ErrConfiguration, "k-mer size %d not supported by %T (must be 1..%d)", kmerSize, zero, zero.Span()-1)
	}
	switch mode {
	case Direct, Revcomp, Minimum:
	default:
		return nil, errors.Wrapf(ErrConfiguration, "unknown k-mer mode: %v", mode)
	}
	model := &Model[T]{
		kmerSize: kmerSize,
		mode:     mode,
		kmerMask: largeint.Mask[T](uint(2 * kmerSize)),
	}

	// the table holds the complement of each base, shifted to the start of the reverse k-mer
	for c := uint64(0); c < 4; c++ {
		model.revcompTable[c] = zero.FromUint64(3 - c).Shl(uint(2 * (kmerSize - 1)))
	}
	return model, nil
}

// KmerSize returns the size of the k-mers
func (m *Model[T]) KmerSize() int { return m.kmerSize }

// Mode returns the mode of the model
func (m *Model[T]) Mode() Mode { return m.mode }

// Mask returns the mask covering the 2*k meaningful bits
func (m *Model[T]) Mask() T { return m.kmerMask }

// newKmer selects the value reported by the model mode
func (m *Model[T]) newKmer(forward, revcomp T) Kmer[T] {
	kmer := Kmer[T]{forward: forward, revcomp: revcomp}
	switch m.mode {
	case Direct:
		kmer.value, kmer.isForward = forward, true
	case Revcomp:
		kmer.value = revcomp
	default:
		kmer.isForward = !revcomp.Less(forward)
		kmer.value = largeint.Min(forward, revcomp)
	}
	return kmer
}

// seed computes both strands of the k-mer starting at offset
func (m *Model[T]) seed(buf []byte, read digitFunc, offset int) (forward, revcomp T, err error) {
	var zero T
	for i := 0; i < m.kmerSize; i++ {
		d, err := read(buf, offset+i)
		if err != nil {
			return zero, zero, err
		}
		forward = forward.Shl(2).Add(zero.FromUint64(d))
		revcomp = revcomp.Shr(2).Add(m.revcompTable[d])
	}
	return forward, revcomp, nil
}

// CodeSeed returns the k-mer held by the first KmerSize residues of buf
func (m *Model[T]) CodeSeed(buf []byte, encoding data.Encoding) (Kmer[T], error) {
	read, err := digitReader(encoding)
	if err != nil {
		return Kmer[T]{}, err
	}
	if len(buf) < bytesNeeded(encoding, m.kmerSize) {
		return Kmer[T]{}, errors.Errorf("buffer too short for a %d-mer seed (%d bytes)", m.kmerSize, len(buf))
	}
	forward, revcomp, err := m.seed(buf, read, 0)
	if err != nil {
		return Kmer[T]{}, err
	}
	return m.newKmer(forward, revcomp), nil
}

// CodeSeedRight returns the k-mer obtained by adding one residue to the right of seed
// Note: for INTEGER and BINARY encodings nt is the 2-bit code of the residue
func (m *Model[T]) CodeSeedRight(seed Kmer[T], nt byte, encoding data.Encoding) (Kmer[T], error) {
	var d uint64
	switch encoding {
	case data.ASCII:
		c, err := asciiDigit([]byte{nt}, 0)
		if err != nil {
			return Kmer[T]{}, err
		}
		d = c
	case data.INTEGER, data.BINARY:
		if nt > 3 {
			return Kmer[T]{}, errors.Wrapf(ErrEncoding, "invalid nucleotide code: %d", nt)
		}
		d = uint64(nt)
	default:
		return Kmer[T]{}, errors.Wrapf(ErrConfiguration, "unknown data encoding: %v", encoding)
	}
	var zero T
	forward := seed.forward.Shl(2).Add(zero.FromUint64(d)).And(m.kmerMask)
	revcomp := seed.revcomp.Shr(2).Add(m.revcompTable[d]).And(m.kmerMask)
	return m.newKmer(forward, revcomp), nil
}

// GetKmer returns the k-mer at offset and if it was read from the forward strand
func (m *Model[T]) GetKmer(d *data.Data, offset int) (T, bool, error) {
	var zero T
	if m.mode == Revcomp {
		return zero, false, errors.Wrapf(ErrConfiguration, "GetKmer does not support %v mode", m.mode)
	}
	read, err := digitReader(d.Encoding())
	if err != nil {
		return zero, false, err
	}
	if offset < 0 || offset+m.kmerSize > d.Size() {
		return zero, false, errors.Errorf("no %d-mer at offset %d of a %d residue sequence", m.kmerSize, offset, d.Size())
	}
	forward, revcomp, err := m.seed(d.Buffer(), read, offset)
	if err != nil {
		return zero, false, err
	}
	if m.mode == Direct || !revcomp.Less(forward) {
		return forward, true, nil
	}
	return revcomp, false, nil
}

// Iterate k-merizes the data, calling fn for each k-mer in position order
// It returns false if the data is shorter than KmerSize (this is not an error). An invalid residue
// stops the iteration before the k-mer containing it is reported.
func (m *Model[T]) Iterate(d *data.Data, fn func(kmer Kmer[T], idx int)) (bool, error) {
	if m.mode == Revcomp {
		return false, errors.Wrapf(ErrConfiguration, "unsupported data format for k-merization (%v data, %v mode)", d.Encoding(), m.mode)
	}
	read, err := digitReader(d.Encoding())
	if err != nil {
		return false, errors.Wrap(err, "unsupported data format for k-merization")
	}
	if err := d.Validate(); err != nil {
		return false, err
	}
	nbKmers := d.Size() - m.kmerSize + 1
	if nbKmers <= 0 {
		return false, nil
	}
	buf := d.Buffer()

	// the first k-mer is computed in full
	forward, revcomp, err := m.seed(buf, read, 0)
	if err != nil {
		return false, err
	}
	fn(m.newKmer(forward, revcomp), 0)

	// the rest are rolled from their predecessor
	var zero T
	for i := 1; i < nbKmers; i++ {
		c, err := read(buf, i+m.kmerSize-1)
		if err != nil {
			return false, err
		}
		forward = forward.Shl(2).Add(zero.FromUint64(c)).And(m.kmerMask)
		revcomp = revcomp.Shr(2).Add(m.revcompTable[c]).And(m.kmerMask)
		fn(m.newKmer(forward, revcomp), i)
	}
	return true, nil
}

// Build collects the k-mers of the data into kmers (which is reset and reused)
func (m *Model[T]) Build(d *data.Data, kmers []Kmer[T]) ([]Kmer[T], bool, error) {
	kmers = kmers[:0]
	ok, err := m.Iterate(d, func(kmer Kmer[T], idx int) {
		kmers = append(kmers, kmer)
	})
	if err != nil {
		return kmers[:0], false, err
	}
	return kmers, ok, nil
}

// NewIterator returns a model iterator over the k-mers of this model
func (m *Model[T]) NewIterator() *Iterator[Kmer[T]] {
	return NewIterator[Kmer[T]](m)
}

// IterateNeighbors calls fn with the canonical form of the 8 one-base extensions of source:
// for each base, the extension of source and then the extension of its reverse complement
func (m *Model[T]) IterateNeighbors(source T, fn func(neighbor T)) {
	revcomp := m.Revcomp(source)
	for c := byte(0); c < 4; c++ {
		fn(m.Canonical(m.ExtendRight(source, c)))
		fn(m.Canonical(m.ExtendRight(revcomp, c)))
	}
}

// Revcomp returns the reverse complement of a k-mer
func (m *Model[T]) Revcomp(kmer T) T {
	var zero, out T
	for i := 0; i < m.kmerSize; i++ {
		out = out.Shl(2).Or(zero.FromUint64(3 - kmer.Low()&3))
		kmer = kmer.Shr(2)
	}
	return out
}

// Canonical returns the smaller of a k-mer and its reverse complement
func (m *Model[T]) Canonical(kmer T) T {
	return largeint.Min(kmer, m.Revcomp(kmer))
}

// ExtendRight drops the first base of a k-mer and appends the base code c
func (m *Model[T]) ExtendRight(kmer T, c byte) T {
	var zero T
	return kmer.Shl(2).Add(zero.FromUint64(uint64(c & 3))).And(m.kmerMask)
}

// ExtendLeft drops the last base of a k-mer and prepends the base code c
func (m *Model[T]) ExtendLeft(kmer T, c byte) T {
	var zero T
	return kmer.Shr(2).Add(zero.FromUint64(uint64(c & 3)).Shl(uint(2 * (m.kmerSize - 1))))
}

// Encode returns the direct k-mer of a string of KmerSize bases
func (m *Model[T]) Encode(seq string) (T, error) {
	var zero T
	if len(seq) != m.kmerSize {
		return zero, errors.Errorf("sequence length (%d) does not match k-mer size (%d)", len(seq), m.kmerSize)
	}
	forward, _, err := m.seed([]byte(seq), asciiDigit, 0)
	return forward, err
}

// String returns the bases of a k-mer
func (m *Model[T]) String(kmer T) string {
	out := make([]byte, m.kmerSize)
	for i := m.kmerSize - 1; i >= 0; i-- {
		out[i] = nucleotides[kmer.Low()&3]
		kmer = kmer.Shr(2)
	}
	return string(out)
}
