package storage

import (
	"bufio"
	"io"
	"math"
	"os"

	"github.com/biogo/hts/bgzf"
	"github.com/pkg/errors"
	"github.com/will-rowe/kmerbank/src/kmer"
	"github.com/will-rowe/kmerbank/src/largeint"
	"gopkg.in/vmihailenco/msgpack.v2"
)

// MaxAbundance is the largest abundance a record can hold
const MaxAbundance = math.MaxUint16

// record is how a Count is written to disk
type record struct {
	Value     []byte `msgpack:"v"`
	Abundance uint16 `msgpack:"a"`
}

// Bag is an append-only file of Count records
type Bag[T largeint.Integer[T]] struct {
	path    string
	file    *os.File
	bgzf    *bgzf.Writer
	encoder *msgpack.Encoder
	len     uint64
}

// NewBag creates (or truncates) a bag file
func NewBag[T largeint.Integer[T]](path string) (*Bag[T], error) {
	fh, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	bw := bgzf.NewWriter(fh, 1)
	return &Bag[T]{path: path, file: fh, bgzf: bw, encoder: msgpack.NewEncoder(bw)}, nil
}

// Insert appends one record
func (b *Bag[T]) Insert(c kmer.Count[T]) error {
	if err := b.encoder.Encode(&record{Value: c.Value.Bytes(), Abundance: c.Abundance}); err != nil {
		return errors.Wrapf(err, "could not write to %v", b.path)
	}
	b.len++
	return nil
}

// InsertAll appends a batch of records
func (b *Bag[T]) InsertAll(counts []kmer.Count[T]) error {
	for _, c := range counts {
		if err := b.Insert(c); err != nil {
			return err
		}
	}
	return nil
}

// Flush compresses and writes the pending records
func (b *Bag[T]) Flush() error {
	return b.bgzf.Flush()
}

// Len returns the number of records inserted
func (b *Bag[T]) Len() uint64 {
	return b.len
}

// Close flushes and closes the file
func (b *Bag[T]) Close() error {
	if b.file == nil {
		return nil
	}
	err := b.bgzf.Close()
	if cerr := b.file.Close(); err == nil {
		err = cerr
	}
	b.file = nil
	return err
}

// ReadBag loads every record of a bag file
func ReadBag[T largeint.Integer[T]](path string) ([]kmer.Count[T], error) {
	r, err := openBag[T](path)
	if err != nil {
		return nil, err
	}
	defer r.close()
	counts := []kmer.Count[T]{}
	for {
		c, err := r.read()
		if err == io.EOF {
			return counts, nil
		}
		if err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
}

// bagReader decodes the records of one bag file
type bagReader[T largeint.Integer[T]] struct {
	path    string
	file    *os.File
	bgzf    *bgzf.Reader
	decoder *msgpack.Decoder
	rec     record
}

func openBag[T largeint.Integer[T]](path string) (*bagReader[T], error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	br, err := bgzf.NewReader(fh, 1)
	if err != nil {
		fh.Close()
		return nil, errors.Wrapf(err, "%v is not a bgzf file", path)
	}
	return &bagReader[T]{path: path, file: fh, bgzf: br, decoder: msgpack.NewDecoder(bufio.NewReader(br))}, nil
}

// read returns the next record, or io.EOF at the end of the file
func (r *bagReader[T]) read() (kmer.Count[T], error) {
	var zero T
	r.rec = record{}
	if err := r.decoder.Decode(&r.rec); err != nil {
		if err == io.EOF {
			return kmer.Count[T]{}, io.EOF
		}
		return kmer.Count[T]{}, errors.Wrapf(err, "could not read %v", r.path)
	}
	if len(r.rec.Value) != zero.Size() {
		return kmer.Count[T]{}, errors.Errorf("record of %d bytes in %v, expected %d (k-mer width mismatch?)", len(r.rec.Value), r.path, zero.Size())
	}
	return kmer.Count[T]{Value: zero.SetBytes(r.rec.Value), Abundance: r.rec.Abundance}, nil
}

func (r *bagReader[T]) close() error {
	r.bgzf.Close()
	return r.file.Close()
}
