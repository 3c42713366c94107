// Package bank contains the sequence banks (in memory strings, FASTA/FASTQ files and packed binary files),
// the pull iterators over their sequences and the iterator over every k-mer of a bank.
package bank

import (
	"fmt"
	"strings"

	"github.com/will-rowe/kmerbank/src/data"
)

// Sequence is one record of a bank
type Sequence struct {
	Comment string
	Data    *data.Data
	Index   int
}

// String returns the residues of the sequence
func (s *Sequence) String() string {
	return s.Data.String()
}

// Iterator is a pull iterator over the sequences of a bank
// Item is only valid until the next call to Next. Err returns the error that stopped the iteration, if any.
type Iterator interface {
	First()
	Next()
	IsDone() bool
	Item() *Sequence
	Err() error
	Close() error
}

// Bank is a source of sequences, each call to Iterator gives a new independent iterator
type Bank interface {
	ID() string
	Iterator() (Iterator, error)
}

// Open returns the bank for a file, chosen by its extension (.gz is allowed for FASTA and FASTQ)
func Open(path string) (Bank, error) {
	name := strings.TrimSuffix(path, ".gz")
	switch {
	case hasExt(name, "fa", "fasta", "fna", "ffn"):
		return NewFasta(path), nil
	case hasExt(name, "fq", "fastq"):
		return NewFastq(path), nil
	case hasExt(path, BinaryExt):
		return OpenBinary(path)
	}
	return nil, fmt.Errorf("file does not have recognised extension: %v", path)
}

func hasExt(path string, exts ...string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(path, "."+ext) {
			return true
		}
	}
	return false
}

// Estimate returns the number of sequences and residues in a bank by iterating over it
func Estimate(b Bank) (nbSequences, dataSize uint64, err error) {
	it, err := b.Iterator()
	if err != nil {
		return 0, 0, err
	}
	defer it.Close()
	for it.First(); !it.IsDone(); it.Next() {
		nbSequences++
		dataSize += uint64(it.Item().Data.Size())
	}
	return nbSequences, dataSize, it.Err()
}
