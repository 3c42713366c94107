package kmer

import (
	"github.com/pkg/errors"
	"github.com/will-rowe/kmerbank/src/data"
)

// invalidNucleotide marks the characters that have no 2-bit code
const invalidNucleotide = byte(255)

// nucleotideTable converts ASCII to 2-bit codes, complementary bases sum to 3
var nucleotideTable [256]byte

// nucleotides converts a 2-bit code back to a base
var nucleotides = [4]byte{'A', 'C', 'G', 'T'}

func init() {
	for i := range nucleotideTable {
		nucleotideTable[i] = invalidNucleotide
	}
	nucleotideTable['A'], nucleotideTable['a'] = 0, 0
	nucleotideTable['C'], nucleotideTable['c'] = 1, 1
	nucleotideTable['G'], nucleotideTable['g'] = 2, 2
	nucleotideTable['T'], nucleotideTable['t'] = 3, 3
}

// digitFunc returns the 2-bit code of residue i held in buf
type digitFunc func(buf []byte, i int) (uint64, error)

// digitReader returns the digitFunc for an encoding
func digitReader(encoding data.Encoding) (digitFunc, error) {
	switch encoding {
	case data.ASCII:
		return asciiDigit, nil
	case data.INTEGER:
		return integerDigit, nil
	case data.BINARY:
		return binaryDigit, nil
	default:
		return nil, errors.Wrapf(ErrConfiguration, "unknown data encoding: %v", encoding)
	}
}

func asciiDigit(buf []byte, i int) (uint64, error) {
	c := nucleotideTable[buf[i]]
	if c == invalidNucleotide {
		return 0, errors.Wrapf(ErrEncoding, "invalid nucleotide %q at position %d", buf[i], i)
	}
	return uint64(c), nil
}

func integerDigit(buf []byte, i int) (uint64, error) {
	if buf[i] > 3 {
		return 0, errors.Wrapf(ErrEncoding, "invalid nucleotide code %d at position %d", buf[i], i)
	}
	return uint64(buf[i]), nil
}

func binaryDigit(buf []byte, i int) (uint64, error) {
	return uint64(buf[i>>2]>>uint((3-(i&3))*2)) & 3, nil
}

// bytesNeeded is the number of buffer bytes holding n residues
func bytesNeeded(encoding data.Encoding, n int) int {
	if encoding == data.BINARY {
		return (n + 3) / 4
	}
	return n
}
