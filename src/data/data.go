// Package data contains the Data type, a buffer of residues tagged with the encoding used to store them.
package data

import (
	"fmt"
)

// Encoding describes how residues are held in a Data buffer
type Encoding int

const (
	// ASCII holds one character per residue (ACGT, case insensitive)
	ASCII Encoding = iota

	// INTEGER holds one small integer (0..3) per residue
	INTEGER

	// BINARY holds 2 bits per residue, 4 residues per byte, the first residue in the high bits
	BINARY
)

// String returns the name of the encoding
func (e Encoding) String() string {
	switch e {
	case ASCII:
		return "ascii"
	case INTEGER:
		return "integer"
	case BINARY:
		return "binary"
	default:
		return fmt.Sprintf("unknown(%d)", int(e))
	}
}

// Data is a buffer of residues
// Note: a Data may reference (not copy) the buffer of another Data, see SetRef
type Data struct {
	encoding Encoding
	buffer   []byte
	size     int
}

// New returns an empty Data using the given encoding
func New(encoding Encoding) *Data {
	return &Data{encoding: encoding}
}

// NewFromString returns an ASCII Data holding a copy of the given sequence
func NewFromString(seq string) *Data {
	return &Data{encoding: ASCII, buffer: []byte(seq), size: len(seq)}
}

// NewFromBytes returns a Data wrapping buf (no copy), holding size residues
func NewFromBytes(buf []byte, size int, encoding Encoding) (*Data, error) {
	d := &Data{encoding: encoding, buffer: buf, size: size}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Encoding returns the encoding of the residues held by the Data
func (d *Data) Encoding() Encoding {
	return d.encoding
}

// Buffer returns the underlying bytes
func (d *Data) Buffer() []byte {
	return d.buffer
}

// Size returns the number of residues
func (d *Data) Size() int {
	return d.size
}

// Set points the Data at buf (no copy), holding size residues
func (d *Data) Set(buf []byte, size int) error {
	d.buffer = buf
	d.size = size
	return d.Validate()
}

// SetRef points the Data at a sub range of another Data without copying
func (d *Data) SetRef(ref *Data, offset, length int) error {
	if offset < 0 || length < 0 || offset+length > ref.size {
		return fmt.Errorf("reference out of range: offset %d, length %d, size %d", offset, length, ref.size)
	}
	d.encoding = ref.encoding
	d.size = length
	switch ref.encoding {
	case ASCII, INTEGER:
		d.buffer = ref.buffer[offset : offset+length]
	case BINARY:
		if offset%4 != 0 {
			return fmt.Errorf("binary data can only be referenced on a byte boundary (offset %d)", offset)
		}
		d.buffer = ref.buffer[offset/4 : (offset+length+3)/4]
	default:
		return fmt.Errorf("unknown data encoding: %v", ref.encoding)
	}
	return nil
}

// Validate checks that Size residues can be read from the buffer without overrunning it
func (d *Data) Validate() error {
	if d.size < 0 {
		return fmt.Errorf("negative data size: %d", d.size)
	}
	var need int
	switch d.encoding {
	case ASCII, INTEGER:
		need = d.size
	case BINARY:
		need = (d.size + 3) / 4
	default:
		return fmt.Errorf("unknown data encoding: %v", d.encoding)
	}
	if need > len(d.buffer) {
		return fmt.Errorf("%v data of %d residues needs %d bytes, buffer holds %d", d.encoding, d.size, need, len(d.buffer))
	}
	return nil
}

// String returns the residues as ACGT characters
func (d *Data) String() string {
	out := make([]byte, d.size)
	for i := 0; i < d.size; i++ {
		switch d.encoding {
		case ASCII:
			out[i] = d.buffer[i]
		case INTEGER:
			out[i] = decodeTable[d.buffer[i]&3]
		case BINARY:
			out[i] = decodeTable[(d.buffer[i>>2]>>uint((3-(i&3))*2))&3]
		}
	}
	return string(out)
}

// decodeTable converts a 2-bit code back to a nucleotide
var decodeTable = [4]byte{'A', 'C', 'G', 'T'}

// Pack converts an ASCII Data to a newly allocated BINARY Data
// Note: characters other than ACGT (any case) cause an error
func Pack(ascii *Data) (*Data, error) {
	if ascii.encoding != ASCII {
		return nil, fmt.Errorf("can only pack ascii data, not %v", ascii.encoding)
	}
	packed := make([]byte, (ascii.size+3)/4)
	for i := 0; i < ascii.size; i++ {
		var code byte
		switch ascii.buffer[i] {
		case 'A', 'a':
			code = 0
		case 'C', 'c':
			code = 1
		case 'G', 'g':
			code = 2
		case 'T', 't':
			code = 3
		default:
			return nil, fmt.Errorf("invalid nucleotide at position %d: %q", i, ascii.buffer[i])
		}
		packed[i>>2] |= code << uint((3-(i&3))*2)
	}
	return &Data{encoding: BINARY, buffer: packed, size: ascii.size}, nil
}
