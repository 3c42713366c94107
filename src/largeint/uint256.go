package largeint

import (
	"encoding/binary"

	"github.com/holiman/uint256"
)

// Uint256 is the 256 bit k-mer integer (span 128)
type Uint256 struct {
	v uint256.Int
}

func (Uint256) Span() int { return 128 }
func (Uint256) Size() int { return 32 }

// FromUint64 returns v as a Uint256
func (Uint256) FromUint64(v uint64) Uint256 {
	var z Uint256
	z.v.SetUint64(v)
	return z
}

func (x Uint256) Shl(n uint) Uint256 {
	var z Uint256
	z.v.Lsh(&x.v, n)
	return z
}

func (x Uint256) Shr(n uint) Uint256 {
	var z Uint256
	z.v.Rsh(&x.v, n)
	return z
}

func (x Uint256) Add(v Uint256) Uint256 {
	var z Uint256
	z.v.Add(&x.v, &v.v)
	return z
}

func (x Uint256) Sub(v Uint256) Uint256 {
	var z Uint256
	z.v.Sub(&x.v, &v.v)
	return z
}

func (x Uint256) And(v Uint256) Uint256 {
	var z Uint256
	z.v.And(&x.v, &v.v)
	return z
}

func (x Uint256) Or(v Uint256) Uint256 {
	var z Uint256
	z.v.Or(&x.v, &v.v)
	return z
}

func (x Uint256) Xor(v Uint256) Uint256 {
	var z Uint256
	z.v.Xor(&x.v, &v.v)
	return z
}

func (x Uint256) Less(v Uint256) bool { return x.v.Lt(&v.v) }
func (x Uint256) Low() uint64 { return x.v[0] }
func (x Uint256) String() string { return x.v.ToBig().String() }

// Hash64 mixes the four words
func (x Uint256) Hash64() uint64 {
	h := uint64(0)
	for _, w := range x.v {
		h = mix64(h ^ w)
	}
	return h
}

// Bytes exports the value as 32 little-endian bytes
func (x Uint256) Bytes() []byte {
	b := make([]byte, 32)
	for i, w := range x.v {
		binary.LittleEndian.PutUint64(b[i*8:], w)
	}
	return b
}

// SetBytes imports 32 little-endian bytes
func (Uint256) SetBytes(b []byte) Uint256 {
	var z Uint256
	for i := range z.v {
		z.v[i] = binary.LittleEndian.Uint64(b[i*8:])
	}
	return z
}
