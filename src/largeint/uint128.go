package largeint

import (
	"encoding/binary"

	"lukechampine.com/uint128"
)

// Uint128 is the 128 bit k-mer integer (span 64)
type Uint128 struct {
	v uint128.Uint128
}

func (Uint128) Span() int { return 64 }
func (Uint128) Size() int { return 16 }
func (Uint128) FromUint64(v uint64) Uint128 { return Uint128{uint128.From64(v)} }
func (x Uint128) Shl(n uint) Uint128 { return Uint128{x.v.Lsh(n)} }
func (x Uint128) Shr(n uint) Uint128 { return Uint128{x.v.Rsh(n)} }
func (x Uint128) Add(v Uint128) Uint128 { return Uint128{x.v.AddWrap(v.v)} }
func (x Uint128) Sub(v Uint128) Uint128 { return Uint128{x.v.SubWrap(v.v)} }
func (x Uint128) And(v Uint128) Uint128 { return Uint128{x.v.And(v.v)} }
func (x Uint128) Or(v Uint128) Uint128 { return Uint128{x.v.Or(v.v)} }
func (x Uint128) Xor(v Uint128) Uint128 { return Uint128{x.v.Xor(v.v)} }
func (x Uint128) Less(v Uint128) bool { return x.v.Cmp(v.v) < 0 }
func (x Uint128) Low() uint64 { return x.v.Lo }
func (x Uint128) String() string { return x.v.String() }

// Hash64 mixes both words
func (x Uint128) Hash64() uint64 {
	return mix64(x.v.Lo ^ mix64(x.v.Hi))
}

// Bytes exports the value as 16 little-endian bytes
func (x Uint128) Bytes() []byte {
	b := make([]byte, 16)
	x.v.PutBytes(b)
	return b
}

// SetBytes imports 16 little-endian bytes
func (Uint128) SetBytes(b []byte) Uint128 {
	return Uint128{uint128.New(binary.LittleEndian.Uint64(b[:8]), binary.LittleEndian.Uint64(b[8:16]))}
}
