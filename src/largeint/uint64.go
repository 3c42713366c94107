package largeint

import (
	"encoding/binary"
	"strconv"
)

// Uint64 is the native 64 bit k-mer integer (span 32)
type Uint64 uint64

func (Uint64) Span() int { return 32 }
func (Uint64) Size() int { return 8 }
func (Uint64) FromUint64(v uint64) Uint64 { return Uint64(v) }
func (x Uint64) Shl(n uint) Uint64 { return x << n }
func (x Uint64) Shr(n uint) Uint64 { return x >> n }
func (x Uint64) Add(v Uint64) Uint64 { return x + v }
func (x Uint64) Sub(v Uint64) Uint64 { return x - v }
func (x Uint64) And(v Uint64) Uint64 { return x & v }
func (x Uint64) Or(v Uint64) Uint64 { return x | v }
func (x Uint64) Xor(v Uint64) Uint64 { return x ^ v }
func (x Uint64) Less(v Uint64) bool { return x < v }
func (x Uint64) Low() uint64 { return uint64(x) }
func (x Uint64) Hash64() uint64 { return mix64(uint64(x)) }
func (x Uint64) String() string { return strconv.FormatUint(uint64(x), 10) }
func (Uint64) SetBytes(b []byte) Uint64 { return Uint64(binary.LittleEndian.Uint64(b)) }

// Bytes exports the value as 8 little-endian bytes
func (x Uint64) Bytes() []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, uint64(x))
	return b
}
