// Package largeint contains the fixed-width unsigned integers used to hold k-mers (2 bits per nucleotide).
// Three widths are available and are chosen once per build of a k-mer model:
//
//	Uint64  - k-mers up to 31 nucleotides
//	Uint128 - k-mers up to 63 nucleotides
//	Uint256 - k-mers up to 127 nucleotides
package largeint

// Integer is the contract shared by the fixed-width integers
// Note: all operations wrap on overflow and never mutate the receiver
type Integer[T any] interface {
	comparable

	// Span is the number of nucleotides the type can hold (bits / 2)
	Span() int

	// Size is the number of bytes used by Bytes
	Size() int

	// FromUint64 returns v as a T (the receiver is ignored)
	FromUint64(v uint64) T

	Shl(n uint) T
	Shr(n uint) T
	Add(v T) T
	Sub(v T) T
	And(v T) T
	Or(v T) T
	Xor(v T) T
	Less(v T) bool

	// Low returns the least significant 64 bits
	Low() uint64

	// Hash64 mixes all the bits into a 64 bit hash value
	Hash64() uint64

	// Bytes exports the value as Size() little-endian bytes
	Bytes() []byte

	// SetBytes imports a value written by Bytes (the receiver is ignored)
	SetBytes(b []byte) T

	// String returns the decimal representation
	String() string
}

// Min returns the smaller of two values
func Min[T Integer[T]](a, b T) T {
	if b.Less(a) {
		return b
	}
	return a
}

// Mask returns a value with the low nbits set
// Note: nbits must be lower than the bit width of T
func Mask[T Integer[T]](nbits uint) T {
	var zero T
	one := zero.FromUint64(1)
	return one.Shl(nbits).Sub(one)
}

// mix64 is the splitmix64 finaliser
func mix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
