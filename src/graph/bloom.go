package graph

import (
	"math"
	"sync"
)

var mask [64]uint64

// init will prepare the mask prior to creating a bloom filter
func init() {
	mask[0] = 1
	for i := 1; i < len(mask); i++ {
		mask[i] = 2 * mask[i-1]
	}
}

// BloomFilter is a bloom filter over 64 bit k-mer hashes
// Each value sets nbHash bits, derived from its hash by double hashing.
type BloomFilter struct {
	size   uint64
	nbHash uint64
	sketch []uint64
	lock   sync.RWMutex
}

// NewBloomFilter returns a filter sized for nbItems values at the given false positive rate
func NewBloomFilter(nbItems uint64, fpRate float64) *BloomFilter {
	if nbItems == 0 {
		nbItems = 1
	}
	if fpRate <= 0 || fpRate >= 1 {
		fpRate = 0.01
	}
	bits := uint64(math.Ceil(-float64(nbItems) * math.Log(fpRate) / (math.Ln2 * math.Ln2)))
	cells := (bits + 63) / 64
	nbHash := uint64(math.Round(float64(cells*64) / float64(nbItems) * math.Ln2))
	if nbHash < 1 {
		nbHash = 1
	}
	return &BloomFilter{
		size:   cells * 64,
		nbHash: nbHash,
		sketch: make([]uint64, cells),
	}
}

// Reset will clear all marked bits in the filter
func (BloomFilter *BloomFilter) Reset() {
	BloomFilter.lock.Lock()
	for i := 0; i < len(BloomFilter.sketch); i++ {
		BloomFilter.sketch[i] = 0
	}
	BloomFilter.lock.Unlock()
}

// Add is a method to add a hashed k-mer to the filter
func (BloomFilter *BloomFilter) Add(hv uint64) {
	h1, h2 := hv, (hv>>33|hv<<31)|1
	BloomFilter.lock.Lock()
	for i := uint64(0); i < BloomFilter.nbHash; i++ {
		h := (h1 + i*h2) % BloomFilter.size
		BloomFilter.sketch[h/64] |= mask[h%64]
	}
	BloomFilter.lock.Unlock()
}

// Check is a method to check a hashed k-mer against the filter
func (BloomFilter *BloomFilter) Check(hv uint64) bool {
	h1, h2 := hv, (hv>>33|hv<<31)|1
	BloomFilter.lock.RLock()
	defer BloomFilter.lock.RUnlock()
	for i := uint64(0); i < BloomFilter.nbHash; i++ {
		h := (h1 + i*h2) % BloomFilter.size
		if BloomFilter.sketch[h/64]&mask[h%64] == 0 {
			return false
		}
	}
	return true
}

// NbHash returns the number of bits set per value
func (BloomFilter *BloomFilter) NbHash() uint64 {
	return BloomFilter.nbHash
}
