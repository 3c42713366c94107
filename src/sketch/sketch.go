// Package sketch contains bottom-k (KMV) and k-hash-functions (KHF) MinHash sketches of the k-mer content of banks.
// The KMV sketch uses the ntHash rolling hash, the KHF sketch hashes the canonical k-mers of a k-mer model.
package sketch

import (
	"fmt"
)

// CANONICAL tells ntHash to return the hash of the canonical k-mer
const CANONICAL bool = true

// MinHash groups the different flavours of MinHash implemented here
type MinHash interface {
	AddSequence([]byte) error
	GetSketch() []uint64
	Merge(MinHash) error
	GetSimilarity(MinHash) (float64, error)
}

// New returns an empty sketch of the requested flavour ("kmv" or "khf")
func New(flavour string, kmerSize, sketchSize uint) (MinHash, error) {
	switch flavour {
	case "kmv":
		return NewKMVsketch(kmerSize, sketchSize), nil
	case "khf":
		return NewKHFsketch(kmerSize, sketchSize)
	}
	return nil, fmt.Errorf("unknown sketch flavour: %v", flavour)
}
