package kmer

import (
	"github.com/pkg/errors"
)

var (
	// ErrConfiguration is the cause of errors from unsupported model settings (k-mer size, mode, encoding)
	ErrConfiguration = errors.New("configuration error")

	// ErrEncoding is the cause of errors from residues that cannot be converted to a 2-bit code
	ErrEncoding = errors.New("encoding error")
)

// IsConfigurationError reports if the cause of err is ErrConfiguration
func IsConfigurationError(err error) bool {
	return errors.Cause(err) == ErrConfiguration
}

// IsEncodingError reports if the cause of err is ErrEncoding
func IsEncodingError(err error) bool {
	return errors.Cause(err) == ErrEncoding
}
