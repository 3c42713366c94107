package bank

import (
	"compress/gzip"
	"io"
	"os"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/io/seqio/fastq"
	"github.com/biogo/biogo/seq"
	"github.com/biogo/biogo/seq/linear"
	"github.com/pkg/errors"
	"github.com/will-rowe/kmerbank/src/data"
)

// Fastx is a bank backed by a FASTA or FASTQ file, which may be gzipped
type Fastx struct {
	path  string
	fastq bool
}

// NewFasta returns a FASTA bank
func NewFasta(path string) *Fastx {
	return &Fastx{path: path}
}

// NewFastq returns a FASTQ bank
func NewFastq(path string) *Fastx {
	return &Fastx{path: path, fastq: true}
}

// ID returns the file path
func (b *Fastx) ID() string {
	return b.path
}

// Iterator returns an iterator over the file, the file is opened by First
func (b *Fastx) Iterator() (Iterator, error) {
	if _, err := os.Stat(b.path); err != nil {
		return nil, errors.Wrap(err, "can't open bank")
	}
	return &fastxIterator{bank: b, done: true}, nil
}

type fastxIterator struct {
	bank    *Fastx
	file    *os.File
	gz      *gzip.Reader
	scanner *seqio.Scanner
	item    Sequence
	buf     []byte
	index   int
	done    bool
	err     error
}

// First (re)opens the file and reads the first record
func (it *fastxIterator) First() {
	it.Close()
	it.index, it.err, it.done = -1, nil, false
	if it.err = it.open(); it.err != nil {
		it.done = true
		return
	}
	it.Next()
}

func (it *fastxIterator) open() error {
	fh, err := os.Open(it.bank.path)
	if err != nil {
		return err
	}
	it.file = fh
	var r io.Reader = fh
	if strings.HasSuffix(it.bank.path, ".gz") {
		if it.gz, err = gzip.NewReader(fh); err != nil {
			return err
		}
		r = it.gz
	}
	var reader seqio.Reader
	if it.bank.fastq {
		reader = fastq.NewReader(r, linear.NewQSeq("", nil, alphabet.DNAredundant, alphabet.Sanger))
	} else {
		reader = fasta.NewReader(r, linear.NewSeq("", nil, alphabet.DNAredundant))
	}
	it.scanner = seqio.NewScanner(reader)
	return nil
}

// Next reads the next record
func (it *fastxIterator) Next() {
	if it.done {
		return
	}
	if !it.scanner.Next() {
		if err := it.scanner.Error(); err != nil {
			it.err = errors.Wrapf(err, "could not read record %d of %v", it.index+1, it.bank.path)
		}
		it.done = true
		return
	}
	it.index++
	it.load(it.scanner.Seq())
}

func (it *fastxIterator) load(s seq.Sequence) {
	it.buf = it.buf[:0]
	for i := 0; i < s.Len(); i++ {
		it.buf = append(it.buf, byte(s.At(i).L))
	}
	comment := s.Name()
	if desc := s.Description(); desc != "" {
		comment += " " + desc
	}

	// the buffer is reused, so the Data is only valid until the next record
	d, _ := data.NewFromBytes(it.buf, len(it.buf), data.ASCII)
	it.item = Sequence{Comment: comment, Data: d, Index: it.index}
}

func (it *fastxIterator) IsDone() bool   { return it.done }
func (it *fastxIterator) Item() *Sequence { return &it.item }
func (it *fastxIterator) Err() error      { return it.err }

// Close releases the file, the iterator can be restarted with First
func (it *fastxIterator) Close() error {
	it.done = true
	var err error
	if it.gz != nil {
		err = it.gz.Close()
		it.gz = nil
	}
	if it.file != nil {
		if ferr := it.file.Close(); err == nil {
			err = ferr
		}
		it.file = nil
	}
	return err
}
