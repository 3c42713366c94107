package bank

import (
	"bufio"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/will-rowe/kmerbank/src/data"
	"gopkg.in/vmihailenco/msgpack.v2"
)

// BinaryExt is the file extension of binary banks
const BinaryExt = "bin"

// binaryRecord is how a sequence is written to a binary bank
type binaryRecord struct {
	Comment  string `msgpack:"c"`
	Size     int    `msgpack:"s"`
	Residues []byte `msgpack:"r"`
}

// Binary is a bank of sequences packed at 2 bits per residue
// Sequences are appended with Insert and become readable after Flush.
type Binary struct {
	path    string
	file    *os.File
	writer  *bufio.Writer
	encoder *msgpack.Encoder
	nbSeqs  int
}

// NewBinary creates (or truncates) a binary bank for writing
func NewBinary(path string) (*Binary, error) {
	fh, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := bufio.NewWriter(fh)
	return &Binary{path: path, file: fh, writer: w, encoder: msgpack.NewEncoder(w)}, nil
}

// OpenBinary opens an existing binary bank for reading
func OpenBinary(path string) (*Binary, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrap(err, "can't open binary bank")
	}
	return &Binary{path: path}, nil
}

// ID returns the file path
func (b *Binary) ID() string {
	return b.path
}

// Insert appends a sequence, ASCII and INTEGER sequences are packed first
func (b *Binary) Insert(seq *Sequence) error {
	if b.encoder == nil {
		return errors.Errorf("binary bank %v is not open for writing", b.path)
	}
	packed, err := toBinary(seq.Data)
	if err != nil {
		return errors.Wrapf(err, "could not pack sequence %q", seq.Comment)
	}
	record := binaryRecord{Comment: seq.Comment, Size: packed.Size(), Residues: packed.Buffer()}
	if err := b.encoder.Encode(&record); err != nil {
		return err
	}
	b.nbSeqs++
	return nil
}

func toBinary(d *data.Data) (*data.Data, error) {
	switch d.Encoding() {
	case data.BINARY:
		return d, nil
	case data.INTEGER:
		return data.Pack(data.NewFromString(d.String()))
	default:
		return data.Pack(d)
	}
}

// Flush writes the buffered sequences to disk
func (b *Binary) Flush() error {
	if b.writer == nil {
		return nil
	}
	return b.writer.Flush()
}

// Close flushes and closes a bank opened for writing
func (b *Binary) Close() error {
	if b.file == nil {
		return nil
	}
	err := b.Flush()
	if cerr := b.file.Close(); err == nil {
		err = cerr
	}
	b.file, b.writer, b.encoder = nil, nil, nil
	return err
}

// Len returns the number of sequences inserted since the bank was created
func (b *Binary) Len() int {
	return b.nbSeqs
}

// Iterator returns an iterator over the flushed sequences
func (b *Binary) Iterator() (Iterator, error) {
	return &binaryIterator{path: b.path, done: true}, nil
}

type binaryIterator struct {
	path    string
	file    *os.File
	decoder *msgpack.Decoder
	record  binaryRecord
	item    Sequence
	index   int
	done    bool
	err     error
}

func (it *binaryIterator) First() {
	it.Close()
	it.index, it.err, it.done = -1, nil, false
	fh, err := os.Open(it.path)
	if err != nil {
		it.err, it.done = err, true
		return
	}
	it.file = fh
	it.decoder = msgpack.NewDecoder(bufio.NewReader(fh))
	it.Next()
}

func (it *binaryIterator) Next() {
	if it.done {
		return
	}
	it.record = binaryRecord{}
	if err := it.decoder.Decode(&it.record); err != nil {
		if err != io.EOF {
			it.err = errors.Wrapf(err, "could not read record %d of %v", it.index+1, it.path)
		}
		it.done = true
		return
	}
	d, err := data.NewFromBytes(it.record.Residues, it.record.Size, data.BINARY)
	if err != nil {
		it.err, it.done = errors.Wrapf(err, "corrupt record %d in %v", it.index+1, it.path), true
		return
	}
	it.index++
	it.item = Sequence{Comment: it.record.Comment, Data: d, Index: it.index}
}

func (it *binaryIterator) IsDone() bool   { return it.done }
func (it *binaryIterator) Item() *Sequence { return &it.item }
func (it *binaryIterator) Err() error      { return it.err }

func (it *binaryIterator) Close() error {
	it.done = true
	if it.file == nil {
		return nil
	}
	err := it.file.Close()
	it.file, it.decoder = nil, nil
	return err
}
