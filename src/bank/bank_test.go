package bank

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/will-rowe/kmerbank/src/data"
	"github.com/will-rowe/kmerbank/src/kmer"
	"github.com/will-rowe/kmerbank/src/largeint"
)

/*
TEST DATA
*/
var (
	fastaFile   = "test-data/reads.fa"
	fastqFile   = "test-data/reads.fq"
	gzFile      = "test-data/reads.fa.gz"
	expectedSeq = []string{
		"ACTGCGTGCGTGAAACGTGCACGTGACGTG",
		"CACGTCACGTGCACGTTTCACGCACGCAGT",
		"ACG",
		"AGGCGCTAGGGAGAGGCGCTTTTT",
	}
	kmerSize      = 7
	expectedKmers = 24 + 24 + 18
)

// counter is a progress listener recording the notifications it receives
type counter struct {
	inits, finishes int
	incs            []uint64
}

func (c *counter) Init()        { c.inits++ }
func (c *counter) Inc(n uint64) { c.incs = append(c.incs, n) }
func (c *counter) Finish()      { c.finishes++ }

func (c *counter) total() (n uint64) {
	for _, inc := range c.incs {
		n += inc
	}
	return n
}

func readAll(t *testing.T, b Bank) []string {
	it, err := b.Iterator()
	if err != nil {
		t.Fatal(err)
	}
	defer it.Close()
	seqs := []string{}
	for it.First(); !it.IsDone(); it.Next() {
		if it.Item().Index != len(seqs) {
			t.Fatalf("sequence index is wrong: %d", it.Item().Index)
		}
		seqs = append(seqs, it.Item().String())
	}
	if err := it.Err(); err != nil {
		t.Fatal(err)
	}
	return seqs
}

func checkSeqs(t *testing.T, got []string) {
	if len(got) != len(expectedSeq) {
		t.Fatalf("expected %d sequences, got %d", len(expectedSeq), len(got))
	}
	for i := range got {
		if got[i] != expectedSeq[i] {
			t.Fatalf("sequence %d is wrong: %v", i, got[i])
		}
	}
}

func TestFastx(t *testing.T) {
	for _, file := range []string{fastaFile, fastqFile, gzFile} {
		b, err := Open(file)
		if err != nil {
			t.Fatal(err)
		}
		checkSeqs(t, readAll(t, b))

		// a second pass starts again from the top of the file
		checkSeqs(t, readAll(t, b))
	}
	it, err := NewFasta(fastaFile).Iterator()
	if err != nil {
		t.Fatal(err)
	}
	it.First()
	if !strings.HasPrefix(it.Item().Comment, "read1") {
		t.Fatalf("comment of the first read is wrong: %v", it.Item().Comment)
	}
	it.Close()
	if _, err := Open("test-data/reads.txt"); err == nil {
		t.Fatal("unknown extension should not be opened")
	}
	if _, err := NewFasta("test-data/missing.fa").Iterator(); err == nil {
		t.Fatal("missing file should not be opened")
	}
}

func TestBinary(t *testing.T) {
	dir, err := os.MkdirTemp("", "bank")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "reads."+BinaryExt)
	bin, err := NewBinary(path)
	if err != nil {
		t.Fatal(err)
	}
	src, err := Open(fastaFile)
	if err != nil {
		t.Fatal(err)
	}
	it, err := src.Iterator()
	if err != nil {
		t.Fatal(err)
	}
	for it.First(); !it.IsDone(); it.Next() {
		if err := bin.Insert(it.Item()); err != nil {
			t.Fatal(err)
		}
	}
	it.Close()
	if err := bin.Close(); err != nil {
		t.Fatal(err)
	}
	if bin.Len() != len(expectedSeq) {
		t.Fatalf("expected %d inserted sequences, got %d", len(expectedSeq), bin.Len())
	}
	reopened, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	checkSeqs(t, readAll(t, reopened))

	// packed sequences are read as BINARY data
	bit, _ := reopened.Iterator()
	bit.First()
	if bit.Item().Data.Encoding() != data.BINARY {
		t.Fatal("binary bank should give binary data")
	}
	bit.Close()

	// residues that can't be packed are rejected
	bad, err := NewBinary(filepath.Join(dir, "bad."+BinaryExt))
	if err != nil {
		t.Fatal(err)
	}
	defer bad.Close()
	if err := bad.Insert(&Sequence{Data: data.NewFromString("ACGTN")}); err == nil {
		t.Fatal("N should not be packed")
	}
}

func TestEstimate(t *testing.T) {
	nbSeqs, size, err := Estimate(NewFasta(fastaFile))
	if err != nil {
		t.Fatal(err)
	}
	if nbSeqs != 4 || size != 30+30+3+24 {
		t.Fatalf("wrong estimate: %d sequences, %d residues", nbSeqs, size)
	}
}

func TestProgressIterator(t *testing.T) {
	seqs := make([]string, 25)
	for i := range seqs {
		seqs[i] = "ACGT"
	}
	b := NewStrings(seqs...)
	it, _ := b.Iterator()
	c := &counter{}
	pit := NewProgressIterator(it, 10, c)
	n := 0
	for pit.First(); !pit.IsDone(); pit.Next() {
		n++
	}
	if n != 25 {
		t.Fatalf("expected 25 sequences, got %d", n)
	}
	if c.inits != 1 || c.finishes != 1 || len(c.incs) != 3 || c.total() != 25 {
		t.Fatalf("wrong progress notifications: %+v", c)
	}
}

func newKmerIterator(t *testing.T, b Bank, listeners ...*counter) *KmerIterator[kmer.Kmer[largeint.Uint64]] {
	model, err := kmer.NewModel[largeint.Uint64](kmerSize, kmer.Minimum)
	if err != nil {
		t.Fatal(err)
	}
	seqs, err := b.Iterator()
	if err != nil {
		t.Fatal(err)
	}
	it := NewKmerIterator(seqs, model.NewIterator())
	for _, l := range listeners {
		it.AddListener(l)
	}
	return it
}

func TestKmerIterator(t *testing.T) {
	for _, file := range []string{fastaFile, fastqFile} {
		b, err := Open(file)
		if err != nil {
			t.Fatal(err)
		}
		c := &counter{}
		it := newKmerIterator(t, b, c)
		n := 0
		for it.First(); !it.IsDone(); it.Next() {
			if it.Sequence().Index == 2 {
				t.Fatal("short sequence should have been skipped")
			}
			n++
		}
		if err := it.Err(); err != nil {
			t.Fatal(err)
		}
		if n != expectedKmers {
			t.Fatalf("expected %d k-mers, got %d", expectedKmers, n)
		}
		if c.inits != 1 || c.finishes != 1 || c.total() != 4 {
			t.Fatalf("wrong progress notifications: %+v", c)
		}

		// next on a finished iterator does nothing, and finish is not notified twice
		it.Next()
		if !it.IsDone() || c.finishes != 1 {
			t.Fatal("finished iterator should stay finished")
		}
		it.Close()
	}
}

func TestKmerIteratorProgress(t *testing.T) {
	seqs := make([]string, 3000)
	for i := range seqs {
		if i%2 == 0 {
			seqs[i] = "ACG"
		} else {
			seqs[i] = "ACGTACGT"
		}
	}
	c := &counter{}
	it := newKmerIterator(t, NewStrings(seqs...), c)
	n := 0
	for it.First(); !it.IsDone(); it.Next() {
		n++
	}
	if n != 1500*2 {
		t.Fatalf("expected 3000 k-mers, got %d", n)
	}
	if len(c.incs) != 3 || c.incs[0] != ProgressModulo || c.incs[1] != ProgressModulo || c.incs[2] != 3000-2*ProgressModulo {
		t.Fatalf("progress should be notified every %d sequences: %v", ProgressModulo, c.incs)
	}
	if c.finishes != 1 {
		t.Fatal("finish should be notified once")
	}
}

func TestKmerIteratorEmpty(t *testing.T) {
	c := &counter{}
	it := newKmerIterator(t, NewStrings("ACG", "", "ACGTA"), c)
	it.First()
	if !it.IsDone() {
		t.Fatal("a bank of short sequences has no k-mers")
	}
	if c.finishes != 1 || c.total() != 3 {
		t.Fatalf("wrong progress notifications: %+v", c)
	}
	if it.Err() != nil {
		t.Fatal(it.Err())
	}
}

func TestKmerIteratorInvalid(t *testing.T) {
	it := newKmerIterator(t, NewStrings("ACGTACGTAC", "ACGTNACGTAC", "ACGTACGTAC"))
	n := 0
	for it.First(); !it.IsDone(); it.Next() {
		n++
	}
	if !kmer.IsEncodingError(it.Err()) {
		t.Fatalf("expected an encoding error, got %v", it.Err())
	}
	if n != 4 {
		t.Fatalf("expected the 4 k-mers of the first sequence, got %d", n)
	}
}
