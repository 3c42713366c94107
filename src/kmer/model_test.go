package kmer

import (
	"testing"

	"github.com/will-rowe/kmerbank/src/data"
	"github.com/will-rowe/kmerbank/src/largeint"
)

// setup variables
var (
	seqA       = "ACTGCGTGCGTGAAACGTGCACGTGACGTG"
	seqArc     = "CACGTCACGTGCACGTTTCACGCACGCAGT"
	shortSeq   = "ACTG"
	invalidSeq = "ACTGCGTNNGTGAAA"
	kmerSize   = 7
)

// kmerShredder is a helper function for yielding k-mers from a sequence
func kmerShredder(seq string, k int) []string {
	numKmers := len(seq) - k + 1
	kmers := make([]string, numKmers)
	for i := 0; i < numKmers; i++ {
		kmers[i] = seq[i : i+k]
	}
	return kmers
}

// collect runs Iterate and returns the k-mers it visited
func collect[T largeint.Integer[T]](t *testing.T, model *Model[T], d *data.Data) []Kmer[T] {
	var kmers []Kmer[T]
	ok, err := model.Iterate(d, func(kmer Kmer[T], idx int) {
		if idx != len(kmers) {
			t.Fatalf("visitor called out of order: got idx %d, expected %d", idx, len(kmers))
		}
		kmers = append(kmers, kmer)
	})
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("sequence should have been k-merized")
	}
	return kmers
}

func TestSmallKmers(t *testing.T) {
	model, err := NewModel[largeint.Uint64](3, Direct)
	if err != nil {
		t.Fatal(err)
	}
	kmers := collect(t, model, data.NewFromString("ACGT"))
	if len(kmers) != 2 {
		t.Fatalf("expected 2 k-mers, got %d", len(kmers))
	}
	if kmers[0].Value() != 6 || kmers[1].Value() != 27 {
		t.Fatalf("expected ACG=6 and CGT=27, got %d and %d", kmers[0].Value(), kmers[1].Value())
	}
	if kmers[0].Revcomp() != 27 || kmers[1].Revcomp() != 6 {
		t.Fatal("reverse complements of ACG and CGT should be each other")
	}

	// canonical mode reports the smaller strand
	canon, err := NewModel[largeint.Uint64](3, Minimum)
	if err != nil {
		t.Fatal(err)
	}
	kmers = collect(t, canon, data.NewFromString("ACGT"))
	if kmers[0].Value() != 6 || kmers[1].Value() != 6 {
		t.Fatalf("expected both canonical k-mers to be 6, got %d and %d", kmers[0].Value(), kmers[1].Value())
	}
	if !kmers[0].IsForward() || kmers[1].IsForward() {
		t.Fatal("strand of canonical k-mers is wrong")
	}
}

func TestStrandFlag(t *testing.T) {
	d := data.NewFromString("TTT")

	// a direct model always reports the forward strand, even when the reverse complement is smaller
	direct, err := NewModel[largeint.Uint64](3, Direct)
	if err != nil {
		t.Fatal(err)
	}
	_, forward, err := direct.GetKmer(d, 0)
	if err != nil {
		t.Fatal(err)
	}
	kmers, _, err := direct.Build(d, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !forward || !kmers[0].IsForward() {
		t.Fatalf("direct k-mer TTT should be forward (GetKmer: %v, Build: %v)", forward, kmers[0].IsForward())
	}
	seed, err := direct.CodeSeed([]byte("TTT"), data.ASCII)
	if err != nil {
		t.Fatal(err)
	}
	if !seed.IsForward() {
		t.Fatal("direct seed TTT should be forward")
	}

	// a canonical model reports AAA, taken from the reverse strand
	canon, err := NewModel[largeint.Uint64](3, Minimum)
	if err != nil {
		t.Fatal(err)
	}
	value, forward, err := canon.GetKmer(d, 0)
	if err != nil {
		t.Fatal(err)
	}
	kmers, _, err = canon.Build(d, kmers)
	if err != nil {
		t.Fatal(err)
	}
	if value != 0 || forward || kmers[0].IsForward() {
		t.Fatalf("canonical k-mer of TTT should be AAA on the reverse strand, got %d (GetKmer: %v, Build: %v)", value, forward, kmers[0].IsForward())
	}
}

func TestOutOfRange(t *testing.T) {
	model, err := NewModel[largeint.Uint64](kmerSize, Minimum)
	if err != nil {
		t.Fatal(err)
	}
	d := data.NewFromString(shortSeq)
	if _, _, err := model.GetKmer(d, 0); err == nil {
		t.Fatal("a k-mer can't be read past the end of the data")
	}
	if _, err := model.Encode(shortSeq); err == nil {
		t.Fatal("encoding a string of the wrong length should fail")
	}
	if _, err := model.CodeSeed([]byte(shortSeq), data.ASCII); err == nil {
		t.Fatal("a seed can't be read from a short buffer")
	}
}

func testRolling[T largeint.Integer[T]](t *testing.T, k int) {
	for _, mode := range []Mode{Direct, Minimum} {
		model, err := NewModel[T](k, mode)
		if err != nil {
			t.Fatal(err)
		}
		seq := seqA + seqArc + seqA
		d := data.NewFromString(seq)
		kmers := collect(t, model, d)
		if len(kmers) != len(seq)-k+1 {
			t.Fatalf("expected %d k-mers, got %d", len(seq)-k+1, len(kmers))
		}
		for i, kmer := range kmers {
			value, forward, err := model.GetKmer(d, i)
			if err != nil {
				t.Fatal(err)
			}
			if value != kmer.Value() || forward != kmer.IsForward() {
				t.Fatalf("rolled k-mer at %d does not match the k-mer computed from scratch (%v mode)", i, mode)
			}
			direct, err := model.Encode(seq[i : i+k])
			if err != nil {
				t.Fatal(err)
			}
			if direct != kmer.Forward() {
				t.Fatalf("forward k-mer at %d does not match the encoded string", i)
			}
			if model.String(kmer.Forward()) != seq[i:i+k] {
				t.Fatalf("could not decode k-mer %d: got %v", i, model.String(kmer.Forward()))
			}
			if model.Revcomp(kmer.Forward()) != kmer.Revcomp() {
				t.Fatalf("rolled reverse complement at %d is wrong", i)
			}
		}
	}
}

func TestRolling(t *testing.T) {
	testRolling[largeint.Uint64](t, kmerSize)
	testRolling[largeint.Uint64](t, 31)
	testRolling[largeint.Uint128](t, 45)
	testRolling[largeint.Uint256](t, 71)
}

func TestRevcompInvolution(t *testing.T) {
	model, err := NewModel[largeint.Uint128](21, Minimum)
	if err != nil {
		t.Fatal(err)
	}
	for _, kmer := range collect(t, model, data.NewFromString(seqA)) {
		if model.Revcomp(model.Revcomp(kmer.Forward())) != kmer.Forward() {
			t.Fatal("revcomp(revcomp(x)) != x")
		}
		if model.Canonical(kmer.Forward()) != kmer.Value() {
			t.Fatal("canonical k-mer does not match the model value")
		}
	}
}

// the canonical k-mers of a sequence and its reverse complement are the same, in reverse order
func TestStrandSymmetry(t *testing.T) {
	model, err := NewModel[largeint.Uint64](kmerSize, Minimum)
	if err != nil {
		t.Fatal(err)
	}
	fwd := collect(t, model, data.NewFromString(seqA))
	rev := collect(t, model, data.NewFromString(seqArc))
	if len(fwd) != len(rev) {
		t.Fatal("k-mer counts differ between strands")
	}
	for i := range fwd {
		if fwd[i].Value() != rev[len(rev)-1-i].Value() {
			t.Fatalf("canonical k-mer %d differs between strands", i)
		}
	}
	for i, kmer := range kmerShredder(seqA, kmerSize) {
		if model.String(fwd[i].Forward()) != kmer {
			t.Fatalf("k-mer %d should be %v", i, kmer)
		}
	}
}

func TestShortSequence(t *testing.T) {
	model, err := NewModel[largeint.Uint64](kmerSize, Minimum)
	if err != nil {
		t.Fatal(err)
	}
	called := false
	ok, err := model.Iterate(data.NewFromString(shortSeq), func(Kmer[largeint.Uint64], int) { called = true })
	if err != nil {
		t.Fatal(err)
	}
	if ok || called {
		t.Fatal("a sequence shorter than k should not be k-merized")
	}
	kmers, ok, err := model.Build(data.NewFromString(shortSeq), make([]Kmer[largeint.Uint64], 3))
	if err != nil || ok || len(kmers) != 0 {
		t.Fatal("build of a short sequence should return an empty slice")
	}
}

func TestConfigurationErrors(t *testing.T) {
	if _, err := NewModel[largeint.Uint64](32, Direct); !IsConfigurationError(err) {
		t.Fatal("k=32 should not be supported by a 64 bit model")
	}
	if _, err := NewModel[largeint.Uint128](64, Direct); !IsConfigurationError(err) {
		t.Fatal("k=64 should not be supported by a 128 bit model")
	}
	if _, err := NewModel[largeint.Uint256](0, Direct); !IsConfigurationError(err) {
		t.Fatal("k=0 should not be supported")
	}
	if _, err := NewModel[largeint.Uint256](127, Mode(9)); !IsConfigurationError(err) {
		t.Fatal("unknown mode should not be supported")
	}
	if _, err := NewModel[largeint.Uint256](127, Direct); err != nil {
		t.Fatal(err)
	}
	model, err := NewModel[largeint.Uint64](kmerSize, Revcomp)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := model.Iterate(data.NewFromString(seqA), func(Kmer[largeint.Uint64], int) {}); !IsConfigurationError(err) {
		t.Fatal("revcomp mode should not be able to k-merize")
	}
	if _, _, err := model.GetKmer(data.NewFromString(seqA), 0); !IsConfigurationError(err) {
		t.Fatal("revcomp mode should not support GetKmer")
	}
	if _, err := model.CodeSeed([]byte(seqA), data.Encoding(7)); !IsConfigurationError(err) {
		t.Fatal("unknown encodings should be rejected")
	}
}

func TestInvalidNucleotide(t *testing.T) {
	model, err := NewModel[largeint.Uint64](kmerSize, Direct)
	if err != nil {
		t.Fatal(err)
	}
	visited := 0
	_, err = model.Iterate(data.NewFromString(invalidSeq), func(Kmer[largeint.Uint64], int) { visited++ })
	if !IsEncodingError(err) {
		t.Fatalf("expected an encoding error, got %v", err)
	}

	// ACTGCGT is the only k-mer before the first N
	if visited != 1 {
		t.Fatalf("expected 1 k-mer before the invalid residue, got %d", visited)
	}
	if _, err := model.CodeSeed([]byte("ACGTNAC"), data.ASCII); !IsEncodingError(err) {
		t.Fatal("expected an encoding error from CodeSeed")
	}
}

func TestEncodingsAgree(t *testing.T) {
	model, err := NewModel[largeint.Uint64](kmerSize, Minimum)
	if err != nil {
		t.Fatal(err)
	}
	ascii := data.NewFromString(seqA)
	expected := collect(t, model, ascii)

	packed, err := data.Pack(ascii)
	if err != nil {
		t.Fatal(err)
	}
	codes := make([]byte, len(seqA))
	for i := range seqA {
		codes[i] = nucleotideTable[seqA[i]]
	}
	integer, err := data.NewFromBytes(codes, len(codes), data.INTEGER)
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range []*data.Data{packed, integer} {
		got := collect(t, model, d)
		if len(got) != len(expected) {
			t.Fatalf("%v encoding gave %d k-mers, expected %d", d.Encoding(), len(got), len(expected))
		}
		for i := range got {
			if got[i] != expected[i] {
				t.Fatalf("%v encoding disagrees with ASCII at k-mer %d", d.Encoding(), i)
			}
		}
	}

	// a zero-copy view at a 4 residue boundary
	view := data.New(data.BINARY)
	if err := view.SetRef(packed, 8, 12); err != nil {
		t.Fatal(err)
	}
	got := collect(t, model, view)
	for i := range got {
		if got[i] != expected[8+i] {
			t.Fatalf("k-mer %d of the view disagrees with the full sequence", i)
		}
	}
}

func TestCodeSeedRight(t *testing.T) {
	model, err := NewModel[largeint.Uint64](kmerSize, Minimum)
	if err != nil {
		t.Fatal(err)
	}
	expected := collect(t, model, data.NewFromString(seqA))
	kmer, err := model.CodeSeed([]byte(seqA), data.ASCII)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(expected); i++ {
		if kmer, err = model.CodeSeedRight(kmer, seqA[i+kmerSize-1], data.ASCII); err != nil {
			t.Fatal(err)
		}
		if kmer != expected[i] {
			t.Fatalf("seed extension disagrees with iteration at %d", i)
		}
	}
	if _, err := model.CodeSeedRight(kmer, 4, data.INTEGER); !IsEncodingError(err) {
		t.Fatal("integer code 4 should be rejected")
	}
}

func TestIterateNeighbors(t *testing.T) {
	model, err := NewModel[largeint.Uint64](kmerSize, Minimum)
	if err != nil {
		t.Fatal(err)
	}
	source, err := model.Encode("AGGCGCT")
	if err != nil {
		t.Fatal(err)
	}
	neighbors := []string{}
	model.IterateNeighbors(source, func(n largeint.Uint64) {
		if model.Canonical(n) != n {
			t.Fatal("neighbours should be canonical")
		}
		neighbors = append(neighbors, model.String(n))
	})
	if len(neighbors) != 8 {
		t.Fatalf("expected 8 neighbours, got %d", len(neighbors))
	}

	// GGCGCTA and the extension of the reverse complement AGCGCCT by A
	if neighbors[0] != "GGCGCTA" || neighbors[1] != "GCGCCTA" {
		t.Fatalf("unexpected first neighbours: %v", neighbors[:2])
	}
	if model.ExtendLeft(model.ExtendRight(source, 3), 0) != source {
		t.Fatal("extending right then left by the dropped base should give back the source")
	}
}

func BenchmarkIterate(b *testing.B) {
	model, err := NewModel[largeint.Uint64](31, Minimum)
	if err != nil {
		b.Fatal(err)
	}
	d := data.NewFromString(seqA + seqArc + seqA + seqArc)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := model.Iterate(d, func(Kmer[largeint.Uint64], int) {}); err != nil {
			b.Fatal(err)
		}
	}
}
