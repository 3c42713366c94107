package sketch

import (
	"testing"
)

var (
	kmerSize        = uint(7)
	sketchSize      = uint(10)
	seqA            = []byte("ACTGCGTGCGTGAAACGTGCACGTGACGTG")
	seqArcomplement = []byte("CACGTCACGTGCACGTTTCACGCACGCAGT")
	seqB            = []byte("TTTTGGGGCCCCAAAATTGGCCAATGCATGCA")
)

// Constructor test
func TestMinHashConstructors(t *testing.T) {
	mhKHF, err := NewKHFsketch(kmerSize, sketchSize)
	if err != nil {
		t.Fatal(err)
	}
	if len(mhKHF.GetSketch()) != int(sketchSize) || mhKHF.sketchSize != sketchSize || mhKHF.kmerSize != kmerSize {
		t.Fatalf("NewKHFsketch constructor did not initiate MinHash KHF sketch correctly")
	}
	mhKMV := NewKMVsketch(kmerSize, sketchSize)
	if mhKMV.sketchSize != sketchSize || mhKMV.kmerSize != kmerSize {
		t.Fatalf("NewKMVsketch constructor did not initiate MinHash KMV sketch correctly")
	}
	if _, err := NewKHFsketch(40, sketchSize); err == nil {
		t.Fatal("KHF sketch should not support k=40")
	}
	if _, err := New("bottomk", kmerSize, sketchSize); err == nil {
		t.Fatal("unknown flavour should not be created")
	}
}

func TestAdd(t *testing.T) {
	for _, flavour := range []string{"kmv", "khf"} {
		mh, err := New(flavour, kmerSize, sketchSize)
		if err != nil {
			t.Fatal(err)
		}
		if err := mh.AddSequence(seqA[0:1]); err == nil {
			t.Fatal("should fault as sequences must be >= kmerSize")
		}
		if err := mh.AddSequence(seqA); err != nil {
			t.Fatal(err)
		}
	}
}

func TestKHFskipsN(t *testing.T) {
	mh1, _ := NewKHFsketch(kmerSize, sketchSize)
	mh2, _ := NewKHFsketch(kmerSize, sketchSize)
	if err := mh1.AddSequence([]byte("ACTGCGTGCGTGAAANNNCGTGCACGTGACGTG")); err != nil {
		t.Fatal(err)
	}
	if err := mh2.AddSequence([]byte("ACTGCGTGCGTGAAA")); err != nil {
		t.Fatal(err)
	}
	if err := mh2.AddSequence([]byte("CGTGCACGTGACGTG")); err != nil {
		t.Fatal(err)
	}
	js, err := mh1.GetSimilarity(mh2)
	if err != nil {
		t.Fatal(err)
	}
	if js != 1.0 {
		t.Fatalf("k-mers either side of the Ns should give the same sketch: %.2f", js)
	}
}

func TestSimilarityEstimates(t *testing.T) {
	for _, flavour := range []string{"kmv", "khf"} {
		mh1, _ := New(flavour, kmerSize, sketchSize)
		mh2, _ := New(flavour, kmerSize, sketchSize)
		if err := mh1.AddSequence(seqA); err != nil {
			t.Fatal(err)
		}
		if err := mh2.AddSequence(seqArcomplement); err != nil {
			t.Fatal(err)
		}

		// canonical k-mers of a sequence and its reverse complement are the same set
		js, err := mh1.GetSimilarity(mh2)
		if err != nil {
			t.Fatal(err)
		}
		if js != 1.0 {
			t.Fatalf("%v similarity estimate should be 1.0, not: %.2f", flavour, js)
		}

		// a different sequence is less similar
		mh3, _ := New(flavour, kmerSize, sketchSize)
		if err := mh3.AddSequence(seqB); err != nil {
			t.Fatal(err)
		}
		js, err = mh1.GetSimilarity(mh3)
		if err != nil {
			t.Fatal(err)
		}
		if js >= 1.0 {
			t.Fatalf("%v similarity of unrelated sequences should be below 1.0", flavour)
		}
	}
	kmv := NewKMVsketch(kmerSize, sketchSize)
	khf, _ := NewKHFsketch(kmerSize, sketchSize)
	if _, err := kmv.GetSimilarity(khf); err == nil {
		t.Fatal("mismatched sketch types should not be compared")
	}
	if err := kmv.Merge(khf); err == nil {
		t.Fatal("mismatched sketch types should not be merged")
	}
	if err := kmv.Merge(NewKMVsketch(kmerSize+1, sketchSize)); err == nil {
		t.Fatal("sketches with different k-mer sizes should not be merged")
	}
}

// merging the sketches of two halves gives the sketch of the whole
func TestMerge(t *testing.T) {
	for _, flavour := range []string{"kmv", "khf"} {
		whole, _ := New(flavour, kmerSize, sketchSize)
		half1, _ := New(flavour, kmerSize, sketchSize)
		half2, _ := New(flavour, kmerSize, sketchSize)
		if err := whole.AddSequence(seqA); err != nil {
			t.Fatal(err)
		}
		if err := whole.AddSequence(seqB); err != nil {
			t.Fatal(err)
		}
		if err := half1.AddSequence(seqA); err != nil {
			t.Fatal(err)
		}
		if err := half2.AddSequence(seqB); err != nil {
			t.Fatal(err)
		}
		if err := half1.Merge(half2); err != nil {
			t.Fatal(err)
		}
		a, b := whole.GetSketch(), half1.GetSketch()
		if len(a) != len(b) {
			t.Fatalf("%v merged sketch has the wrong size", flavour)
		}
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("%v merged sketch differs from the sketch of the whole", flavour)
			}
		}
	}
}

func TestKMVdistinct(t *testing.T) {
	mh := NewKMVsketch(3, 100)
	if err := mh.AddSequence([]byte("AAAAAAAAAAAAAAAA")); err != nil {
		t.Fatal(err)
	}
	if len(mh.GetSketch()) != 1 {
		t.Fatalf("repeated k-mers should only be kept once, got %d values", len(mh.GetSketch()))
	}
}

// benchmark KHF
func BenchmarkKHF(b *testing.B) {
	mhKHF1, _ := NewKHFsketch(kmerSize, sketchSize)
	for n := 0; n < b.N; n++ {
		if err := mhKHF1.AddSequence(seqA); err != nil {
			b.Fatal(err)
		}
	}
}

// benchmark KMV
func BenchmarkKMV(b *testing.B) {
	mhKMV1 := NewKMVsketch(kmerSize, sketchSize)
	for n := 0; n < b.N; n++ {
		if err := mhKMV1.AddSequence(seqA); err != nil {
			b.Fatal(err)
		}
	}
}
