package reporting

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/will-rowe/kmerbank/src/kmer"
	"github.com/will-rowe/kmerbank/src/largeint"
	"github.com/will-rowe/kmerbank/src/storage"
)

// a typical k-mer spectrum: many errors at 1, a dip, then a coverage peak
var abundances = map[uint16]int{1: 50, 2: 10, 3: 4, 4: 8, 5: 12, 6: 7, 200: 1}

func testHistogram() *Histogram {
	h := NewHistogram(100)
	for abundance, n := range abundances {
		for i := 0; i < n; i++ {
			h.Add(abundance)
		}
	}
	return h
}

func TestHistogram(t *testing.T) {
	h := testHistogram()
	if h.MaxAbundance() != 100 {
		t.Fatal("wrong number of bins")
	}
	if h.Distinct() != 92 {
		t.Fatalf("expected 92 distinct k-mers, got %d", h.Distinct())
	}
	if h.Total() != 50+20+12+32+60+42+200 {
		t.Fatalf("wrong total: %d", h.Total())
	}
	if h.Count(100) != 1 || h.Count(200) != 0 {
		t.Fatal("abundances above the last bin should go in the last bin")
	}
	if h.Cutoff() != 3 {
		t.Fatalf("expected a cutoff of 3, got %d", h.Cutoff())
	}
	h.Add(0)
	if h.Distinct() != 92 {
		t.Fatal("zero abundance should be ignored")
	}
	if NewHistogram(0).MaxAbundance() != DefaultMaxAbundance {
		t.Fatal("default bins not used")
	}
}

func TestWrite(t *testing.T) {
	h := NewHistogram(10)
	h.Add(1)
	h.Add(1)
	h.Add(3)
	var buf bytes.Buffer
	if err := h.Write(&buf); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "1\t2\n3\t1\n" {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestPlot(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "plots", "histo.png")
	if err := testHistogram().Plot(fileName, "test"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(fileName); err != nil {
		t.Fatal(err)
	}
	if err := NewHistogram(10).Plot(fileName, "empty"); err == nil {
		t.Fatal("an empty histogram should not be plotted")
	}
}

func TestFromPartition(t *testing.T) {
	s, err := storage.Create(filepath.Join(t.TempDir(), "storage"))
	if err != nil {
		t.Fatal(err)
	}
	group, err := s.Group("dsk")
	if err != nil {
		t.Fatal(err)
	}
	p, err := storage.CreatePartition[largeint.Uint64](group, "solid", 3)
	if err != nil {
		t.Fatal(err)
	}
	for i := uint64(0); i < 30; i++ {
		c := kmer.Count[largeint.Uint64]{Value: largeint.Uint64(i), Abundance: uint16(i%3 + 1)}
		if err := p.Insert(int(i%3), c); err != nil {
			t.Fatal(err)
		}
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	h, err := FromPartition(p, 10)
	if err != nil {
		t.Fatal(err)
	}
	if h.Distinct() != 30 || h.Count(1) != 10 || h.Count(2) != 10 || h.Count(3) != 10 {
		t.Fatal("histogram does not match the partition")
	}
}
