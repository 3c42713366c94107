package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/will-rowe/kmerbank/src/kmer"
	"github.com/will-rowe/kmerbank/src/largeint"
)

func setupTmpDir(t *testing.T) string {
	dir, err := os.MkdirTemp("", "storage")
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestGroupProperties(t *testing.T) {
	tmp := setupTmpDir(t)
	defer os.RemoveAll(tmp)
	s, err := Create(filepath.Join(tmp, "store"))
	if err != nil {
		t.Fatal(err)
	}
	g, err := s.Group("dsk")
	if err != nil {
		t.Fatal(err)
	}
	g.SetProperty(PropNbPartitions, 4)
	g.SetProperty(PropKmerSize, "31")
	if err := g.Save(); err != nil {
		t.Fatal(err)
	}

	// reload from disk
	s2, err := Load(s.Dir())
	if err != nil {
		t.Fatal(err)
	}
	g2, err := s2.Group("dsk")
	if err != nil {
		t.Fatal(err)
	}
	n, err := g2.GetInt(PropNbPartitions)
	if err != nil || n != 4 {
		t.Fatalf("nb_partitions should be 4, got %d (%v)", n, err)
	}
	if k, ok := g2.GetProperty(PropKmerSize); !ok || k != "31" {
		t.Fatal("kmer_size property was not saved")
	}
	if _, err := g2.GetInt("missing"); err == nil {
		t.Fatal("missing property should give an error")
	}
	groups, err := s2.Groups()
	if err != nil || len(groups) != 1 || groups[0] != "dsk" {
		t.Fatalf("expected one group, got %v", groups)
	}
	if _, err := Load(filepath.Join(tmp, "missing")); err == nil {
		t.Fatal("missing storage should not load")
	}
}

func testPartition[T largeint.Integer[T]](t *testing.T) {
	tmp := setupTmpDir(t)
	defer os.RemoveAll(tmp)
	s, err := Create(filepath.Join(tmp, "store"))
	if err != nil {
		t.Fatal(err)
	}
	g, err := s.Group("dsk")
	if err != nil {
		t.Fatal(err)
	}
	p, err := CreatePartition[T](g, "solid", 3)
	if err != nil {
		t.Fatal(err)
	}
	var zero T
	for i := 0; i < 100; i++ {
		c := kmer.Count[T]{Value: zero.FromUint64(uint64(i)).Shl(40), Abundance: uint16(i + 1)}
		if err := p.Insert(i%3, c); err != nil {
			t.Fatal(err)
		}
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}

	// part 1 holds 1, 4, 7...
	part, err := p.ReadPart(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(part) != 33 || part[0].Abundance != 2 || part[0].Value != zero.FromUint64(1).Shl(40) {
		t.Fatalf("part 1 is wrong: %d records", len(part))
	}

	p2, err := GetPartition[T](g, "solid", 3)
	if err != nil {
		t.Fatal(err)
	}
	it := p2.Iterator()
	n, total := 0, 0
	for it.First(); !it.IsDone(); it.Next() {
		n++
		total += int(it.Item().Abundance)
		if int(it.Item().Abundance-1)%3 != it.Part() {
			t.Fatal("record found in the wrong part")
		}
	}
	if err := it.Err(); err != nil {
		t.Fatal(err)
	}
	if n != 100 || total != 5050 {
		t.Fatalf("expected 100 records, got %d (total abundance %d)", n, total)
	}
	if _, err := GetPartition[T](g, "solid", 4); err == nil {
		t.Fatal("missing part should be reported")
	}
}

func TestPartition(t *testing.T) {
	testPartition[largeint.Uint64](t)
	testPartition[largeint.Uint128](t)
	testPartition[largeint.Uint256](t)
}

func TestWidthMismatch(t *testing.T) {
	tmp := setupTmpDir(t)
	defer os.RemoveAll(tmp)
	path := filepath.Join(tmp, "bag")
	bag, err := NewBag[largeint.Uint128](path)
	if err != nil {
		t.Fatal(err)
	}
	if err := bag.Insert(kmer.Count[largeint.Uint128]{Abundance: 1}); err != nil {
		t.Fatal(err)
	}
	if err := bag.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadBag[largeint.Uint64](path); err == nil {
		t.Fatal("reading 128 bit records as 64 bit should fail")
	}
	counts, err := ReadBag[largeint.Uint128](path)
	if err != nil || len(counts) != 1 {
		t.Fatal("could not read back the bag")
	}
}

func TestArchive(t *testing.T) {
	tmp := setupTmpDir(t)
	defer os.RemoveAll(tmp)
	s, err := Create(filepath.Join(tmp, "store"))
	if err != nil {
		t.Fatal(err)
	}
	g, err := s.Group("dsk")
	if err != nil {
		t.Fatal(err)
	}
	g.SetProperty(PropNbPartitions, 1)
	if err := g.Save(); err != nil {
		t.Fatal(err)
	}
	p, err := CreatePartition[largeint.Uint64](g, "solid", 1)
	if err != nil {
		t.Fatal(err)
	}
	p.Insert(0, kmer.Count[largeint.Uint64]{Value: 42, Abundance: 3})
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	archive := filepath.Join(tmp, "store.tar.gz")
	if err := s.Archive(archive); err != nil {
		t.Fatal(err)
	}
	extracted, err := Extract(archive, filepath.Join(tmp, "extracted"))
	if err != nil {
		t.Fatal(err)
	}
	g2, err := extracted.Group("dsk")
	if err != nil {
		t.Fatal(err)
	}
	if n, err := g2.GetInt(PropNbPartitions); err != nil || n != 1 {
		t.Fatal("properties were not archived")
	}
	counts, err := ReadBag[largeint.Uint64](filepath.Join(g2.Dir(), "solid.0"))
	if err != nil || len(counts) != 1 || counts[0].Value != 42 {
		t.Fatal("partition was not archived")
	}
}
