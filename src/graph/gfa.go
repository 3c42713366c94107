package graph

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/will-rowe/gfa"
	"github.com/will-rowe/kmerbank/src/largeint"
	"github.com/will-rowe/kmerbank/src/version"
)

// SaveGFA writes an exact graph in GFA v1: one segment per canonical k-mer (with its abundance as KC) and
// one link per k-1 overlap. It returns the number of segments and links written.
func (g *Graph[T]) SaveGFA(fileName string) (int, int, error) {
	kmers, err := g.Kmers()
	if err != nil {
		return 0, 0, err
	}
	ids := make(map[T]string, len(kmers))
	for i, kmer := range kmers {
		ids[kmer] = strconv.Itoa(i + 1)
	}

	newGFA := gfa.NewGFA()
	_ = newGFA.AddVersion(1)
	newGFA.AddComment([]byte(fmt.Sprintf("de Bruijn graph created by kmerbank (version %v) at: %v", version.GetVersion(), time.Now().Format("Mon Jan _2 15:04:05 2006"))))
	newGFA.AddComment([]byte(fmt.Sprintf("k-mer size: %d", g.KmerSize())))

	// segments
	for _, kmer := range kmers {
		seg, err := gfa.NewSegment([]byte(ids[kmer]), []byte(g.model.String(kmer)))
		if err != nil {
			return 0, 0, err
		}
		ofs, err := gfa.NewOptionalFields([]byte(fmt.Sprintf("KC:i:%d", g.kmers[kmer])))
		if err != nil {
			return 0, 0, err
		}
		seg.AddOptionalFields(ofs)
		seg.Add(newGFA)
	}

	// links, each edge is seen from both of its ends so only the one starting at the smaller k-mer is kept
	overlap := []byte(strconv.Itoa(g.KmerSize()-1) + "M")
	nbLinks := 0
	for _, from := range kmers {
		for _, fromOrient := range []string{"+", "-"} {
			value := from
			if fromOrient == "-" {
				value = g.model.Revcomp(from)
			}
			for _, next := range g.Successors(Node[T]{Value: value}) {
				to := g.model.Canonical(next.Value)
				if to.Less(from) {
					continue
				}
				toOrient := "+"
				if to != next.Value {
					toOrient = "-"
				}
				link, err := gfa.NewLink([]byte(ids[from]), []byte(fromOrient), []byte(ids[to]), []byte(toOrient), overlap)
				if err != nil {
					return 0, 0, err
				}
				link.Add(newGFA)
				nbLinks++
			}
		}
	}

	outfile, err := os.Create(fileName)
	if err != nil {
		return 0, 0, err
	}
	defer outfile.Close()
	writer, err := gfa.NewWriter(outfile, newGFA)
	if err != nil {
		return 0, 0, err
	}
	if err := newGFA.WriteGFAContent(writer); err != nil {
		return 0, 0, err
	}
	return len(kmers), nbLinks, nil
}

// LoadGFA reads a GFA file into a GFA struct
func LoadGFA(fileName string) (*gfa.GFA, error) {
	fh, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	reader, err := gfa.NewReader(fh)
	if err != nil {
		return nil, fmt.Errorf("can't read gfa file: %v", err)
	}
	myGFA := reader.CollectGFA()
	for {
		line, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading line in gfa file: %v", err)
		}
		if err := line.Add(myGFA); err != nil {
			return nil, fmt.Errorf("error adding line to GFA instance: %v", err)
		}
	}
	return myGFA, nil
}

// FromGFA rebuilds an exact graph from the segments of a GFA instance (links are implied by the k-mers)
func FromGFA[T largeint.Integer[T]](myGFA *gfa.GFA, kmerSize int) (*Graph[T], error) {
	g, err := New[T](kmerSize)
	if err != nil {
		return nil, err
	}
	segments, err := myGFA.GetSegments()
	if err != nil {
		return nil, err
	}
	for _, segment := range segments {
		value, err := g.model.Encode(string(segment.Sequence))
		if err != nil {
			return nil, fmt.Errorf("segment %s is not a %d-mer: %v", segment.Name, kmerSize, err)
		}
		g.Add(value, 1)
	}
	return g, nil
}
