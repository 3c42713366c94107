package pipeline

/*
 this part of the pipeline loads the k-mers into a de Bruijn graph and walks it from a node
*/

import (
	"fmt"
	"io"
	"log"

	"github.com/will-rowe/kmerbank/src/bank"
	"github.com/will-rowe/kmerbank/src/graph"
	"github.com/will-rowe/kmerbank/src/largeint"
	"github.com/will-rowe/kmerbank/src/storage"
)

// GraphReport is what the graph command found around its start node
type GraphReport struct {
	Node         string
	Abundance    uint16
	Successors   []string
	Predecessors []string
	Branching    []string
	NbKmers      uint64
}

// RunGraph builds a graph (from the solid k-mers of the storage if it is set, otherwise from the input banks),
// prints the neighbourhood of the requested node and saves the graph as GFA if requested
func RunGraph(info *Info, w io.Writer) (*GraphReport, error) {
	var group *storage.Group
	if info.StorageDir != "" {
		var err error
		if group, err = openCounted(info); err != nil {
			return nil, err
		}
	} else if len(info.Inputs) == 0 {
		return nil, fmt.Errorf("the graph needs either a storage directory or input sequences")
	}
	var report *GraphReport
	var err error
	switch {
	case info.KmerSize < 32:
		report, err = runGraph[largeint.Uint64](info, group)
	case info.KmerSize < 64:
		report, err = runGraph[largeint.Uint128](info, group)
	default:
		report, err = runGraph[largeint.Uint256](info, group)
	}
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "node\t%v\t%d\n", report.Node, report.Abundance)
	for _, s := range report.Predecessors {
		fmt.Fprintf(w, "predecessor\t%v\n", s)
	}
	for _, s := range report.Successors {
		fmt.Fprintf(w, "successor\t%v\n", s)
	}
	for _, s := range report.Branching {
		fmt.Fprintf(w, "branching\t%v\n", s)
	}
	return report, nil
}

func runGraph[T largeint.Integer[T]](info *Info, group *storage.Group) (*GraphReport, error) {
	g, err := loadGraph[T](info, group)
	if err != nil {
		return nil, err
	}
	log.Printf("\tgraph holds %d k-mers", g.Len())
	node, err := g.BuildNode(info.Graph.Node)
	if err != nil {
		return nil, err
	}
	report := &GraphReport{Node: g.String(node), Abundance: node.Abundance, NbKmers: g.Len()}
	for _, n := range g.Predecessors(node) {
		report.Predecessors = append(report.Predecessors, g.String(n))
	}
	for _, n := range g.Successors(node) {
		report.Successors = append(report.Successors, g.String(n))
	}
	for _, n := range g.BranchingSuccessors(node, info.Graph.MaxSteps) {
		report.Branching = append(report.Branching, g.String(n))
	}
	if info.Graph.GFAout != "" {
		nbSegments, nbLinks, err := g.SaveGFA(info.Graph.GFAout)
		if err != nil {
			return nil, err
		}
		log.Printf("\tsaved %d segments and %d links to %v", nbSegments, nbLinks, info.Graph.GFAout)
	}
	return report, nil
}

func loadGraph[T largeint.Integer[T]](info *Info, group *storage.Group) (*graph.Graph[T], error) {
	if group != nil {
		solid, err := storage.GetPartition[T](group, SolidName, info.NumPart)
		if err != nil {
			return nil, err
		}
		nbSolid, err := group.GetInt(storage.PropNbSolid)
		if err != nil {
			return nil, err
		}
		return graph.FromPartition(solid, info.KmerSize, info.Graph.Bloom, uint64(nbSolid))
	}
	banks := make([]bank.Bank, len(info.Inputs))
	totalSize := uint64(0)
	for i, input := range info.Inputs {
		b, err := bank.Open(input)
		if err != nil {
			return nil, err
		}
		banks[i] = b
		if info.Graph.Bloom {
			_, dataSize, err := bank.Estimate(b)
			if err != nil {
				return nil, err
			}
			totalSize += dataSize
		}
	}
	var g *graph.Graph[T]
	var err error
	if info.Graph.Bloom {
		g, err = graph.NewWithBloom[T](info.KmerSize, totalSize, 0.01)
	} else {
		g, err = graph.New[T](info.KmerSize)
	}
	if err != nil {
		return nil, err
	}
	for _, b := range banks {
		if err := g.AddBank(b); err != nil {
			return nil, err
		}
	}
	return g, nil
}
