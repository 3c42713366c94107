package pipeline

import (
	"fmt"
	"io"
	"log"

	"github.com/will-rowe/kmerbank/src/largeint"
	"github.com/will-rowe/kmerbank/src/reporting"
	"github.com/will-rowe/kmerbank/src/storage"
)

// RunHisto prints the abundance histogram of the solid k-mers and plots it if requested
func RunHisto(info *Info, w io.Writer) (*reporting.Histogram, error) {
	group, err := openCounted(info)
	if err != nil {
		return nil, err
	}
	var histo *reporting.Histogram
	switch {
	case info.KmerSize < 32:
		histo, err = histogram[largeint.Uint64](info, group)
	case info.KmerSize < 64:
		histo, err = histogram[largeint.Uint128](info, group)
	default:
		histo, err = histogram[largeint.Uint256](info, group)
	}
	if err != nil {
		return nil, err
	}
	log.Printf("\tdistinct k-mers: %d", histo.Distinct())
	log.Printf("\tfirst minimum of the histogram: %d", histo.Cutoff())
	if err := histo.Write(w); err != nil {
		return nil, err
	}
	if info.Histo.PlotOut != "" {
		title := fmt.Sprintf("%d-mer abundance (min. abundance %d)", info.KmerSize, info.MinAbundance)
		if err := histo.Plot(info.Histo.PlotOut, title); err != nil {
			return nil, err
		}
		log.Printf("\tsaved plot to %v", info.Histo.PlotOut)
	}
	return histo, nil
}

func histogram[T largeint.Integer[T]](info *Info, group *storage.Group) (*reporting.Histogram, error) {
	solid, err := storage.GetPartition[T](group, SolidName, info.NumPart)
	if err != nil {
		return nil, err
	}
	return reporting.FromPartition(solid, info.Histo.MaxAbundance)
}
