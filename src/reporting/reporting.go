// Package reporting summarises counted k-mers: an abundance histogram that can be printed or plotted.
package reporting

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/will-rowe/kmerbank/src/largeint"
	"github.com/will-rowe/kmerbank/src/storage"
)

// DefaultMaxAbundance is the default number of histogram bins
const DefaultMaxAbundance = 10000

// Histogram counts how many distinct k-mers were seen at each abundance
// Bin 0 is unused, abundances above MaxAbundance are added to the last bin.
type Histogram struct {
	counts   []uint64
	distinct uint64
	total    uint64
}

// NewHistogram is the Histogram constructor
func NewHistogram(maxAbundance int) *Histogram {
	if maxAbundance < 1 {
		maxAbundance = DefaultMaxAbundance
	}
	return &Histogram{counts: make([]uint64, maxAbundance+1)}
}

// FromPartition builds the histogram of every k-mer stored in a partition
func FromPartition[T largeint.Integer[T]](p *storage.Partition[T], maxAbundance int) (*Histogram, error) {
	h := NewHistogram(maxAbundance)
	it := p.Iterator()
	defer it.Close()
	for it.First(); !it.IsDone(); it.Next() {
		h.Add(it.Item().Abundance)
	}
	return h, it.Err()
}

// Add records one distinct k-mer seen abundance times
func (h *Histogram) Add(abundance uint16) {
	if abundance == 0 {
		return
	}
	bin := int(abundance)
	if bin >= len(h.counts) {
		bin = len(h.counts) - 1
	}
	h.counts[bin]++
	h.distinct++
	h.total += uint64(abundance)
}

// MaxAbundance returns the last bin
func (h *Histogram) MaxAbundance() int {
	return len(h.counts) - 1
}

// Count returns the number of distinct k-mers in a bin
func (h *Histogram) Count(abundance int) uint64 {
	if abundance < 0 || abundance >= len(h.counts) {
		return 0
	}
	return h.counts[abundance]
}

// Distinct returns the number of distinct k-mers
func (h *Histogram) Distinct() uint64 {
	return h.distinct
}

// Total returns the number of k-mers, counting repeats
func (h *Histogram) Total() uint64 {
	return h.total
}

// Cutoff returns the abundance of the first local minimum of the histogram, the usual threshold between
// erroneous and solid k-mers. It returns 0 when the histogram only decreases.
func (h *Histogram) Cutoff() int {
	for i := 2; i < len(h.counts)-1; i++ {
		if h.counts[i] < h.counts[i-1] && h.counts[i] <= h.counts[i+1] {
			return i
		}
	}
	return 0
}

// Write prints the non empty bins, one "abundance\tcount" line each
func (h *Histogram) Write(w io.Writer) error {
	for i := 1; i < len(h.counts); i++ {
		if h.counts[i] == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "%d\t%d\n", i, h.counts[i]); err != nil {
			return err
		}
	}
	return nil
}

// Plot saves a line plot of the histogram (counts on a log scale) as an image, the format is given by the file extension
func (h *Histogram) Plot(fileName, title string) error {
	points := plotter.XYs{}
	last := 0
	for i := 1; i < len(h.counts); i++ {
		if h.counts[i] != 0 {
			last = i
		}
	}
	for i := 1; i <= last; i++ {
		points = append(points, plotter.XY{X: float64(i), Y: float64(h.counts[i])})
	}
	if len(points) == 0 {
		return fmt.Errorf("can't plot an empty histogram")
	}
	histoPlot, err := plot.New()
	if err != nil {
		return err
	}
	histoPlot.Title.Text = title
	histoPlot.X.Label.Text = "abundance"
	histoPlot.Y.Label.Text = "number of distinct k-mers"
	histoPlot.Y.Scale = plot.LogScale{}
	histoPlot.Y.Tick.Marker = plot.LogTicks{}
	if err := plotutil.AddLinePoints(histoPlot, "k-mers", logSafe(points)); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fileName), 0755); err != nil {
		return err
	}
	return histoPlot.Save(8*vg.Inch, 6*vg.Inch, fileName)
}

// logSafe moves empty bins to 1 so they can be drawn on a log scale
func logSafe(points plotter.XYs) plotter.XYs {
	for i := range points {
		if points[i].Y < 1 {
			points[i].Y = 1
		}
	}
	return points
}
