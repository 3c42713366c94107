package pipeline

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/will-rowe/kmerbank/src/kmer"
	"github.com/will-rowe/kmerbank/src/storage"
)

// InfoFile is the name of the runtime info file written to the storage directory
const InfoFile = "kmerbank.info"

// Info stores the runtime information
type Info struct {
	Version      string   `toml:"-"`
	NumProc      int      `toml:"processors"`
	Profiling    bool     `toml:"-"`
	KmerSize     int      `toml:"kmer_size"`
	MmerSize     int      `toml:"mmer_size"`
	NumPart      int      `toml:"partitions"`
	MinAbundance int      `toml:"min_abundance"`
	SketchSize   int      `toml:"sketch_size"`
	Flavour      string   `toml:"sketch_flavour"`
	Inputs       []string `toml:"inputs"`
	StorageDir   string   `toml:"storage_dir"`
	Archive      string   `toml:"archive"`
	ProgressBar  bool     `toml:"progress_bar"`
	Stats        Stats    `toml:"-"`

	// the following fields are only used by the commands that read the storage
	Graph    GraphCmd `toml:"-"`
	Histo    HistoCmd `toml:"-"`
	DumpOpts DumpCmd  `toml:"-"`
}

// Stats records what the counting stage found
type Stats struct {
	NbSequences uint64
	NbKmers     uint64
	NbDistinct  uint64
	NbSolid     uint64
}

// GraphCmd stores the runtime info for the graph command
type GraphCmd struct {
	Node     string
	GFAout   string
	Bloom    bool
	MaxSteps int
}

// HistoCmd stores the runtime info for the histo command
type HistoCmd struct {
	MaxAbundance int
	PlotOut      string
}

// DumpCmd stores the runtime info for the dump command
type DumpCmd struct {
	BankOut          string
	MinimizerBankOut string
}

// NewInfo returns an Info holding the default parameters
func NewInfo() *Info {
	return &Info{
		NumProc:      1,
		KmerSize:     31,
		MmerSize:     10,
		NumPart:      8,
		MinAbundance: 2,
		SketchSize:   1000,
		Flavour:      "kmv",
	}
}

// LoadConfig overwrites the parameters with those set in a TOML file
func (Info *Info) LoadConfig(path string) error {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}
	if err := toml.Unmarshal(data, Info); err != nil {
		return fmt.Errorf("could not parse config file %v: %v", path, err)
	}
	return nil
}

// Check is a method to check the parameters of the counting stage
func (Info *Info) Check() error {
	if Info.KmerSize < 2 || Info.KmerSize > kmer.MaxKmerSize {
		return fmt.Errorf("k-mer size must be between 2 and %d: %d", kmer.MaxKmerSize, Info.KmerSize)
	}
	if Info.MmerSize < 1 || Info.MmerSize >= Info.KmerSize {
		return fmt.Errorf("minimizer size must be between 1 and k-1: %d", Info.MmerSize)
	}
	if Info.NumPart < 1 {
		return fmt.Errorf("number of partitions must be at least 1: %d", Info.NumPart)
	}
	if Info.MinAbundance < 1 || Info.MinAbundance > storage.MaxAbundance {
		return fmt.Errorf("minimum abundance must be between 1 and %d: %d", storage.MaxAbundance, Info.MinAbundance)
	}
	if Info.StorageDir == "" {
		return fmt.Errorf("no storage directory set")
	}
	return nil
}

// Dump is a method to dump the pipeline info to file
func (Info *Info) Dump(path string) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fh.Close()
	encoder := gob.NewEncoder(fh)
	return encoder.Encode(Info)
}

// Load is a method to load Info from file
func (Info *Info) Load(path string) error {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}
	return Info.LoadFromBytes(data)
}

// LoadFromStorage is a method to load the Info written by the counting stage
func (Info *Info) LoadFromStorage(dir string) error {
	return Info.Load(filepath.Join(dir, InfoFile))
}

// LoadFromBytes is a method to load Info from bytes
func (Info *Info) LoadFromBytes(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("kmerbank info appears empty")
	}
	buf := bytes.NewBuffer(data)
	decoder := gob.NewDecoder(buf)
	return decoder.Decode(Info)
}
