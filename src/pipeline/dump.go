package pipeline

/*
 this part of the pipeline reads back the solid k-mers written by the counting stage
*/

import (
	"bufio"
	"fmt"
	"io"
	"log"

	"github.com/will-rowe/kmerbank/src/bank"
	"github.com/will-rowe/kmerbank/src/data"
	"github.com/will-rowe/kmerbank/src/kmer"
	"github.com/will-rowe/kmerbank/src/largeint"
	"github.com/will-rowe/kmerbank/src/misc"
	"github.com/will-rowe/kmerbank/src/storage"
)

// openCounted loads the counting group of a storage directory and copies the parameters it was
// written with into the Info
func openCounted(info *Info) (*storage.Group, error) {
	if err := misc.CheckDir(info.StorageDir); err != nil {
		return nil, err
	}
	store, err := storage.Load(info.StorageDir)
	if err != nil {
		return nil, err
	}
	group, err := store.Group(GroupName)
	if err != nil {
		return nil, err
	}
	if info.NumPart, err = group.GetInt(storage.PropNbPartitions); err != nil {
		return nil, fmt.Errorf("storage was not written by the count command: %v", err)
	}
	if info.KmerSize, err = group.GetInt(storage.PropKmerSize); err != nil {
		return nil, err
	}
	if info.MmerSize, err = group.GetInt(storage.PropMmerSize); err != nil {
		return nil, err
	}
	if info.MinAbundance, err = group.GetInt(storage.PropMinAbundance); err != nil {
		return nil, err
	}
	return group, nil
}

// RunDump prints every solid k-mer with its minimizer and abundance, one per line, and optionally
// copies the k-mers to a binary bank. A second bank can receive the minimizers of the two (k-1)-mers
// of each solid k-mer.
func RunDump(info *Info, w io.Writer) error {
	group, err := openCounted(info)
	if err != nil {
		return err
	}
	switch {
	case info.KmerSize < 32:
		return runDump[largeint.Uint64](info, group, w)
	case info.KmerSize < 64:
		return runDump[largeint.Uint128](info, group, w)
	default:
		return runDump[largeint.Uint256](info, group, w)
	}
}

// minimizerDumper writes the minimizers of the (k-1)-mers of each solid k-mer to a binary bank
type minimizerDumper[T largeint.Integer[T]] struct {
	model  *kmer.MinimizerModel[T]
	binary *bank.Binary
	ref    *data.Data
	nbSeqs int
}

func newMinimizerDumper[T largeint.Integer[T]](info *Info) (*minimizerDumper[T], error) {
	if info.MmerSize >= info.KmerSize-1 {
		return nil, fmt.Errorf("minimizer size %d is too large for the %d-mers of a k=%d count", info.MmerSize, info.KmerSize-1, info.KmerSize)
	}
	model, err := kmer.NewMinimizerModel[T](info.KmerSize-1, info.MmerSize)
	if err != nil {
		return nil, err
	}
	binary, err := bank.NewBinary(info.DumpOpts.MinimizerBankOut)
	if err != nil {
		return nil, err
	}
	return &minimizerDumper[T]{model: model, binary: binary, ref: data.New(data.BINARY)}, nil
}

// add packs the k-mer and iterates the (k-1)-mer model over a reference to the packed bases
func (md *minimizerDumper[T]) add(kmerSeq string, kmerIdx int) error {
	packed, err := data.Pack(data.NewFromString(kmerSeq))
	if err != nil {
		return err
	}
	if err := md.ref.SetRef(packed, 0, packed.Size()); err != nil {
		return err
	}
	var insertErr error
	_, err = md.model.Iterate(md.ref, func(mk kmer.MinimizerKmer[T], idx int) {
		if insertErr != nil {
			return
		}
		seq := &bank.Sequence{
			Comment: fmt.Sprintf("kmer=%d pos=%d", kmerIdx, idx),
			Data:    data.NewFromString(md.model.MmersModel().String(mk.Minimizer())),
			Index:   md.nbSeqs,
		}
		insertErr = md.binary.Insert(seq)
		md.nbSeqs++
	})
	if err != nil {
		return err
	}
	return insertErr
}

func runDump[T largeint.Integer[T]](info *Info, group *storage.Group, w io.Writer) error {
	model, err := kmer.NewMinimizerModel[T](info.KmerSize, info.MmerSize)
	if err != nil {
		return err
	}
	solid, err := storage.GetPartition[T](group, SolidName, info.NumPart)
	if err != nil {
		return err
	}

	// Close can be called twice on a bank, so the deferred calls only matter on the error paths
	var binary *bank.Binary
	if info.DumpOpts.BankOut != "" {
		if binary, err = bank.NewBinary(info.DumpOpts.BankOut); err != nil {
			return err
		}
		defer binary.Close()
	}
	var mmers *minimizerDumper[T]
	if info.DumpOpts.MinimizerBankOut != "" {
		if mmers, err = newMinimizerDumper[T](info); err != nil {
			return err
		}
		defer mmers.binary.Close()
	}
	out := bufio.NewWriter(w)
	it := solid.Iterator()
	defer it.Close()
	nbKmers := 0
	for it.First(); !it.IsDone(); it.Next() {
		c := it.Item()
		kmerSeq := model.KmersModel().String(c.Value)
		minimizer := model.MmersModel().String(model.MinimizerValue(c.Value))
		if _, err := fmt.Fprintf(out, "%v\t%v\t%d\n", kmerSeq, minimizer, c.Abundance); err != nil {
			return err
		}
		if binary != nil {
			seq := &bank.Sequence{Comment: fmt.Sprintf("part=%d abundance=%d", it.Part(), c.Abundance), Data: data.NewFromString(kmerSeq), Index: nbKmers}
			if err := binary.Insert(seq); err != nil {
				return err
			}
		}
		if mmers != nil {
			if err := mmers.add(kmerSeq, nbKmers); err != nil {
				return err
			}
		}
		nbKmers++
	}
	if err := it.Err(); err != nil {
		return err
	}
	if binary != nil {
		if err := binary.Close(); err != nil {
			return err
		}
		log.Printf("\twrote %d k-mers to %v", nbKmers, info.DumpOpts.BankOut)
	}
	if mmers != nil {
		if err := mmers.binary.Close(); err != nil {
			return err
		}
		log.Printf("\twrote %d minimizers to %v", mmers.nbSeqs, info.DumpOpts.MinimizerBankOut)
	}
	log.Printf("\tdumped %d solid k-mers", nbKmers)
	return out.Flush()
}

// ReadKmerBank decodes the k-mers of a binary bank written by RunDump, reading each packed sequence
// directly as a k-mer
func ReadKmerBank[T largeint.Integer[T]](path string, kmerSize int) ([]T, error) {
	model, err := kmer.NewModel[T](kmerSize, kmer.Direct)
	if err != nil {
		return nil, err
	}
	b, err := bank.OpenBinary(path)
	if err != nil {
		return nil, err
	}
	it, err := b.Iterator()
	if err != nil {
		return nil, err
	}
	defer it.Close()
	kmers := []T{}
	for it.First(); !it.IsDone(); it.Next() {
		seq := it.Item()
		if seq.Data.Size() != kmerSize {
			return nil, fmt.Errorf("sequence %d is not a %d-mer", seq.Index, kmerSize)
		}
		k, err := model.CodeSeed(seq.Data.Buffer(), seq.Data.Encoding())
		if err != nil {
			return nil, err
		}
		kmers = append(kmers, k.Value())
	}
	return kmers, it.Err()
}
