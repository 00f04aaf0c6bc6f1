// Package example generates a deterministic demo dataset bundle: a GWAS
// scan, DE genes, candidate genes and two custom tracks (QTL regions and
// methylation) whose tags resolve in the shipped aesthetics file.
package example

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"

	"hidecan/internal/genome"
)

const seed = 20210412

const (
	chromosomeCount = 12
	chromLengthBP   = 60_000_000
	gwasMarkers     = 2000
	deGenes         = 300
	canGenes        = 40
	qtlRegions      = 18
	methylSites     = 120
)

// Bundle holds the generated datasets in render order.
type Bundle struct {
	GWAS        genome.Dataset
	DE          genome.Dataset
	CAN         genome.Dataset
	QTL         genome.Dataset
	Methylation genome.Dataset
}

// Datasets returns the bundle in stacked track order.
func (b Bundle) Datasets() []genome.Dataset {
	return []genome.Dataset{b.GWAS, b.DE, b.CAN, b.QTL, b.Methylation}
}

// Generate builds the bundle. The output is stable across runs.
func Generate() (Bundle, error) {
	rng := rand.New(rand.NewSource(seed))

	gwas := make([]genome.Feature, 0, gwasMarkers)
	for i := 0; i < gwasMarkers; i++ {
		f := genome.Feature{
			Chromosome: chromName(rng.Intn(chromosomeCount)),
			Position:   1 + rng.Int63n(chromLengthBP),
			Score:      rng.ExpFloat64() * 1.5,
		}
		// a handful of strong peaks so default thresholds keep something
		if i%97 == 0 {
			f.Score += 6 + rng.Float64()*4
			f.Name = fmt.Sprintf("peak_%d", i/97)
		}
		gwas = append(gwas, f)
	}

	de := make([]genome.Feature, 0, deGenes)
	for i := 0; i < deGenes; i++ {
		start := 1 + rng.Int63n(chromLengthBP-50_000)
		sign := 1.0
		if rng.Intn(2) == 0 {
			sign = -1.0
		}
		de = append(de, genome.Feature{
			Chromosome: chromName(rng.Intn(chromosomeCount)),
			Start:      start,
			End:        start + 5_000 + rng.Int63n(45_000),
			Score:      rng.ExpFloat64() * 2,
			Log2FC:     sign * rng.Float64() * 4,
			Name:       fmt.Sprintf("gene_%03d", i),
		})
	}

	can := make([]genome.Feature, 0, canGenes)
	for i := 0; i < canGenes; i++ {
		start := 1 + rng.Int63n(chromLengthBP-30_000)
		can = append(can, genome.Feature{
			Chromosome: chromName(rng.Intn(chromosomeCount)),
			Start:      start,
			End:        start + 10_000 + rng.Int63n(20_000),
			Name:       fmt.Sprintf("candidate_%02d", i),
		})
	}

	qtl := make([]genome.Feature, 0, qtlRegions)
	for i := 0; i < qtlRegions; i++ {
		start := 1 + rng.Int63n(chromLengthBP-4_000_000)
		qtl = append(qtl, genome.Feature{
			Chromosome: chromName(rng.Intn(chromosomeCount)),
			Start:      start,
			End:        start + 1_000_000 + rng.Int63n(3_000_000),
			Score:      2 + rng.Float64()*8,
			Name:       fmt.Sprintf("qtl_%02d", i),
		})
	}

	methyl := make([]genome.Feature, 0, methylSites)
	for i := 0; i < methylSites; i++ {
		methyl = append(methyl, genome.Feature{
			Chromosome: chromName(rng.Intn(chromosomeCount)),
			Position:   1 + rng.Int63n(chromLengthBP),
			Score:      rng.Float64() * 10,
		})
	}

	var b Bundle
	var err error
	if b.GWAS, err = genome.NewGWASDataset("example_gwas", gwas); err != nil {
		return Bundle{}, err
	}
	if b.DE, err = genome.NewDEDataset("example_de", de); err != nil {
		return Bundle{}, err
	}
	if b.CAN, err = genome.NewCANDataset("example_can", can); err != nil {
		return Bundle{}, err
	}
	if b.QTL, err = genome.NewCustomDataset("example_qtl", "qtl", qtl); err != nil {
		return Bundle{}, err
	}
	if b.Methylation, err = genome.NewCustomDataset("example_methylation", "methylation", methyl); err != nil {
		return Bundle{}, err
	}
	return b, nil
}

func chromName(i int) string {
	return "chr" + strconv.Itoa(i+1)
}

// WriteCSVFiles writes the bundle as CSV files into dir, one per dataset,
// and returns the written paths.
func WriteCSVFiles(dir string) ([]string, error) {
	b, err := Generate()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var paths []string
	for _, ds := range b.Datasets() {
		path := filepath.Join(dir, ds.Name+".csv")
		if err := writeCSV(path, ds); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeCSV(path string, ds genome.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeCSVTo(f, ds); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// writeCSVTo flushes explicitly so write failures surface instead of being
// swallowed by a deferred Flush.
func writeCSVTo(out io.Writer, ds genome.Dataset) error {
	w := csv.NewWriter(out)
	if err := writeRows(w, ds); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func writeRows(w *csv.Writer, ds genome.Dataset) error {
	switch ds.Type {
	case genome.TrackDE:
		if err := w.Write([]string{"chromosome", "start", "end", "score", "log2FoldChange", "name"}); err != nil {
			return err
		}
		for _, ft := range ds.Features {
			if err := w.Write([]string{
				ft.Chromosome,
				strconv.FormatInt(ft.Start, 10),
				strconv.FormatInt(ft.End, 10),
				formatFloat(ft.Score),
				formatFloat(ft.Log2FC),
				ft.Name,
			}); err != nil {
				return err
			}
		}
	case genome.TrackCAN:
		if err := w.Write([]string{"chromosome", "start", "end", "name"}); err != nil {
			return err
		}
		for _, ft := range ds.Features {
			if err := w.Write([]string{
				ft.Chromosome,
				strconv.FormatInt(ft.Start, 10),
				strconv.FormatInt(ft.End, 10),
				ft.Name,
			}); err != nil {
				return err
			}
		}
	case genome.TrackCustom:
		if err := w.Write([]string{"chromosome", "position", "start", "end", "score", "name", "aes_type"}); err != nil {
			return err
		}
		for _, ft := range ds.Features {
			if err := w.Write([]string{
				ft.Chromosome,
				strconv.FormatInt(ft.Position, 10),
				strconv.FormatInt(ft.Start, 10),
				strconv.FormatInt(ft.End, 10),
				formatFloat(ft.Score),
				ft.Name,
				ds.AesType,
			}); err != nil {
				return err
			}
		}
	default:
		if err := w.Write([]string{"chromosome", "position", "score", "name"}); err != nil {
			return err
		}
		for _, ft := range ds.Features {
			if err := w.Write([]string{
				ft.Chromosome,
				strconv.FormatInt(ft.Position, 10),
				formatFloat(ft.Score),
				ft.Name,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
