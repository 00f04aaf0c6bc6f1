// Package ingest loads track datasets from CSV files. Headers are matched
// case-insensitively and column order is free; a missing required column
// fails before any row is parsed.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"hidecan/internal/genome"
)

var ErrEmptyFile = errors.New("ingest: file has no header row")

// MissingColumnsError lists the required columns absent from a header.
type MissingColumnsError struct {
	Dataset string
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("dataset %q: missing required columns: %s", e.Dataset, strings.Join(e.Columns, ", "))
}

type table struct {
	cols map[string]int
	rows [][]string
}

func readTable(r io.Reader) (*table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}
	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return &table{cols: cols, rows: records[1:]}, nil
}

func (t *table) require(dataset string, names ...string) error {
	var missing []string
	for _, n := range names {
		if _, ok := t.cols[n]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Dataset: dataset, Columns: missing}
	}
	return nil
}

func (t *table) has(name string) bool {
	_, ok := t.cols[name]
	return ok
}

func (t *table) str(row []string, name string) string {
	idx, ok := t.cols[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func (t *table) num(row []string, name string) (float64, bool, error) {
	s := t.str(row, name)
	if s == "" || strings.EqualFold(s, "na") || strings.EqualFold(s, "nan") {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("column %q: %w", name, err)
	}
	return v, true, nil
}

func (t *table) integer(row []string, name string) (int64, bool, error) {
	v, ok, err := t.num(row, name)
	if err != nil || !ok {
		return 0, ok, err
	}
	return int64(math.Round(v)), true, nil
}

// pValueColumns are the accepted raw p-value headers; values are converted
// to the -log10 scale.
var pValueColumns = []string{"padj", "p_value", "pvalue"}

// scoreFor reads an explicit score column, falling back to -log10 of a raw
// p-value column. ok is false when the row has no usable value in any of
// them, which makes the row undrawable.
func (t *table) scoreFor(row []string) (float64, bool, error) {
	if t.has("score") {
		v, ok, err := t.num(row, "score")
		if err != nil {
			return 0, false, err
		}
		if ok {
			return v, true, nil
		}
	}
	for _, col := range pValueColumns {
		if !t.has(col) {
			continue
		}
		v, ok, err := t.num(row, col)
		if err != nil {
			return 0, false, err
		}
		if ok {
			return genome.ScoreFromPValue(v), true, nil
		}
	}
	return 0, false, nil
}

func (t *table) hasScoreColumn() bool {
	if t.has("score") {
		return true
	}
	for _, col := range pValueColumns {
		if t.has(col) {
			return true
		}
	}
	return false
}

func missingScoreColumns(name string) error {
	return &MissingColumnsError{Dataset: name, Columns: []string{"score|padj|p_value"}}
}

// ReadGWAS parses GWAS marker rows: chromosome, position and a score|padj|
// p_value column. Rows with no usable score are dropped and counted.
func ReadGWAS(r io.Reader, name string) (genome.Dataset, error) {
	t, err := readTable(r)
	if err != nil {
		return genome.Dataset{}, err
	}
	if err := t.require(name, "chromosome", "position"); err != nil {
		return genome.Dataset{}, err
	}
	if !t.hasScoreColumn() {
		return genome.Dataset{}, missingScoreColumns(name)
	}
	features := make([]genome.Feature, 0, len(t.rows))
	dropped := 0
	for i, row := range t.rows {
		pos, _, err := t.integer(row, "position")
		if err != nil {
			return genome.Dataset{}, rowErr(name, i, err)
		}
		score, ok, err := t.scoreFor(row)
		if err != nil {
			return genome.Dataset{}, rowErr(name, i, err)
		}
		if !ok {
			dropped++
			continue
		}
		features = append(features, genome.Feature{
			Chromosome: t.str(row, "chromosome"),
			Position:   pos,
			Score:      score,
			Name:       t.str(row, "name"),
		})
	}
	genome.FillZeroPValueScores(features)
	ds, err := genome.NewGWASDataset(name, features)
	if err != nil {
		return genome.Dataset{}, err
	}
	ds.Dropped = dropped
	return ds, nil
}

// ReadDE parses differential expression rows: chromosome, start, end,
// score|padj|p_value, optional log2FoldChange and name. Rows with no
// usable score are dropped and counted.
func ReadDE(r io.Reader, name string) (genome.Dataset, error) {
	t, err := readTable(r)
	if err != nil {
		return genome.Dataset{}, err
	}
	if err := t.require(name, "chromosome", "start", "end"); err != nil {
		return genome.Dataset{}, err
	}
	if !t.hasScoreColumn() {
		return genome.Dataset{}, missingScoreColumns(name)
	}
	features := make([]genome.Feature, 0, len(t.rows))
	dropped := 0
	for i, row := range t.rows {
		start, _, err := t.integer(row, "start")
		if err != nil {
			return genome.Dataset{}, rowErr(name, i, err)
		}
		end, _, err := t.integer(row, "end")
		if err != nil {
			return genome.Dataset{}, rowErr(name, i, err)
		}
		score, ok, err := t.scoreFor(row)
		if err != nil {
			return genome.Dataset{}, rowErr(name, i, err)
		}
		if !ok {
			dropped++
			continue
		}
		log2fc, _, err := t.num(row, "log2foldchange")
		if err != nil {
			return genome.Dataset{}, rowErr(name, i, err)
		}
		features = append(features, genome.Feature{
			Chromosome: t.str(row, "chromosome"),
			Start:      start,
			End:        end,
			Score:      score,
			Log2FC:     log2fc,
			Name:       t.str(row, "name"),
		})
	}
	genome.FillZeroPValueScores(features)
	ds, err := genome.NewDEDataset(name, features)
	if err != nil {
		return genome.Dataset{}, err
	}
	ds.Dropped = dropped
	return ds, nil
}

// ReadCAN parses candidate gene rows: chromosome, start, end, name.
func ReadCAN(r io.Reader, name string) (genome.Dataset, error) {
	t, err := readTable(r)
	if err != nil {
		return genome.Dataset{}, err
	}
	if err := t.require(name, "chromosome", "start", "end", "name"); err != nil {
		return genome.Dataset{}, err
	}
	features := make([]genome.Feature, 0, len(t.rows))
	for i, row := range t.rows {
		start, _, err := t.integer(row, "start")
		if err != nil {
			return genome.Dataset{}, rowErr(name, i, err)
		}
		end, _, err := t.integer(row, "end")
		if err != nil {
			return genome.Dataset{}, rowErr(name, i, err)
		}
		features = append(features, genome.Feature{
			Chromosome: t.str(row, "chromosome"),
			Start:      start,
			End:        end,
			Name:       t.str(row, "name"),
		})
	}
	return genome.NewCANDataset(name, features)
}

// ReadCustom parses a custom track: chromosome, score, position or
// start+end, optional name. The aes_type column, when present, must agree
// across rows; otherwise the file-level tag applies.
func ReadCustom(r io.Reader, name, aesType string) (genome.Dataset, error) {
	t, err := readTable(r)
	if err != nil {
		return genome.Dataset{}, err
	}
	if err := t.require(name, "chromosome", "score"); err != nil {
		return genome.Dataset{}, err
	}
	if !t.has("position") && !(t.has("start") && t.has("end")) {
		return genome.Dataset{}, &MissingColumnsError{Dataset: name, Columns: []string{"position|start+end"}}
	}
	features := make([]genome.Feature, 0, len(t.rows))
	dropped := 0
	for i, row := range t.rows {
		pos, _, err := t.integer(row, "position")
		if err != nil {
			return genome.Dataset{}, rowErr(name, i, err)
		}
		start, _, err := t.integer(row, "start")
		if err != nil {
			return genome.Dataset{}, rowErr(name, i, err)
		}
		end, _, err := t.integer(row, "end")
		if err != nil {
			return genome.Dataset{}, rowErr(name, i, err)
		}
		score, ok, err := t.num(row, "score")
		if err != nil {
			return genome.Dataset{}, rowErr(name, i, err)
		}
		if !ok {
			dropped++
			continue
		}
		if tag := t.str(row, "aes_type"); tag != "" {
			if aesType != "" && !strings.EqualFold(tag, aesType) {
				return genome.Dataset{}, fmt.Errorf("dataset %q row %d: aes_type %q conflicts with %q", name, i+1, tag, aesType)
			}
			aesType = strings.ToLower(tag)
		}
		features = append(features, genome.Feature{
			Chromosome: t.str(row, "chromosome"),
			Position:   pos,
			Start:      start,
			End:        end,
			Score:      score,
			Name:       t.str(row, "name"),
		})
	}
	ds, err := genome.NewCustomDataset(name, aesType, features)
	if err != nil {
		return genome.Dataset{}, err
	}
	ds.Dropped = dropped
	return ds, nil
}

func rowErr(dataset string, idx int, err error) error {
	return fmt.Errorf("dataset %q row %d: %w", dataset, idx+1, err)
}
