package genome

import (
	"fmt"
	"strings"
)

// TrackType identifies which kind of track a dataset is drawn as.
type TrackType int

const (
	TrackUnknown TrackType = 0
	TrackGWAS    TrackType = 1
	TrackDE      TrackType = 2
	TrackCAN     TrackType = 3
	TrackCustom  TrackType = 4
)

func (t TrackType) String() string {
	switch t {
	case TrackGWAS:
		return "gwas"
	case TrackDE:
		return "de"
	case TrackCAN:
		return "can"
	case TrackCustom:
		return "custom"
	default:
		return "unknown"
	}
}

func ParseTrackType(s string) (TrackType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gwas":
		return TrackGWAS, nil
	case "de":
		return TrackDE, nil
	case "can", "candidate":
		return TrackCAN, nil
	case "custom":
		return TrackCustom, nil
	default:
		return TrackUnknown, fmt.Errorf("unknown track type %q", s)
	}
}

// Feature is one plottable genomic feature. Position is the plotting
// coordinate; for interval features (genes, QTL regions) it is the midpoint
// of Start..End and the interval is kept for tooltips.
type Feature struct {
	Chromosome string  `json:"chromosome"`
	Position   int64   `json:"position"`
	Start      int64   `json:"start,omitempty"`
	End        int64   `json:"end,omitempty"`
	Score      float64 `json:"score"`
	Log2FC     float64 `json:"log2fc,omitempty"`
	Name       string  `json:"name,omitempty"`
}

// HasInterval reports whether the feature carries a start/end span.
func (f Feature) HasInterval() bool {
	return f.End > f.Start && f.End > 0
}

// Dataset is a named collection of features of one track type. Dropped
// counts input rows discarded at ingest because no usable score could be
// read for them.
type Dataset struct {
	Name     string    `json:"name"`
	Type     TrackType `json:"type"`
	AesType  string    `json:"aes_type,omitempty"`
	Features []Feature `json:"features"`
	Dropped  int       `json:"dropped,omitempty"`
}

// Region is a genomic span of interest.
type Region struct {
	Chromosome string
	Start, End int64
}

// Contains reports whether pos falls inside the region. End == 0 means
// unbounded on the right.
func (r Region) Contains(chrom string, pos int64) bool {
	if !strings.EqualFold(r.Chromosome, chrom) {
		return false
	}
	if pos < r.Start {
		return false
	}
	return r.End == 0 || pos <= r.End
}

// ValidationError names the dataset, row and field that failed validation so
// bad input files fail loudly at the boundary.
type ValidationError struct {
	Dataset string
	Row     int
	Field   string
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("dataset %q row %d: field %q %s", e.Dataset, e.Row, e.Field, e.Reason)
}

func validateFeature(dataset string, row int, f Feature, needScore bool) error {
	if strings.TrimSpace(f.Chromosome) == "" {
		return &ValidationError{Dataset: dataset, Row: row, Field: "chromosome", Reason: "is required"}
	}
	if f.Position <= 0 && !f.HasInterval() {
		return &ValidationError{Dataset: dataset, Row: row, Field: "position", Reason: "requires a position or a start/end interval"}
	}
	if needScore && f.Score < 0 {
		return &ValidationError{Dataset: dataset, Row: row, Field: "score", Reason: "must be non-negative"}
	}
	return nil
}

func normalizeFeatures(dataset string, features []Feature, needScore bool) ([]Feature, error) {
	out := make([]Feature, 0, len(features))
	for i, f := range features {
		if f.Position == 0 && f.HasInterval() {
			f.Position = (f.Start + f.End) / 2
		}
		if err := validateFeature(dataset, i+1, f, needScore); err != nil {
			return nil, err
		}
		f.Chromosome = strings.TrimSpace(f.Chromosome)
		out = append(out, f)
	}
	return out, nil
}

// NewGWASDataset builds a GWAS marker dataset. Every feature needs a
// chromosome, a position and a non-negative score.
func NewGWASDataset(name string, features []Feature) (Dataset, error) {
	fs, err := normalizeFeatures(name, features, true)
	if err != nil {
		return Dataset{}, err
	}
	return Dataset{Name: name, Type: TrackGWAS, Features: fs}, nil
}

// NewDEDataset builds a differential-expression gene dataset.
func NewDEDataset(name string, features []Feature) (Dataset, error) {
	fs, err := normalizeFeatures(name, features, true)
	if err != nil {
		return Dataset{}, err
	}
	return Dataset{Name: name, Type: TrackDE, Features: fs}, nil
}

// NewCANDataset builds a candidate gene dataset. Candidates carry no score;
// they are always drawn.
func NewCANDataset(name string, features []Feature) (Dataset, error) {
	fs, err := normalizeFeatures(name, features, false)
	if err != nil {
		return Dataset{}, err
	}
	return Dataset{Name: name, Type: TrackCAN, Features: fs}, nil
}

// NewCustomDataset builds a custom track tagged with an aesthetics profile.
// An empty aesType falls back to default custom styling at render time.
func NewCustomDataset(name, aesType string, features []Feature) (Dataset, error) {
	fs, err := normalizeFeatures(name, features, true)
	if err != nil {
		return Dataset{}, err
	}
	return Dataset{Name: name, Type: TrackCustom, AesType: strings.TrimSpace(aesType), Features: fs}, nil
}
