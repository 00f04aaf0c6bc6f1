package genome

import (
	"sort"
	"strconv"
	"strings"
)

// ChromLimit is the plotting extent of one chromosome, 0..Length bp.
type ChromLimit struct {
	Chromosome string `json:"chromosome"`
	Length     int64  `json:"length"`
}

// LimitOptions tunes how chromosome extents are derived.
type LimitOptions struct {
	// Only keeps the listed chromosomes, in natural order. Empty keeps all.
	Only []string
	// Override forces the extent of specific chromosomes; features beyond an
	// override are dropped by ClipToLimits.
	Override map[string]int64
}

// ChromosomeLimits derives the per-chromosome extent from the furthest
// feature seen across every dataset, then applies overrides and subsetting.
// The result is sorted in natural chromosome order (chr2 before chr10).
func ChromosomeLimits(datasets []Dataset, opts LimitOptions) []ChromLimit {
	max := make(map[string]int64)
	for _, ds := range datasets {
		for _, f := range ds.Features {
			end := f.Position
			if f.End > end {
				end = f.End
			}
			if end > max[f.Chromosome] {
				max[f.Chromosome] = end
			}
		}
	}
	for chrom, length := range opts.Override {
		if length > 0 {
			max[chrom] = length
		}
	}
	var keep map[string]bool
	if len(opts.Only) > 0 {
		keep = make(map[string]bool, len(opts.Only))
		for _, c := range opts.Only {
			keep[strings.ToLower(strings.TrimSpace(c))] = true
		}
	}
	limits := make([]ChromLimit, 0, len(max))
	for chrom, length := range max {
		if keep != nil && !keep[strings.ToLower(chrom)] {
			continue
		}
		limits = append(limits, ChromLimit{Chromosome: chrom, Length: length})
	}
	sort.Slice(limits, func(i, j int) bool {
		return CompareChromosomes(limits[i].Chromosome, limits[j].Chromosome) < 0
	})
	return limits
}

// ClipToLimits returns copies of the datasets restricted to the given
// chromosomes, dropping features past an explicit extent.
func ClipToLimits(datasets []Dataset, limits []ChromLimit) []Dataset {
	extent := make(map[string]int64, len(limits))
	for _, l := range limits {
		extent[strings.ToLower(l.Chromosome)] = l.Length
	}
	out := make([]Dataset, 0, len(datasets))
	for _, ds := range datasets {
		clipped := ds
		kept := make([]Feature, 0, len(ds.Features))
		for _, f := range ds.Features {
			length, ok := extent[strings.ToLower(f.Chromosome)]
			if !ok || f.Position > length {
				continue
			}
			kept = append(kept, f)
		}
		clipped.Features = kept
		out = append(out, clipped)
	}
	return out
}

// RemoveEmptyChromosomes drops limits for chromosomes with no surviving
// feature in any dataset.
func RemoveEmptyChromosomes(limits []ChromLimit, datasets []Dataset) []ChromLimit {
	populated := make(map[string]bool)
	for _, ds := range datasets {
		for _, f := range ds.Features {
			populated[strings.ToLower(f.Chromosome)] = true
		}
	}
	out := make([]ChromLimit, 0, len(limits))
	for _, l := range limits {
		if populated[strings.ToLower(l.Chromosome)] {
			out = append(out, l)
		}
	}
	return out
}

// CompareChromosomes orders chromosome names naturally: an optional
// chromosome/chr prefix is ignored, numeric suffixes compare as numbers,
// and non-numeric names (X, Y, MT, scaffolds) sort after numbered
// chromosomes. Names with the same canonical key ("2" vs "chr2") compare
// equal.
func CompareChromosomes(a, b string) int {
	ka, na, aNum := chromKey(a)
	kb, nb, bNum := chromKey(b)
	switch {
	case aNum && bNum:
		if na < nb {
			return -1
		}
		if na > nb {
			return 1
		}
		return 0
	case aNum:
		return -1
	case bNum:
		return 1
	default:
		return strings.Compare(ka, kb)
	}
}

// chromKey canonicalises a name by stripping the longest recognised prefix
// and returns the numeric suffix when there is one.
func chromKey(name string) (string, int, bool) {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.TrimPrefix(s, "chromosome")
	s = strings.TrimPrefix(s, "chr")
	s = strings.TrimSpace(strings.TrimPrefix(s, "_"))
	n, err := strconv.Atoi(s)
	if err != nil {
		return s, 0, false
	}
	return s, n, true
}
