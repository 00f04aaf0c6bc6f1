package genome

import (
	talib "github.com/markcheno/go-talib"
)

// DensityBin is one bin of the marker density ribbon drawn under a track.
type DensityBin struct {
	Chromosome string
	Start      int64
	Count      float64
}

// BinCounts counts features per binSize window along one chromosome,
// covering 0..length even where no feature falls.
func BinCounts(features []Feature, chromosome string, length, binSize int64) []DensityBin {
	if binSize <= 0 || length <= 0 {
		return nil
	}
	n := int(length/binSize) + 1
	counts := make([]float64, n)
	span := Region{Chromosome: chromosome, End: length}
	for _, f := range features {
		if !span.Contains(f.Chromosome, f.Position) {
			continue
		}
		idx := int(f.Position / binSize)
		if idx >= 0 && idx < n {
			counts[idx]++
		}
	}
	bins := make([]DensityBin, n)
	for i := range bins {
		bins[i] = DensityBin{Chromosome: chromosome, Start: int64(i) * binSize, Count: counts[i]}
	}
	return bins
}

// SmoothDensity applies a simple moving average over the bin counts so the
// ribbon reads as a trend rather than a comb. Window <= 1 is a no-op; talib
// leaves the warm-up prefix as NaN which we backfill with the raw counts.
func SmoothDensity(bins []DensityBin, window int) []DensityBin {
	if window <= 1 || len(bins) < window {
		return bins
	}
	raw := make([]float64, len(bins))
	for i, b := range bins {
		raw[i] = b.Count
	}
	smoothed := talib.Sma(raw, window)
	out := make([]DensityBin, len(bins))
	for i, b := range bins {
		out[i] = b
		if i >= window-1 {
			out[i].Count = smoothed[i]
		}
	}
	return out
}
