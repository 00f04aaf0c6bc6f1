package genome

import "math"

// ScoreFromPValue maps a raw p-value to the -log10 scale used on the y/colour
// axis. Zero p-values (underflow in the caller's association test) cannot be
// mapped directly, so they are replaced after the fact by the largest finite
// score in the dataset plus one; see FillZeroPValueScores.
func ScoreFromPValue(p float64) float64 {
	if p <= 0 {
		return math.Inf(1)
	}
	if p >= 1 {
		return 0
	}
	return -math.Log10(p)
}

// FillZeroPValueScores replaces infinite scores in place with the maximum
// finite score plus one, so p=0 markers sit at the top of the scale instead
// of breaking the colour gradient.
func FillZeroPValueScores(features []Feature) {
	maxFinite := 0.0
	hasInf := false
	for _, f := range features {
		if math.IsInf(f.Score, 1) {
			hasInf = true
			continue
		}
		if f.Score > maxFinite {
			maxFinite = f.Score
		}
	}
	if !hasInf {
		return
	}
	for i := range features {
		if math.IsInf(features[i].Score, 1) {
			features[i].Score = maxFinite + 1
		}
	}
}
