package genome

import "math"

// Thresholds holds the significance cutoffs applied before plotting.
// ScoreThr is on the -log10 scale; Log2FCThr applies to DE tracks only.
type Thresholds struct {
	Score  float64 `json:"score_thr"`
	Log2FC float64 `json:"log2fc_thr"`
}

// ApplyThreshold returns a copy of ds containing only the features that pass
// the cutoffs for its track type:
//
//   - GWAS and custom tracks keep features with Score >= thr.Score
//   - DE tracks additionally require |Log2FC| >= thr.Log2FC
//   - CAN tracks pass through unfiltered
//
// The input dataset is never mutated.
func ApplyThreshold(ds Dataset, thr Thresholds) Dataset {
	out := ds
	if ds.Type == TrackCAN {
		out.Features = append([]Feature(nil), ds.Features...)
		return out
	}
	kept := make([]Feature, 0, len(ds.Features))
	for _, f := range ds.Features {
		if f.Score < thr.Score {
			continue
		}
		if ds.Type == TrackDE && math.Abs(f.Log2FC) < thr.Log2FC {
			continue
		}
		kept = append(kept, f)
	}
	out.Features = kept
	return out
}

// ApplyThresholds filters every dataset in order.
func ApplyThresholds(datasets []Dataset, thr Thresholds) []Dataset {
	out := make([]Dataset, 0, len(datasets))
	for _, ds := range datasets {
		out = append(out, ApplyThreshold(ds, thr))
	}
	return out
}
