package genome

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyThreshold_GWAS(t *testing.T) {
	ds, err := NewGWASDataset("gwas", []Feature{
		{Chromosome: "chr1", Position: 100, Score: 2.5},
		{Chromosome: "chr1", Position: 200, Score: 4.1},
		{Chromosome: "chr2", Position: 50, Score: 3.99},
	})
	require.NoError(t, err)

	got := ApplyThreshold(ds, Thresholds{Score: 4})
	require.Len(t, got.Features, 1)
	assert.Equal(t, int64(200), got.Features[0].Position)
	// input untouched
	assert.Len(t, ds.Features, 3)
}

func TestApplyThreshold_DE(t *testing.T) {
	ds, err := NewDEDataset("de", []Feature{
		{Chromosome: "chr1", Start: 100, End: 300, Score: 3.0, Log2FC: 0.2},
		{Chromosome: "chr1", Start: 400, End: 600, Score: 3.0, Log2FC: -1.4},
		{Chromosome: "chr1", Start: 700, End: 900, Score: 1.0, Log2FC: 2.0},
	})
	require.NoError(t, err)

	got := ApplyThreshold(ds, Thresholds{Score: 2, Log2FC: 1})
	require.Len(t, got.Features, 1)
	assert.Equal(t, -1.4, got.Features[0].Log2FC)
}

func TestApplyThreshold_CANPassesThrough(t *testing.T) {
	ds, err := NewCANDataset("can", []Feature{
		{Chromosome: "chr1", Start: 10, End: 20, Name: "GeneA"},
		{Chromosome: "chr2", Position: 30, Name: "GeneB"},
	})
	require.NoError(t, err)

	got := ApplyThreshold(ds, Thresholds{Score: 100})
	assert.Len(t, got.Features, 2)
}

func TestApplyThreshold_DoesNotAliasInput(t *testing.T) {
	ds, err := NewCANDataset("can", []Feature{{Chromosome: "chr1", Position: 10, Name: "A"}})
	require.NoError(t, err)
	got := ApplyThreshold(ds, Thresholds{})
	got.Features[0].Name = "mutated"
	assert.Equal(t, "A", ds.Features[0].Name)
}

func TestScoreFromPValue(t *testing.T) {
	assert.InDelta(t, 3.0, ScoreFromPValue(0.001), 1e-9)
	assert.Equal(t, 0.0, ScoreFromPValue(1))
	assert.True(t, math.IsInf(ScoreFromPValue(0), 1))
}

func TestFillZeroPValueScores(t *testing.T) {
	fs := []Feature{
		{Chromosome: "chr1", Position: 1, Score: 5},
		{Chromosome: "chr1", Position: 2, Score: math.Inf(1)},
		{Chromosome: "chr1", Position: 3, Score: 2},
	}
	FillZeroPValueScores(fs)
	assert.Equal(t, 6.0, fs[1].Score)
	assert.Equal(t, 5.0, fs[0].Score)
}

func TestValidation(t *testing.T) {
	_, err := NewGWASDataset("bad", []Feature{{Position: 100, Score: 1}})
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "chromosome", verr.Field)
	assert.Equal(t, 1, verr.Row)

	_, err = NewGWASDataset("bad", []Feature{{Chromosome: "chr1", Score: 1}})
	require.Error(t, err)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "position", verr.Field)
}

func TestIntervalMidpoint(t *testing.T) {
	ds, err := NewDEDataset("de", []Feature{{Chromosome: "chr3", Start: 100, End: 300, Score: 1}})
	require.NoError(t, err)
	assert.Equal(t, int64(200), ds.Features[0].Position)
	assert.True(t, ds.Features[0].HasInterval())
}
