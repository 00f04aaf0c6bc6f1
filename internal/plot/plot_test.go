package plot

import (
	"strings"
	"testing"

	"hidecan/internal/aes"
	"hidecan/internal/genome"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInput(t *testing.T) Input {
	t.Helper()
	gwas, err := genome.NewGWASDataset("trial", []genome.Feature{
		{Chromosome: "chr1", Position: 1_000_000, Score: 4.2},
		{Chromosome: "chr1", Position: 2_000_000, Score: 8.0},
		{Chromosome: "chr2", Position: 500_000, Score: 5.5},
	})
	require.NoError(t, err)
	can, err := genome.NewCANDataset("candidates", []genome.Feature{
		{Chromosome: "chr1", Start: 900_000, End: 1_100_000, Name: "GeneA"},
	})
	require.NoError(t, err)

	res := aes.NewResolver(nil, nil)
	tracks := []Track{
		{Dataset: gwas, Profile: res.Resolve("gwas")},
		{Dataset: can, Profile: res.Resolve("can")},
	}
	limits := genome.ChromosomeLimits([]genome.Dataset{gwas, can}, genome.LimitOptions{})
	return Input{Title: "Yield trial", Subtitle: "2025 season", Tracks: tracks, Limits: limits}
}

func TestRenderHTML(t *testing.T) {
	html, desc, err := RenderHTML(testInput(t))
	require.NoError(t, err)

	body := string(html)
	assert.Contains(t, body, "GWAS peaks")
	assert.Contains(t, body, "Candidate genes")
	assert.Contains(t, body, "GeneA")
	assert.Contains(t, body, "Yield trial: chr1")
	assert.Contains(t, body, "2025 season")
	// one chart per chromosome
	assert.Contains(t, desc, "chr1: ")
	assert.Contains(t, desc, "chr2: ")
}

func TestRenderHTML_DensityRibbon(t *testing.T) {
	input := testInput(t)
	input.ShowDensity = true
	input.DensityBinBP = 500_000
	input.DensityWindow = 2
	html, _, err := RenderHTML(input)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Marker density")
}

func TestBuildPage_Errors(t *testing.T) {
	_, _, err := BuildPage(Input{})
	require.Error(t, err)

	input := testInput(t)
	input.Limits = nil
	_, _, err = BuildPage(input)
	require.Error(t, err)

	// tracks present but every feature filtered away
	empty, err2 := genome.NewGWASDataset("empty", nil)
	require.NoError(t, err2)
	_, _, err = BuildPage(Input{
		Tracks: []Track{{Dataset: empty, Profile: aes.Defaults()["gwas"]}},
		Limits: []genome.ChromLimit{{Chromosome: "chr1", Length: 1000}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no features")
}

func TestBuildTrackSeries_ScoreBands(t *testing.T) {
	gwas, err := genome.NewGWASDataset("trial", []genome.Feature{
		{Chromosome: "chr1", Position: 1_000_000, Score: 1},
		{Chromosome: "chr1", Position: 2_000_000, Score: 5},
		{Chromosome: "chr1", Position: 3_000_000, Score: 10},
		{Chromosome: "chr2", Position: 1_000_000, Score: 7},
	})
	require.NoError(t, err)
	limit := genome.ChromLimit{Chromosome: "chr1", Length: 10_000_000}

	track := Track{Dataset: gwas, Profile: aes.Defaults()["gwas"]}
	buckets, n := buildTrackSeries(track, limit, 1, 9)
	assert.Equal(t, 3, n)
	require.Greater(t, len(buckets), 1)
	seen := map[string]bool{}
	for _, b := range buckets {
		assert.NotEmpty(t, b.data)
		assert.False(t, seen[b.color], "bucket colours must be distinct")
		seen[b.color] = true
	}

	// mono scales collapse to a single series in the flat colour
	mono := track
	mono.Profile.FillScale = "mono:#34d399"
	buckets, n = buildTrackSeries(mono, limit, 1, 9)
	assert.Equal(t, 3, n)
	require.Len(t, buckets, 1)
	assert.Equal(t, "#34d399", buckets[0].color)
	assert.Len(t, buckets[0].data, 3)
}

func TestFillColor(t *testing.T) {
	assert.Equal(t, "#ff0000", FillColor("mono:#ff0000", 3, 0, 10))
	low := FillColor("viridis", 0, 0, 10)
	high := FillColor("viridis", 10, 0, 10)
	assert.Equal(t, "#440154", low)
	assert.Equal(t, "#fde725", high)
	assert.NotEqual(t, low, FillColor("viridis", 5, 0, 10))
	// degenerate range pins to the low anchor
	assert.Equal(t, low, FillColor("viridis", 5, 5, 5))
	// unknown scale falls back to viridis
	assert.Equal(t, low, FillColor("rainbow", 0, 0, 1))
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "3.1", FormatScore(3.0999999999999996))
	assert.Equal(t, "1.5", FormatMb(1_500_000))
	assert.Equal(t, "0.25", FormatMb(250_000))
}

func TestPNGFilename(t *testing.T) {
	assert.Equal(t, "yield_trial.png", pngFilename("Yield Trial!"))
	assert.Equal(t, "tracks.png", pngFilename("  "))
}

func TestSymbolFor(t *testing.T) {
	assert.Equal(t, "triangle", symbolFor("Triangle"))
	assert.Equal(t, "circle", symbolFor("hexagon"))
	assert.Equal(t, "circle", symbolFor(""))
}

func TestDataURI(t *testing.T) {
	r := &ImageResult{Bytes: []byte{1, 2, 3}}
	uri := r.DataURI()
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
	assert.Empty(t, (&ImageResult{}).DataURI())
}
