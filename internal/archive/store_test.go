package archive

import (
	"context"
	"path/filepath"
	"testing"

	"hidecan/internal/genome"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFeatures() []genome.Feature {
	return []genome.Feature{
		{Chromosome: "chr1", Position: 100, Score: 3.2, Name: "m1"},
		{Chromosome: "chr1", Position: 900, Score: 1.1, Name: "m2"},
		{Chromosome: "chr2", Position: 400, Start: 300, End: 500, Score: 2.5, Log2FC: 1.4, Name: "g1"},
	}
}

func TestReplaceAndQueryFeatures(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	n, err := s.ReplaceFeatures(ctx, "ds-1", testFeatures())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	all, err := s.Features(ctx, "ds-1", "", 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "m1", all[0].Name)
	assert.Equal(t, int64(300), all[2].Start)
	assert.InDelta(t, 1.4, all[2].Log2FC, 1e-9)

	// Chromosome filter is case-insensitive.
	chr1, err := s.Features(ctx, "ds-1", "CHR1", 0, 0)
	require.NoError(t, err)
	assert.Len(t, chr1, 2)

	window, err := s.Features(ctx, "ds-1", "chr1", 500, 1000)
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, "m2", window[0].Name)
}

func TestReplaceFeaturesSwapsRows(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	_, err = s.ReplaceFeatures(ctx, "ds-1", testFeatures())
	require.NoError(t, err)
	_, err = s.ReplaceFeatures(ctx, "ds-1", []genome.Feature{
		{Chromosome: "chr3", Position: 42, Score: 9},
	})
	require.NoError(t, err)

	all, err := s.Features(ctx, "ds-1", "", 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "chr3", all[0].Chromosome)
}

func TestManifest(t *testing.T) {
	root := t.TempDir()
	s, err := NewStore(root)
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	_, err = s.ReplaceFeatures(ctx, "DS-X", testFeatures())
	require.NoError(t, err)

	m, err := s.Manifest(ctx, "ds-x")
	require.NoError(t, err)
	assert.Equal(t, "ds-x", m.Dataset)
	assert.Equal(t, int64(100), m.MinPos)
	assert.Equal(t, int64(900), m.MaxPos)
	assert.Equal(t, int64(3), m.Rows)
	assert.Positive(t, m.LastSyncAt)
	assert.Equal(t, filepath.Join(root, "ds-x.db"), m.Path)
}

func TestRemove(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	_, err = s.ReplaceFeatures(ctx, "ds-1", testFeatures())
	require.NoError(t, err)
	require.NoError(t, s.Remove("ds-1"))

	// A fresh archive is created on the next access.
	rows, err := s.Features(ctx, "ds-1", "", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, rows)

	// Removing a dataset that never existed is not an error.
	assert.NoError(t, s.Remove("ghost"))
}

func TestEmptyDatasetID(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Features(context.Background(), "", "", 0, 0)
	assert.Error(t, err)
}
