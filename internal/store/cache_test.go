package store

import (
	"context"
	"testing"

	"hidecan/internal/genome"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachePutGetInvalidate(t *testing.T) {
	c := NewMemoryDatasetCache()
	ctx := context.Background()
	ds := genome.Dataset{
		Name: "trial",
		Type: genome.TrackGWAS,
		Features: []genome.Feature{
			{Chromosome: "chr1", Position: 100, Score: 3},
		},
	}

	require.NoError(t, c.Put(ctx, "id-1", ds))
	got, ok := c.Get(ctx, "id-1")
	require.True(t, ok)
	assert.Equal(t, "trial", got.Name)
	require.Len(t, got.Features, 1)

	c.Invalidate(ctx, "id-1")
	_, ok = c.Get(ctx, "id-1")
	assert.False(t, ok)
}

func TestCacheEmptyID(t *testing.T) {
	c := NewMemoryDatasetCache()
	assert.Error(t, c.Put(context.Background(), "", genome.Dataset{}))
}

func TestCacheCopiesFeatures(t *testing.T) {
	c := newMemoryDatasetCache(4)
	ctx := context.Background()
	ds := genome.Dataset{
		Name:     "trial",
		Features: []genome.Feature{{Chromosome: "chr1", Position: 100}},
	}
	require.NoError(t, c.Put(ctx, "id-1", ds))

	// Mutating the caller's slice must not leak into the cache.
	ds.Features[0].Chromosome = "chrX"
	got, ok := c.Get(ctx, "id-1")
	require.True(t, ok)
	assert.Equal(t, "chr1", got.Features[0].Chromosome)

	// Mutating a returned copy must not corrupt the stored value.
	got.Features[0].Position = 999
	again, ok := c.Get(ctx, "id-1")
	require.True(t, ok)
	assert.Equal(t, int64(100), again.Features[0].Position)
}
