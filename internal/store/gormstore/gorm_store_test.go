package gormstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"hidecan/internal/genome"
	"hidecan/internal/store/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *GormStore {
	t.Helper()
	s, err := NewGormStore(filepath.Join(t.TempDir(), "meta.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func gwasDataset(name string, n int) genome.Dataset {
	features := make([]genome.Feature, 0, n)
	for i := 0; i < n; i++ {
		features = append(features, genome.Feature{
			Chromosome: "chr1",
			Position:   int64(100 * (i + 1)),
			Score:      2.5,
		})
	}
	return genome.Dataset{Name: name, Type: genome.TrackGWAS, Features: features}
}

func TestSaveMetaUpsertPreservesUUID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.SaveMeta(ctx, gwasDataset("trial", 3), "a.csv")
	require.NoError(t, err)
	require.NotEmpty(t, first.UUID)
	assert.Equal(t, "gwas", first.TrackType)
	assert.Equal(t, 3, first.FeatureCount)

	second, err := s.SaveMeta(ctx, gwasDataset("trial", 5), "b.csv")
	require.NoError(t, err)
	assert.Equal(t, first.UUID, second.UUID)
	assert.Equal(t, 5, second.FeatureCount)
	assert.Equal(t, "b.csv", second.SourceFile)

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSaveMetaEmptyName(t *testing.T) {
	s := newTestStore(t)
	_, err := s.SaveMeta(context.Background(), genome.Dataset{Type: genome.TrackGWAS}, "")
	assert.Error(t, err)
}

func TestFindByUUIDNotFound(t *testing.T) {
	s := newTestStore(t)
	rec, err := s.FindByUUID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestDeleteDataset(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec, err := s.SaveMeta(ctx, gwasDataset("trial", 1), "")
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, rec.UUID))

	found, err := s.FindByUUID(ctx, rec.UUID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestPlotLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := &model.PlotModel{Title: "Peaks"}
	require.NoError(t, s.Create(ctx, rec))
	require.NotEmpty(t, rec.UUID)
	assert.Equal(t, model.PlotStatusPending, rec.Status)

	require.NoError(t, s.MarkDone(ctx, rec.UUID, "2 tracks", []byte("<html/>"), []byte{1, 2}))
	done, err := s.FindPlotByUUID(ctx, rec.UUID)
	require.NoError(t, err)
	require.NotNil(t, done)
	assert.Equal(t, model.PlotStatusDone, done.Status)
	assert.Equal(t, "2 tracks", done.Description)
	assert.Equal(t, []byte("<html/>"), done.HTML)
	assert.Len(t, done.PNG, 2)
}

func TestPlotMarkFailed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := &model.PlotModel{Title: "Broken"}
	require.NoError(t, s.Create(ctx, rec))
	require.NoError(t, s.MarkFailed(ctx, rec.UUID, errors.New("no features survived")))

	failed, err := s.FindPlotByUUID(ctx, rec.UUID)
	require.NoError(t, err)
	require.NotNil(t, failed)
	assert.Equal(t, model.PlotStatusFailed, failed.Status)
	assert.Contains(t, failed.ErrorText, "no features")
}

func TestListPlotsSkipsBlobs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := &model.PlotModel{Title: "Peaks"}
	require.NoError(t, s.Create(ctx, rec))
	require.NoError(t, s.MarkDone(ctx, rec.UUID, "", []byte("<html/>"), nil))

	list, err := s.ListPlots(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].HTML)
	assert.Equal(t, "Peaks", list[0].Title)
}
