// Package service wires ingestion, storage and rendering together behind
// the API the HTTP server and CLI share.
package service

import (
	"context"
	"fmt"

	"hidecan/internal/archive"
	"hidecan/internal/genome"
	"hidecan/internal/ingest"
	"hidecan/internal/logger"
	"hidecan/internal/store"
	storemodel "hidecan/internal/store/model"
)

// DatasetService owns the dataset lifecycle: metadata in the gorm store,
// feature rows in the archive, parsed datasets in the memory cache.
type DatasetService struct {
	meta  store.MetaRepository
	arch  *archive.Store
	cache store.DatasetCache
}

func NewDatasetService(meta store.MetaRepository, arch *archive.Store, cache store.DatasetCache) *DatasetService {
	if cache == nil {
		cache = store.NewMemoryDatasetCache()
	}
	return &DatasetService{meta: meta, arch: arch, cache: cache}
}

// ImportFile ingests one CSV file and persists the result.
func (s *DatasetService) ImportFile(ctx context.Context, spec ingest.Spec) (*storemodel.DatasetModel, error) {
	ds, err := ingest.LoadFile(spec)
	if err != nil {
		return nil, err
	}
	return s.SaveDataset(ctx, ds, spec.Path)
}

// SaveDataset persists a parsed dataset and primes the cache.
func (s *DatasetService) SaveDataset(ctx context.Context, ds genome.Dataset, sourceFile string) (*storemodel.DatasetModel, error) {
	rec, err := s.meta.SaveMeta(ctx, ds, sourceFile)
	if err != nil {
		return nil, err
	}
	if _, err := s.arch.ReplaceFeatures(ctx, rec.UUID, ds.Features); err != nil {
		return nil, fmt.Errorf("archiving dataset %q failed: %w", ds.Name, err)
	}
	if err := s.cache.Put(ctx, rec.UUID, ds); err != nil {
		logger.Warnf("dataset cache prime failed for %s: %v", rec.UUID, err)
	}
	logger.Infof("dataset saved name=%s type=%s features=%d", ds.Name, ds.Type, len(ds.Features))
	return rec, nil
}

// Load rebuilds the domain dataset, preferring the cache over the archive.
func (s *DatasetService) Load(ctx context.Context, id string) (genome.Dataset, error) {
	if ds, ok := s.cache.Get(ctx, id); ok {
		return ds, nil
	}
	rec, err := s.meta.FindByUUID(ctx, id)
	if err != nil {
		return genome.Dataset{}, err
	}
	if rec == nil {
		return genome.Dataset{}, fmt.Errorf("dataset %s not found", id)
	}
	trackType, err := genome.ParseTrackType(rec.TrackType)
	if err != nil {
		return genome.Dataset{}, err
	}
	features, err := s.arch.Features(ctx, id, "", 0, 0)
	if err != nil {
		return genome.Dataset{}, err
	}
	ds := genome.Dataset{Name: rec.Name, Type: trackType, AesType: rec.AesType, Features: features}
	if err := s.cache.Put(ctx, id, ds); err != nil {
		logger.Warnf("dataset cache prime failed for %s: %v", id, err)
	}
	return ds, nil
}

// FeaturesByChromosome serves windowed feature queries straight from the
// archive index.
func (s *DatasetService) FeaturesByChromosome(ctx context.Context, id, chromosome string, start, end int64) ([]genome.Feature, error) {
	return s.arch.Features(ctx, id, chromosome, start, end)
}

// List returns every dataset's metadata.
func (s *DatasetService) List(ctx context.Context) ([]storemodel.DatasetModel, error) {
	return s.meta.List(ctx)
}

// Get returns one dataset's metadata, or (nil, nil) when absent.
func (s *DatasetService) Get(ctx context.Context, id string) (*storemodel.DatasetModel, error) {
	return s.meta.FindByUUID(ctx, id)
}

// Manifest returns the archive stats for one dataset.
func (s *DatasetService) Manifest(ctx context.Context, id string) (archive.Manifest, error) {
	return s.arch.Manifest(ctx, id)
}

// Delete removes the dataset everywhere it lives.
func (s *DatasetService) Delete(ctx context.Context, id string) error {
	if err := s.meta.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, id)
	if err := s.arch.Remove(id); err != nil {
		logger.Warnf("archive removal failed for %s: %v", id, err)
	}
	return nil
}
