package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"hidecan/internal/genome"
	"hidecan/internal/logger"

	"golang.org/x/sync/errgroup"
)

// Spec names one file to load and how to interpret it.
type Spec struct {
	Path    string
	Type    genome.TrackType
	Name    string // defaults to the file base name without extension
	AesType string // custom tracks only
}

// Read parses one dataset from r according to the spec's track type.
func Read(r io.Reader, spec Spec) (genome.Dataset, error) {
	name := spec.Name
	if name == "" && spec.Path != "" {
		name = strings.TrimSuffix(filepath.Base(spec.Path), filepath.Ext(spec.Path))
	}
	switch spec.Type {
	case genome.TrackGWAS:
		return ReadGWAS(r, name)
	case genome.TrackDE:
		return ReadDE(r, name)
	case genome.TrackCAN:
		return ReadCAN(r, name)
	case genome.TrackCustom:
		return ReadCustom(r, name, spec.AesType)
	default:
		return genome.Dataset{}, fmt.Errorf("ingest: unsupported track type %q", spec.Type)
	}
}

// LoadFile opens and parses one dataset file.
func LoadFile(spec Spec) (genome.Dataset, error) {
	f, err := os.Open(spec.Path)
	if err != nil {
		return genome.Dataset{}, fmt.Errorf("ingest: %w", err)
	}
	defer f.Close()
	return Read(f, spec)
}

// LoadAll parses every file concurrently and returns the datasets in input
// order. The first failure cancels the remaining loads.
func LoadAll(ctx context.Context, specs []Spec) ([]genome.Dataset, error) {
	datasets := make([]genome.Dataset, len(specs))
	g, ctx := errgroup.WithContext(ctx)
	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			ds, err := LoadFile(spec)
			if err != nil {
				return err
			}
			datasets[i] = ds
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	logReport(specs, datasets)
	return datasets, nil
}

func logReport(specs []Spec, datasets []genome.Dataset) {
	sections := make([]logger.ReportSection, 0, len(datasets))
	for i, ds := range datasets {
		sections = append(sections, logger.ReportSection{
			Title: ds.Name,
			Body:  fmt.Sprintf("path=%s type=%s features=%d dropped=%d", specs[i].Path, ds.Type, len(ds.Features), ds.Dropped),
		})
	}
	logger.LogReport("ingest", fmt.Sprintf("%d files", len(specs)), sections)
}
