package store

import (
	"context"

	"hidecan/internal/genome"
	"hidecan/internal/store/model"
)

// MetaRepository persists dataset metadata. Bulk feature rows live in the
// archive; the two are keyed by the dataset UUID.
type MetaRepository interface {
	SaveMeta(ctx context.Context, ds genome.Dataset, sourceFile string) (*model.DatasetModel, error)
	List(ctx context.Context) ([]model.DatasetModel, error)
	FindByUUID(ctx context.Context, uuid string) (*model.DatasetModel, error)
	Delete(ctx context.Context, uuid string) error
}

// PlotRepository persists rendered plots.
type PlotRepository interface {
	Create(ctx context.Context, plot *model.PlotModel) error
	MarkDone(ctx context.Context, uuid, description string, html, png []byte) error
	MarkFailed(ctx context.Context, uuid string, cause error) error
	FindPlotByUUID(ctx context.Context, uuid string) (*model.PlotModel, error)
	ListPlots(ctx context.Context, limit int) ([]model.PlotModel, error)
}
