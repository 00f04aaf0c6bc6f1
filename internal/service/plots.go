package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"hidecan/internal/aes"
	"hidecan/internal/genome"
	"hidecan/internal/logger"
	"hidecan/internal/plot"
	"hidecan/internal/store"
	storemodel "hidecan/internal/store/model"

	"gorm.io/datatypes"
)

// RenderRequest mirrors the POST /api/plots body and the render CLI flags.
type RenderRequest struct {
	DatasetIDs  []string         `json:"dataset_ids"`
	ScoreThr    float64          `json:"score_thr"`
	Log2FCThr   float64          `json:"log2fc_thr"`
	Chromosomes []string         `json:"chromosomes,omitempty"`
	ChromLimits map[string]int64 `json:"chrom_limits,omitempty"`
	RemoveEmpty bool             `json:"remove_empty_chrom,omitempty"`
	Overrides   json.RawMessage  `json:"aes_overrides,omitempty"`
	Title       string           `json:"title,omitempty"`
	Subtitle    string           `json:"subtitle,omitempty"`
	PNG         bool             `json:"png,omitempty"`
	ShowDensity bool             `json:"show_density,omitempty"`
}

// RenderOptions carries renderer tuning from config.
type RenderOptions struct {
	PointSize     int
	DensityBinBP  int64
	DensityWindow int
	PNGTimeout    time.Duration
}

// PlotService renders track plots from stored datasets and persists the
// results.
type PlotService struct {
	datasets *DatasetService
	plots    store.PlotRepository
	registry *aes.Registry
	opts     RenderOptions
}

func NewPlotService(datasets *DatasetService, plots store.PlotRepository, registry *aes.Registry, opts RenderOptions) *PlotService {
	return &PlotService{datasets: datasets, plots: plots, registry: registry, opts: opts}
}

// BuildInput assembles the renderer input from in-memory datasets. Exposed
// for the one-shot CLI path, which skips the store entirely.
func BuildInput(datasets []genome.Dataset, req RenderRequest, registry *aes.Registry, opts RenderOptions) (plot.Input, error) {
	overrides, err := aes.ParseOverrides(string(req.Overrides))
	if err != nil {
		return plot.Input{}, err
	}
	resolver := aes.NewResolver(registry, overrides)

	thresholded := genome.ApplyThresholds(datasets, genome.Thresholds{Score: req.ScoreThr, Log2FC: req.Log2FCThr})
	limits := genome.ChromosomeLimits(datasets, genome.LimitOptions{
		Only:     req.Chromosomes,
		Override: req.ChromLimits,
	})
	clipped := genome.ClipToLimits(thresholded, limits)
	if req.RemoveEmpty {
		limits = genome.RemoveEmptyChromosomes(limits, clipped)
	}

	tracks := make([]plot.Track, 0, len(clipped))
	for _, ds := range clipped {
		tracks = append(tracks, plot.Track{Dataset: ds, Profile: resolver.Resolve(profileTag(ds))})
	}
	return plot.Input{
		Title:         req.Title,
		Subtitle:      req.Subtitle,
		Tracks:        tracks,
		Limits:        limits,
		ShowDensity:   req.ShowDensity,
		DensityBinBP:  opts.DensityBinBP,
		DensityWindow: opts.DensityWindow,
		PointSize:     opts.PointSize,
	}, nil
}

func profileTag(ds genome.Dataset) string {
	if ds.Type == genome.TrackCustom && ds.AesType != "" {
		return ds.AesType
	}
	return ds.Type.String()
}

// Render loads the requested datasets, renders the page and persists the
// result. The returned record reflects the final status.
func (s *PlotService) Render(ctx context.Context, req RenderRequest) (*storemodel.PlotModel, error) {
	if len(req.DatasetIDs) == 0 {
		return nil, fmt.Errorf("at least one dataset id is required")
	}
	datasets := make([]genome.Dataset, 0, len(req.DatasetIDs))
	for _, id := range req.DatasetIDs {
		ds, err := s.datasets.Load(ctx, strings.TrimSpace(id))
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, ds)
	}
	input, err := BuildInput(datasets, req, s.registry, s.opts)
	if err != nil {
		return nil, err
	}

	params, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	rec := &storemodel.PlotModel{
		Title:      req.Title,
		ParamsJSON: datatypes.JSON(params),
	}
	if err := s.plots.Create(ctx, rec); err != nil {
		return nil, err
	}

	html, desc, err := plot.RenderHTML(input)
	if err != nil {
		err = fmt.Errorf("render failed (score_thr=%s, log2fc_thr=%s): %w",
			plot.FormatScore(req.ScoreThr), plot.FormatScore(req.Log2FCThr), err)
		if mErr := s.plots.MarkFailed(ctx, rec.UUID, err); mErr != nil {
			logger.Errorf("marking plot %s failed: %v", rec.UUID, mErr)
		}
		rec.Status = storemodel.PlotStatusFailed
		rec.ErrorText = err.Error()
		return rec, err
	}
	var png []byte
	if req.PNG {
		img, pErr := plot.RenderPNG(ctx, input, s.opts.PNGTimeout)
		if pErr != nil {
			// PNG capture needs a headless browser; keep the HTML result
			// and surface the failure in the description.
			logger.Warnf("png capture failed for plot %s: %v", rec.UUID, pErr)
			desc = desc + " | png unavailable: " + pErr.Error()
		} else {
			png = img.Bytes
		}
	}
	if err := s.plots.MarkDone(ctx, rec.UUID, desc, html, png); err != nil {
		return nil, err
	}
	logReport(rec.UUID, req, desc)
	return s.plots.FindPlotByUUID(ctx, rec.UUID)
}

// Get returns one plot record, or (nil, nil) when absent.
func (s *PlotService) Get(ctx context.Context, id string) (*storemodel.PlotModel, error) {
	return s.plots.FindPlotByUUID(ctx, id)
}

// List returns recent plot records without blobs.
func (s *PlotService) List(ctx context.Context, limit int) ([]storemodel.PlotModel, error) {
	return s.plots.ListPlots(ctx, limit)
}

func logReport(id string, req RenderRequest, desc string) {
	logger.LogReport("render", id, []logger.ReportSection{
		{Title: "REQUEST", Body: fmt.Sprintf("datasets=%s score_thr=%s log2fc_thr=%s",
			strings.Join(req.DatasetIDs, ","), plot.FormatScore(req.ScoreThr), plot.FormatScore(req.Log2FCThr))},
		{Title: "RESULT", Body: desc},
	})
}
