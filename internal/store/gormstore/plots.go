package gormstore

import (
	"context"
	"errors"
	"time"

	storemodel "hidecan/internal/store/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Create inserts a pending plot record; the UUID is assigned when empty.
func (s *GormStore) Create(ctx context.Context, plot *storemodel.PlotModel) error {
	if plot == nil {
		return errors.New("gorm store: plot cannot be nil")
	}
	if plot.UUID == "" {
		plot.UUID = uuid.NewString()
	}
	now := time.Now().Unix()
	plot.CreatedAtUnix = now
	plot.UpdatedAtUnix = now
	plot.Status = storemodel.PlotStatusPending
	return s.db.WithContext(ctx).Create(plot).Error
}

// MarkDone stores the rendered artifacts and flips the status.
func (s *GormStore) MarkDone(ctx context.Context, id, description string, html, png []byte) error {
	return s.db.WithContext(ctx).Model(&storemodel.PlotModel{}).
		Where("uuid = ?", id).
		Updates(map[string]interface{}{
			"status":      storemodel.PlotStatusDone,
			"description": description,
			"html":        html,
			"png":         png,
			"error_text":  "",
			"updated_at":  time.Now().Unix(),
		}).Error
}

// MarkFailed records the render failure.
func (s *GormStore) MarkFailed(ctx context.Context, id string, cause error) error {
	text := ""
	if cause != nil {
		text = cause.Error()
	}
	return s.db.WithContext(ctx).Model(&storemodel.PlotModel{}).
		Where("uuid = ?", id).
		Updates(map[string]interface{}{
			"status":     storemodel.PlotStatusFailed,
			"error_text": text,
			"updated_at": time.Now().Unix(),
		}).Error
}

// FindPlotByUUID returns the plot record, or (nil, nil) when absent.
func (s *GormStore) FindPlotByUUID(ctx context.Context, id string) (*storemodel.PlotModel, error) {
	var rec storemodel.PlotModel
	err := s.db.WithContext(ctx).Where("uuid = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListPlots returns the newest plots without their HTML/PNG blobs.
func (s *GormStore) ListPlots(ctx context.Context, limit int) ([]storemodel.PlotModel, error) {
	var out []storemodel.PlotModel
	q := s.db.WithContext(ctx).
		Select("id", "uuid", "title", "params_json", "description", "status", "error_text", "created_at", "updated_at").
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
