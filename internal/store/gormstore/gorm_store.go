// Package gormstore implements dataset metadata and plot storage using
// Gorm + SQLite. Bulk feature rows live in the archive package instead.
package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"hidecan/internal/genome"
	storemodel "hidecan/internal/store/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens (creating if needed) the sqlite database at path.
func NewGormStore(path string) (*GormStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("gorm store: database path cannot be empty")
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}
	models := []interface{}{
		&storemodel.DatasetModel{},
		&storemodel.PlotModel{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite + WAL: allow a small amount of parallelism for concurrent HTTP
	// reads while keeping lock contention low.
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetMaxIdleConns(2)
	return &GormStore{db: db}, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Close closes the underlying database connection.
func (s *GormStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveMeta upserts dataset metadata by name. The UUID of an existing
// dataset is preserved so its archive file stays addressable.
func (s *GormStore) SaveMeta(ctx context.Context, ds genome.Dataset, sourceFile string) (*storemodel.DatasetModel, error) {
	if strings.TrimSpace(ds.Name) == "" {
		return nil, errors.New("gorm store: dataset name cannot be empty")
	}
	now := time.Now().Unix()
	columns, err := json.Marshal(columnNames(ds))
	if err != nil {
		return nil, err
	}
	rec := &storemodel.DatasetModel{
		UUID:          uuid.NewString(),
		Name:          ds.Name,
		TrackType:     ds.Type.String(),
		AesType:       ds.AesType,
		SourceFile:    sourceFile,
		FeatureCount:  len(ds.Features),
		ColumnsJSON:   datatypes.JSON(columns),
		CreatedAtUnix: now,
		UpdatedAtUnix: now,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing storemodel.DatasetModel
		found := tx.Where("name = ?", ds.Name).First(&existing).Error
		if found == nil {
			rec.ID = existing.ID
			rec.UUID = existing.UUID
			rec.CreatedAtUnix = existing.CreatedAtUnix
		} else if !errors.Is(found, gorm.ErrRecordNotFound) {
			return found
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			UpdateAll: true,
		}).Save(rec).Error
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns every dataset's metadata, newest first.
func (s *GormStore) List(ctx context.Context) ([]storemodel.DatasetModel, error) {
	var out []storemodel.DatasetModel
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// FindByUUID returns the dataset metadata, or (nil, nil) when absent.
func (s *GormStore) FindByUUID(ctx context.Context, id string) (*storemodel.DatasetModel, error) {
	var rec storemodel.DatasetModel
	err := s.db.WithContext(ctx).Where("uuid = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Delete removes the dataset metadata row.
func (s *GormStore) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Where("uuid = ?", id).Delete(&storemodel.DatasetModel{}).Error
}

func columnNames(ds genome.Dataset) []string {
	switch ds.Type {
	case genome.TrackDE:
		return []string{"chromosome", "start", "end", "score", "log2FoldChange", "name"}
	case genome.TrackCAN:
		return []string{"chromosome", "start", "end", "name"}
	default:
		return []string{"chromosome", "position", "score", "name"}
	}
}
