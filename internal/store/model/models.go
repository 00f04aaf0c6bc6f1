package model

import (
	"gorm.io/datatypes"
)

type PlotStatus int

const (
	PlotStatusPending PlotStatus = 0
	PlotStatusDone    PlotStatus = 1
	PlotStatusFailed  PlotStatus = 2
)

// DatasetModel is the stored metadata of one ingested track dataset.
type DatasetModel struct {
	ID            int64          `gorm:"column:id;primaryKey"`
	UUID          string         `gorm:"column:uuid;uniqueIndex"`
	Name          string         `gorm:"column:name;uniqueIndex"`
	TrackType     string         `gorm:"column:track_type"`
	AesType       string         `gorm:"column:aes_type"`
	SourceFile    string         `gorm:"column:source_file"`
	FeatureCount  int            `gorm:"column:feature_count"`
	ColumnsJSON   datatypes.JSON `gorm:"column:columns_json;type:TEXT"`
	CreatedAtUnix int64          `gorm:"column:created_at"`
	UpdatedAtUnix int64          `gorm:"column:updated_at"`
}

func (DatasetModel) TableName() string { return "datasets" }

// PlotModel is one persisted render: request parameters, the chart HTML and
// the optional PNG snapshot.
type PlotModel struct {
	ID            int64          `gorm:"column:id;primaryKey"`
	UUID          string         `gorm:"column:uuid;uniqueIndex"`
	Title         string         `gorm:"column:title"`
	ParamsJSON    datatypes.JSON `gorm:"column:params_json;type:TEXT"`
	Description   string         `gorm:"column:description"`
	HTML          []byte         `gorm:"column:html"`
	PNG           []byte         `gorm:"column:png"`
	Status        PlotStatus     `gorm:"column:status"`
	ErrorText     string         `gorm:"column:error_text"`
	CreatedAtUnix int64          `gorm:"column:created_at"`
	UpdatedAtUnix int64          `gorm:"column:updated_at"`
}

func (PlotModel) TableName() string { return "plots" }
