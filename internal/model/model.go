package model

import (
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Dataset{},
	&Launch{},
}

// Dataset is one import of a launch CSV.
type Dataset struct {
	ID         uint      `json:"id" gorm:"primarykey;autoIncrement"`
	CreatedAt  time.Time `json:"createdAt"`
	SourcePath string    `json:"sourcePath" gorm:"size:512"`
	// Columns is the header row as a JSON string array.
	Columns  datatypes.JSON `json:"columns"`
	Rows     int            `json:"rows"`
	Skipped  int            `json:"skipped"`
	LoadedAt time.Time      `json:"loadedAt" gorm:"index"`
	Launches []Launch       `json:"-" gorm:"foreignKey:DatasetID;constraint:OnDelete:CASCADE"`
}

func (*Dataset) TableName() string {
	return "datasets"
}

// Launch is one CSV row. Row keeps the row ID assigned at parse time so
// reads return launches in file order.
type Launch struct {
	ID              uint    `json:"id" gorm:"primarykey;autoIncrement"`
	DatasetID       uint    `json:"datasetId" gorm:"index:idx_launch_dataset_row,priority:1"`
	Row             uint    `json:"row" gorm:"column:row_index;index:idx_launch_dataset_row,priority:2"`
	FlightNumber    int     `json:"flightNumber"`
	LaunchSite      string  `json:"launchSite" gorm:"size:64;index"`
	PayloadMassKg   float64 `json:"payloadMassKg"`
	Class           int     `json:"class"`
	BoosterVersion  string  `json:"boosterVersion" gorm:"size:64"`
	BoosterCategory string  `json:"boosterCategory" gorm:"size:32"`
	Latitude        float64 `json:"lat"`
	Longitude       float64 `json:"long"`
	// Location is the launch position in EPSG:3857, empty when unknown.
	Location geom.Point `json:"location"`
}

func (*Launch) TableName() string {
	return "launches"
}
