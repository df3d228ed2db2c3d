// Package convert maps between the storage-agnostic core types and the GORM models.
package convert

import (
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/launchdash/dashboard/internal/geo"
	"github.com/launchdash/dashboard/internal/model"
	"github.com/launchdash/dashboard/pkg/core"
)

// LaunchToGorm converts a core.Launch into a row of the given dataset.
// core Launch.ID maps to GORM Launch.Row.
func LaunchToGorm(datasetID uint, l core.Launch) model.Launch {
	return model.Launch{
		DatasetID:       datasetID,
		Row:             l.ID,
		FlightNumber:    l.FlightNumber,
		LaunchSite:      l.LaunchSite,
		PayloadMassKg:   l.PayloadMassKg,
		Class:           int(l.Class),
		BoosterVersion:  l.BoosterVersion,
		BoosterCategory: l.BoosterCategory,
		Latitude:        l.Latitude,
		Longitude:       l.Longitude,
		Location:        geo.LaunchPoint(l),
	}
}

// LaunchToCore converts a GORM Launch back to a core.Launch.
func LaunchToCore(l model.Launch) core.Launch {
	class := core.Failure
	if l.Class == int(core.Success) {
		class = core.Success
	}
	return core.Launch{
		ID:              l.Row,
		FlightNumber:    l.FlightNumber,
		LaunchSite:      l.LaunchSite,
		PayloadMassKg:   l.PayloadMassKg,
		Class:           class,
		BoosterVersion:  l.BoosterVersion,
		BoosterCategory: l.BoosterCategory,
		Latitude:        l.Latitude,
		Longitude:       l.Longitude,
	}
}

// DatasetToGorm converts dataset metadata, encoding the header list as JSON.
func DatasetToGorm(ds core.DatasetInfo) (model.Dataset, error) {
	cols := ds.Columns
	if cols == nil {
		cols = []string{}
	}
	raw, err := json.Marshal(cols)
	if err != nil {
		return model.Dataset{}, err
	}
	return model.Dataset{
		ID:         ds.ID,
		SourcePath: ds.SourcePath,
		Columns:    datatypes.JSON(raw),
		Rows:       ds.Rows,
		Skipped:    ds.Skipped,
		LoadedAt:   ds.LoadedAt,
	}, nil
}

// DatasetToCore converts a GORM Dataset to core.DatasetInfo. A malformed
// column list decodes as empty.
func DatasetToCore(d model.Dataset) core.DatasetInfo {
	var cols []string
	if len(d.Columns) > 0 {
		if err := json.Unmarshal(d.Columns, &cols); err != nil {
			cols = nil
		}
	}
	return core.DatasetInfo{
		ID:         d.ID,
		SourcePath: d.SourcePath,
		Columns:    cols,
		Rows:       d.Rows,
		Skipped:    d.Skipped,
		LoadedAt:   d.LoadedAt,
	}
}
