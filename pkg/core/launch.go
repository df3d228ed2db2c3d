// pkg/core/launch.go
package core

import (
	"errors"
	"time"
)

// ErrNoDataset is returned by storage reads before any import.
var ErrNoDataset = errors.New("no dataset imported")

// Outcome is the binary mission outcome flag from the "class" column.
type Outcome int

const (
	Failure Outcome = 0
	Success Outcome = 1
)

// String returns the display label used in chart legends.
func (o Outcome) String() string {
	if o == Success {
		return "Success"
	}
	return "Failure"
}

// Launch is a single historical launch attempt.
type Launch struct {
	ID              uint
	FlightNumber    int
	LaunchSite      string
	PayloadMassKg   float64
	Class           Outcome
	BoosterVersion  string
	BoosterCategory string

	// Optional site location, zero when the source has no Lat/Long columns
	Latitude  float64
	Longitude float64
}

// HasLocation reports whether the record carries its own site coordinates.
func (l Launch) HasLocation() bool {
	return l.Latitude != 0 || l.Longitude != 0
}

// DatasetInfo describes where a launch table came from.
type DatasetInfo struct {
	ID         uint
	SourcePath string
	Columns    []string
	Rows       int
	Skipped    int
	LoadedAt   time.Time
}
