// Package v1 contains the v1 export format for imported launch datasets.
package v1

import "time"

// FormatVersion is written into every export.
const FormatVersion = 1

// Export is the root JSON structure for v1 format
type Export struct {
	FormatVersion int       `json:"formatVersion"`
	SourcePath    string    `json:"sourcePath"`
	Columns       []string  `json:"columns"`
	LoadedAt      time.Time `json:"loadedAt"`
	Skipped       int       `json:"skipped"`
	Sites         []Site    `json:"sites"`
	// Launches are positional rows, see Header.
	Header   []string `json:"header"`
	Launches [][]any  `json:"launches"`
}

// Site summarizes the launches from one site.
type Site struct {
	Name      string `json:"name"`
	Launches  int    `json:"launches"`
	Successes int    `json:"successes"`
}

// Header names the positions of each launch row.
var Header = []string{
	"id",
	"flightNumber",
	"launchSite",
	"payloadMassKg",
	"class",
	"boosterVersion",
	"boosterCategory",
	"lat",
	"long",
}
