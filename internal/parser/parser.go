package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/launchdash/dashboard/internal/util"
	"github.com/launchdash/dashboard/pkg/core"
)

// Column names of the launch records CSV.
const (
	ColFlightNumber    = "Flight Number"
	ColLaunchSite      = "Launch Site"
	ColPayloadMass     = "Payload Mass (kg)"
	ColClass           = "class"
	ColBoosterVersion  = "Booster Version"
	ColBoosterCategory = "Booster Version Category"
	ColLatitude        = "Lat"
	ColLongitude       = "Long"
)

// RequiredColumns must all be present in the header row.
var RequiredColumns = []string{ColLaunchSite, ColPayloadMass, ColClass, ColBoosterCategory}

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// ErrNoHeader is returned for an empty input.
var ErrNoHeader = errors.New("csv has no header row")

// Result is the outcome of parsing one CSV source.
type Result struct {
	Launches []core.Launch
	Columns  []string
	// Skipped counts data rows that could not be converted.
	Skipped int
}

// Info summarizes the result for storage.
func (r Result) Info(source string) core.DatasetInfo {
	return core.DatasetInfo{
		SourcePath: source,
		Columns:    r.Columns,
		Rows:       len(r.Launches),
		Skipped:    r.Skipped,
		LoadedAt:   time.Now().UTC(),
	}
}

// Parser converts launch record CSV into core.Launch values.
// It has zero external dependencies beyond a logger.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new parser with only a logger dependency
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// ParseFile opens path and parses it.
func (p *Parser) ParseFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("opening launch records: %w", err)
	}
	defer f.Close()

	res, err := p.Parse(f)
	if err != nil {
		return res, fmt.Errorf("parsing %s: %w", path, err)
	}
	return res, nil
}

// Parse reads a header row followed by launch records.
// Rows with unparsable numeric cells are skipped and counted, never fatal.
func (p *Parser) Parse(r io.Reader) (Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return Result{}, ErrNoHeader
	}
	if err != nil {
		return Result{}, fmt.Errorf("reading header: %w", err)
	}

	cols := newColumnIndex(header)
	for _, name := range RequiredColumns {
		if !cols.has(name) {
			return Result{}, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}

	res := Result{Columns: cols.names, Launches: []core.Launch{}}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				res.Skipped++
				p.logger.Warn("Skipping malformed CSV row", "line", perr.Line, "error", perr.Err)
				continue
			}
			return res, fmt.Errorf("reading records: %w", err)
		}

		line, _ := reader.FieldPos(0)
		launch, err := p.parseRecord(cols, record)
		if err != nil {
			res.Skipped++
			p.logger.Warn("Skipping launch record", "line", line, "error", err)
			continue
		}
		launch.ID = uint(len(res.Launches) + 1)
		res.Launches = append(res.Launches, launch)
	}

	p.logger.Debug("Parsed launch records",
		"rows", len(res.Launches),
		"skipped", res.Skipped)

	return res, nil
}

func (p *Parser) parseRecord(cols columnIndex, record []string) (core.Launch, error) {
	var launch core.Launch

	site, ok := cols.get(record, ColLaunchSite)
	if !ok || site == "" {
		return launch, fmt.Errorf("empty %q", ColLaunchSite)
	}
	launch.LaunchSite = site

	payload, _ := cols.get(record, ColPayloadMass)
	mass, err := util.ParseFloatLoose(payload)
	if err != nil {
		return launch, fmt.Errorf("invalid %q %q: %w", ColPayloadMass, payload, err)
	}
	launch.PayloadMassKg = mass

	class, _ := cols.get(record, ColClass)
	outcome, err := parseOutcome(class)
	if err != nil {
		return launch, err
	}
	launch.Class = outcome

	launch.BoosterCategory, _ = cols.get(record, ColBoosterCategory)
	launch.BoosterVersion, _ = cols.get(record, ColBoosterVersion)

	if v, ok := cols.get(record, ColFlightNumber); ok && v != "" {
		n, err := util.ParseIntFromFloat(v)
		if err != nil {
			return launch, fmt.Errorf("invalid %q %q: %w", ColFlightNumber, v, err)
		}
		launch.FlightNumber = n
	}

	// Coordinates are optional; a bad pair is dropped rather than the row.
	lat, latOK := cols.get(record, ColLatitude)
	long, longOK := cols.get(record, ColLongitude)
	if latOK && longOK && lat != "" && long != "" {
		la, errLat := util.ParseFloatLoose(lat)
		lo, errLong := util.ParseFloatLoose(long)
		if errLat == nil && errLong == nil {
			launch.Latitude, launch.Longitude = la, lo
		} else {
			p.logger.Debug("Ignoring invalid site coordinates", "site", site, "lat", lat, "long", long)
		}
	}

	return launch, nil
}

// parseOutcome accepts "0"/"1" as well as the float forms pandas writes ("1.0").
func parseOutcome(s string) (core.Outcome, error) {
	v, err := util.ParseIntFromFloat(s)
	if err != nil {
		return core.Failure, fmt.Errorf("invalid %q %q: %w", ColClass, s, err)
	}
	switch v {
	case 0:
		return core.Failure, nil
	case 1:
		return core.Success, nil
	default:
		return core.Failure, fmt.Errorf("invalid %q %d: must be 0 or 1", ColClass, v)
	}
}
