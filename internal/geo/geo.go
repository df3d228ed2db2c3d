// Package geo places launch sites on the map.
//
// Coordinates come from the Lat/Long columns when the CSV carries them and
// from the known pad table otherwise. Stored geometries are Web Mercator
// (EPSG:3857); the GeoJSON layer is WGS84 lon/lat.
package geo

import (
	"errors"
	"math"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"

	"github.com/launchdash/dashboard/internal/dataset"
	"github.com/launchdash/dashboard/pkg/core"
)

// ErrInvalidCoordinates is returned when the coordinates are out of range
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// Location is a WGS84 position.
type Location struct {
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
}

// Pads holds the positions of the known launch complexes.
var Pads = map[string]Location{
	"CCAFS LC-40":  {Lat: 28.562302, Long: -80.577356},
	"CCAFS SLC-40": {Lat: 28.563197, Long: -80.576820},
	"KSC LC-39A":   {Lat: 28.573255, Long: -80.646895},
	"VAFB SLC-4E":  {Lat: 34.632834, Long: -120.610745},
}

// Validate checks that the location is a real lon/lat pair.
func (l Location) Validate() error {
	if math.IsNaN(l.Lat) || math.IsNaN(l.Long) || l.Lat < -90 || l.Lat > 90 || l.Long < -180 || l.Long > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}

// Coords3857From4326 creates a Web Mercator point from a longitude and latitude
func Coords3857From4326(longitude, latitude float64) (geom.Point, error) {
	if err := (Location{Lat: latitude, Long: longitude}).Validate(); err != nil {
		return geom.NewEmptyPoint(geom.DimXY), err
	}
	f := wgs84.EPSG().Transform(4326, 3857)
	x, y, _ := f(longitude, latitude, 0)
	point, err := geom.NewPoint(geom.Coordinates{XY: geom.XY{X: x, Y: y}, Type: geom.DimXY})
	if err != nil {
		return geom.NewEmptyPoint(geom.DimXY), ErrInvalidCoordinates
	}
	return point, nil
}

// LaunchPoint returns the stored geometry of a launch: its own coordinates
// when present, else its pad's, else an empty point.
func LaunchPoint(l core.Launch) geom.Point {
	loc, ok := launchLocation(l)
	if !ok {
		return geom.NewEmptyPoint(geom.DimXY)
	}
	p, err := Coords3857From4326(loc.Long, loc.Lat)
	if err != nil {
		return geom.NewEmptyPoint(geom.DimXY)
	}
	return p
}

func launchLocation(l core.Launch) (Location, bool) {
	if l.HasLocation() {
		return Location{Lat: l.Latitude, Long: l.Longitude}, true
	}
	loc, ok := Pads[l.LaunchSite]
	return loc, ok
}

// SiteLocation returns the position of a site: the mean of its rows'
// coordinates, falling back to the pad table.
func SiteLocation(t *dataset.Table, site string) (Location, bool) {
	rows, err := t.FilterSite(site)
	if err != nil || site == "" || site == core.AllSites {
		return Location{}, false
	}
	var sum Location
	n := 0
	for _, r := range rows {
		if r.HasLocation() {
			sum.Lat += r.Latitude
			sum.Long += r.Longitude
			n++
		}
	}
	if n > 0 {
		return Location{Lat: sum.Lat / float64(n), Long: sum.Long / float64(n)}, true
	}
	loc, ok := Pads[site]
	return loc, ok
}

// SiteFeatures builds one point feature per located site with its launch and
// success counts. Sites without a known or valid position are left out.
func SiteFeatures(t *dataset.Table) geom.GeoJSONFeatureCollection {
	successes := make(map[string]int)
	for _, c := range t.SuccessCountBySite() {
		successes[c.Site] = c.Count
	}
	launches := make(map[string]int)
	for _, r := range t.Rows() {
		launches[r.LaunchSite]++
	}

	fc := geom.GeoJSONFeatureCollection{}
	for _, site := range t.Sites() {
		loc, ok := SiteLocation(t, site)
		if !ok || loc.Validate() != nil {
			continue
		}
		pt, err := geom.NewPoint(geom.Coordinates{XY: geom.XY{X: loc.Long, Y: loc.Lat}, Type: geom.DimXY})
		if err != nil {
			continue
		}
		rate := 0.0
		if launches[site] > 0 {
			rate = float64(successes[site]) / float64(launches[site])
		}
		fc = append(fc, geom.GeoJSONFeature{
			ID:       site,
			Geometry: pt.AsGeometry(),
			Properties: map[string]interface{}{
				"site":        site,
				"launches":    launches[site],
				"successes":   successes[site],
				"successRate": rate,
			},
		})
	}
	return fc
}

// SitesGeoJSON renders SiteFeatures as a GeoJSON FeatureCollection.
func SitesGeoJSON(t *dataset.Table) ([]byte, error) {
	return SiteFeatures(t).MarshalJSON()
}
