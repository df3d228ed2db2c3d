// Package figure builds the dashboard charts from a launch table.
//
// A figure is plain data (slices or grouped points) that can be rendered
// three ways: as an ECharts option object for the live page, as a
// standalone HTML page, and as a static PNG.
package figure

import (
	"errors"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrEmptyFigure is returned when a figure has nothing to draw as an image.
var ErrEmptyFigure = errors.New("figure has no data to render")

// ErrInvalidRange is returned for a payload range with a non-finite bound.
var ErrInvalidRange = errors.New("payload range bounds must be finite")

// Outcome colors of the per-site pie.
const (
	ColorSuccess = "#90EE90" // lightgreen
	ColorFailure = "#FF8C00" // darkorange
)

// Palette is the qualitative color sequence assigned to sites and booster
// categories in first-appearance order.
var Palette = []string{
	"#636EFA", "#EF553B", "#00CC96", "#AB63FA", "#FFA15A",
	"#19D3F3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
}

// Default image size for PNG rendering.
const (
	DefaultWidth  = 900
	DefaultHeight = 500
	// PieSize is the side of the square pie image.
	PieSize = DefaultHeight
)

// Figure is a rendered dashboard chart.
type Figure interface {
	// Options returns the ECharts option object for the chart.
	Options() map[string]any
	// Chart returns the go-echarts chart for page composition.
	Chart() components.Charter
	RenderHTML(w io.Writer) error
	RenderPNG(w io.Writer) error
}

func paletteColor(i int) string {
	return Palette[i%len(Palette)]
}

func hexColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}
