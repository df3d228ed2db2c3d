package figure

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/launchdash/dashboard/internal/dataset"
	"github.com/launchdash/dashboard/internal/util"
	"github.com/launchdash/dashboard/pkg/core"
)

// Axis titles of the scatter chart.
const (
	XAxisTitle = "Payload Mass (kg)"
	YAxisTitle = "class"
)

// Point is one launch on the scatter chart.
type Point struct {
	Payload        float64      `json:"payload"`
	Class          core.Outcome `json:"class"`
	Site           string       `json:"site"`
	BoosterVersion string       `json:"boosterVersion,omitempty"`
	FlightNumber   int          `json:"flightNumber,omitempty"`
}

// Series groups the points of one booster version category.
type Series struct {
	Category string  `json:"category"`
	Color    string  `json:"color"`
	Points   []Point `json:"points"`
}

// ScatterFigure is the payload against outcome scatter chart.
type ScatterFigure struct {
	Title  string            `json:"title"`
	Site   string            `json:"site"`
	Range  core.PayloadRange `json:"range"`
	Series []Series          `json:"series"`
}

// Scatter builds the payload scatter for a site selection and payload range.
//
// Rows are filtered by the inclusive payload range first and then by site.
// Points are grouped per booster version category; a category keeps its color
// across selections because colors follow the table's category order.
func Scatter(t *dataset.Table, site string, r core.PayloadRange) (*ScatterFigure, error) {
	if !util.IsFinite(r[0]) || !util.IsFinite(r[1]) {
		return nil, fmt.Errorf("%w: [%g, %g]", ErrInvalidRange, r[0], r[1])
	}
	r = r.Normalized()
	rows, err := t.Filter(site, r.Low(), r.High())
	if err != nil {
		return nil, err
	}

	f := &ScatterFigure{Range: r, Site: site}
	if site == "" || site == core.AllSites {
		f.Site = core.AllSites
		f.Title = "Correlation between Payload and Success for all Sites"
	} else {
		f.Title = fmt.Sprintf("Correlation between Payload and Success for %s", site)
	}

	colors := make(map[string]string)
	for i, c := range t.Categories() {
		colors[c] = paletteColor(i)
	}
	index := make(map[string]int)
	for _, row := range rows {
		i, ok := index[row.BoosterCategory]
		if !ok {
			i = len(f.Series)
			index[row.BoosterCategory] = i
			f.Series = append(f.Series, Series{
				Category: row.BoosterCategory,
				Color:    colors[row.BoosterCategory],
			})
		}
		f.Series[i].Points = append(f.Series[i].Points, Point{
			Payload:        row.PayloadMassKg,
			Class:          row.Class,
			Site:           row.LaunchSite,
			BoosterVersion: row.BoosterVersion,
			FlightNumber:   row.FlightNumber,
		})
	}
	return f, nil
}

// Len returns the number of plotted points.
func (f *ScatterFigure) Len() int {
	n := 0
	for _, s := range f.Series {
		n += len(s.Points)
	}
	return n
}

func (f *ScatterFigure) echart() *charts.Scatter {
	sc := charts.NewScatter()
	sc.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: f.Title,
			Width:     "100%",
			Height:    "450px",
		}),
		charts.WithTitleOpts(opts.Title{Title: f.Title, Left: "center"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Orient: "vertical", Left: "right", Top: "middle"}),
		charts.WithXAxisOpts(opts.XAxis{Name: XAxisTitle, Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: YAxisTitle, Type: "value", Min: 0, Max: 1}),
	)

	for _, s := range f.Series {
		data := make([]opts.ScatterData, 0, len(s.Points))
		for _, p := range s.Points {
			data = append(data, opts.ScatterData{
				Name:       p.BoosterVersion,
				Value:      []float64{p.Payload, float64(p.Class)},
				SymbolSize: 10,
			})
		}
		sc.AddSeries(s.Category, data, charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}))
	}
	return sc
}

// Options returns the ECharts option object.
func (f *ScatterFigure) Options() map[string]any {
	return f.echart().JSON()
}

// Chart returns the go-echarts chart.
func (f *ScatterFigure) Chart() components.Charter {
	return f.echart()
}

// RenderHTML writes a standalone HTML page with the chart.
func (f *ScatterFigure) RenderHTML(w io.Writer) error {
	return f.echart().Render(w)
}

// RenderPNG draws the scatter as a PNG image with one dot series per category.
func (f *ScatterFigure) RenderPNG(w io.Writer) error {
	if f.Len() == 0 {
		return ErrEmptyFigure
	}

	series := make([]chart.Series, 0, len(f.Series))
	for _, s := range f.Series {
		xs := make([]float64, 0, len(s.Points))
		ys := make([]float64, 0, len(s.Points))
		for _, p := range s.Points {
			xs = append(xs, p.Payload)
			ys = append(ys, float64(p.Class))
		}
		color := hexColor(s.Color)
		series = append(series, chart.ContinuousSeries{
			Name:    s.Category,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    5,
				DotColor:    color,
			},
		})
	}

	low, high := f.Range.Low(), f.Range.High()
	if low == high {
		low, high = low-1, high+1
	}

	graph := chart.Chart{
		Title:  f.Title,
		Width:  DefaultWidth,
		Height: DefaultHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:  XAxisTitle,
			Range: &chart.ContinuousRange{Min: low, Max: high},
		},
		YAxis: chart.YAxis{
			Name:  YAxisTitle,
			Range: &chart.ContinuousRange{Min: -0.25, Max: 1.25},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("rendering scatter chart: %w", err)
	}
	return nil
}
