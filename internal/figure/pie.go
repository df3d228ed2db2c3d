package figure

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/launchdash/dashboard/internal/dataset"
	"github.com/launchdash/dashboard/pkg/core"
)

// Slice is one pie sector.
type Slice struct {
	Label string `json:"label"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

// PieFigure is the success-count pie chart.
type PieFigure struct {
	Title  string  `json:"title"`
	Site   string  `json:"site"`
	Slices []Slice `json:"slices"`
}

// Pie builds the success pie for a site selection.
//
// For all sites (the All sentinel or an empty selection) there is one slice per
// site valued at its success count. For a single site the slices are the value
// counts of the outcome column, success in light green and failure in dark orange.
func Pie(t *dataset.Table, site string) (*PieFigure, error) {
	if site == "" || site == core.AllSites {
		f := &PieFigure{Title: "Success count per site", Site: core.AllSites}
		for i, c := range t.SuccessCountBySite() {
			f.Slices = append(f.Slices, Slice{Label: c.Site, Value: c.Count, Color: paletteColor(i)})
		}
		return f, nil
	}

	counts, err := t.OutcomeCounts(site)
	if err != nil {
		return nil, err
	}
	f := &PieFigure{Title: fmt.Sprintf("Success count for %s", site), Site: site}
	for _, c := range counts {
		color := ColorFailure
		if c.Outcome == core.Success {
			color = ColorSuccess
		}
		f.Slices = append(f.Slices, Slice{Label: c.Outcome.String(), Value: c.Count, Color: color})
	}
	return f, nil
}

// Total returns the sum of all slice values.
func (f *PieFigure) Total() int {
	n := 0
	for _, s := range f.Slices {
		n += s.Value
	}
	return n
}

func (f *PieFigure) echart() *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: f.Title,
			Width:     "100%",
			Height:    "450px",
		}),
		charts.WithTitleOpts(opts.Title{Title: f.Title, Left: "center"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "item", Formatter: "{b}: {c} ({d}%)"}),
		charts.WithLegendOpts(opts.Legend{Orient: "vertical", Left: "right"}),
	)

	data := make([]opts.PieData, 0, len(f.Slices))
	for _, s := range f.Slices {
		data = append(data, opts.PieData{
			Name:      s.Label,
			Value:     s.Value,
			ItemStyle: &opts.ItemStyle{Color: s.Color},
		})
	}
	pie.AddSeries("class", data,
		charts.WithPieChartOpts(opts.PieChart{Radius: "65%"}),
		charts.WithLabelOpts(opts.Label{Formatter: "{d}%"}),
	)
	return pie
}

// Options returns the ECharts option object.
func (f *PieFigure) Options() map[string]any {
	return f.echart().JSON()
}

// Chart returns the go-echarts chart.
func (f *PieFigure) Chart() components.Charter {
	return f.echart()
}

// RenderHTML writes a standalone HTML page with the chart.
func (f *PieFigure) RenderHTML(w io.Writer) error {
	return f.echart().Render(w)
}

// RenderPNG draws the pie as a PNG image. Zero-valued slices are left out.
func (f *PieFigure) RenderPNG(w io.Writer) error {
	values := make([]chart.Value, 0, len(f.Slices))
	for _, s := range f.Slices {
		if s.Value == 0 {
			continue
		}
		values = append(values, chart.Value{
			Value: float64(s.Value),
			Label: fmt.Sprintf("%s (%d)", s.Label, s.Value),
			Style: chart.Style{FillColor: hexColor(s.Color)},
		})
	}
	if len(values) == 0 {
		return ErrEmptyFigure
	}

	pie := chart.PieChart{
		Title:  f.Title,
		Width:  PieSize,
		Height: PieSize,
		Values: values,
	}
	if err := pie.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("rendering pie chart: %w", err)
	}
	return nil
}
