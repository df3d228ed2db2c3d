package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/launchdash/dashboard/internal/dataset"
	"github.com/launchdash/dashboard/internal/util"
	"github.com/launchdash/dashboard/pkg/core"
)

// EChartsCDN is the script the page loads to draw figure options.
const EChartsCDN = "https://cdn.jsdelivr.net/npm/echarts@5.4.3/dist/echarts.min.js"

//go:embed templates/index.html.tmpl
var templateFS embed.FS

// pageData is the template input.
type pageData struct {
	Layout       dataset.Layout
	Dropdown     dataset.Component
	Slider       dataset.SliderSettings
	PayloadLabel string
	ScriptSrc    string
	IDs          map[string]string
}

func parsePage() (*template.Template, error) {
	return template.New("index.html.tmpl").
		Funcs(template.FuncMap{"kg": util.FormatKg}).
		ParseFS(templateFS, "templates/index.html.tmpl")
}

func (s *Server) pageData() pageData {
	l := s.deps.Layout
	d := pageData{
		Layout:       l,
		PayloadLabel: dataset.PayloadLabel,
		ScriptSrc:    EChartsCDN,
		IDs: map[string]string{
			"dropdown": core.SiteDropdown,
			"slider":   core.PayloadSlider,
			"pie":      core.SuccessPieChart,
			"scatter":  core.PayloadScatterChart,
		},
	}
	if c, ok := l.Component(core.SiteDropdown); ok {
		d.Dropdown = c
	}
	if c, ok := l.Component(core.PayloadSlider); ok && c.Slider != nil {
		d.Slider = *c.Slider
	}
	return d
}

func (s *Server) handlePage(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := s.page.Execute(&buf, s.pageData()); err != nil {
		s.deps.Logger.Error("Failed to render page", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
