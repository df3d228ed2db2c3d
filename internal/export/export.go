// Package export writes the dashboard layout and figures to disk.
package export

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/rs/zerolog"

	"github.com/launchdash/dashboard/internal/dataset"
	"github.com/launchdash/dashboard/internal/figure"
)

// File names inside the output directory.
const (
	LayoutFile = "layout.json"
	PageFile   = "dashboard.html"
)

// Options selects what is written besides the JSON files.
type Options struct {
	Dir  string
	Gzip bool
	PNG  bool
	HTML bool
}

// Named pairs a figure with the output component it belongs to.
type Named struct {
	Output string
	Figure figure.Figure
}

// Exporter writes figures into one directory.
type Exporter struct {
	opts Options
	log  zerolog.Logger
}

// New creates an exporter.
func New(opts Options, log zerolog.Logger) *Exporter {
	return &Exporter{opts: opts, log: log}
}

// Export writes the layout, one option file per figure and, when enabled,
// a PNG per figure and one HTML page holding every chart. It returns the
// written paths in order. A figure with nothing to draw is skipped for PNG.
func (e *Exporter) Export(layout dataset.Layout, figs []Named) ([]string, error) {
	if err := os.MkdirAll(e.opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var written []string
	path, err := WriteJSON(filepath.Join(e.opts.Dir, LayoutFile), layout, e.opts.Gzip)
	if err != nil {
		return written, err
	}
	written = append(written, path)

	charts := make([]components.Charter, 0, len(figs))
	for _, f := range figs {
		path, err := WriteJSON(filepath.Join(e.opts.Dir, f.Output+".json"), f.Figure.Options(), e.opts.Gzip)
		if err != nil {
			return written, err
		}
		written = append(written, path)

		if e.opts.PNG {
			path := filepath.Join(e.opts.Dir, f.Output+".png")
			err := writeWith(path, f.Figure.RenderPNG)
			switch {
			case err == nil:
				written = append(written, path)
			case errors.Is(err, figure.ErrEmptyFigure):
				e.log.Warn().Str("output", f.Output).Msg("Nothing to draw, skipping PNG")
			default:
				return written, err
			}
		}
		charts = append(charts, f.Figure.Chart())
	}

	if e.opts.HTML && len(charts) > 0 {
		path := filepath.Join(e.opts.Dir, PageFile)
		page := components.NewPage()
		page.PageTitle = layout.Title
		page.SetLayout(components.PageFlexLayout)
		page.AddCharts(charts...)
		if err := writeWith(path, page.Render); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	e.log.Info().Str("dir", e.opts.Dir).Int("files", len(written)).Msg("Export complete")
	return written, nil
}

// WriteJSON encodes v into path, gzipped with a ".gz" suffix when compress
// is set. It returns the final path.
func WriteJSON(path string, v any, compress bool) (string, error) {
	if compress {
		path += ".gz"
	}
	err := writeWith(path, func(w io.Writer) error {
		if compress {
			gz := gzip.NewWriter(w)
			if err := json.NewEncoder(gz).Encode(v); err != nil {
				return err
			}
			return gz.Close()
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
	return path, err
}

// WriteFile writes raw bytes, used for fetched PNGs.
func WriteFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// writeWith creates path and fills it through fn. The file is removed when
// fn fails.
func writeWith(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := fn(f); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
