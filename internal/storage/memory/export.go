package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	v1 "github.com/launchdash/dashboard/internal/storage/memory/export/v1"
	"github.com/launchdash/dashboard/pkg/core"
)

// exportJSON writes the dataset to a JSON file, gzipped when configured
func (b *Backend) exportJSON() error {
	export := v1.Build(*b.dataset, b.launches)

	name := strings.TrimSuffix(filepath.Base(b.dataset.SourcePath), filepath.Ext(b.dataset.SourcePath))
	name = strings.NewReplacer(" ", "_", ":", "_").Replace(name)
	if name == "" || name == "." {
		name = "launches"
	}
	timestamp := b.dataset.LoadedAt.Format("20060102_150405")

	filename := fmt.Sprintf("%s_%s.json", name, timestamp)
	if b.cfg.Compress {
		filename += ".gz"
	}
	outputPath := filepath.Join(b.cfg.ExportDir, filename)

	if err := os.MkdirAll(b.cfg.ExportDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := writeExport(outputPath, export, b.cfg.Compress); err != nil {
		return err
	}

	b.lastExportPath = outputPath
	return nil
}

func writeExport(path string, data v1.Export, compress bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	var w io.Writer = f
	if compress {
		gzWriter := gzip.NewWriter(f)
		defer gzWriter.Close()
		w = gzWriter
	}

	encoder := json.NewEncoder(w)
	if !compress {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return nil
}

// ReadExport loads a file written by a memory backend. Files ending in .gz
// are decompressed.
func ReadExport(path string) (core.DatasetInfo, []core.Launch, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.DatasetInfo{}, nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return core.DatasetInfo{}, nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	var export v1.Export
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return core.DatasetInfo{}, nil, fmt.Errorf("failed to decode export: %w", err)
	}
	return v1.Parse(export)
}
