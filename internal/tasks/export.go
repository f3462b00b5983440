package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/desertthunder/shazcloud/internal/formatter"
	"github.com/desertthunder/shazcloud/internal/matcher"
	"github.com/desertthunder/shazcloud/internal/shared"
)

// ExportOpts configures [ExportBoard].
type ExportOpts struct {
	Formats   []formatter.Format // Formats to write (default: all)
	OutputDir string             // Output directory (default: shazcloud_export_{epoch})
}

// ExportFile describes one written file.
type ExportFile struct {
	Format formatter.Format `json:"format"`
	Path   string           `json:"path,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// ExportResult summarizes an [ExportBoard] run.
type ExportResult struct {
	OutputDirectory string        `json:"outputDirectory"`
	Stats           matcher.Stats `json:"stats"`
	Files           []ExportFile  `json:"files"`
	Failed          int           `json:"failed"`
	ManifestPath    string        `json:"-"`
}

// ExportBoard writes export in each requested format plus an export_manifest.json.
//
// export is a snapshot taken with [formatter.NewBoardExport] by the board's owner, so
// the board can keep changing while files are written. A failing format is recorded
// in the manifest and does not stop the others.
func ExportBoard(ctx context.Context, progress chan<- ProgressUpdate, export *formatter.BoardExport, opts ExportOpts) (*ExportResult, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("shazcloud_export_%d", time.Now().Unix())
	}
	if len(opts.Formats) == 0 {
		opts.Formats = formatter.Formats
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &ExportResult{
		OutputDirectory: opts.OutputDir,
		Stats:           export.Stats,
		Files:           make([]ExportFile, 0, len(opts.Formats)),
	}

	total := len(opts.Formats)
	for i, f := range opts.Formats {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		path := filepath.Join(opts.OutputDir, "board"+f.Extension())
		written, err := formatter.WriteExport(export, f, path)
		if err != nil {
			result.Failed++
			result.Files = append(result.Files, ExportFile{Format: f, Error: err.Error()})
			sendProgress(progress, exportFailedUpdate(i+1, total, string(f), err))
			continue
		}
		result.Files = append(result.Files, ExportFile{Format: f, Path: written})
		sendProgress(progress, exportedUpdate(i+1, total, written))
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return result, fmt.Errorf("export completed but failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}
