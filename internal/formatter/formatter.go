// package formatter renders reconciliation boards as CSV, JSON, Markdown, or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/shazcloud/internal/matcher"
	"github.com/desertthunder/shazcloud/internal/models"
	"github.com/desertthunder/shazcloud/internal/shared"
)

// Format names an output format.
type Format string

const (
	JSON     Format = "json"
	CSV      Format = "csv"
	Markdown Format = "markdown"
	Text     Format = "text"
)

// Formats lists every supported format.
var Formats = []Format{JSON, CSV, Markdown, Text}

// ParseFormat accepts a format name or a common alias (md, txt).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return JSON, nil
	case "csv":
		return CSV, nil
	case "markdown", "md":
		return Markdown, nil
	case "text", "txt":
		return Text, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string {
	switch f {
	case CSV:
		return ".csv"
	case Markdown:
		return ".md"
	case Text:
		return ".txt"
	default:
		return ".json"
	}
}

// BoardExport is a point-in-time copy of a board with provenance.
type BoardExport struct {
	Source      string               `json:"source"`
	GeneratedAt time.Time            `json:"generatedAt"`
	Stats       matcher.Stats        `json:"stats"`
	Matched     []models.MatchResult `json:"matched"`
	Review      []models.MatchResult `json:"review"`
}

// NewBoardExport snapshots b.
func NewBoardExport(source string, b *matcher.Board) *BoardExport {
	return &BoardExport{
		Source:      source,
		GeneratedAt: time.Now().UTC(),
		Stats:       b.Stats(),
		Matched:     b.Matched(),
		Review:      b.Review(),
	}
}

// Render encodes export in format.
func Render(export *BoardExport, format Format) ([]byte, error) {
	switch format {
	case CSV:
		return ExportToCSV(export)
	case Markdown:
		return ExportToMarkdown(export)
	case Text:
		return ExportToText(export)
	default:
		return shared.MarshalJSON(export, true)
	}
}

var csvHeaders = []string{
	"TrackKey", "Index", "TagTime", "Title", "Artist", "SourceURL",
	"Status", "MatchTitle", "MatchArtist", "MatchURL", "MatchImageURL", "ReviewCandidates",
}

// ExportToCSV writes one row per result, matched bucket first.
func ExportToCSV(export *BoardExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(csvHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range allResults(export) {
		var m models.CandidateTrack
		if r.MatchedTrack != nil {
			m = *r.MatchedTrack
		}
		record := []string{
			r.Source.TrackKey, r.Source.Index, r.Source.TagTime, r.Source.Title, r.Source.Artist, r.Source.SourceURL,
			string(r.Status), m.Title, m.Artist, m.URL, m.ImageURL, strconv.Itoa(len(r.Candidates)),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders a summary followed by the matched and review sections.
func ExportToMarkdown(export *BoardExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", title(export))
	fmt.Fprintf(&buf, "**Tracks**: %d\n", export.Stats.Total)
	fmt.Fprintf(&buf, "**Matched**: %d\n", export.Stats.Matched)
	fmt.Fprintf(&buf, "**Needs review**: %d\n", export.Stats.NeedsReview)
	fmt.Fprintf(&buf, "**No match**: %d\n\n", export.Stats.NoMatch)

	buf.WriteString("## Matched\n\n")
	for i, r := range export.Matched {
		fmt.Fprintf(&buf, "%d. %s - %s", i+1, r.Source.Artist, r.Source.Title)
		if m := r.MatchedTrack; m != nil {
			fmt.Fprintf(&buf, " → [%s](%s) by %s", m.Title, m.URL, m.Artist)
		}
		buf.WriteString("\n")
	}

	buf.WriteString("\n## Review\n\n")
	for i, r := range export.Review {
		fmt.Fprintf(&buf, "%d. %s - %s (%s)\n", i+1, r.Source.Artist, r.Source.Title, r.Status)
		for _, c := range r.Candidates {
			fmt.Fprintf(&buf, "   - [%s](%s) by %s\n", c.Title, c.URL, c.Artist)
		}
	}

	return buf.Bytes(), nil
}

// ExportToText renders one line per result.
func ExportToText(export *BoardExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Import: %s\n", title(export))
	fmt.Fprintf(&buf, "Tracks: %d (matched %d, review %d, no match %d)\n\n",
		export.Stats.Total, export.Stats.Matched, export.Stats.NeedsReview, export.Stats.NoMatch)

	for i, r := range allResults(export) {
		line := fmt.Sprintf("%d. [%s] %s - %s", i+1, r.Status, r.Source.Artist, r.Source.Title)
		if m := r.MatchedTrack; m != nil {
			line += " -> " + m.URL
		} else if n := len(r.Candidates); n > 0 {
			line += fmt.Sprintf(" (%d candidates)", n)
		}
		buf.WriteString(line + "\n")
	}

	return buf.Bytes(), nil
}

// WriteExport renders export and writes it to path, creating parent directories.
func WriteExport(export *BoardExport, format Format, path string) (string, error) {
	if path == "" {
		path = "shazcloud_export" + format.Extension()
	}

	data, err := Render(export, format)
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", format, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", format, err)
	}
	return path, nil
}

func allResults(export *BoardExport) []models.MatchResult {
	out := make([]models.MatchResult, 0, len(export.Matched)+len(export.Review))
	out = append(out, export.Matched...)
	return append(out, export.Review...)
}

func title(export *BoardExport) string {
	if export.Source == "" {
		return "Shazam import"
	}
	return export.Source
}
