package formatter

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/shazcloud/internal/matcher"
	"github.com/desertthunder/shazcloud/internal/models"
	"github.com/desertthunder/shazcloud/internal/shared"
	th "github.com/desertthunder/shazcloud/internal/testing"
)

func sampleExport(t *testing.T) *BoardExport {
	t.Helper()
	tracks := th.Tracks(3)
	b := matcher.NewBoard()

	hit := th.ExactCandidate(tracks[0])
	hit.ImageURL = "https://i1.sndcdn.com/art.jpg"
	b.Add(matcher.Classify(tracks[0], []models.CandidateTrack{hit}))
	b.Add(matcher.Classify(tracks[1], []models.CandidateTrack{{Title: "Live, at home", Artist: "someone", URL: "https://soundcloud.com/x"}}))
	b.Add(matcher.Classify(tracks[2], nil))

	return NewBoardExport("shazam.csv", b)
}

func TestExporters(t *testing.T) {
	export := sampleExport(t)

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(export)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		if err != nil {
			t.Fatalf("output is not valid CSV: %v", err)
		}
		if len(records) != 4 {
			t.Fatalf("expected header and 3 rows, got %d", len(records))
		}
		if strings.Join(records[0], ",") != strings.Join(csvHeaders, ",") {
			t.Errorf("unexpected headers %v", records[0])
		}
		if records[1][0] != "k1" || records[1][6] != "matched" || records[1][10] != "https://i1.sndcdn.com/art.jpg" {
			t.Errorf("unexpected matched row %v", records[1])
		}
		if records[2][6] != "needs_review" || records[2][11] != "1" {
			t.Errorf("unexpected review row %v", records[2])
		}
		if records[3][6] != "no_match" {
			t.Errorf("unexpected no match row %v", records[3])
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(export)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}
		output := string(data)

		for _, want := range []string{"# shazam.csv", "**Matched**: 1", "## Matched", "## Review", "[Live, at home](https://soundcloud.com/x)", "(no_match)"} {
			if !strings.Contains(output, want) {
				t.Errorf("markdown missing %q:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(export)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}
		output := string(data)

		if !strings.Contains(output, "Tracks: 3 (matched 1, review 1, no match 1)") {
			t.Errorf("text missing summary:\n%s", output)
		}
		if !strings.Contains(output, "1. [matched] Artist 1 - Song 1 -> https://soundcloud.com/uploader/k1") {
			t.Errorf("text missing matched line:\n%s", output)
		}
		if !strings.Contains(output, "(1 candidates)") {
			t.Errorf("text missing candidate count:\n%s", output)
		}
	})

	t.Run("Render JSON", func(t *testing.T) {
		data, err := Render(export, JSON)
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}

		var decoded BoardExport
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.Stats != export.Stats || len(decoded.Review) != 2 {
			t.Errorf("unexpected decoded export %+v", decoded)
		}
		if !strings.Contains(string(data), `"sourceTrack"`) || !strings.Contains(string(data), `"reviewCandidates"`) {
			t.Errorf("expected camelCase result fields in %s", data)
		}
	})
}

func TestWriteExport(t *testing.T) {
	export := sampleExport(t)
	dir := t.TempDir()

	for _, f := range Formats {
		t.Run(string(f), func(t *testing.T) {
			path := filepath.Join(dir, "nested", "board"+f.Extension())
			got, err := WriteExport(export, f, path)
			if err != nil {
				t.Fatalf("WriteExport failed: %v", err)
			}
			th.AssertFileExists(t, got)
			if th.MustReadFile(t, got) == "" {
				t.Error("export file should not be empty")
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tc := map[string]Format{"": JSON, "JSON": JSON, "csv": CSV, "md": Markdown, "markdown": Markdown, "txt": Text, " text ": Text}
	for in, want := range tc {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}

	if _, err := ParseFormat("xml"); !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}
