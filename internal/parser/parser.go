// package parser decodes Shazam recognition exports into [models.SourceTrack] records.
//
// The export format is newline-delimited text: a free-form metadata line, the literal
// header [Header], then unquoted six-field rows. Embedded commas are not supported; a row
// that splits into any other number of fields is skipped with a warning.
package parser

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/shazcloud/internal/models"
	"github.com/desertthunder/shazcloud/internal/shared"
)

// Header is the exact column line expected as the second non-blank line of an export.
const Header = "Index,TagTime,Title,Artist,URL,TrackKey"

const fieldCount = 6

// MaxUploadSize bounds multipart uploads accepted by [Parser.ParseUpload].
const MaxUploadSize = 10 << 20

// ErrorKind identifies a structural parse failure.
type ErrorKind int

const (
	TooShort ErrorKind = iota
	HeaderMismatch
	MalformedRow
)

func (k ErrorKind) String() string {
	switch k {
	case TooShort:
		return "too short"
	case HeaderMismatch:
		return "header mismatch"
	case MalformedRow:
		return "malformed row"
	default:
		return "unknown"
	}
}

// ParseError reports why an export was rejected. MalformedRow errors are only logged.
type ParseError struct {
	Kind     ErrorKind
	Expected string
	Actual   string
	Line     int
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case TooShort:
		return "CSV file must contain at least a header and one data row"
	case HeaderMismatch:
		return fmt.Sprintf("invalid CSV header: expected %q, got %q", e.Expected, e.Actual)
	case MalformedRow:
		return fmt.Sprintf("malformed row %d: %q", e.Line, e.Actual)
	default:
		return "invalid CSV"
	}
}

// Unwrap lets callers match any parse failure with [shared.ErrInvalidInput].
func (e *ParseError) Unwrap() error { return shared.ErrInvalidInput }

// Result holds the tracks decoded from one export.
type Result struct {
	Tracks     []models.SourceTrack `json:"tracks"`
	Skipped    int                  `json:"skipped"`
	Duplicates []string             `json:"duplicates,omitempty"`
}

// Parser decodes exports, logging skipped rows to its logger.
type Parser struct {
	logger *log.Logger
	// Limit caps the number of data rows read; zero reads every row.
	Limit int
}

// New creates a [Parser]. A nil logger discards warnings.
func New(logger *log.Logger) *Parser {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Parser{logger: logger}
}

// Parse decodes content, returning the well-formed rows in file order.
func (p *Parser) Parse(content string) (*Result, error) {
	lines := nonBlankLines(content)
	if len(lines) < 2 {
		return nil, &ParseError{Kind: TooShort}
	}

	if actual := strings.TrimSpace(lines[1]); actual != Header {
		return nil, &ParseError{Kind: HeaderMismatch, Expected: Header, Actual: actual}
	}

	rows := lines[2:]
	if p.Limit > 0 && len(rows) > p.Limit {
		rows = rows[:p.Limit]
	}

	res := &Result{Tracks: make([]models.SourceTrack, 0, len(rows))}
	seen := make(map[string]struct{}, len(rows))
	for i, line := range rows {
		values := strings.Split(line, ",")
		if len(values) != fieldCount {
			res.Skipped++
			perr := &ParseError{Kind: MalformedRow, Line: i + 1, Actual: line}
			p.logger.Warn("skipping row", "error", perr, "fields", len(values))
			continue
		}

		track := models.SourceTrack{
			Index:     strings.TrimSpace(values[0]),
			TagTime:   strings.TrimSpace(values[1]),
			Title:     strings.TrimSpace(values[2]),
			Artist:    strings.TrimSpace(values[3]),
			SourceURL: strings.TrimSpace(values[4]),
			TrackKey:  strings.TrimSpace(values[5]),
		}

		if _, dup := seen[track.TrackKey]; dup {
			res.Duplicates = append(res.Duplicates, track.TrackKey)
			p.logger.Warn("duplicate track key", "key", track.TrackKey, "row", i+1)
		}
		seen[track.TrackKey] = struct{}{}
		res.Tracks = append(res.Tracks, track)
	}

	p.logger.Debug("parsed export", "tracks", len(res.Tracks), "skipped", res.Skipped)
	return res, nil
}

// ParseReader reads r to completion and parses it.
func (p *Parser) ParseReader(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}
	return p.Parse(string(data))
}

// ParseFile verifies and parses the export at path.
func (p *Parser) ParseFile(path string) (*Result, error) {
	data, err := shared.VerifyAndReadFile(path)
	if err != nil {
		return nil, err
	}
	return p.Parse(string(data))
}

// ParseUpload parses the multipart form field "file" of r.
func (p *Parser) ParseUpload(r *http.Request) (*Result, error) {
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, fmt.Errorf("%w: file", shared.ErrMissingArgument)
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	defer file.Close()

	p.logger.Debug("received upload", "filename", header.Filename, "size", header.Size)
	return p.ParseReader(file)
}

func nonBlankLines(content string) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
