package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/shazcloud/internal/matcher"
	"github.com/desertthunder/shazcloud/internal/models"
	"github.com/desertthunder/shazcloud/internal/parser"
	"github.com/desertthunder/shazcloud/internal/shared"
	"github.com/desertthunder/shazcloud/internal/tasks"
	"github.com/go-playground/validator/v10"
)

const maxJSONBody = 4 << 20

// SearchRequest asks for one page of tracks to be searched and classified.
type SearchRequest struct {
	Tracks   []models.SourceTrack `json:"tracks" validate:"required,min=1"`
	Page     int                  `json:"page" validate:"min=0"`
	PageSize int                  `json:"pageSize" validate:"min=0,max=200"`
}

// SearchResponse is the page outcome returned to the client.
type SearchResponse struct {
	Matched   []models.MatchResult `json:"matched"`
	Unmatched []models.MatchResult `json:"unmatched"`
	Page      int                  `json:"page"`
	PageSize  int                  `json:"pageSize"`
	Total     int                  `json:"total"`
	HasMore   bool                 `json:"hasMore"`
}

// MoveRequest moves one result of a client-held board.
type MoveRequest struct {
	Board    matcher.Snapshot `json:"board"`
	TrackKey string           `json:"trackKey" validate:"required"`
	Target   string           `json:"target" validate:"required,oneof=matched review needs_review"`
}

// MoveResponse carries the updated board.
type MoveResponse struct {
	Board  matcher.Snapshot   `json:"board"`
	Result models.MatchResult `json:"result"`
	Stats  matcher.Stats      `json:"stats"`
}

// APIHandler serves the JSON endpoints under /api.
type APIHandler struct {
	parser   *parser.Parser
	driver   *tasks.Driver
	pageSize int
	validate *validator.Validate
	logger   *log.Logger
}

// NewAPIHandler creates an [APIHandler]. pageSize is used when a request omits one.
func NewAPIHandler(p *parser.Parser, d *tasks.Driver, pageSize int, logger *log.Logger) *APIHandler {
	if pageSize < 1 {
		pageSize = tasks.DefaultPageSize
	}
	return &APIHandler{
		parser:   p,
		driver:   d,
		pageSize: pageSize,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *APIHandler) Routes() []string {
	return []string{"/api/parse", "/api/search", "/api/move"}
}

func (h *APIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	switch r.URL.Path {
	case "/api/parse":
		h.parse(w, r)
	case "/api/search":
		h.search(w, r)
	case "/api/move":
		h.move(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *APIHandler) parse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, parser.MaxUploadSize)

	res, err := h.parser.ParseUpload(r)
	if err != nil {
		var perr *parser.ParseError
		switch {
		case errors.As(err, &perr):
			writeErrorDetail(w, http.StatusUnprocessableEntity, "Invalid export", perr)
		case errors.Is(err, shared.ErrMissingArgument):
			writeError(w, http.StatusBadRequest, "Missing file")
		default:
			writeErrorDetail(w, http.StatusBadRequest, "Invalid upload", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *APIHandler) search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !h.decode(w, r, &req) {
		return
	}

	cursor := models.PageCursor{PageNumber: req.Page, PageSize: req.PageSize}
	if cursor.PageNumber == 0 {
		cursor.PageNumber = 1
	}
	if cursor.PageSize == 0 {
		cursor.PageSize = h.pageSize
	}

	page, err := h.driver.RunPage(r.Context(), req.Tracks, cursor, bearerToken(r), nil)
	if err != nil {
		h.logger.Warn("search aborted", "page", cursor.PageNumber, "error", err)
		writeErrorDetail(w, http.StatusServiceUnavailable, "Search aborted", err)
		return
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		Matched:   page.Matched,
		Unmatched: page.Unmatched,
		Page:      cursor.PageNumber,
		PageSize:  cursor.PageSize,
		Total:     page.Total,
		HasMore:   page.HasMore,
	})
}

func (h *APIHandler) move(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if !h.decode(w, r, &req) {
		return
	}

	board, err := matcher.FromSnapshot(req.Board)
	if err != nil {
		writeErrorDetail(w, http.StatusBadRequest, "Invalid board", err)
		return
	}
	bucket, err := matcher.ParseBucket(req.Target)
	if err != nil {
		writeErrorDetail(w, http.StatusBadRequest, "Invalid target", err)
		return
	}

	result, err := board.Move(req.TrackKey, bucket)
	if err != nil {
		if errors.Is(err, shared.ErrTrackNotFound) {
			writeErrorDetail(w, http.StatusNotFound, "Track not found", err)
			return
		}
		writeErrorDetail(w, http.StatusBadRequest, "Move failed", err)
		return
	}

	writeJSON(w, http.StatusOK, MoveResponse{Board: board.Snapshot(), Result: result, Stats: board.Stats()})
}

// decode reads a JSON body into v and validates it, writing the error response on failure.
func (h *APIHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		writeErrorDetail(w, http.StatusBadRequest, "Invalid JSON body", err)
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		writeErrorDetail(w, http.StatusBadRequest, "Invalid request", validationError(err))
		return false
	}
	return true
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", shared.ErrInvalidArgument, strings.Join(fields, ", "))
}

func bearerToken(r *http.Request) string {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// Health reports liveness.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
