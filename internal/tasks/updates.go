package tasks

import (
	"fmt"

	"github.com/desertthunder/shazcloud/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	SearchTracks Phase = iota
	ClassifyTracks
	MergePage
	ExportPhase
)

func (p Phase) String() string {
	switch p {
	case SearchTracks:
		return "search_tracks"
	case ClassifyTracks:
		return "classify_tracks"
	case MergePage:
		return "merge_page"
	case ExportPhase:
		return "export_board"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func searchTrackUpdate(step, total int, tr models.SourceTrack) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, tr.Artist, tr.Title),
	}
}

func classifiedUpdate(step, total int, r models.MatchResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ClassifyTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s: %s", step, total, r.Source.Title, r.Status),
		Data:    r,
	}
}

func pageMergedUpdate(page *PageResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MergePage,
		Step:    page.Cursor.PageNumber,
		Total:   page.Pages(),
		Message: fmt.Sprintf("Page %d: %d matched, %d to review", page.Cursor.PageNumber, len(page.Matched), len(page.Unmatched)),
		Data:    page,
	}
}

func exportedUpdate(step, total int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPhase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, path),
	}
}

func exportFailedUpdate(step, total int, format string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPhase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, format, err),
	}
}
