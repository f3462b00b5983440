package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/shazcloud/internal/models"
)

var (
	_ list.Item = resultItem{}
)

// resultItem wraps [models.MatchResult] to implement [list.Item].
type resultItem struct {
	result models.MatchResult
}

func (i resultItem) FilterValue() string {
	return i.result.Source.Artist + " " + i.result.Source.Title
}

func (i resultItem) Title() string {
	return fmt.Sprintf("%s - %s", i.result.Source.Artist, i.result.Source.Title)
}

func (i resultItem) Description() string {
	switch {
	case i.result.MatchedTrack != nil:
		return fmt.Sprintf("✓ %s • %s", i.result.MatchedTrack.Title, i.result.MatchedTrack.Artist)
	case len(i.result.Candidates) > 0:
		return fmt.Sprintf("%s • %d candidates", i.result.Status, len(i.result.Candidates))
	default:
		return string(i.result.Status)
	}
}

func resultItems(results []models.MatchResult) []list.Item {
	items := make([]list.Item, len(results))
	for i, r := range results {
		items[i] = resultItem{result: r}
	}
	return items
}
