package ui

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/shazcloud/internal/formatter"
	"github.com/desertthunder/shazcloud/internal/matcher"
	"github.com/desertthunder/shazcloud/internal/models"
	"github.com/desertthunder/shazcloud/internal/tasks"
	shtest "github.com/desertthunder/shazcloud/internal/testing"
)

func newTestModel(t *testing.T, n int) *Model {
	t.Helper()
	tracks := shtest.Tracks(n)
	searcher := shtest.NewMockSearcher()
	for i, tr := range tracks {
		if i%2 == 0 {
			searcher.Results[tr.TrackKey] = []models.CandidateTrack{shtest.ExactCandidate(tr)}
		} else {
			searcher.Results[tr.TrackKey] = []models.CandidateTrack{{Title: "Nope", Artist: "Nobody", URL: "u"}}
		}
	}

	session := tasks.NewSession(tasks.NewDriver(searcher, nil, nil), tracks, 2, &models.AuthSession{AccessToken: "tok"})
	m := NewModel(context.Background(), session, Options{
		Source:    "shazamlibrary.csv",
		OutputDir: filepath.Join(t.TempDir(), "out"),
		Formats:   []formatter.Format{formatter.JSON, formatter.CSV},
	})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

// drain runs cmd and feeds the page's messages back into m until the page has loaded.
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	for range 100 {
		msg, ok := cmd().(Msg)
		if !ok {
			t.Fatalf("unexpected message %T", msg)
		}
		_, next := m.Update(msg)
		if msg.kind == MsgPageLoaded {
			return
		}
		cmd = next
	}
	t.Fatal("page never finished")
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestModelPaging(t *testing.T) {
	m := newTestModel(t, 3)
	if m.Init() == nil {
		t.Fatal("expected Init to start the first page")
	}
	if m.view != SearchView {
		t.Fatalf("expected search view, got %v", m.view)
	}
	drain(t, m, m.waitForPage())

	t.Run("first page fills both lists", func(t *testing.T) {
		if m.view != BoardView {
			t.Errorf("expected board view, got %v", m.view)
		}
		if len(m.matchedList.Items()) != 1 || len(m.reviewList.Items()) != 1 {
			t.Errorf("expected 1 matched and 1 review, got %d and %d", len(m.matchedList.Items()), len(m.reviewList.Items()))
		}
		if m.session.Cursor.PageNumber != 2 {
			t.Errorf("cursor should advance to page 2, got %d", m.session.Cursor.PageNumber)
		}
		if !strings.Contains(m.status, "Page 1/2") {
			t.Errorf("unexpected status %q", m.status)
		}
	})

	t.Run("next page", func(t *testing.T) {
		_, cmd := m.Update(keyPress("n"))
		if m.view != SearchView || cmd == nil {
			t.Fatal("expected next key to start a page")
		}
		drain(t, m, m.waitForPage())

		if m.session.Board.Len() != 3 || m.session.HasMore() {
			t.Errorf("expected all 3 tracks on the board, got %d (more=%v)", m.session.Board.Len(), m.session.HasMore())
		}
	})

	t.Run("no more pages", func(t *testing.T) {
		m.Update(keyPress("n"))
		if m.view != BoardView || m.status != "No more pages" {
			t.Errorf("expected no-op with status, got view %v status %q", m.view, m.status)
		}
	})
}

func TestModelMoves(t *testing.T) {
	m := newTestModel(t, 2)
	m.Init()
	drain(t, m, m.waitForPage())

	if m.focus != matcher.ReviewBucket {
		t.Fatal("review list should start focused")
	}

	m.Update(keyPress("m"))
	if got := m.session.Board.Stats(); got.Matched != 2 || got.NeedsReview != 0 {
		t.Errorf("expected both matched after move, got %+v", got)
	}
	r, bucket, _ := m.session.Board.Get("k2")
	if bucket != matcher.MatchedBucket || r.MatchedTrack == nil || r.MatchedTrack.Title != "Nope" {
		t.Errorf("expected k2 forced to its first candidate, got %+v", r)
	}

	m.Update(keyPress("tab"))
	if m.focus != matcher.MatchedBucket {
		t.Fatal("tab should focus the matched list")
	}

	m.Update(keyPress("enter"))
	if m.view != DetailView {
		t.Fatalf("expected detail view, got %v", m.view)
	}
	view := m.View()
	if !strings.Contains(view, "Artist 1 - Song 1") || !strings.Contains(view, "Matched") {
		t.Errorf("detail view missing track details:\n%s", view)
	}

	m.Update(keyPress("m"))
	if m.detail.Status != models.StatusNeedsReview {
		t.Errorf("detail should follow the moved result, got %s", m.detail.Status)
	}

	m.Update(keyPress("esc"))
	if m.view != BoardView {
		t.Errorf("esc should return to the board, got %v", m.view)
	}
	if !strings.Contains(m.View(), "1 to review") {
		t.Errorf("board summary not updated:\n%s", m.View())
	}
}

func TestModelExport(t *testing.T) {
	m := newTestModel(t, 2)
	m.Init()
	drain(t, m, m.waitForPage())

	_, cmd := m.Update(keyPress("e"))
	if cmd == nil {
		t.Fatal("expected export command")
	}
	m.Update(cmd())

	if m.err != nil {
		t.Fatalf("export failed: %v", m.err)
	}
	if !strings.HasPrefix(m.status, "Exported 2 files") {
		t.Errorf("unexpected status %q", m.status)
	}
	for _, name := range []string{"board.json", "board.csv", "export_manifest.json"} {
		if _, err := os.Stat(filepath.Join(m.opts.OutputDir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
}

func TestModelExportWhileMoving(t *testing.T) {
	m := newTestModel(t, 2)
	m.Init()
	drain(t, m, m.waitForPage())

	_, cmd := m.Update(keyPress("e"))
	if cmd == nil {
		t.Fatal("expected export command")
	}

	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	for range 100 {
		m.Update(keyPress("m"))
		m.Update(keyPress("tab"))
	}

	m.Update(<-done)
	if m.err != nil {
		t.Fatalf("export failed: %v", m.err)
	}
	if !strings.HasPrefix(m.status, "Exported 2 files") {
		t.Errorf("unexpected status %q", m.status)
	}

	var written formatter.BoardExport
	if err := json.Unmarshal([]byte(shtest.MustReadFile(t, filepath.Join(m.opts.OutputDir, "board.json"))), &written); err != nil {
		t.Fatalf("invalid export: %v", err)
	}
	if written.Stats.Total != 2 || written.Stats.Matched != 1 {
		t.Errorf("expected the board as it was when the export started, got %+v", written.Stats)
	}
}

func TestModelEmptySession(t *testing.T) {
	m := newTestModel(t, 0)
	if cmd := m.Init(); cmd != nil {
		t.Error("empty session should not start a page")
	}
	if m.view != BoardView {
		t.Errorf("expected board view, got %v", m.view)
	}

	_, cmd := m.Update(keyPress("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}
