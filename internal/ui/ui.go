package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/shazcloud/internal/formatter"
	"github.com/desertthunder/shazcloud/internal/matcher"
	"github.com/desertthunder/shazcloud/internal/models"
	"github.com/desertthunder/shazcloud/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SearchView ViewState = iota
	BoardView
	DetailView
)

// Options configures exports started from the TUI.
type Options struct {
	Source    string
	OutputDir string
	Formats   []formatter.Format
	Logger    *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	session      *tasks.Session
	opts         Options
	logger       *log.Logger
	width        int
	height       int
	matchedList  list.Model
	reviewList   list.Model
	focus        matcher.Bucket
	detail       models.MatchResult
	spinner      spinner.Model
	progressChan chan tasks.ProgressUpdate
	doneChan     chan Msg
	progress     tasks.ProgressUpdate
	status       string
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a TUI over session. Pages are loaded on demand through [tasks.Session.NextPage].
func NewModel(ctx context.Context, session *tasks.Session, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.title.UnsetMarginBottom()

	m := &Model{
		ctx:         ctx,
		view:        BoardView,
		session:     session,
		opts:        opts,
		logger:      logger,
		matchedList: newResultList("Matched"),
		reviewList:  newResultList("Needs review"),
		focus:       matcher.ReviewBucket,
		spinner:     sp,
		help:        help.New(),
		keys:        newKeyMap(),
	}
	m.refreshLists()
	return m
}

func newResultList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	return l
}

// Init starts the first page when the session has one.
func (m *Model) Init() tea.Cmd {
	if !m.session.HasMore() {
		return nil
	}
	m.view = SearchView
	return tea.Batch(m.spinner.Tick, m.startPage())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		if m.view != SearchView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.view {
		case SearchView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		case BoardView:
			return m.handleBoardKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateList(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForPage()

	case MsgPageLoaded:
		data := msg.data.(pageLoaded)
		m.view = BoardView
		m.progressChan = nil
		m.doneChan = nil
		m.refreshLists()
		if data.err != nil {
			m.err = data.err
			m.logger.Error("page failed", "page", m.session.Cursor.PageNumber, "error", data.err)
			return m, nil
		}
		m.err = nil
		m.status = fmt.Sprintf("Page %d/%d: %d matched, %d to review",
			data.page.Cursor.PageNumber, data.page.Pages(), len(data.page.Matched), len(data.page.Unmatched))
		return m, nil

	case MsgExported:
		data := msg.data.(exported)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.status = fmt.Sprintf("Exported %d files to %s", len(data.result.Files)-data.result.Failed, data.result.OutputDirectory)
		if data.result.Failed > 0 {
			m.status += fmt.Sprintf(" (%d failed)", data.result.Failed)
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleBoardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.current().FilterState() == list.Filtering {
		return m.updateList(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.swap):
		m.focus = other(m.focus)
		return m, nil
	case key.Matches(msg, m.keys.move):
		m.moveSelected()
		return m, nil
	case key.Matches(msg, m.keys.detail):
		if item, ok := m.current().SelectedItem().(resultItem); ok {
			m.detail = item.result
			m.view = DetailView
		}
		return m, nil
	case key.Matches(msg, m.keys.next):
		if !m.session.HasMore() {
			m.status = "No more pages"
			return m, nil
		}
		m.view = SearchView
		m.err = nil
		return m, tea.Batch(m.spinner.Tick, m.startPage())
	case key.Matches(msg, m.keys.export):
		m.status = "Exporting..."
		return m, m.exportBoard()
	}

	return m.updateList(msg)
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = BoardView
	case key.Matches(msg, m.keys.move):
		m.moveSelected()
		if r, _, ok := m.session.Board.Get(m.detail.Key()); ok {
			m.detail = r
		}
	}
	return m, nil
}

// moveSelected moves the focused list's selection to the other bucket.
func (m *Model) moveSelected() {
	item, ok := m.current().SelectedItem().(resultItem)
	if !ok {
		return
	}

	to := other(m.focus)
	r, err := m.session.Board.Move(item.result.Key(), to)
	if err != nil {
		m.err = err
		return
	}
	m.logger.Info("moved result", "track", r.Key(), "to", to, "status", r.Status)
	m.status = fmt.Sprintf("Moved %s - %s to %s", r.Source.Artist, r.Source.Title, to)
	m.refreshLists()
}

func (m *Model) current() *list.Model {
	if m.focus == matcher.MatchedBucket {
		return &m.matchedList
	}
	return &m.reviewList
}

func other(b matcher.Bucket) matcher.Bucket {
	if b == matcher.MatchedBucket {
		return matcher.ReviewBucket
	}
	return matcher.MatchedBucket
}

func (m *Model) refreshLists() {
	setItems(&m.matchedList, m.session.Board.Matched())
	setItems(&m.reviewList, m.session.Board.Review())
}

func setItems(l *list.Model, results []models.MatchResult) {
	l.SetItems(resultItems(results))
	if n := len(results); n > 0 && l.Index() >= n {
		l.Select(n - 1)
	}
}

func (m *Model) resize() {
	w := max((m.width-6)/2, 20)
	h := max(m.height-8, 5)
	m.matchedList.SetSize(w, h)
	m.reviewList.SetSize(w, h)
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.view != BoardView {
		return m, nil
	}
	var cmd tea.Cmd
	if m.focus == matcher.MatchedBucket {
		m.matchedList, cmd = m.matchedList.Update(msg)
	} else {
		m.reviewList, cmd = m.reviewList.Update(msg)
	}
	return m, cmd
}

// startPage runs the session's next page in the background.
//
// The session is only touched by that goroutine until [MsgPageLoaded] arrives.
func (m *Model) startPage() tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan Msg, 1)
	m.progressChan = progress
	m.doneChan = done

	go func() {
		page, err := m.session.NextPage(m.ctx, progress)
		done <- pageLoadedMsg(page, err)
	}()

	return m.waitForPage()
}

func (m *Model) waitForPage() tea.Cmd {
	progress, done := m.progressChan, m.doneChan
	return func() tea.Msg {
		if done == nil {
			return nil
		}
		select {
		case update := <-progress:
			return progressUpdateMsg(update)
		case msg := <-done:
			return msg
		}
	}
}

// exportBoard snapshots the board before returning, so moves made while files are
// written do not touch what the command reads.
func (m *Model) exportBoard() tea.Cmd {
	ctx := m.ctx
	export := formatter.NewBoardExport(m.opts.Source, m.session.Board)
	opts := tasks.ExportOpts{Formats: m.opts.Formats, OutputDir: m.opts.OutputDir}
	return func() tea.Msg {
		result, err := tasks.ExportBoard(ctx, nil, export, opts)
		return exportedMsg(result, err)
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case SearchView:
		return m.renderSearch()
	case BoardView:
		return m.renderBoard()
	case DetailView:
		return m.renderDetail()
	default:
		return ""
	}
}

func (m *Model) renderSearch() string {
	title := styles.title.Render("Searching SoundCloud")
	pages := (len(m.session.Tracks) + m.session.Cursor.PageSize - 1) / m.session.Cursor.PageSize
	header := fmt.Sprintf("%s Page %d/%d", m.spinner.View(), m.session.Cursor.PageNumber, pages)
	return fmt.Sprintf("%s\n%s\n%s\n\n%s", title, header, m.progress.Message,
		m.help.ShortHelpView([]key.Binding{m.keys.quit}))
}

func (m *Model) renderBoard() string {
	stats := m.session.Board.Stats()
	title := styles.title.Render(fmt.Sprintf("Review %s", m.opts.Source))
	summary := fmt.Sprintf("%s  %s  %s  %s",
		styles.ok.Render(fmt.Sprintf("%d matched", stats.Matched)),
		styles.warn.Render(fmt.Sprintf("%d to review", stats.NeedsReview)),
		styles.err.Render(fmt.Sprintf("%d no match", stats.NoMatch)),
		styles.help.Render(fmt.Sprintf("%d/%d searched", stats.Total, len(m.session.Tracks))),
	)

	left, right := styles.pane, styles.pane
	if m.focus == matcher.MatchedBucket {
		left = styles.active
	} else {
		right = styles.active
	}
	m.matchedList.Title = fmt.Sprintf("Matched (%d)", len(m.matchedList.Items()))
	m.reviewList.Title = fmt.Sprintf("Needs review (%d)", len(m.reviewList.Items()))
	columns := lipgloss.JoinHorizontal(lipgloss.Top,
		left.Render(m.matchedList.View()),
		right.Render(m.reviewList.View()),
	)

	status := styles.help.Render(m.status)
	if m.err != nil {
		status = styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	}

	keys := []key.Binding{m.keys.swap, m.keys.move, m.keys.detail, m.keys.export, m.keys.quit}
	if m.session.HasMore() {
		keys = append([]key.Binding{m.keys.next}, keys...)
	}
	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s", title, summary, columns, status, m.help.ShortHelpView(keys))
}

func (m *Model) renderDetail() string {
	r := m.detail
	var b strings.Builder
	b.WriteString(styles.title.Render(fmt.Sprintf("%s - %s", r.Source.Artist, r.Source.Title)))
	fmt.Fprintf(&b, "\nTagged:  %s\nShazam:  %s\nKey:     %s\nStatus:  %s\n", r.Source.TagTime, r.Source.SourceURL, r.Source.TrackKey, r.Status)

	if r.MatchedTrack != nil {
		fmt.Fprintf(&b, "\n%s\n  %s • %s\n  %s\n", styles.ok.Render("Matched"), r.MatchedTrack.Title, r.MatchedTrack.Artist, r.MatchedTrack.URL)
	}
	if len(r.Candidates) > 0 {
		fmt.Fprintf(&b, "\n%s\n", styles.warn.Render("Candidates"))
		for i, c := range r.Candidates {
			fmt.Fprintf(&b, "  %d. %s • %s\n     %s\n", i+1, c.Title, c.Artist, c.URL)
		}
	} else if r.MatchedTrack == nil {
		fmt.Fprintf(&b, "\n%s\n", styles.err.Render("No candidates found"))
	}

	b.WriteString("\n" + m.help.ShortHelpView([]key.Binding{m.keys.move, m.keys.back, m.keys.quit}))
	return b.String()
}
