package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/shazcloud/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgProgressUpdate MsgKind = iota
	MsgPageLoaded
	MsgExported
)

type pageLoaded struct {
	page *tasks.PageResult
	err  error
}

type exported struct {
	result *tasks.ExportResult
	err    error
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// pageLoadedMsg is the constructor for [MsgPageLoaded]
func pageLoadedMsg(page *tasks.PageResult, err error) Msg {
	return Msg{kind: MsgPageLoaded, data: pageLoaded{page, err}}
}

// exportedMsg is the constructor for [MsgExported]
func exportedMsg(result *tasks.ExportResult, err error) Msg {
	return Msg{kind: MsgExported, data: exported{result, err}}
}
