// Package ui implements the interactive review board using bubbletea's Elm architecture.
//
// The TUI walks an import page by page:
//  1. [SearchView] : Runs the next page of searches, showing per-track progress
//  2. [BoardView] : Matched and needs-review lists side by side; results move between them
//  3. [DetailView] : Source track, matched track, and review candidates of one result
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from [tasks.Session.NextPage], providing non-blocking status reporting during searches.
//
// Keyboard navigation uses vim-style bindings (j/k, tab, m, n, e, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
