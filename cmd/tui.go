package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/shazcloud/internal/shared"
	"github.com/desertthunder/shazcloud/internal/ui"
	"github.com/urfave/cli/v3"
)

// Review launches the interactive board for an export.
func (r *Runner) Review(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, logFile, err := shared.NewFileLogger(cmd.String("log"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer logFile.Close()
	r.SetLogger(fileLogger)

	s, source, err := r.session(cmd)
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, s, ui.Options{
		Source:    source,
		OutputDir: cmd.String("output"),
		Logger:    fileLogger.WithPrefix("ui"),
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
