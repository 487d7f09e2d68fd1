package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/ytradio/internal/shared"
	"github.com/desertthunder/ytradio/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive related-songs explorer.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/ytradio-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	var source ui.Source = &ui.LocalSource{Discovery: r.discovery}
	if cmd.Bool("remote") {
		source = &ui.RemoteSource{API: r.api, Username: cmd.String("username")}
	}

	model := ui.NewModel(ctx, source)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
