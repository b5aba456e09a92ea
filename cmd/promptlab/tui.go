package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ilkoid/promptlab/internal/ui"
	"github.com/ilkoid/promptlab/pkg/utils"
)

func newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive prompt editor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, cleanup, err := openState()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			defer utils.SetupGracefulShutdown(cancel)()

			utils.Info("TUI started", "prompts", len(state.Library.Prompts()))

			p := tea.NewProgram(ui.InitialModel(ctx, state), tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil {
				utils.Error("TUI failed", "error", err)
				return fmt.Errorf("tui: %w", err)
			}
			return nil
		},
	}
}
