package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ilkoid/promptlab/internal/server"
	"github.com/ilkoid/promptlab/pkg/utils"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API (POST /api/runPrompt and library endpoints)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, cleanup, err := openState()
			if err != nil {
				return err
			}
			defer cleanup()

			if addr == "" {
				addr = state.Config.Server.Addr
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			defer utils.SetupGracefulShutdown(cancel)()

			cmd.Printf("Listening on %s\n", addr)
			return server.New(state).Start(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: server.addr from config)")

	return cmd
}
