package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ilkoid/promptlab/pkg/prompt"
	"github.com/ilkoid/promptlab/pkg/prompts"
	"github.com/ilkoid/promptlab/pkg/utils"
)

func newRenderCmd() *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   "render [id]",
		Short: "Print the interpolated prompt without calling a model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			defer utils.Close()

			lib, err := prompts.NewLibrary(prompts.NewFileStore(cfg.Storage.PromptsFile), nil)
			if err != nil {
				return err
			}
			p, err := lib.Get(promptRef(args))
			if err != nil {
				return err
			}

			vars, err := overrideVariables(p.Variables, sets)
			if err != nil {
				return err
			}

			rendered := prompt.Interpolate(p.Content, vars)
			fmt.Fprintln(cmd.OutOrStdout(), rendered)

			if missing := prompt.Placeholders(rendered); len(missing) > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "Unresolved placeholders: %s\n", strings.Join(missing, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&sets, "set", "s", nil, "Override variable value: name=value (not saved)")

	return cmd
}
