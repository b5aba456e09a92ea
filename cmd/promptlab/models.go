package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ilkoid/promptlab/pkg/models"
)

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List configured models (* marks the selected one)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, cleanup, err := openState()
			if err != nil {
				return err
			}
			defer cleanup()

			selected := state.Library.SelectedLLM()
			w := cmd.OutOrStdout()

			for _, group := range []string{models.GroupChat, models.GroupReasoning, ""} {
				for _, opt := range state.Registry.Options() {
					if !inGroup(opt, group) {
						continue
					}
					_, def, err := state.Registry.Get(opt.ID)
					if err != nil {
						return err
					}
					marker := " "
					if opt.ID == selected {
						marker = "*"
					}
					fmt.Fprintf(w, "%s %-20s %-24s %-10s %s\n", marker, opt.ID, opt.Name, opt.Group, def.Provider)
				}
			}
			return nil
		},
	}
}

// inGroup - пустая group собирает модели вне известных групп.
func inGroup(opt models.LLMOption, group string) bool {
	if group != "" {
		return opt.Group == group
	}
	return opt.Group != models.GroupChat && opt.Group != models.GroupReasoning
}
