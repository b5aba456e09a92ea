package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ilkoid/promptlab/pkg/models"
)

func newVarsCmd() *cobra.Command {
	var promptID string

	cmd := &cobra.Command{
		Use:   "vars",
		Short: "Manage variables of a prompt (numbers start at 1)",
	}
	cmd.PersistentFlags().StringVarP(&promptID, "prompt", "p", "", "Prompt id (default: active)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List variables with usage annotations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				state, cleanup, err := openState()
				if err != nil {
					return err
				}
				defer cleanup()

				p, err := state.Library.Get(promptID)
				if err != nil {
					return err
				}
				printVariables(cmd.OutOrStdout(), p)
				return nil
			},
		},
		&cobra.Command{
			Use:   "add <name> [value]",
			Short: "Add a variable",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				state, cleanup, err := openState()
				if err != nil {
					return err
				}
				defer cleanup()

				idx, err := state.Library.AddVariable(promptID)
				if err != nil {
					return err
				}
				if err := state.Library.SetVariableName(promptID, idx, args[0]); err != nil {
					return err
				}
				if len(args) > 1 {
					return state.Library.SetVariableValue(promptID, idx, strings.Join(args[1:], " "))
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <n|name> <value>",
			Short: "Set a variable value by number or name",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				state, cleanup, err := openState()
				if err != nil {
					return err
				}
				defer cleanup()

				p, err := state.Library.Get(promptID)
				if err != nil {
					return err
				}
				idx, err := variableIndex(p, args[0])
				if err != nil {
					return err
				}
				return state.Library.SetVariableValue(p.ID, idx, strings.Join(args[1:], " "))
			},
		},
		&cobra.Command{
			Use:   "rm <n|name>",
			Short: "Remove a variable",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				state, cleanup, err := openState()
				if err != nil {
					return err
				}
				defer cleanup()

				p, err := state.Library.Get(promptID)
				if err != nil {
					return err
				}
				idx, err := variableIndex(p, args[0])
				if err != nil {
					return err
				}
				return state.Library.RemoveVariable(p.ID, idx)
			},
		},
		&cobra.Command{
			Use:   "sync",
			Short: "Add variables for placeholders that have none",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				state, cleanup, err := openState()
				if err != nil {
					return err
				}
				defer cleanup()

				added, err := state.Library.SyncVariables(promptID)
				if err != nil {
					return err
				}
				if len(added) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Variables are in sync.")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added: %s\n", strings.Join(added, ", "))
				return nil
			},
		},
	)

	return cmd
}

// variableIndex ищет переменную по имени (первое совпадение), затем по номеру (с 1).
// Имя проверяется первым: "2" - допустимое имя переменной.
func variableIndex(p models.Prompt, ref string) (int, error) {
	if i := variableByName(p, ref); i >= 0 {
		return i, nil
	}
	if n, err := strconv.Atoi(ref); err == nil {
		return n - 1, nil
	}
	return 0, fmt.Errorf("variable %q not found in prompt %s", ref, p.ID)
}

// printVariables печатает переменные с аннотациями редактора.
func printVariables(w io.Writer, p models.Prompt) {
	if len(p.Variables) == 0 {
		fmt.Fprintln(w, "(no variables)")
		return
	}

	for i, st := range p.Annotate() {
		var notes []string
		if st.IsEmpty {
			notes = append(notes, "required")
		}
		if st.IsDuplicate {
			notes = append(notes, "duplicate")
		}
		if label := st.Label(); label != "" {
			notes = append(notes, label)
		}
		fmt.Fprintf(w, "%2d. %-20s = %-30q %s\n", i+1, p.Variables[i].Name, p.Variables[i].Value, strings.Join(notes, ", "))
	}
}
