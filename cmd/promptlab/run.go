package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ilkoid/promptlab/internal/app"
	"github.com/ilkoid/promptlab/pkg/models"
	"github.com/ilkoid/promptlab/pkg/prompt"
	"github.com/ilkoid/promptlab/pkg/utils"
)

func newRunCmd() *cobra.Command {
	var (
		model   string
		sets    []string
		copyOut bool
	)

	cmd := &cobra.Command{
		Use:   "run [id]",
		Short: "Interpolate variables and run a prompt (default: active)",
		Long: `Run selects the prompt, substitutes its variables and sends it to the
selected model. The run is saved to history. With JSON output enabled
the answer is pretty-printed, or shown as is with the parse error.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, cleanup, err := openState()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			defer utils.SetupGracefulShutdown(cancel)()

			// 1. Промпт и модель
			if id := promptRef(args); id != "" {
				if err := state.Library.Select(id); err != nil {
					return err
				}
			}
			if model != "" {
				if err := state.Library.SetModel(model); err != nil {
					return err
				}
			}

			// 2. Значения переменных из --set сохраняются в промпт
			if len(sets) > 0 {
				id := state.Library.ActiveID()
				if id == "" {
					return errNoActive
				}
				if err := applySets(state, id, sets); err != nil {
					return err
				}
			}

			// 3. Запуск
			res, err := state.Runner.Run(ctx)
			if err != nil {
				if errors.Is(err, app.ErrNoActivePrompt) {
					return errNoActive
				}
				return err
			}

			if res.HistoryErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: run not saved to history: %v\n", res.HistoryErr)
			}
			if res.Display.IsError() {
				fmt.Fprintln(cmd.ErrOrStderr(), res.Display.Message)
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Display.Text())

			if copyOut {
				if err := state.CopyText(res.Display.Text()); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "Model id (saved as the prompt's model)")
	cmd.Flags().StringArrayVarP(&sets, "set", "s", nil, "Set variable value: name=value (repeatable)")
	cmd.Flags().BoolVar(&copyOut, "copy", false, "Copy the output to the clipboard")

	return cmd
}

// parseSet разбирает name=value. Имя очищается так же, как в редакторе переменных.
func parseSet(s string) (string, string, error) {
	name, value, ok := strings.Cut(s, "=")
	name = prompt.SanitizeName(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("invalid --set %q, expected name=value", s)
	}
	return name, value, nil
}

// applySets записывает значения; переменная без строки в промпте добавляется.
// Промпт перечитывается на каждом шаге, поэтому повтор имени не создаёт дубликат.
func applySets(state *app.AppState, promptID string, sets []string) error {
	for _, s := range sets {
		name, value, err := parseSet(s)
		if err != nil {
			return err
		}

		p, err := state.Library.Get(promptID)
		if err != nil {
			return err
		}

		idx := variableByName(p, name)
		if idx < 0 {
			if idx, err = state.Library.AddVariable(promptID); err != nil {
				return err
			}
			if err := state.Library.SetVariableName(promptID, idx, name); err != nil {
				return err
			}
		}
		if err := state.Library.SetVariableValue(promptID, idx, value); err != nil {
			return err
		}
	}
	return nil
}

// variableByName возвращает индекс первой переменной с именем name или -1.
func variableByName(p models.Prompt, name string) int {
	for i, v := range p.Variables {
		if strings.TrimSpace(v.Name) == name {
			return i
		}
	}
	return -1
}

// overrideVariables возвращает переменные с подменёнными значениями, не трогая библиотеку.
// Неизвестные имена добавляются в конец.
func overrideVariables(vars []prompt.Variable, sets []string) ([]prompt.Variable, error) {
	out := append([]prompt.Variable(nil), vars...)
	for _, s := range sets {
		name, value, err := parseSet(s)
		if err != nil {
			return nil, err
		}

		found := false
		for i := range out {
			if out[i].Name == name {
				out[i].Value = value
				found = true
				break
			}
		}
		if !found {
			out = append(out, prompt.Variable{Name: name, Value: value})
		}
	}
	return out, nil
}
