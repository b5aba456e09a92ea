package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ilkoid/promptlab/pkg/models"
)

func newPromptsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "Manage the prompt library",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List prompts (* marks the active one)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				state, cleanup, err := openState()
				if err != nil {
					return err
				}
				defer cleanup()

				printPromptList(cmd.OutOrStdout(), state.Library.Prompts(), state.Library.ActiveID())
				return nil
			},
		},
		&cobra.Command{
			Use:   "show [id]",
			Short: "Show a prompt (default: active)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				state, cleanup, err := openState()
				if err != nil {
					return err
				}
				defer cleanup()

				p, err := state.Library.Get(promptRef(args))
				if err != nil {
					return err
				}
				printPrompt(cmd.OutOrStdout(), p)
				return nil
			},
		},
		newPromptsAddCmd(),
		&cobra.Command{
			Use:   "rename <id> <name>",
			Short: "Rename a prompt",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				state, cleanup, err := openState()
				if err != nil {
					return err
				}
				defer cleanup()

				return state.Library.Rename(args[0], strings.Join(args[1:], " "))
			},
		},
		&cobra.Command{
			Use:   "delete [id]",
			Short: "Delete a prompt (default: active)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				state, cleanup, err := openState()
				if err != nil {
					return err
				}
				defer cleanup()

				if err := state.Library.Delete(promptRef(args)); err != nil {
					return err
				}
				active := state.Library.ActiveID()
				if active == "" {
					active = "none"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted. Active prompt: %s\n", active)
				return nil
			},
		},
		&cobra.Command{
			Use:   "select <id>",
			Short: "Make a prompt active",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				state, cleanup, err := openState()
				if err != nil {
					return err
				}
				defer cleanup()

				return state.Library.Select(args[0])
			},
		},
		&cobra.Command{
			Use:   "copy [id]",
			Short: "Copy prompt content to the clipboard (default: active)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				state, cleanup, err := openState()
				if err != nil {
					return err
				}
				defer cleanup()

				if err := state.CopyPrompt(promptRef(args)); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Copied to clipboard.")
				return nil
			},
		},
		&cobra.Command{
			Use:   "find <pattern>",
			Short: "Fuzzy search prompts by name",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				state, cleanup, err := openState()
				if err != nil {
					return err
				}
				defer cleanup()

				printPromptList(cmd.OutOrStdout(), state.Library.Find(strings.Join(args, " ")), state.Library.ActiveID())
				return nil
			},
		},
		&cobra.Command{
			Use:   "json [id]",
			Short: "Toggle JSON output for a prompt",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				state, cleanup, err := openState()
				if err != nil {
					return err
				}
				defer cleanup()

				on, err := state.Library.ToggleJSON(promptRef(args))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "JSON output: %s\n", yesNo(on))
				return nil
			},
		},
		newPromptsEditCmd(),
		newPromptsInstructionsCmd(),
		&cobra.Command{
			Use:   "model <model-id>",
			Short: "Select the model for the active prompt",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				state, cleanup, err := openState()
				if err != nil {
					return err
				}
				defer cleanup()

				return state.Library.SetModel(args[0])
			},
		},
	)

	return cmd
}

func newPromptsAddCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a prompt and make it active",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, cleanup, err := openState()
			if err != nil {
				return err
			}
			defer cleanup()

			p, err := state.Library.Add()
			if err != nil {
				return err
			}
			if name != "" {
				if err := state.Library.Rename(p.ID, name); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), p.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Prompt name")

	return cmd
}

func newPromptsEditCmd() *cobra.Command {
	var text, file, description string

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Replace prompt content (from --text, --file or stdin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, cleanup, err := openState()
			if err != nil {
				return err
			}
			defer cleanup()

			id := promptRef(args)
			if cmd.Flags().Changed("description") {
				if err := state.Library.SetDescription(id, description); err != nil {
					return err
				}
				if text == "" && file == "" {
					return nil
				}
			}

			content, err := readText(cmd.InOrStdin(), text, file)
			if err != nil {
				return err
			}
			if err := state.Library.SetContent(id, content); err != nil {
				return err
			}

			// Новые плейсхолдеры получают переменные
			added, err := state.Library.SyncVariables(id)
			if err != nil {
				return err
			}
			if len(added) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Added variables: %s\n", strings.Join(added, ", "))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "New content")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read content from file ('-' for stdin)")
	cmd.Flags().StringVar(&description, "description", "", "Set description")

	return cmd
}

func newPromptsInstructionsCmd() *cobra.Command {
	var text, file string

	cmd := &cobra.Command{
		Use:   "instructions [id]",
		Short: "Replace system instructions (from --text, --file or stdin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, cleanup, err := openState()
			if err != nil {
				return err
			}
			defer cleanup()

			instructions, err := readText(cmd.InOrStdin(), text, file)
			if err != nil {
				return err
			}
			return state.Library.SetInstructions(promptRef(args), instructions)
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "New instructions")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read instructions from file ('-' for stdin)")

	return cmd
}

// readText берёт текст из флага, файла или stdin.
func readText(stdin io.Reader, text, file string) (string, error) {
	switch {
	case text != "":
		return text, nil
	case file != "" && file != "-":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", file, err)
		}
		return string(data), nil
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
}

func printPromptList(w io.Writer, prompts []models.Prompt, activeID string) {
	if len(prompts) == 0 {
		fmt.Fprintln(w, "No prompts.")
		return
	}
	for _, p := range prompts {
		marker := " "
		if p.ID == activeID {
			marker = "*"
		}
		flags := ""
		if p.IsJSONOutput {
			flags = "  [json]"
		}
		fmt.Fprintf(w, "%s %-24s %s%s\n", marker, p.ID, p.Name, flags)
	}
}

func printPrompt(w io.Writer, p models.Prompt) {
	fmt.Fprintf(w, "ID:          %s\n", p.ID)
	fmt.Fprintf(w, "Name:        %s\n", p.Name)
	if p.Description != "" {
		fmt.Fprintf(w, "Description: %s\n", p.Description)
	}
	fmt.Fprintf(w, "Model:       %s\n", p.LLMID)
	fmt.Fprintf(w, "JSON output: %s\n", yesNo(p.IsJSONOutput))

	if p.Instructions != "" {
		fmt.Fprintf(w, "\n--- Instructions ---\n%s\n", p.Instructions)
	}
	fmt.Fprintf(w, "\n--- Content ---\n%s\n", p.Content)

	fmt.Fprintln(w, "\n--- Variables ---")
	printVariables(w, p)
}
