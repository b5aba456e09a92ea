package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ilkoid/promptlab/pkg/history"
	"github.com/ilkoid/promptlab/pkg/prompt"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and clear run history",
	}

	var all bool
	listCmd := &cobra.Command{
		Use:   "list [prompt-id]",
		Short: "List runs of a prompt, newest first (default: active)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, cleanup, err := openState()
			if err != nil {
				return err
			}
			defer cleanup()

			var entries []history.Entry
			if all {
				entries, err = state.History.All(cmd.Context())
			} else {
				id := promptRef(args)
				if id == "" {
					id = state.Library.ActiveID()
				}
				entries, err = history.ForPrompt(cmd.Context(), state.History, id)
			}
			if err != nil {
				return err
			}

			printHistory(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	listCmd.Flags().BoolVarP(&all, "all", "a", false, "List runs of all prompts")

	showCmd := &cobra.Command{
		Use:   "show <entry-id>",
		Short: "Show a run with its prompt, variables and output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid entry id %q: %w", args[0], err)
			}

			state, cleanup, err := openState()
			if err != nil {
				return err
			}
			defer cleanup()

			e, err := state.History.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			printEntry(cmd.OutOrStdout(), e)
			return nil
		},
	}

	var clearAll bool
	clearCmd := &cobra.Command{
		Use:   "clear [prompt-id]",
		Short: "Delete runs of a prompt (default: active) or all runs with --all",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, cleanup, err := openState()
			if err != nil {
				return err
			}
			defer cleanup()

			id := ""
			if !clearAll {
				id = promptRef(args)
				if id == "" {
					id = state.Library.ActiveID()
				}
				if id == "" {
					return errNoActive
				}
			}
			return state.History.Clear(cmd.Context(), id)
		},
	}
	clearCmd.Flags().BoolVarP(&clearAll, "all", "a", false, "Delete the whole history")

	cmd.AddCommand(listCmd, showCmd, clearCmd)
	return cmd
}

func printHistory(w io.Writer, entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No history.")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%6d  %s  %-16s %-14s %s\n",
			e.ID, e.Timestamp.Format("2006-01-02 15:04:05"), e.PromptID, e.Model, preview(e.Result, 50))
	}
}

func printEntry(w io.Writer, e *history.Entry) {
	fmt.Fprintf(w, "Entry:       %d\n", e.ID)
	fmt.Fprintf(w, "Prompt ID:   %s\n", e.PromptID)
	fmt.Fprintf(w, "Time:        %s\n", e.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Model:       %s\n", e.Model)
	fmt.Fprintf(w, "JSON output: %s\n", yesNo(e.IsJSONOutput))

	if len(e.Variables) > 0 {
		fmt.Fprintln(w, "\n--- Variables ---")
		for _, v := range e.Variables {
			fmt.Fprintf(w, "%s = %q\n", v.Name, v.Value)
		}
	}
	if e.Instructions != "" {
		fmt.Fprintf(w, "\n--- Instructions ---\n%s\n", e.Instructions)
	}
	fmt.Fprintf(w, "\n--- Prompt ---\n%s\n", e.Prompt)

	d := prompt.FormatOutput(e.Result, e.IsJSONOutput)
	fmt.Fprintln(w, "\n--- Output ---")
	if d.IsError() {
		fmt.Fprintln(w, d.Message)
	}
	fmt.Fprintln(w, d.Text())
}

// preview - первая строка текста, обрезанная до n рун.
func preview(s string, n int) string {
	for i, r := range s {
		if r == '\n' {
			s = s[:i] + " …"
			break
		}
	}
	runes := []rune(s)
	if len(runes) > n {
		return string(runes[:n]) + "…"
	}
	return s
}
