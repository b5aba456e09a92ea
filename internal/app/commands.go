// Реестр команд строки ввода TUI

package app

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// CommandHandler - тип функции-обработчика команды.
//
// Принимает AppState и аргументы команды, возвращает tea.Cmd
// для асинхронного выполнения в Bubble Tea.
type CommandHandler func(state *AppState, args []string) tea.Cmd

// CommandRegistry - реестр зарегистрированных команд TUI.
//
// Thread-safe: одновременные вызовы безопасны.
type CommandRegistry struct {
	mu       sync.RWMutex
	commands map[string]CommandHandler
}

// NewCommandRegistry создает новый пустой реестр команд.
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{
		commands: make(map[string]CommandHandler),
	}
}

// Register регистрирует новую команду в реестре.
//
// Если команда с таким именем уже существует, она будет перезаписана.
func (r *CommandRegistry) Register(name string, handler CommandHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[name] = handler
}

// Execute выполняет команду и возвращает tea.Cmd для асинхронного выполнения.
//
// Если команда не найдена, возвращает команду с ошибкой.
func (r *CommandRegistry) Execute(input string, state *AppState) tea.Cmd {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}

	cmd := parts[0]
	args := parts[1:]

	// Получаем handler под read lock
	r.mu.RLock()
	handler, exists := r.commands[cmd]
	r.mu.RUnlock()

	if !exists {
		return func() tea.Msg {
			return CommandResultMsg{Err: fmt.Errorf("unknown command: '%s' (try 'help')", cmd)}
		}
	}

	return handler(state, args)
}

// GetCommands возвращает отсортированный список имен команд.
func (r *CommandRegistry) GetCommands() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cmds := make([]string, 0, len(r.commands))
	for name := range r.commands {
		cmds = append(cmds, name)
	}
	sort.Strings(cmds)
	return cmds
}

const commandsHelp = `Commands:
  select <id>              - make prompt active
  new                      - create prompt
  rename <name>            - rename active prompt
  delete                   - delete active prompt
  json                     - toggle JSON output
  model <id>               - select model
  var add <name> [value]   - add variable
  var set <n> <value>      - set value of variable n
  var name <n> <name>      - rename variable n
  var rm <n>               - remove variable n
  var sync                 - add variables for placeholders
  find <pattern>           - fuzzy search prompts
  copy                     - copy prompt content to clipboard
  history clear            - clear history of active prompt
  help                     - show this help`

// SetupPromptCommands регистрирует команды редактирования библиотеки.
//
// Номера переменных в командах начинаются с 1.
func SetupPromptCommands(registry *CommandRegistry) {
	registry.Register("help", func(_ *AppState, _ []string) tea.Cmd {
		return result(CommandResultMsg{Output: commandsHelp})
	})

	registry.Register("select", func(s *AppState, args []string) tea.Cmd {
		return func() tea.Msg {
			if len(args) != 1 {
				return CommandResultMsg{Err: fmt.Errorf("usage: select <id>")}
			}
			if err := s.Library.Select(args[0]); err != nil {
				return CommandResultMsg{Err: err}
			}
			return CommandResultMsg{Output: "Selected " + args[0], Changed: true}
		}
	})

	registry.Register("new", func(s *AppState, _ []string) tea.Cmd {
		return func() tea.Msg {
			p, err := s.Library.Add()
			if err != nil {
				return CommandResultMsg{Err: err}
			}
			return CommandResultMsg{Output: "Created " + p.ID, Changed: true}
		}
	})

	registry.Register("rename", func(s *AppState, args []string) tea.Cmd {
		return func() tea.Msg {
			name := strings.Join(args, " ")
			if name == "" {
				return CommandResultMsg{Err: fmt.Errorf("usage: rename <name>")}
			}
			if err := s.Library.Rename("", name); err != nil {
				return CommandResultMsg{Err: err}
			}
			return CommandResultMsg{Output: "Renamed to " + name, Changed: true}
		}
	})

	registry.Register("delete", func(s *AppState, _ []string) tea.Cmd {
		return func() tea.Msg {
			id := s.Library.ActiveID()
			if err := s.Library.Delete(""); err != nil {
				return CommandResultMsg{Err: err}
			}
			return CommandResultMsg{Output: "Deleted " + id, Changed: true}
		}
	})

	registry.Register("json", func(s *AppState, _ []string) tea.Cmd {
		return func() tea.Msg {
			on, err := s.Library.ToggleJSON("")
			if err != nil {
				return CommandResultMsg{Err: err}
			}
			return CommandResultMsg{Output: fmt.Sprintf("JSON output: %t", on), Changed: true}
		}
	})

	registry.Register("model", func(s *AppState, args []string) tea.Cmd {
		return func() tea.Msg {
			if len(args) != 1 {
				return CommandResultMsg{Err: fmt.Errorf("usage: model <id>")}
			}
			if err := s.Library.SetModel(args[0]); err != nil {
				return CommandResultMsg{Err: err}
			}
			return CommandResultMsg{Output: "Model: " + args[0], Changed: true}
		}
	})

	registry.Register("var", func(s *AppState, args []string) tea.Cmd {
		return func() tea.Msg {
			return runVarCommand(s, args)
		}
	})

	registry.Register("find", func(s *AppState, args []string) tea.Cmd {
		return func() tea.Msg {
			found := s.Library.Find(strings.Join(args, " "))
			if len(found) == 0 {
				return CommandResultMsg{Output: "No prompts found"}
			}
			var sb strings.Builder
			for _, p := range found {
				fmt.Fprintf(&sb, "%s  %s\n", p.ID, p.Name)
			}
			return CommandResultMsg{Output: strings.TrimRight(sb.String(), "\n")}
		}
	})

	registry.Register("copy", func(s *AppState, _ []string) tea.Cmd {
		return func() tea.Msg {
			if err := s.CopyPrompt(""); err != nil {
				return CommandResultMsg{Err: err}
			}
			return CommandResultMsg{Output: "Prompt copied to clipboard"}
		}
	})

	registry.Register("history", func(s *AppState, args []string) tea.Cmd {
		return func() tea.Msg {
			if len(args) != 1 || args[0] != "clear" {
				return CommandResultMsg{Err: fmt.Errorf("usage: history clear")}
			}
			if s.History == nil {
				return CommandResultMsg{Err: fmt.Errorf("history is disabled")}
			}
			id := s.Library.ActiveID()
			if id == "" {
				return CommandResultMsg{Err: ErrNoActivePrompt}
			}
			if err := s.History.Clear(context.Background(), id); err != nil {
				return CommandResultMsg{Err: err}
			}
			return CommandResultMsg{Output: "History cleared", Changed: true}
		}
	})
}

func runVarCommand(s *AppState, args []string) CommandResultMsg {
	if len(args) == 0 {
		return CommandResultMsg{Err: fmt.Errorf("usage: var add|set|name|rm|sync")}
	}

	switch args[0] {
	case "add":
		if len(args) < 2 {
			return CommandResultMsg{Err: fmt.Errorf("usage: var add <name> [value]")}
		}
		idx, err := s.Library.AddVariable("")
		if err != nil {
			return CommandResultMsg{Err: err}
		}
		if err := s.Library.SetVariableName("", idx, args[1]); err != nil {
			return CommandResultMsg{Err: err}
		}
		if len(args) > 2 {
			if err := s.Library.SetVariableValue("", idx, strings.Join(args[2:], " ")); err != nil {
				return CommandResultMsg{Err: err}
			}
		}
		return CommandResultMsg{Output: fmt.Sprintf("Added variable %d", idx+1), Changed: true}

	case "set", "name":
		if len(args) < 3 {
			return CommandResultMsg{Err: fmt.Errorf("usage: var %s <n> <text>", args[0])}
		}
		idx, err := varIndex(args[1])
		if err != nil {
			return CommandResultMsg{Err: err}
		}
		text := strings.Join(args[2:], " ")
		if args[0] == "set" {
			err = s.Library.SetVariableValue("", idx, text)
		} else {
			err = s.Library.SetVariableName("", idx, text)
		}
		if err != nil {
			return CommandResultMsg{Err: err}
		}
		return CommandResultMsg{Output: fmt.Sprintf("Updated variable %d", idx+1), Changed: true}

	case "rm":
		if len(args) != 2 {
			return CommandResultMsg{Err: fmt.Errorf("usage: var rm <n>")}
		}
		idx, err := varIndex(args[1])
		if err != nil {
			return CommandResultMsg{Err: err}
		}
		if err := s.Library.RemoveVariable("", idx); err != nil {
			return CommandResultMsg{Err: err}
		}
		return CommandResultMsg{Output: fmt.Sprintf("Removed variable %d", idx+1), Changed: true}

	case "sync":
		added, err := s.Library.SyncVariables("")
		if err != nil {
			return CommandResultMsg{Err: err}
		}
		if len(added) == 0 {
			return CommandResultMsg{Output: "Variables are in sync"}
		}
		return CommandResultMsg{Output: "Added: " + strings.Join(added, ", "), Changed: true}

	default:
		return CommandResultMsg{Err: fmt.Errorf("unknown subcommand: var %s", args[0])}
	}
}

// varIndex переводит номер переменной (с 1) в индекс.
func varIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid variable number %q: %w", s, err)
	}
	return n - 1, nil
}

func result(msg CommandResultMsg) tea.Cmd {
	return func() tea.Msg { return msg }
}
