// Package ui реализует Model компонент Bubble Tea TUI.
//
// Экран: список промптов слева, редактор шаблона с переменными справа,
// под ними вывод модели или история запусков и строка команд.
package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ilkoid/promptlab/internal/app"
	"github.com/ilkoid/promptlab/pkg/history"
	"github.com/ilkoid/promptlab/pkg/prompt"
)

// focus - панель, получающая клавиши.
type focus int

const (
	focusList focus = iota
	focusEditor
	focusInput
)

// listWidth - ширина колонки со списком промптов.
const listWidth = 30

// runResultMsg - результат запуска промпта.
type runResultMsg struct {
	result *app.Result
	err    error
}

// historyMsg - история активного промпта.
type historyMsg struct {
	entries []history.Entry
	err     error
}

// MainModel представляет главную модель UI (Bubble Tea Model).
//
// Библиотека и история живут в AppState; модель хранит только
// UI-specific поля.
type MainModel struct {
	state *app.AppState
	ctx   context.Context

	editor   textarea.Model // шаблон активного промпта
	input    textarea.Model // строка команд
	viewport viewport.Model // вывод или история
	spinner  spinner.Model
	markdown *markdownRenderer

	focus  focus
	cursor int // позиция в списке промптов

	running     bool
	showHistory bool
	output      *prompt.DisplayResult
	runErr      error
	entries     []history.Entry
	status      string
	statusErr   bool

	width  int
	height int
	ready  bool
}

// InitialModel создает начальное состояние UI.
//
// ctx отменяет запросы к модели при выходе.
func InitialModel(ctx context.Context, state *app.AppState) MainModel {
	// 1. Редактор шаблона
	ed := textarea.New()
	ed.Placeholder = "Write your prompt. Use {{variable}} placeholders..."
	ed.ShowLineNumbers = false
	ed.CharLimit = 0
	ed.SetHeight(8)

	// 2. Строка команд
	in := textarea.New()
	in.Placeholder = "Command (help for list)..."
	in.Prompt = "┃ "
	in.CharLimit = 500
	in.SetHeight(1)
	in.ShowLineNumbers = false

	// 3. Спиннер для запроса к модели
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := MainModel{
		state:    state,
		ctx:      ctx,
		editor:   ed,
		input:    in,
		viewport: viewport.New(0, 0),
		spinner:  sp,
		markdown: newMarkdownRenderer(),
		focus:    focusList,
	}
	m.loadActive()
	m.status = "ctrl+r run · tab focus · ctrl+j json · ctrl+n new · ctrl+h history · ctrl+y/ctrl+o copy prompt/output · ctrl+c quit"

	return m
}

// Init запускается один раз при старте Bubble Tea программы.
func (m MainModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

// loadActive переносит активный промпт в редактор и ставит курсор списка.
func (m *MainModel) loadActive() {
	p, ok := m.state.Library.Active()
	if !ok {
		m.editor.SetValue("")
		return
	}
	m.editor.SetValue(p.Content)

	for i, item := range m.state.Library.Prompts() {
		if item.ID == p.ID {
			m.cursor = i
			break
		}
	}
}

// commitEditor сохраняет содержимое редактора в активный промпт.
func (m *MainModel) commitEditor() error {
	p, ok := m.state.Library.Active()
	if !ok || p.Content == m.editor.Value() {
		return nil
	}
	return m.state.Library.SetContent(p.ID, m.editor.Value())
}

// runCmd запускает активный промпт асинхронно.
func (m MainModel) runCmd() tea.Cmd {
	runner := m.state.Runner
	ctx := m.ctx
	return func() tea.Msg {
		res, err := runner.Run(ctx)
		return runResultMsg{result: res, err: err}
	}
}

// loadHistoryCmd читает историю активного промпта.
func (m MainModel) loadHistoryCmd() tea.Cmd {
	state := m.state
	ctx := m.ctx
	return func() tea.Msg {
		entries, err := state.ActiveHistory(ctx)
		return historyMsg{entries: entries, err: err}
	}
}
