// Логика - Обрабатывает нажатия клавиш и результаты команд.

package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ilkoid/promptlab/internal/app"
)

func (m MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	// 1. Изменение размера окна терминала
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		m.refreshViewport()
		return m, nil

	// 2. Спиннер крутится только пока идёт запрос
	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	// 3. Результат запуска (прилетел асинхронно)
	case runResultMsg:
		m.running = false
		m.state.SetProcessing(false)
		if msg.err != nil {
			m.runErr = msg.err
			m.output = nil
			m.setStatus(msg.err.Error(), true)
		} else {
			m.runErr = nil
			d := msg.result.Display
			m.output = &d
			m.showHistory = false
			if msg.result.HistoryErr != nil {
				m.setStatus("Run saved without history: "+msg.result.HistoryErr.Error(), true)
			} else {
				m.setStatus("Done · "+msg.result.Model, false)
			}
		}
		m.refreshViewport()
		return m, nil

	// 4. История
	case historyMsg:
		if msg.err != nil {
			m.setStatus(msg.err.Error(), true)
			return m, nil
		}
		m.entries = msg.entries
		m.refreshViewport()
		return m, nil

	// 5. Результат команды из строки ввода
	case app.CommandResultMsg:
		if msg.Err != nil {
			m.setStatus(msg.Err.Error(), true)
		} else if strings.Contains(msg.Output, "\n") {
			// Многострочный ответ (help, find) показываем в панели вывода
			m.output = nil
			m.runErr = nil
			m.showHistory = false
			m.viewport.SetContent(msg.Output)
			m.setStatus("", false)
		} else {
			m.setStatus(msg.Output, false)
		}
		if msg.Changed {
			m.loadActive()
			m.layout()
			if m.showHistory {
				return m, m.loadHistoryCmd()
			}
		}
		return m, nil

	// 6. Клавиши
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Остальное (мигание курсора) - активному полю ввода
	return m.updateFocused(msg)
}

func (m MainModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Глобальные клавиши
	switch msg.String() {
	case "ctrl+c":
		m.commitEditor()
		return m, tea.Quit

	case "tab":
		if err := m.commitEditor(); err != nil {
			m.setStatus(err.Error(), true)
		}
		return m, m.setFocus((m.focus + 1) % 3)

	case "ctrl+r":
		if m.running {
			return m, nil
		}
		if err := m.commitEditor(); err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.running = true
		m.state.SetProcessing(true)
		m.runErr = nil
		m.setStatus("Running...", false)
		return m, tea.Batch(m.runCmd(), m.spinner.Tick)

	case "ctrl+j":
		if err := m.commitEditor(); err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		on, err := m.state.Library.ToggleJSON("")
		if err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		if on {
			m.setStatus("JSON output on", false)
		} else {
			m.setStatus("JSON output off", false)
		}
		return m, nil

	case "ctrl+n":
		if err := m.commitEditor(); err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		p, err := m.state.Library.Add()
		if err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.loadActive()
		m.layout()
		m.setStatus("Created "+p.ID, false)
		return m, m.setFocus(focusEditor)

	case "ctrl+h":
		m.showHistory = !m.showHistory
		if m.showHistory {
			return m, m.loadHistoryCmd()
		}
		m.refreshViewport()
		return m, nil

	case "ctrl+y":
		if err := m.commitEditor(); err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		if err := m.state.CopyPrompt(""); err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.setStatus("Prompt copied to clipboard", false)
		return m, nil

	case "ctrl+o":
		var text string
		if m.output != nil {
			text = m.output.Text()
		}
		if err := m.state.CopyText(text); err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.setStatus("Output copied to clipboard", false)
		return m, nil
	}

	switch m.focus {
	case focusList:
		return m.handleListKey(msg)

	case focusInput:
		if msg.Type == tea.KeyEnter {
			input := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if input == "" {
				return m, nil
			}
			if err := m.commitEditor(); err != nil {
				m.setStatus(err.Error(), true)
				return m, nil
			}
			return m, m.state.CommandRegistry.Execute(input, m.state)
		}
	}

	return m.updateFocused(msg)
}

// handleListKey перемещает курсор; выбранный промпт сразу становится активным.
func (m MainModel) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	prompts := m.state.Library.Prompts()
	if len(prompts) == 0 {
		return m, nil
	}

	next := m.cursor
	switch msg.String() {
	case "up", "k":
		next--
	case "down", "j":
		next++
	case "enter":
		return m, m.setFocus(focusEditor)
	default:
		return m, nil
	}

	if next < 0 || next >= len(prompts) {
		return m, nil
	}
	if err := m.state.Library.Select(prompts[next].ID); err != nil {
		m.setStatus(err.Error(), true)
		return m, nil
	}

	m.cursor = next
	m.loadActive()
	m.layout()
	m.output = nil
	m.runErr = nil
	if m.showHistory {
		return m, m.loadHistoryCmd()
	}
	m.refreshViewport()
	return m, nil
}

func (m MainModel) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusEditor:
		m.editor, cmd = m.editor.Update(msg)
		// Аннотации переменных зависят от текста редактора
		m.layout()
	case focusInput:
		m.input, cmd = m.input.Update(msg)
	default:
		var vpCmd tea.Cmd
		m.viewport, vpCmd = m.viewport.Update(msg)
		cmd = vpCmd
	}
	return m, cmd
}

// setFocus переключает панель и курсор ввода.
func (m *MainModel) setFocus(f focus) tea.Cmd {
	m.focus = f
	m.editor.Blur()
	m.input.Blur()

	switch f {
	case focusEditor:
		return m.editor.Focus()
	case focusInput:
		return m.input.Focus()
	}
	return nil
}

func (m *MainModel) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

// layout пересчитывает размеры панелей.
func (m *MainModel) layout() {
	if !m.ready {
		return
	}

	bodyWidth := m.width - listWidth - 4
	if bodyWidth < 20 {
		bodyWidth = 20
	}
	m.editor.SetWidth(bodyWidth)
	m.input.SetWidth(m.width - 2)

	// header + рамки редактора + переменные + рамки вывода + строка ввода + статус
	used := 1 + (m.editor.Height() + 2) + m.variablesHeight() + 2 + (m.input.Height() + 2) + 1
	vpHeight := m.height - used
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.viewport.Width = bodyWidth
	m.viewport.Height = vpHeight
}

// variablesHeight - строк в блоке переменных (заголовок + по строке на переменную).
func (m MainModel) variablesHeight() int {
	p, ok := m.state.Library.Active()
	if !ok {
		return 1
	}
	return 1 + max(1, len(p.Variables))
}

// refreshViewport перерисовывает вывод или историю.
func (m *MainModel) refreshViewport() {
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}

	switch {
	case m.showHistory:
		m.viewport.SetContent(renderHistory(m.entries, width))
	case m.runErr != nil:
		m.viewport.SetContent(renderRunError(m.runErr))
	case m.output != nil:
		m.viewport.SetContent(renderOutput(*m.output, m.markdown, width))
	default:
		m.viewport.SetContent(mutedStyle("Press ctrl+r to run the active prompt."))
	}
	m.viewport.GotoTop()
}

// renderRunError показывает ошибку запуска; отсутствие вывода - отдельное состояние.
func renderRunError(err error) string {
	if errors.Is(err, app.ErrNoOutput) {
		return warnMsgStyle("No output received.")
	}
	return errorMsgStyle("Error: ") + err.Error()
}
