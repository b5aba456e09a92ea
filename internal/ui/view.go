// Рендер
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wrap"

	"github.com/ilkoid/promptlab/pkg/history"
	"github.com/ilkoid/promptlab/pkg/models"
	"github.com/ilkoid/promptlab/pkg/prompt"
)

func (m MainModel) View() string {
	if !m.ready {
		return "Initializing UI..."
	}

	active, hasActive := m.state.Library.Active()

	// Строка статуса (Header)
	status := " PROMPTLAB | no prompt "
	if hasActive {
		jsonFlag := "off"
		if active.IsJSONOutput {
			jsonFlag = "on"
		}
		status = fmt.Sprintf(" PROMPTLAB | %s | MODEL: %s | JSON: %s ",
			active.Name, m.state.Library.SelectedLLM(), jsonFlag)
	}
	header := headerStyle.Width(m.width).Render(status)

	// Левая колонка: список промптов
	list := m.pane(focusList).
		Width(listWidth).
		Height(m.height - 6).
		Render(renderPromptList(m.state.Library.Prompts(), m.state.Library.ActiveID(), m.cursor, listWidth-2))

	// Правая колонка: редактор, переменные, вывод
	var vars string
	if hasActive {
		vars = renderVariables(active.Variables, prompt.Annotate(active.Variables, m.editor.Value()), m.viewport.Width)
	}

	outputTitle := "Output"
	if m.showHistory {
		outputTitle = "History"
	}
	if m.running {
		outputTitle += " " + m.spinner.View()
	}

	right := lipgloss.JoinVertical(lipgloss.Left,
		m.pane(focusEditor).Render(m.editor.View()),
		vars,
		paneStyle.Render(titleStyle.Render(outputTitle)+"\n"+m.viewport.View()),
	)

	body := lipgloss.JoinHorizontal(lipgloss.Top, list, right)

	// Строка команд и статус
	input := m.pane(focusInput).Render(m.input.View())
	statusLine := mutedStyle(m.status)
	if m.statusErr {
		statusLine = errorMsgStyle(m.status)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, input, statusLine)
}

// pane возвращает стиль панели с подсветкой фокуса.
func (m MainModel) pane(f focus) lipgloss.Style {
	if m.focus == f {
		return focusedPaneStyle
	}
	return paneStyle
}

// renderPromptList рисует список промптов: активный отмечен, курсор - стрелкой.
func renderPromptList(prompts []models.Prompt, activeID string, cursor, width int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Prompts"))
	sb.WriteString("\n")

	if len(prompts) == 0 {
		sb.WriteString(mutedStyle("No prompts. ctrl+n to add."))
		return sb.String()
	}

	for i, p := range prompts {
		marker := "  "
		if i == cursor {
			marker = "> "
		}

		name := p.Name
		if name == "" {
			name = p.ID
		}
		if p.IsJSONOutput {
			name += " {}"
		}
		line := truncate.StringWithTail(marker+name, uint(width), "…")

		if p.ID == activeID {
			line = activeItemStyle.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}

// variableBadge - подпись справа от переменной.
func variableBadge(st prompt.VariableStatus) string {
	switch {
	case st.IsEmpty:
		return errorMsgStyle("required")
	case st.IsDuplicate:
		return errorMsgStyle("duplicate") + " " + mutedStyle(st.Label())
	case st.IsUnused:
		return warnMsgStyle(st.Label())
	default:
		return systemMsgStyle(st.Label())
	}
}

// renderVariables рисует переменные промпта с аннотациями (номера с 1).
func renderVariables(vars []prompt.Variable, statuses []prompt.VariableStatus, width int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Variables"))

	if len(vars) == 0 {
		sb.WriteString("\n")
		sb.WriteString(mutedStyle("none · var add <name> [value]"))
		return sb.String()
	}

	for i, v := range vars {
		value := strings.ReplaceAll(v.Value, "\n", "⏎")
		if value == "" {
			value = mutedStyle("(empty)")
		}
		line := fmt.Sprintf("%d. %s = %s", i+1, v.Name, value)
		if width > 20 {
			line = truncate.StringWithTail(line, uint(width-16), "…")
		}

		sb.WriteString("\n")
		sb.WriteString(line)
		if i < len(statuses) {
			sb.WriteString("  ")
			sb.WriteString(variableBadge(statuses[i]))
		}
	}

	return sb.String()
}

// renderOutput показывает ответ модели по решению FormatOutput.
//
// Невалидный JSON: сообщение об ошибке и исходный текст без изменений.
func renderOutput(d prompt.DisplayResult, md *markdownRenderer, width int) string {
	switch d.Kind {
	case prompt.KindJSON:
		return d.Value
	case prompt.KindJSONError:
		return errorMsgStyle(d.Message) + "\n\n" + wrap.String(d.Raw, width)
	default:
		return md.Render(d.Value, width)
	}
}

// renderHistory рисует историю запусков, новые первыми.
func renderHistory(entries []history.Entry, width int) string {
	if len(entries) == 0 {
		return mutedStyle("No history for this prompt yet.")
	}

	var sb strings.Builder
	for i, e := range entries {
		if i > 0 {
			sb.WriteString("\n\n")
		}

		meta := fmt.Sprintf("#%d  %s  %s", e.ID, e.Timestamp.Format("2006-01-02 15:04:05"), e.Model)
		if e.IsJSONOutput {
			meta += "  json"
		}
		sb.WriteString(titleStyle.Render(meta))

		if len(e.Variables) > 0 {
			pairs := make([]string, 0, len(e.Variables))
			for _, v := range e.Variables {
				pairs = append(pairs, v.Name+"="+v.Value)
			}
			sb.WriteString("\n")
			sb.WriteString(mutedStyle(wrap.String(strings.Join(pairs, ", "), width)))
		}

		sb.WriteString("\n")
		sb.WriteString(wrap.String(e.Result, width))
	}

	return sb.String()
}
