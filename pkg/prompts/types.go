package prompts

import (
	"errors"

	"github.com/ilkoid/promptlab/pkg/models"
)

// Workspace - сохраняемое состояние библиотеки промптов.
type Workspace struct {
	Prompts        []models.Prompt `yaml:"prompts" json:"prompts"`
	ActivePromptID string          `yaml:"active_prompt_id" json:"activePromptId"`
	SelectedLLM    string          `yaml:"selected_llm" json:"selectedLlm"`
}

// DefaultWorkspace возвращает рабочее пространство со встроенными промптами.
func DefaultWorkspace() *Workspace {
	prompts := models.DefaultPrompts()
	ws := &Workspace{Prompts: prompts}
	if len(prompts) > 0 {
		ws.ActivePromptID = prompts[0].ID
	}
	return ws
}

// Clone возвращает глубокую копию.
func (w *Workspace) Clone() *Workspace {
	c := &Workspace{
		ActivePromptID: w.ActivePromptID,
		SelectedLLM:    w.SelectedLLM,
	}
	if w.Prompts != nil {
		c.Prompts = make([]models.Prompt, len(w.Prompts))
		for i, p := range w.Prompts {
			c.Prompts[i] = p.Clone()
		}
	}
	return c
}

var (
	// ErrPromptNotFound возвращается когда промпта с таким id нет.
	ErrPromptNotFound = errors.New("prompt not found")

	// ErrVariableIndex возвращается для индекса переменной вне диапазона.
	ErrVariableIndex = errors.New("variable index out of range")

	// ErrUnknownModel возвращается для модели, которой нет в списке.
	ErrUnknownModel = errors.New("unknown model")
)
