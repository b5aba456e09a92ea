package models

import "github.com/ilkoid/promptlab/pkg/prompt"

// Prompt - промпт в библиотеке пользователя.
type Prompt struct {
	ID           string            `yaml:"id" json:"id"`
	Name         string            `yaml:"name" json:"name"`
	Content      string            `yaml:"content" json:"content"`
	IsJSONOutput bool              `yaml:"is_json_output" json:"isJsonOutput"`
	Description  string            `yaml:"description,omitempty" json:"description,omitempty"`
	Variables    []prompt.Variable `yaml:"variables" json:"variables"`
	LLMID        string            `yaml:"llm_id,omitempty" json:"llmId,omitempty"`
	Instructions string            `yaml:"instructions" json:"instructions"`
}

// Clone возвращает копию промпта с собственным слайсом переменных.
func (p Prompt) Clone() Prompt {
	c := p
	if p.Variables != nil {
		c.Variables = make([]prompt.Variable, len(p.Variables))
		copy(c.Variables, p.Variables)
	}
	return c
}

// Render подставляет переменные промпта в его содержимое.
func (p Prompt) Render() string {
	return prompt.Interpolate(p.Content, p.Variables)
}

// Annotate возвращает статусы переменных промпта для редактора.
func (p Prompt) Annotate() []prompt.VariableStatus {
	return prompt.Annotate(p.Variables, p.Content)
}

// LLMOption - модель в селекторе.
type LLMOption struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Group string `json:"group,omitempty"`
}

// Группы моделей.
const (
	GroupChat      = "Chat"
	GroupReasoning = "Reasoning"
)

// DefaultLLMOptions возвращает встроенный список моделей.
func DefaultLLMOptions() []LLMOption {
	return []LLMOption{
		{ID: "gpt-4.1-mini", Name: "GPT-4.1", Group: GroupChat},
		{ID: "o3-mini", Name: "o3", Group: GroupReasoning},
	}
}
