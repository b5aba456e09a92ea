// Package prompts управляет библиотекой промптов пользователя.
//
// Library держит рабочее пространство в памяти и сохраняет его через Store
// после каждого изменения. Пустой id в методах означает активный промпт.
package prompts

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"

	"github.com/ilkoid/promptlab/pkg/models"
	"github.com/ilkoid/promptlab/pkg/prompt"
)

// DefaultPromptName - имя нового промпта.
const DefaultPromptName = "Untitled Prompt"

// Library - библиотека промптов с активным промптом и выбранной моделью.
type Library struct {
	mu      sync.RWMutex
	store   Store
	ws      *Workspace
	options []models.LLMOption
}

// NewLibrary загружает рабочее пространство из store.
//
// Активный промпт сохраняется только если он существует, иначе берётся первый.
// Выбранная модель сохраняется только если она есть в options, иначе первая.
func NewLibrary(store Store, options []models.LLMOption) (*Library, error) {
	ws, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load prompts: %w", err)
	}

	l := &Library{
		store:   store,
		ws:      ws,
		options: options,
	}

	if ws.index(ws.ActivePromptID) < 0 {
		ws.ActivePromptID = ""
		if len(ws.Prompts) > 0 {
			ws.ActivePromptID = ws.Prompts[0].ID
		}
	}
	if !l.knownModel(ws.SelectedLLM) {
		ws.SelectedLLM = ""
		if len(options) > 0 {
			ws.SelectedLLM = options[0].ID
		}
	}

	return l, nil
}

// Options возвращает модели селектора.
func (l *Library) Options() []models.LLMOption {
	return append([]models.LLMOption(nil), l.options...)
}

// Prompts возвращает копию списка промптов.
func (l *Library) Prompts() []models.Prompt {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.Prompt, len(l.ws.Prompts))
	for i, p := range l.ws.Prompts {
		out[i] = p.Clone()
	}
	return out
}

// Workspace возвращает копию текущего состояния.
func (l *Library) Workspace() *Workspace {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ws.Clone()
}

// Active возвращает активный промпт.
func (l *Library) Active() (models.Prompt, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i := l.ws.index(l.ws.ActivePromptID)
	if i < 0 {
		return models.Prompt{}, false
	}
	return l.ws.Prompts[i].Clone(), true
}

// ActiveID возвращает id активного промпта ("" если его нет).
func (l *Library) ActiveID() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ws.ActivePromptID
}

// SelectedLLM возвращает id выбранной модели.
func (l *Library) SelectedLLM() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ws.SelectedLLM
}

// Get возвращает промпт по id.
func (l *Library) Get(id string) (models.Prompt, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i, err := l.ws.resolve(id)
	if err != nil {
		return models.Prompt{}, err
	}
	return l.ws.Prompts[i].Clone(), nil
}

// Select делает промпт активным. Если у промпта задана известная модель,
// она становится выбранной.
func (l *Library) Select(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.ws.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrPromptNotFound, id)
	}

	next := l.ws.Clone()
	next.ActivePromptID = id
	if llmID := next.Prompts[i].LLMID; llmID != "" && l.knownModel(llmID) {
		next.SelectedLLM = llmID
	}
	return l.commit(next)
}

// Add создаёт пустой промпт, делает его активным и возвращает его.
func (l *Library) Add() (models.Prompt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p := models.Prompt{
		ID:        newPromptID(),
		Name:      DefaultPromptName,
		Variables: []prompt.Variable{},
		LLMID:     l.ws.SelectedLLM,
	}
	next := l.ws.Clone()
	next.Prompts = append(next.Prompts, p)
	next.ActivePromptID = p.ID

	if err := l.commit(next); err != nil {
		return models.Prompt{}, err
	}
	return p.Clone(), nil
}

// Rename меняет имя промпта.
func (l *Library) Rename(id, name string) error {
	return l.update(id, func(p *models.Prompt) error {
		p.Name = name
		return nil
	})
}

// Delete удаляет промпт. Если он был активным, активным становится
// следующий, иначе предыдущий, иначе никакой.
func (l *Library) Delete(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, err := l.ws.resolve(id)
	if err != nil {
		return err
	}
	next := l.ws.Clone()
	deleted := next.Prompts[i].ID
	next.Prompts = append(next.Prompts[:i], next.Prompts[i+1:]...)

	if next.ActivePromptID == deleted {
		switch {
		case i < len(next.Prompts):
			next.ActivePromptID = next.Prompts[i].ID
		case i > 0:
			next.ActivePromptID = next.Prompts[i-1].ID
		default:
			next.ActivePromptID = ""
		}
	}

	return l.commit(next)
}

// ToggleJSON переключает ожидание JSON ответа и возвращает новое значение.
func (l *Library) ToggleJSON(id string) (bool, error) {
	var value bool
	err := l.update(id, func(p *models.Prompt) error {
		p.IsJSONOutput = !p.IsJSONOutput
		value = p.IsJSONOutput
		return nil
	})
	return value, err
}

// SetContent заменяет шаблон промпта.
func (l *Library) SetContent(id, content string) error {
	return l.update(id, func(p *models.Prompt) error {
		p.Content = content
		return nil
	})
}

// SetInstructions заменяет системные инструкции.
func (l *Library) SetInstructions(id, instructions string) error {
	return l.update(id, func(p *models.Prompt) error {
		p.Instructions = instructions
		return nil
	})
}

// SetDescription заменяет описание.
func (l *Library) SetDescription(id, description string) error {
	return l.update(id, func(p *models.Prompt) error {
		p.Description = description
		return nil
	})
}

// SetModel выбирает модель и запоминает её в активном промпте.
func (l *Library) SetModel(llmID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.knownModel(llmID) {
		return fmt.Errorf("%w: %s", ErrUnknownModel, llmID)
	}

	next := l.ws.Clone()
	next.SelectedLLM = llmID
	if i := next.index(next.ActivePromptID); i >= 0 {
		next.Prompts[i].LLMID = llmID
	}
	return l.commit(next)
}

// AddVariable добавляет пустую переменную и возвращает её индекс.
func (l *Library) AddVariable(id string) (int, error) {
	idx := -1
	err := l.update(id, func(p *models.Prompt) error {
		p.Variables = append(p.Variables, prompt.Variable{})
		idx = len(p.Variables) - 1
		return nil
	})
	return idx, err
}

// SetVariableName задаёт имя переменной; недопустимые символы удаляются.
func (l *Library) SetVariableName(id string, index int, name string) error {
	return l.updateVariable(id, index, func(v *prompt.Variable) {
		v.Name = prompt.SanitizeName(name)
	})
}

// SetVariableValue задаёт значение переменной.
func (l *Library) SetVariableValue(id string, index int, value string) error {
	return l.updateVariable(id, index, func(v *prompt.Variable) {
		v.Value = value
	})
}

// RemoveVariable удаляет переменную по индексу.
func (l *Library) RemoveVariable(id string, index int) error {
	return l.update(id, func(p *models.Prompt) error {
		if index < 0 || index >= len(p.Variables) {
			return fmt.Errorf("%w: %d", ErrVariableIndex, index)
		}
		p.Variables = append(p.Variables[:index], p.Variables[index+1:]...)
		return nil
	})
}

// SyncVariables добавляет переменные для плейсхолдеров шаблона, у которых
// ещё нет переменной. Возвращает добавленные имена.
func (l *Library) SyncVariables(id string) ([]string, error) {
	var added []string
	err := l.update(id, func(p *models.Prompt) error {
		existing := make(map[string]bool, len(p.Variables))
		for _, v := range p.Variables {
			existing[strings.TrimSpace(v.Name)] = true
		}
		for _, name := range prompt.Placeholders(p.Content) {
			if !existing[name] {
				p.Variables = append(p.Variables, prompt.Variable{Name: name})
				added = append(added, name)
			}
		}
		return nil
	})
	return added, err
}

// Find ищет промпты по имени нечётким поиском, лучшие совпадения первыми.
// Пустой pattern возвращает все промпты.
func (l *Library) Find(pattern string) []models.Prompt {
	if strings.TrimSpace(pattern) == "" {
		return l.Prompts()
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	matches := fuzzy.FindFrom(pattern, promptNames(l.ws.Prompts))
	out := make([]models.Prompt, 0, len(matches))
	for _, m := range matches {
		out = append(out, l.ws.Prompts[m.Index].Clone())
	}
	return out
}

// promptNames - источник строк для fuzzy.FindFrom.
type promptNames []models.Prompt

func (p promptNames) String(i int) string { return p[i].Name }
func (p promptNames) Len() int            { return len(p) }

// update применяет fn к копии промпта и сохраняет. При ошибке fn или
// сохранения состояние в памяти не меняется.
func (l *Library) update(id string, fn func(p *models.Prompt) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, err := l.ws.resolve(id)
	if err != nil {
		return err
	}

	next := l.ws.Clone()
	if err := fn(&next.Prompts[i]); err != nil {
		return err
	}

	return l.commit(next)
}

func (l *Library) updateVariable(id string, index int, fn func(v *prompt.Variable)) error {
	return l.update(id, func(p *models.Prompt) error {
		if index < 0 || index >= len(p.Variables) {
			return fmt.Errorf("%w: %d", ErrVariableIndex, index)
		}
		fn(&p.Variables[index])
		return nil
	})
}

// resolve возвращает индекс промпта; пустой id - активный промпт.
func (w *Workspace) resolve(id string) (int, error) {
	if id == "" {
		id = w.ActivePromptID
	}
	i := w.index(id)
	if i < 0 {
		return -1, fmt.Errorf("%w: %q", ErrPromptNotFound, id)
	}
	return i, nil
}

func (w *Workspace) index(id string) int {
	if id == "" {
		return -1
	}
	for i, p := range w.Prompts {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (l *Library) knownModel(id string) bool {
	for _, o := range l.options {
		if o.ID == id {
			return true
		}
	}
	return false
}

// commit сохраняет next и только после успешной записи делает его текущим.
func (l *Library) commit(next *Workspace) error {
	if err := l.store.Save(next); err != nil {
		return fmt.Errorf("failed to save prompts: %w", err)
	}
	l.ws = next
	return nil
}

func newPromptID() string {
	return "prompt-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
