package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ilkoid/promptlab/pkg/history"
	"github.com/ilkoid/promptlab/pkg/llm"
	"github.com/ilkoid/promptlab/pkg/models"
	"github.com/ilkoid/promptlab/pkg/prompt"
	"github.com/ilkoid/promptlab/pkg/prompts"
	"github.com/ilkoid/promptlab/pkg/utils"
)

var (
	// ErrNoActivePrompt - в библиотеке нет активного промпта.
	ErrNoActivePrompt = errors.New("no active prompt")

	// ErrEmptyPrompt - у промпта пустые и содержимое, и инструкции.
	ErrEmptyPrompt = errors.New("prompt and instructions are empty")

	// ErrNoOutput - модель вернула пустой ответ.
	ErrNoOutput = errors.New("no output received")
)

// Result - итог запуска промпта.
type Result struct {
	Output  string
	Display prompt.DisplayResult
	Model   string
	Entry   *history.Entry

	// HistoryErr - ошибка записи в историю; запуск при этом считается успешным.
	HistoryErr error
}

// Runner запускает активный промпт библиотеки на выбранной модели.
type Runner struct {
	library  *prompts.Library
	registry *models.Registry
	history  history.Log // может быть nil
	now      func() time.Time
}

// NewRunner создаёт Runner. log может быть nil: тогда история не пишется.
func NewRunner(library *prompts.Library, registry *models.Registry, log history.Log) *Runner {
	return &Runner{
		library:  library,
		registry: registry,
		history:  log,
		now:      time.Now,
	}
}

// Run подставляет переменные в активный промпт, вызывает модель и
// записывает запуск в историю.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	// 1. Активный промпт и модель берутся из одного снимка
	ws := r.library.Workspace()
	p, ok := findPrompt(ws, ws.ActivePromptID)
	if !ok {
		return nil, ErrNoActivePrompt
	}
	return r.run(ctx, p, ws.SelectedLLM)
}

// RunPrompt запускает промпт по id, не меняя активный промпт библиотеки.
// Модель - сохранённая в промпте, иначе выбранная.
func (r *Runner) RunPrompt(ctx context.Context, id string) (*Result, error) {
	ws := r.library.Workspace()
	p, ok := findPrompt(ws, id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", prompts.ErrPromptNotFound, id)
	}

	modelID := ws.SelectedLLM
	if p.LLMID != "" {
		modelID = p.LLMID
	}
	return r.run(ctx, p, modelID)
}

func (r *Runner) run(ctx context.Context, p models.Prompt, modelID string) (*Result, error) {
	// 2. Пустой запрос не отправляем
	if strings.TrimSpace(p.Content) == "" && strings.TrimSpace(p.Instructions) == "" {
		return nil, ErrEmptyPrompt
	}

	// 3. Подстановка переменных
	input := p.Render()

	// 4. Вызов модели
	output, raw, actual, err := r.call(ctx, modelID, input, p.Instructions, p.IsJSONOutput)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Output:  output,
		Display: prompt.FormatOutput(output, p.IsJSONOutput),
		Model:   actual,
	}

	// 5. История: снимок переменных и полный ответ
	entry := &history.Entry{
		PromptID:     p.ID,
		Prompt:       input,
		Result:       output,
		Timestamp:    r.now(),
		Variables:    p.Clone().Variables,
		Response:     raw,
		Model:        actual,
		Instructions: p.Instructions,
		IsJSONOutput: p.IsJSONOutput,
	}
	result.Entry = entry

	if r.history != nil {
		if _, err := r.history.Append(ctx, entry); err != nil {
			utils.Error("Failed to save history entry", "prompt_id", p.ID, "error", err)
			result.HistoryErr = err
		}
	}

	utils.Info("Prompt run completed", "prompt_id", p.ID, "model", actual, "output_len", len(output))
	return result, nil
}

// findPrompt ищет промпт в снимке рабочего пространства.
func findPrompt(ws *prompts.Workspace, id string) (models.Prompt, bool) {
	if id == "" {
		return models.Prompt{}, false
	}
	for _, p := range ws.Prompts {
		if p.ID == id {
			return p, true
		}
	}
	return models.Prompt{}, false
}

// RunRaw отправляет готовый текст без подстановки и без записи в историю.
func (r *Runner) RunRaw(ctx context.Context, input, modelID, instructions string, jsonOutput bool) (string, json.RawMessage, error) {
	output, raw, _, err := r.call(ctx, modelID, input, instructions, jsonOutput)
	return output, raw, err
}

func (r *Runner) call(ctx context.Context, modelID, input, instructions string, jsonOutput bool) (string, json.RawMessage, string, error) {
	provider, def, actual, err := r.registry.GetWithFallback(modelID)
	if err != nil {
		return "", nil, "", err
	}
	if actual != modelID {
		utils.Warn("Model not found, using fallback", "requested", modelID, "actual", actual)
	}

	req := llm.NewRequest(input,
		llm.WithModel(def.ModelName),
		llm.WithInstructions(instructions),
		llm.WithJSONOutput(jsonOutput),
		llm.WithTemperature(def.Temperature),
		llm.WithMaxTokens(def.MaxTokens),
	)

	utils.Debug("Calling model", "model", actual, "input_len", len(input), "json", jsonOutput)

	resp, err := provider.Run(ctx, req)
	if err != nil {
		if errors.Is(err, llm.ErrEmptyOutput) {
			return "", nil, actual, ErrNoOutput
		}
		return "", nil, actual, fmt.Errorf("model %s: %w", actual, err)
	}
	if resp == nil || resp.Output == "" {
		return "", nil, actual, ErrNoOutput
	}

	return resp.Output, resp.Raw, actual, nil
}
