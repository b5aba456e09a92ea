// Package anthropic реализует адаптер llm.Provider для Anthropic Messages API.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/ilkoid/promptlab/pkg/config"
	"github.com/ilkoid/promptlab/pkg/llm"
	"github.com/ilkoid/promptlab/pkg/utils"
)

// defaultMaxTokens - max_tokens обязателен в Messages API.
const defaultMaxTokens = 4096

// jsonInstruction добавляется к системным инструкциям в JSON режиме:
// у Messages API нет отдельного response_format.
const jsonInstruction = "Respond only with a single valid JSON object."

// Client реализует llm.Provider поверх anthropic-sdk-go.
type Client struct {
	api         anthropic.Client
	model       string
	temperature float64
	maxTokens   int
}

// Проверка что Client реализует llm.Provider
var _ llm.Provider = (*Client)(nil)

// NewClient создаёт клиент по определению модели.
func NewClient(modelDef config.ModelDef) (*Client, error) {
	if modelDef.APIKey == "" {
		return nil, fmt.Errorf("anthropic api_key is not set for model %s", modelDef.ModelName)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(modelDef.APIKey),
		option.WithMaxRetries(0), // один запрос на запуск, без повторов
	}
	if modelDef.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(modelDef.BaseURL))
	}
	if modelDef.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(modelDef.Timeout))
	}

	return &Client{
		api:         anthropic.NewClient(opts...),
		model:       modelDef.ModelName,
		temperature: modelDef.Temperature,
		maxTokens:   modelDef.MaxTokens,
	}, nil
}

// Run отправляет промпт одним user сообщением, инструкции - system блоком.
func (c *Client) Run(ctx context.Context, req llm.Request) (*llm.Response, error) {
	startTime := time.Now()
	params := c.buildParams(req)

	utils.Debug("LLM request started",
		"provider", "anthropic",
		"model", string(params.Model),
		"json_output", req.JSONOutput)

	msg, err := c.api.Messages.New(ctx, params)
	if err != nil {
		utils.Error("LLM API request failed",
			"error", err,
			"model", string(params.Model),
			"duration_ms", time.Since(startTime).Milliseconds())
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	// Склеиваем текстовые блоки
	var output strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			output.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(output.String()) == "" {
		return nil, llm.ErrEmptyOutput
	}

	raw := json.RawMessage(msg.RawJSON())
	if len(raw) == 0 {
		if raw, err = json.Marshal(msg); err != nil {
			return nil, fmt.Errorf("encode anthropic response: %w", err)
		}
	}

	utils.Info("LLM response received",
		"provider", "anthropic",
		"model", string(params.Model),
		"content_length", output.Len(),
		"duration_ms", time.Since(startTime).Milliseconds())

	return &llm.Response{Output: output.String(), Raw: raw}, nil
}

func (c *Client) buildParams(req llm.Request) anthropic.MessageNewParams {
	model := req.Model
	if model == "" {
		model = c.model
	}

	maxTokens := c.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Input)),
		},
	}

	system := strings.TrimSpace(req.Instructions)
	if req.JSONOutput {
		if system != "" {
			system += "\n\n"
		}
		system += jsonInstruction
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	temperature := c.temperature
	if req.Temperature > 0 {
		temperature = req.Temperature
	}
	if temperature > 0 {
		params.Temperature = anthropic.Float(temperature)
	}

	return params
}
