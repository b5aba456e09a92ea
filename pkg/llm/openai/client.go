// Package openai реализует адаптер LLM провайдера для OpenAI-совместимых API.
//
// Работает только через интерфейс llm.Provider.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ilkoid/promptlab/pkg/config"
	"github.com/ilkoid/promptlab/pkg/llm"
	"github.com/ilkoid/promptlab/pkg/utils"
)

// Client реализует интерфейс llm.Provider для OpenAI-совместимых API.
type Client struct {
	api         *openai.Client
	model       string
	temperature float64
	maxTokens   int
}

// Проверка что Client реализует llm.Provider
var _ llm.Provider = (*Client)(nil)

// NewClient создает OpenAI клиент на основе конфигурации модели.
//
// Поддерживает custom BaseURL для OpenAI-совместимых провайдеров
// (OpenRouter, DeepSeek и т.д.).
func NewClient(modelDef config.ModelDef) *Client {
	cfg := openai.DefaultConfig(modelDef.APIKey)
	if modelDef.BaseURL != "" {
		cfg.BaseURL = modelDef.BaseURL
	}
	if modelDef.Timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: modelDef.Timeout}
	}

	return &Client{
		api:         openai.NewClientWithConfig(cfg),
		model:       modelDef.ModelName,
		temperature: modelDef.Temperature,
		maxTokens:   modelDef.MaxTokens,
	}
}

// Run выполняет один chat completion запрос.
//
// Алгоритм:
//  1. Инструкции отправляются system сообщением, промпт - user сообщением
//  2. Для JSON режима включается response_format json_object
//  3. Текст берётся из первого choice, иначе склеивается из всех choices
func (c *Client) Run(ctx context.Context, req llm.Request) (*llm.Response, error) {
	startTime := time.Now()
	chatReq := c.buildRequest(req)

	utils.Debug("LLM request started",
		"provider", "openai",
		"model", chatReq.Model,
		"json_output", req.JSONOutput,
		"input_length", len(req.Input))

	resp, err := c.api.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		utils.Error("LLM API request failed",
			"error", err,
			"model", chatReq.Model,
			"duration_ms", time.Since(startTime).Milliseconds())
		return nil, fmt.Errorf("openai api error: %w", err)
	}

	output := extractOutput(resp)
	if output == "" {
		return nil, llm.ErrEmptyOutput
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encode openai response: %w", err)
	}

	utils.Info("LLM response received",
		"provider", "openai",
		"model", chatReq.Model,
		"content_length", len(output),
		"duration_ms", time.Since(startTime).Milliseconds())

	return &llm.Response{Output: output, Raw: raw}, nil
}

// buildRequest конвертирует llm.Request в формат SDK.
// Параметры запроса имеют приоритет над параметрами модели из конфига.
func (c *Client) buildRequest(req llm.Request) openai.ChatCompletionRequest {
	model := req.Model
	if model == "" {
		model = c.model
	}

	var msgs []openai.ChatCompletionMessage
	if strings.TrimSpace(req.Instructions) != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.Instructions,
		})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Input,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:    model,
		Messages: msgs,
	}

	temperature := c.temperature
	if req.Temperature > 0 {
		temperature = req.Temperature
	}
	if temperature > 0 {
		chatReq.Temperature = float32(temperature)
	}

	maxTokens := c.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	if maxTokens > 0 {
		// max_tokens не поддерживается reasoning моделями, max_completion_tokens - всеми
		chatReq.MaxCompletionTokens = maxTokens
	}

	if req.JSONOutput {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	return chatReq
}

// extractOutput возвращает текст ответа.
func extractOutput(resp openai.ChatCompletionResponse) string {
	if len(resp.Choices) == 0 {
		return ""
	}
	if content := resp.Choices[0].Message.Content; content != "" {
		return content
	}

	parts := make([]string, 0, len(resp.Choices))
	for _, choice := range resp.Choices {
		if choice.Message.Content != "" {
			parts = append(parts, choice.Message.Content)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}
