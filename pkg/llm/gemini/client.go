// Package gemini реализует адаптер llm.Provider для Gemini API (google.golang.org/genai).
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/ilkoid/promptlab/pkg/config"
	"github.com/ilkoid/promptlab/pkg/llm"
	"github.com/ilkoid/promptlab/pkg/utils"
)

// Client реализует llm.Provider поверх GenAI SDK.
type Client struct {
	api         *genai.Client
	model       string
	temperature float64
	maxTokens   int
}

// Проверка что Client реализует llm.Provider
var _ llm.Provider = (*Client)(nil)

// NewClient создаёт клиент Gemini API. Сетевых запросов не делает.
func NewClient(modelDef config.ModelDef) (*Client, error) {
	if modelDef.APIKey == "" {
		return nil, fmt.Errorf("gemini api_key is not set for model %s", modelDef.ModelName)
	}

	cc := &genai.ClientConfig{
		APIKey:  modelDef.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if modelDef.BaseURL != "" {
		cc.HTTPOptions.BaseURL = modelDef.BaseURL
	}
	if modelDef.Timeout > 0 {
		cc.HTTPClient = &http.Client{Timeout: modelDef.Timeout}
	}

	api, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Client{
		api:         api,
		model:       modelDef.ModelName,
		temperature: modelDef.Temperature,
		maxTokens:   modelDef.MaxTokens,
	}, nil
}

// Run вызывает generateContent с инструкциями в SystemInstruction.
func (c *Client) Run(ctx context.Context, req llm.Request) (*llm.Response, error) {
	startTime := time.Now()

	model := req.Model
	if model == "" {
		model = c.model
	}

	utils.Debug("LLM request started",
		"provider", "gemini",
		"model", model,
		"json_output", req.JSONOutput)

	result, err := c.api.Models.GenerateContent(ctx, model, genai.Text(req.Input), c.buildConfig(req))
	if err != nil {
		utils.Error("LLM API request failed",
			"error", err,
			"model", model,
			"duration_ms", time.Since(startTime).Milliseconds())
		return nil, fmt.Errorf("gemini generation failed: %w", err)
	}

	output := result.Text()
	if strings.TrimSpace(output) == "" {
		return nil, llm.ErrEmptyOutput
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode gemini response: %w", err)
	}

	utils.Info("LLM response received",
		"provider", "gemini",
		"model", model,
		"content_length", len(output),
		"duration_ms", time.Since(startTime).Milliseconds())

	return &llm.Response{Output: output, Raw: raw}, nil
}

func (c *Client) buildConfig(req llm.Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}

	if strings.TrimSpace(req.Instructions) != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.Instructions}},
		}
	}

	if req.JSONOutput {
		cfg.ResponseMIMEType = "application/json"
	}

	temperature := c.temperature
	if req.Temperature > 0 {
		temperature = req.Temperature
	}
	if temperature > 0 {
		cfg.Temperature = genai.Ptr(float32(temperature))
	}

	maxTokens := c.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	if maxTokens > 0 {
		cfg.MaxOutputTokens = int32(maxTokens)
	}

	return cfg
}
