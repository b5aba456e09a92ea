package factory

import (
	"fmt"

	"github.com/ilkoid/promptlab/pkg/config"
	"github.com/ilkoid/promptlab/pkg/llm"
	"github.com/ilkoid/promptlab/pkg/llm/anthropic"
	"github.com/ilkoid/promptlab/pkg/llm/gemini"
	"github.com/ilkoid/promptlab/pkg/llm/openai"
)

// NewLLMProvider создает провайдера на основе конфигурации модели
func NewLLMProvider(modelDef config.ModelDef) (llm.Provider, error) {
	switch modelDef.Provider {
	case "", "openai", "openrouter", "deepseek", "zai":
		return openai.NewClient(modelDef), nil

	case "anthropic":
		return anthropic.NewClient(modelDef)

	case "gemini":
		return gemini.NewClient(modelDef)

	default:
		return nil, fmt.Errorf("unknown provider type: %s", modelDef.Provider)
	}
}
