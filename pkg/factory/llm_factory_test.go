package factory

import (
	"testing"

	"github.com/ilkoid/promptlab/pkg/config"
)

// TestNewLLMProvider проверяет все поддерживаемые провайдеры.
func TestNewLLMProvider(t *testing.T) {
	providers := []string{"", "openai", "openrouter", "deepseek", "zai", "anthropic", "gemini"}

	for _, name := range providers {
		t.Run(name, func(t *testing.T) {
			provider, err := NewLLMProvider(config.ModelDef{
				Provider:  name,
				ModelName: "test-model",
				APIKey:    "test-key",
			})
			if err != nil {
				t.Fatalf("unexpected error for provider %q: %v", name, err)
			}
			if provider == nil {
				t.Fatalf("expected provider for %q but got nil", name)
			}
		})
	}
}

// TestNewLLMProvider_UnknownProvider проверяет обработку неизвестного провайдера.
func TestNewLLMProvider_UnknownProvider(t *testing.T) {
	_, err := NewLLMProvider(config.ModelDef{Provider: "unknown-provider", APIKey: "k"})
	if err == nil {
		t.Errorf("expected error for unknown provider")
	}
}
