// Package models описывает промпты, список моделей и реестр LLM провайдеров.
//
// Реестр регистрирует все модели из config.yaml при старте и отдаёт
// провайдер по id выбранной модели.
package models

import (
	"fmt"
	"sync"

	"github.com/ilkoid/promptlab/pkg/config"
	"github.com/ilkoid/promptlab/pkg/factory"
	"github.com/ilkoid/promptlab/pkg/llm"
)

// Registry - потокобезопасное хранилище LLM провайдеров.
type Registry struct {
	mu     sync.RWMutex
	models map[string]ModelEntry
	order  []string
}

// ModelEntry - провайдер с конфигурацией.
type ModelEntry struct {
	Provider llm.Provider
	Config   config.ModelDef
}

// NewRegistry создаёт новый пустой реестр.
func NewRegistry() *Registry {
	return &Registry{
		models: make(map[string]ModelEntry),
	}
}

// Register добавляет модель в реестр.
//
// Возвращает ошибку если модель с таким id уже зарегистрирована.
func (r *Registry) Register(id string, modelDef config.ModelDef, provider llm.Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.models[id]; exists {
		return fmt.Errorf("model '%s' already registered", id)
	}

	r.models[id] = ModelEntry{
		Provider: provider,
		Config:   modelDef,
	}
	r.order = append(r.order, id)
	return nil
}

// Get извлекает провайдер по id модели.
func (r *Registry) Get(id string) (llm.Provider, config.ModelDef, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.models[id]
	if !ok {
		return nil, config.ModelDef{}, fmt.Errorf("model '%s' not found in registry", id)
	}
	return entry.Provider, entry.Config, nil
}

// GetWithFallback извлекает провайдер с fallback на первую зарегистрированную модель.
//
// Возвращает (provider, modelDef, actualModelID, error).
func (r *Registry) GetWithFallback(requested string) (llm.Provider, config.ModelDef, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// 1. Запрошенная модель
	if entry, ok := r.models[requested]; ok {
		return entry.Provider, entry.Config, requested, nil
	}

	// 2. Модель по умолчанию - первая зарегистрированная
	if len(r.order) > 0 {
		id := r.order[0]
		return r.models[id].Provider, r.models[id].Config, id, nil
	}

	return nil, config.ModelDef{}, "", fmt.Errorf("model '%s' not found and registry is empty", requested)
}

// Options возвращает модели для селектора в порядке регистрации.
func (r *Registry) Options() []LLMOption {
	r.mu.RLock()
	defer r.mu.RUnlock()

	opts := make([]LLMOption, 0, len(r.order))
	for _, id := range r.order {
		def := r.models[id].Config
		opts = append(opts, LLMOption{ID: id, Name: def.Name, Group: def.Group})
	}
	return opts
}

// NewRegistryFromConfig создаёт и заполняет реестр из конфигурации.
//
// Модель по умолчанию регистрируется первой. Возвращает ошибку
// если хоть одна модель не инициализируется.
func NewRegistryFromConfig(cfg *config.AppConfig) (*Registry, error) {
	registry := NewRegistry()

	for _, id := range cfg.ModelIDs() {
		modelDef := cfg.Models.Definitions[id]

		provider, err := factory.NewLLMProvider(modelDef)
		if err != nil {
			return nil, fmt.Errorf("failed to create provider for model '%s': %w", id, err)
		}

		if err := registry.Register(id, modelDef, provider); err != nil {
			return nil, fmt.Errorf("failed to register model '%s': %w", id, err)
		}
	}

	return registry, nil
}
