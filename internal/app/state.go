// Package app связывает библиотеку промптов, реестр моделей и историю
// в одно состояние приложения.
//
// AppState используется CLI, HTTP сервером и TUI. Thread-safe доступ к
// флагу занятости через sync.RWMutex; ошибки возвращаются, никаких panic.
package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/ilkoid/promptlab/pkg/config"
	"github.com/ilkoid/promptlab/pkg/history"
	"github.com/ilkoid/promptlab/pkg/models"
	"github.com/ilkoid/promptlab/pkg/prompts"
)

// AppState - состояние приложения.
type AppState struct {
	Config   *config.AppConfig
	Library  *prompts.Library
	Registry *models.Registry
	History  history.Log
	Runner   *Runner

	// CommandRegistry - команды строки ввода TUI
	CommandRegistry *CommandRegistry

	// Clipboard - запись в буфер обмена; nil - SystemClipboard
	Clipboard ClipboardWriter

	// mu защищает isProcessing
	mu sync.RWMutex

	// isProcessing - идёт запрос к модели (spinner в UI)
	isProcessing bool
}

// NewAppState собирает состояние из готовых компонентов.
func NewAppState(cfg *config.AppConfig, lib *prompts.Library, registry *models.Registry, log history.Log) *AppState {
	s := &AppState{
		Config:          cfg,
		Library:         lib,
		Registry:        registry,
		History:         log,
		Runner:          NewRunner(lib, registry, log),
		CommandRegistry: NewCommandRegistry(),
	}
	SetupPromptCommands(s.CommandRegistry)
	return s
}

// Bootstrap создаёт состояние из конфигурации: реестр моделей,
// библиотеку в YAML файле и SQLite историю.
func Bootstrap(cfg *config.AppConfig) (*AppState, error) {
	// 1. Модели
	registry, err := models.NewRegistryFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	// 2. Библиотека промптов
	lib, err := prompts.NewLibrary(prompts.NewFileStore(cfg.Storage.PromptsFile), registry.Options())
	if err != nil {
		return nil, err
	}

	// 3. История
	log, err := history.OpenSQLite(cfg.Storage.HistoryDB)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}

	return NewAppState(cfg, lib, registry, log), nil
}

// Close освобождает ресурсы.
func (s *AppState) Close() error {
	if s.History != nil {
		return s.History.Close()
	}
	return nil
}

// SetProcessing устанавливает флаг занятости.
func (s *AppState) SetProcessing(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isProcessing = v
}

// IsProcessing возвращает флаг занятости.
func (s *AppState) IsProcessing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isProcessing
}

// ActiveHistory возвращает историю активного промпта, новые записи первыми.
func (s *AppState) ActiveHistory(ctx context.Context) ([]history.Entry, error) {
	if s.History == nil {
		return nil, nil
	}
	id := s.Library.ActiveID()
	if id == "" {
		return nil, nil
	}
	return history.ForPrompt(ctx, s.History, id)
}
