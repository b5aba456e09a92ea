// Package history хранит журнал запусков промптов.
//
// Журнал append-only: записи получают автоинкрементный id, выборка идёт по
// полям promptId или model. Удаление возможно только целиком или по промпту.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/ilkoid/promptlab/pkg/prompt"
)

// Поля, по которым разрешена выборка QueryByField.
const (
	FieldPromptID = "promptId"
	FieldModel    = "model"
)

// ErrUnknownField возвращается для поля, по которому выборка не поддерживается.
var ErrUnknownField = errors.New("unknown history field")

// ErrEntryNotFound возвращается когда записи с таким id нет.
var ErrEntryNotFound = errors.New("history entry not found")

// Entry - одна запись о запуске промпта.
type Entry struct {
	ID           int64             `json:"id"`
	PromptID     string            `json:"promptId"`
	Prompt       string            `json:"prompt"` // текст после подстановки переменных
	Result       string            `json:"result"`
	Timestamp    time.Time         `json:"timestamp"`
	Variables    []prompt.Variable `json:"variables,omitempty"`
	Response     json.RawMessage   `json:"response,omitempty"` // полный ответ провайдера
	Model        string            `json:"model,omitempty"`
	Instructions string            `json:"instructions,omitempty"`
	IsJSONOutput bool              `json:"isJsonOutput"`
}

// Log - порт журнала истории.
type Log interface {
	// Append добавляет запись и возвращает присвоенный id.
	Append(ctx context.Context, e *Entry) (int64, error)

	// QueryByField возвращает записи, у которых поле field равно value,
	// в порядке добавления.
	QueryByField(ctx context.Context, field, value string) ([]Entry, error)

	// All возвращает все записи в порядке добавления.
	All(ctx context.Context) ([]Entry, error)

	// Get возвращает запись по id.
	Get(ctx context.Context, id int64) (*Entry, error)

	// Clear удаляет записи промпта promptID; пустой promptID удаляет всё.
	Clear(ctx context.Context, promptID string) error

	Close() error
}

// ForPrompt возвращает историю промпта, новые записи первыми.
func ForPrompt(ctx context.Context, log Log, promptID string) ([]Entry, error) {
	entries, err := log.QueryByField(ctx, FieldPromptID, promptID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return entries[i].ID > entries[j].ID
		}
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})

	return entries, nil
}
