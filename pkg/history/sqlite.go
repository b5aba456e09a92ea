package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ilkoid/promptlab/pkg/prompt"
)

const schema = `
CREATE TABLE IF NOT EXISTS history (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	prompt_id      TEXT    NOT NULL,
	prompt         TEXT    NOT NULL,
	result         TEXT    NOT NULL,
	timestamp_ms   INTEGER NOT NULL,
	variables      TEXT,
	response       TEXT,
	model          TEXT    NOT NULL DEFAULT '',
	instructions   TEXT    NOT NULL DEFAULT '',
	is_json_output INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_history_prompt_id ON history(prompt_id);
CREATE INDEX IF NOT EXISTS idx_history_model ON history(model);
`

const selectColumns = `SELECT id, prompt_id, prompt, result, timestamp_ms, variables, response, model, instructions, is_json_output FROM history`

// fieldColumns - белый список полей для QueryByField.
var fieldColumns = map[string]string{
	FieldPromptID: "prompt_id",
	FieldModel:    "model",
}

// SQLiteLog - журнал истории в SQLite файле.
type SQLiteLog struct {
	db *sql.DB
}

// Проверка что SQLiteLog реализует Log
var _ Log = (*SQLiteLog)(nil)

// OpenSQLite открывает (или создаёт) базу истории и применяет схему.
//
// path ":memory:" открывает базу в памяти (для тестов).
func OpenSQLite(path string) (*SQLiteLog, error) {
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?_busy_timeout=5000&_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// Одно соединение: база в памяти живёт в рамках соединения,
	// а запись в SQLite всё равно последовательная.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}

	return &SQLiteLog{db: db}, nil
}

// Append добавляет запись. Пустой список переменных хранится как NULL.
func (l *SQLiteLog) Append(ctx context.Context, e *Entry) (int64, error) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	var vars sql.NullString
	if len(e.Variables) > 0 {
		data, err := json.Marshal(e.Variables)
		if err != nil {
			return 0, fmt.Errorf("encode variables: %w", err)
		}
		vars = sql.NullString{String: string(data), Valid: true}
	}

	var resp sql.NullString
	if len(e.Response) > 0 && string(e.Response) != "null" {
		resp = sql.NullString{String: string(e.Response), Valid: true}
	}

	res, err := l.db.ExecContext(ctx,
		`INSERT INTO history (prompt_id, prompt, result, timestamp_ms, variables, response, model, instructions, is_json_output)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.PromptID, e.Prompt, e.Result, e.Timestamp.UnixMilli(), vars, resp, e.Model, e.Instructions, e.IsJSONOutput,
	)
	if err != nil {
		return 0, fmt.Errorf("insert history entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("history entry id: %w", err)
	}
	e.ID = id

	return id, nil
}

// QueryByField возвращает записи с полем field == value.
func (l *SQLiteLog) QueryByField(ctx context.Context, field, value string) ([]Entry, error) {
	column, ok := fieldColumns[field]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	return l.query(ctx, selectColumns+" WHERE "+column+" = ? ORDER BY id", value)
}

// All возвращает все записи.
func (l *SQLiteLog) All(ctx context.Context) ([]Entry, error) {
	return l.query(ctx, selectColumns+" ORDER BY id")
}

// Get возвращает запись по id.
func (l *SQLiteLog) Get(ctx context.Context, id int64) (*Entry, error) {
	row := l.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrEntryNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	return e, nil
}

// Clear удаляет историю промпта или всю историю.
func (l *SQLiteLog) Clear(ctx context.Context, promptID string) error {
	var err error
	if promptID == "" {
		_, err = l.db.ExecContext(ctx, `DELETE FROM history`)
	} else {
		_, err = l.db.ExecContext(ctx, `DELETE FROM history WHERE prompt_id = ?`, promptID)
	}
	if err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// Close закрывает базу.
func (l *SQLiteLog) Close() error {
	return l.db.Close()
}

func (l *SQLiteLog) query(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}

	return entries, nil
}

// scanner - общий интерфейс *sql.Row и *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*Entry, error) {
	var (
		e      Entry
		ts     int64
		vars   sql.NullString
		resp   sql.NullString
		isJSON bool
	)

	if err := s.Scan(&e.ID, &e.PromptID, &e.Prompt, &e.Result, &ts, &vars, &resp, &e.Model, &e.Instructions, &isJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan history entry: %w", err)
	}

	e.Timestamp = time.UnixMilli(ts)
	e.IsJSONOutput = isJSON

	if vars.Valid {
		var vv []prompt.Variable
		if err := json.Unmarshal([]byte(vars.String), &vv); err != nil {
			return nil, fmt.Errorf("decode variables of entry %d: %w", e.ID, err)
		}
		e.Variables = vv
	}
	if resp.Valid {
		e.Response = json.RawMessage(resp.String)
	}

	return &e, nil
}
