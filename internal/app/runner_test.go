package app

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/promptlab/pkg/config"
	"github.com/ilkoid/promptlab/pkg/history"
	"github.com/ilkoid/promptlab/pkg/llm"
	"github.com/ilkoid/promptlab/pkg/models"
	"github.com/ilkoid/promptlab/pkg/prompt"
	"github.com/ilkoid/promptlab/pkg/prompts"
)

// fakeProvider запоминает запросы и отвечает заданным текстом.
type fakeProvider struct {
	mu       sync.Mutex
	requests []llm.Request
	output   string
	err      error
}

func (f *fakeProvider) Run(_ context.Context, req llm.Request) (*llm.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Response{Output: f.output, Raw: json.RawMessage(`{"id":"resp-1"}`)}, nil
}

// failingLog - журнал, который не может писать.
type failingLog struct{ history.Log }

func (failingLog) Append(context.Context, *history.Entry) (int64, error) {
	return 0, errors.New("disk full")
}

func newTestState(t *testing.T, ws *prompts.Workspace, provider llm.Provider, log history.Log) *AppState {
	t.Helper()

	registry := models.NewRegistry()
	require.NoError(t, registry.Register("gpt-4.1-mini",
		config.ModelDef{ModelName: "gpt-4.1-mini", Name: "GPT-4.1", Group: models.GroupChat, MaxTokens: 256}, provider))
	require.NoError(t, registry.Register("o3-mini",
		config.ModelDef{ModelName: "o3-mini", Name: "o3", Group: models.GroupReasoning}, provider))

	lib, err := prompts.NewLibrary(prompts.NewMemoryStore(ws), registry.Options())
	require.NoError(t, err)

	return NewAppState(config.Default(), lib, registry, log)
}

func openLog(t *testing.T) history.Log {
	t.Helper()
	log, err := history.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })
	return log
}

func greetingWorkspace(jsonOut bool) *prompts.Workspace {
	return &prompts.Workspace{
		Prompts: []models.Prompt{{
			ID:           "greet",
			Name:         "Greeting",
			Content:      "Hello {{name}}, meet {{ other }}",
			Instructions: "Be brief",
			IsJSONOutput: jsonOut,
			Variables:    []prompt.Variable{{Name: "name", Value: "Ada"}},
		}},
		ActivePromptID: "greet",
		SelectedLLM:    "gpt-4.1-mini",
	}
}

func TestRunner_Run(t *testing.T) {
	provider := &fakeProvider{output: "Hi!"}
	log := openLog(t)
	s := newTestState(t, greetingWorkspace(false), provider, log)

	res, err := s.Runner.Run(context.Background())
	require.NoError(t, err)

	// Запрос
	require.Len(t, provider.requests, 1)
	req := provider.requests[0]
	assert.Equal(t, "Hello Ada, meet {{other}}", req.Input)
	assert.Equal(t, "Be brief", req.Instructions)
	assert.Equal(t, "gpt-4.1-mini", req.Model)
	assert.Equal(t, 256, req.MaxTokens)
	assert.False(t, req.JSONOutput)

	// Результат
	assert.Equal(t, "Hi!", res.Output)
	assert.Equal(t, prompt.KindPlain, res.Display.Kind)
	assert.NoError(t, res.HistoryErr)

	// История
	entries, err := history.ForPrompt(context.Background(), log, "greet")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, res.Entry.ID, e.ID)
	assert.Equal(t, "Hello Ada, meet {{other}}", e.Prompt)
	assert.Equal(t, "Hi!", e.Result)
	assert.Equal(t, "gpt-4.1-mini", e.Model)
	assert.Equal(t, "Be brief", e.Instructions)
	assert.Equal(t, []prompt.Variable{{Name: "name", Value: "Ada"}}, e.Variables)
	assert.JSONEq(t, `{"id":"resp-1"}`, string(e.Response))
}

func TestRunner_RunJSON(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		wantKind prompt.DisplayKind
	}{
		{"valid json", `{"b":1,"a":[1,2]}`, prompt.KindJSON},
		{"invalid json", "Sure! {oops", prompt.KindJSONError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{output: tt.output}
			s := newTestState(t, greetingWorkspace(true), provider, nil)

			res, err := s.Runner.Run(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, res.Display.Kind)
			assert.True(t, provider.requests[0].JSONOutput)
		})
	}
}

func TestRunner_Errors(t *testing.T) {
	t.Run("no active prompt", func(t *testing.T) {
		s := newTestState(t, &prompts.Workspace{Prompts: []models.Prompt{}}, &fakeProvider{output: "x"}, nil)
		_, err := s.Runner.Run(context.Background())
		assert.ErrorIs(t, err, ErrNoActivePrompt)
	})

	t.Run("empty prompt", func(t *testing.T) {
		ws := &prompts.Workspace{Prompts: []models.Prompt{{ID: "e", Content: "  "}}}
		provider := &fakeProvider{output: "x"}
		s := newTestState(t, ws, provider, nil)
		_, err := s.Runner.Run(context.Background())
		assert.ErrorIs(t, err, ErrEmptyPrompt)
		assert.Empty(t, provider.requests, "model must not be called")
	})

	t.Run("instructions only", func(t *testing.T) {
		ws := &prompts.Workspace{Prompts: []models.Prompt{{ID: "i", Instructions: "Say hi"}}}
		s := newTestState(t, ws, &fakeProvider{output: "hi"}, nil)
		_, err := s.Runner.Run(context.Background())
		assert.NoError(t, err)
	})

	t.Run("empty output", func(t *testing.T) {
		s := newTestState(t, greetingWorkspace(false), &fakeProvider{output: ""}, nil)
		_, err := s.Runner.Run(context.Background())
		assert.ErrorIs(t, err, ErrNoOutput)
	})

	t.Run("provider empty output error", func(t *testing.T) {
		s := newTestState(t, greetingWorkspace(false), &fakeProvider{err: llm.ErrEmptyOutput}, nil)
		_, err := s.Runner.Run(context.Background())
		assert.ErrorIs(t, err, ErrNoOutput)
	})

	t.Run("provider error", func(t *testing.T) {
		boom := errors.New("rate limited")
		s := newTestState(t, greetingWorkspace(false), &fakeProvider{err: boom}, nil)
		_, err := s.Runner.Run(context.Background())
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "gpt-4.1-mini")
	})
}

func TestRunner_HistoryFailureIsNotFatal(t *testing.T) {
	s := newTestState(t, greetingWorkspace(false), &fakeProvider{output: "ok"}, failingLog{})

	res, err := s.Runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Output)
	assert.EqualError(t, res.HistoryErr, "disk full")
}

func TestRunner_VariableSnapshotIsDetached(t *testing.T) {
	log := openLog(t)
	s := newTestState(t, greetingWorkspace(false), &fakeProvider{output: "ok"}, log)

	_, err := s.Runner.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.Library.SetVariableValue("", 0, "Grace"))

	entries, err := history.ForPrompt(context.Background(), log, "greet")
	require.NoError(t, err)
	assert.Equal(t, "Ada", entries[0].Variables[0].Value)
}

func TestRunner_UsesSelectedModel(t *testing.T) {
	provider := &fakeProvider{output: "ok"}
	s := newTestState(t, greetingWorkspace(false), provider, nil)
	require.NoError(t, s.Library.SetModel("o3-mini"))

	res, err := s.Runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "o3-mini", res.Model)
	assert.Equal(t, "o3-mini", provider.requests[0].Model)
}

func TestRunner_RunRaw(t *testing.T) {
	provider := &fakeProvider{output: "raw ok"}
	log := openLog(t)
	s := newTestState(t, greetingWorkspace(false), provider, log)
	s.Runner.now = func() time.Time { return time.Unix(0, 0) }

	out, raw, err := s.Runner.RunRaw(context.Background(), "{{x}} as is", "unknown-model", "", true)
	require.NoError(t, err)
	assert.Equal(t, "raw ok", out)
	assert.NotEmpty(t, raw)
	assert.Equal(t, "{{x}} as is", provider.requests[0].Input)
	assert.Equal(t, "gpt-4.1-mini", provider.requests[0].Model, "unknown model falls back")

	all, err := log.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all, "raw runs are not recorded")
}

func TestRunner_RunPrompt(t *testing.T) {
	ws := greetingWorkspace(false)
	ws.Prompts = append(ws.Prompts, models.Prompt{
		ID:      "reason",
		Name:    "Reasoning",
		Content: "Think about {{topic}}",
		LLMID:   "o3-mini",
		Variables: []prompt.Variable{
			{Name: "topic", Value: "bees"},
		},
	})

	provider := &fakeProvider{output: "ok"}
	log := openLog(t)
	s := newTestState(t, ws, provider, log)

	res, err := s.Runner.RunPrompt(context.Background(), "reason")
	require.NoError(t, err)
	assert.Equal(t, "o3-mini", res.Model, "prompt's own model wins")
	assert.Equal(t, "Think about bees", provider.requests[0].Input)
	assert.Equal(t, "reason", res.Entry.PromptID)
	assert.Equal(t, "greet", s.Library.ActiveID(), "active prompt is untouched")
	assert.Equal(t, "gpt-4.1-mini", s.Library.SelectedLLM())

	_, err = s.Runner.RunPrompt(context.Background(), "missing")
	assert.ErrorIs(t, err, prompts.ErrPromptNotFound)

	_, err = s.Runner.RunPrompt(context.Background(), "")
	assert.ErrorIs(t, err, prompts.ErrPromptNotFound)
}

func TestRunner_RunPrompt_ConcurrentWithSelect(t *testing.T) {
	ws := greetingWorkspace(false)
	ws.Prompts = append(ws.Prompts, models.Prompt{ID: "other", Name: "Other", Content: "Other text"})

	provider := &fakeProvider{output: "ok"}
	log := openLog(t)
	s := newTestState(t, ws, provider, log)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := s.Runner.RunPrompt(context.Background(), "greet")
			assert.NoError(t, err)
		}()
		go func(i int) {
			defer wg.Done()
			id := "other"
			if i%2 == 0 {
				id = "greet"
			}
			assert.NoError(t, s.Library.Select(id))
		}(i)
	}
	wg.Wait()

	entries, err := history.ForPrompt(context.Background(), log, "greet")
	require.NoError(t, err)
	assert.Len(t, entries, 20)
	for _, e := range entries {
		assert.Equal(t, "Hello Ada, meet {{other}}", e.Prompt)
	}
}
