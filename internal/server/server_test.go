package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/promptlab/internal/app"
	"github.com/ilkoid/promptlab/pkg/config"
	"github.com/ilkoid/promptlab/pkg/history"
	"github.com/ilkoid/promptlab/pkg/llm"
	"github.com/ilkoid/promptlab/pkg/models"
	"github.com/ilkoid/promptlab/pkg/prompt"
	"github.com/ilkoid/promptlab/pkg/prompts"
)

type stubProvider struct {
	output string
	err    error
	last   llm.Request
}

func (p *stubProvider) Run(_ context.Context, req llm.Request) (*llm.Response, error) {
	p.last = req
	if p.err != nil {
		return nil, p.err
	}
	return &llm.Response{Output: p.output, Raw: json.RawMessage(`{"object":"response"}`)}, nil
}

func newTestServer(t *testing.T, provider llm.Provider) (*Server, *app.AppState) {
	t.Helper()

	registry := models.NewRegistry()
	require.NoError(t, registry.Register("gpt-4.1-mini", config.ModelDef{ModelName: "gpt-4.1-mini", Name: "GPT-4.1", Group: models.GroupChat}, provider))

	ws := &prompts.Workspace{
		Prompts: []models.Prompt{
			{ID: "greet", Name: "Greeting", Content: "Hi {{name}}", Variables: []prompt.Variable{{Name: "name", Value: "Ada"}}},
			{ID: "blank", Name: "Blank"},
		},
		ActivePromptID: "blank",
	}
	lib, err := prompts.NewLibrary(prompts.NewMemoryStore(ws), registry.Options())
	require.NoError(t, err)

	log, err := history.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })

	state := app.NewAppState(config.Default(), lib, registry, log)
	return New(state), state
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestRunPrompt(t *testing.T) {
	provider := &stubProvider{output: "Hello!"}
	s, _ := newTestServer(t, provider)

	body := `{"activePrompt":{"id":"x","content":"Say {{hi}}","isJsonOutput":true},"model":"gpt-4.1-mini","instructions":"Be kind"}`
	rec := do(t, s, http.MethodPost, "/api/runPrompt", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RunPromptResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Output)
	assert.Equal(t, "Hello!", *resp.Output)
	assert.Nil(t, resp.Error)
	assert.JSONEq(t, `{"object":"response"}`, string(resp.FullResponse))

	assert.Equal(t, "Say {{hi}}", provider.last.Input, "content is sent as is")
	assert.Equal(t, "Be kind", provider.last.Instructions)
	assert.True(t, provider.last.JSONOutput)
}

func TestRunPrompt_ProviderError(t *testing.T) {
	s, _ := newTestServer(t, &stubProvider{err: errors.New("invalid api key")})

	rec := do(t, s, http.MethodPost, "/api/runPrompt", `{"activePrompt":{"content":"x"},"model":"gpt-4.1-mini"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RunPromptResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.Output)
	require.NotNil(t, resp.Error)
	assert.Contains(t, *resp.Error, "invalid api key")
}

func TestRunPrompt_NoOutput(t *testing.T) {
	s, _ := newTestServer(t, &stubProvider{output: ""})

	rec := do(t, s, http.MethodPost, "/api/runPrompt", `{"activePrompt":{"content":"x"},"model":"gpt-4.1-mini"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"output":null,"error":null}`, rec.Body.String())
}

func TestRunPrompt_BadBody(t *testing.T) {
	s, _ := newTestServer(t, &stubProvider{output: "x"})

	for _, body := range []string{"{not json", `{"model":"gpt-4.1-mini"}`} {
		rec := do(t, s, http.MethodPost, "/api/runPrompt", body)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)

		var resp RunPromptResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Nil(t, resp.Output)
		assert.NotNil(t, resp.Error)
	}
}

func TestListPromptsAndModels(t *testing.T) {
	s, _ := newTestServer(t, &stubProvider{output: "x"})

	rec := do(t, s, http.MethodGet, "/api/prompts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var ws prompts.Workspace
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ws))
	assert.Len(t, ws.Prompts, 2)
	assert.Equal(t, "blank", ws.ActivePromptID)

	rec = do(t, s, http.MethodGet, "/api/models", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"gpt-4.1-mini"`)
}

func TestRunStoredPromptAndHistory(t *testing.T) {
	provider := &stubProvider{output: `{"ok":true}`}
	s, state := newTestServer(t, provider)

	rec := do(t, s, http.MethodPost, "/api/prompts/greet/run", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var run RunResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.Equal(t, `{"ok":true}`, run.Output)
	assert.Equal(t, prompt.KindPlain, run.Display.Kind)
	assert.NotZero(t, run.HistoryID)
	assert.Equal(t, "Hi Ada", provider.last.Input)
	assert.Equal(t, "blank", state.Library.ActiveID(), "running by id must not switch the active prompt")

	rec = do(t, s, http.MethodGet, "/api/prompts/greet/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []history.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Hi Ada", entries[0].Prompt)

	rec = do(t, s, http.MethodGet, "/api/prompts/blank/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestRunStoredPrompt_Errors(t *testing.T) {
	s, _ := newTestServer(t, &stubProvider{output: "x"})

	rec := do(t, s, http.MethodPost, "/api/prompts/missing/run", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/prompts/blank/run", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/prompts/missing/history", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, &stubProvider{output: "x"})
	rec := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
