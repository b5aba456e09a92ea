package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/promptlab/internal/app"
	"github.com/ilkoid/promptlab/pkg/config"
	"github.com/ilkoid/promptlab/pkg/models"
	"github.com/ilkoid/promptlab/pkg/prompt"
	"github.com/ilkoid/promptlab/pkg/prompts"
)

func TestParseSet(t *testing.T) {
	tests := []struct {
		in        string
		wantName  string
		wantValue string
		wantErr   bool
	}{
		{"name=Ada", "name", "Ada", false},
		{" name =a=b", "name", "a=b", false},
		{"name=", "name", "", false},
		{"novalue", "", "", true},
		{"=x", "", "", true},
		{"my var=x", "myvar", "x", false},
		{"$$=x", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			name, value, err := parseSet(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantValue, value)
		})
	}
}

func TestOverrideVariables(t *testing.T) {
	vars := []prompt.Variable{{Name: "a", Value: "1"}, {Name: "b", Value: "2"}}

	out, err := overrideVariables(vars, []string{"b=20", "c=30"})
	require.NoError(t, err)
	assert.Equal(t, []prompt.Variable{{Name: "a", Value: "1"}, {Name: "b", Value: "20"}, {Name: "c", Value: "30"}}, out)
	assert.Equal(t, "2", vars[1].Value, "input is not modified")
}

func TestVariableIndex(t *testing.T) {
	p := models.Prompt{ID: "p", Variables: []prompt.Variable{{Name: "a"}, {Name: " b "}}}

	idx, err := variableIndex(p, "2")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	idx, err = variableIndex(p, "b")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	_, err = variableIndex(p, "zzz")
	assert.Error(t, err)

	// Числовое имя находится по имени, а не по номеру строки
	numeric := models.Prompt{ID: "p", Variables: []prompt.Variable{{Name: "a"}, {Name: "b"}, {Name: "2"}}}
	idx, err = variableIndex(numeric, "2")
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	idx, err = variableIndex(numeric, "1")
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	assert.Equal(t, -1, variableByName(p, "zzz"))
}

func TestApplySets(t *testing.T) {
	registry := models.NewRegistry()
	require.NoError(t, registry.Register("gpt-4.1-mini", config.ModelDef{ModelName: "gpt-4.1-mini"}, nil))
	ws := &prompts.Workspace{
		Prompts:        []models.Prompt{{ID: "p", Content: "{{a}} {{myvar}}", Variables: []prompt.Variable{}}},
		ActivePromptID: "p",
	}
	lib, err := prompts.NewLibrary(prompts.NewMemoryStore(ws), registry.Options())
	require.NoError(t, err)
	state := app.NewAppState(config.Default(), lib, registry, nil)

	require.NoError(t, applySets(state, "p", []string{"a=1", "a=2", "my var=x"}))
	require.NoError(t, applySets(state, "p", []string{"my var=y"}))

	p, err := lib.Get("p")
	require.NoError(t, err)
	assert.Equal(t, []prompt.Variable{{Name: "a", Value: "2"}, {Name: "myvar", Value: "y"}}, p.Variables)
	assert.Equal(t, "2 y", p.Render())

	assert.Error(t, applySets(state, "p", []string{"novalue"}))
	assert.ErrorIs(t, applySets(state, "missing", []string{"a=1"}), prompts.ErrPromptNotFound)
}

func TestCLI_Copy(t *testing.T) {
	var copied []string
	prev := clipboardWriter
	clipboardWriter = func(text string) error {
		copied = append(copied, text)
		return nil
	}
	t.Cleanup(func() { clipboardWriter = prev })

	exec := newTestCLI(t)

	out, err := exec("prompts", "copy", "few-shot")
	require.NoError(t, err)
	assert.Contains(t, out, "Copied to clipboard.")

	out, err = exec("prompts", "show", "few-shot")
	require.NoError(t, err)
	require.Len(t, copied, 1)
	assert.NotEmpty(t, copied[0])
	assert.Contains(t, out, strings.SplitN(copied[0], "\n", 2)[0])

	_, err = exec("prompts", "copy", "does-not-exist")
	assert.Error(t, err)
	assert.Len(t, copied, 1)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("short", 10))
	assert.Equal(t, "line one …", preview("line one\nline two", 20))
	assert.Equal(t, "abc…", preview("abcdef", 3))
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "<empty>", maskKey(""))
	assert.Equal(t, "*****", maskKey("short"))
	assert.Equal(t, "sk-a...wxyz", maskKey("sk-abcdefghijklmnopqrstuvwxyz"))
}

func TestPrintVariables(t *testing.T) {
	p := models.Prompt{
		Content:   "{{x}} {{x}}",
		Variables: []prompt.Variable{{Name: "x", Value: "1"}, {Name: "x"}, {Name: ""}},
	}

	var buf bytes.Buffer
	printVariables(&buf, p)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "duplicate, used 2x")
	assert.Contains(t, lines[2], "required")
}

// TestCLI_PromptWorkflow прогоняет команды на временном конфиге без сетевых вызовов.
func TestCLI_PromptWorkflow(t *testing.T) {
	exec := newTestCLI(t)

	out, err := exec("prompts", "add", "--name", "Greeting")
	require.NoError(t, err)
	id := strings.TrimSpace(out)
	assert.True(t, strings.HasPrefix(id, "prompt-"))

	_, err = exec("prompts", "edit", "--text", "Hello {{name}} from {{place}}")
	require.NoError(t, err)

	_, err = exec("vars", "set", "name", "Ada")
	require.NoError(t, err)

	out, err = exec("render", "--set", "place=London")
	require.NoError(t, err)
	assert.Contains(t, out, "Hello Ada from London")

	out, err = exec("vars", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "used 1x")

	out, err = exec("prompts", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "* "+id)

	_, err = exec("prompts", "select", "does-not-exist")
	assert.Error(t, err)

	out, err = exec("history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No history.")
}

// newTestCLI пишет временный конфиг и возвращает функцию запуска команд.
func newTestCLI(t *testing.T) func(args ...string) (string, error) {
	t.Helper()

	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(`
models:
  default: gpt-4.1-mini
  definitions:
    gpt-4.1-mini:
      provider: openai
      api_key: test
storage:
  prompts_file: prompts.yaml
  history_db: history.db
app:
  log_file: promptlab.log
`), 0o644))

	return func(args ...string) (string, error) {
		root := newRootCmd()
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetErr(&out)
		root.SetIn(strings.NewReader(""))
		root.SetArgs(append([]string{"--config", cfgFile}, args...))
		err := root.Execute()
		return out.String(), err
	}
}
