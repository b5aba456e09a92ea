package prompts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/promptlab/pkg/models"
	"github.com/ilkoid/promptlab/pkg/prompt"
)

func TestFileStore_MissingFileGivesDefaults(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "prompts.yaml"))

	ws, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, ws.Prompts, 9)
	assert.Equal(t, "ad-hoc", ws.ActivePromptID)
}

func TestFileStore_CorruptFileGivesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("prompts: [unterminated"), 0o644))

	ws, err := NewFileStore(path).Load()
	require.NoError(t, err)
	assert.Len(t, ws.Prompts, 9)
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prompts.yaml")
	store := NewFileStore(path)

	ws := &Workspace{
		Prompts: []models.Prompt{{
			ID:           "p1",
			Name:         "Greeting",
			Content:      "Hello {{name}}",
			IsJSONOutput: true,
			Variables:    []prompt.Variable{{Name: "name", Value: "Ada"}},
			LLMID:        "o3-mini",
			Instructions: "Be kind",
		}},
		ActivePromptID: "p1",
		SelectedLLM:    "o3-mini",
	}
	require.NoError(t, store.Save(ws))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, ws, loaded)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must be renamed away")
}

func TestFileStore_EmptyListIsKept(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	store := NewFileStore(path)

	require.NoError(t, store.Save(&Workspace{Prompts: []models.Prompt{}}))

	ws, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, ws.Prompts)
}

func TestLibrary_PersistsThroughFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")

	lib, err := NewLibrary(NewFileStore(path), models.DefaultLLMOptions())
	require.NoError(t, err)
	p, err := lib.Add()
	require.NoError(t, err)
	require.NoError(t, lib.SetContent(p.ID, "persisted"))

	reopened, err := NewLibrary(NewFileStore(path), models.DefaultLLMOptions())
	require.NoError(t, err)
	active, ok := reopened.Active()
	require.True(t, ok)
	assert.Equal(t, p.ID, active.ID)
	assert.Equal(t, "persisted", active.Content)
}
