package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/promptlab/pkg/history"
)

func exec(t *testing.T, s *AppState, input string) CommandResultMsg {
	t.Helper()
	cmd := s.CommandRegistry.Execute(input, s)
	require.NotNil(t, cmd)
	msg, ok := cmd().(CommandResultMsg)
	require.True(t, ok)
	return msg
}

func TestCommandRegistry_Unknown(t *testing.T) {
	s := newTestState(t, greetingWorkspace(false), &fakeProvider{output: "x"}, nil)

	assert.Nil(t, s.CommandRegistry.Execute("   ", s))
	assert.Error(t, exec(t, s, "frobnicate").Err)
	assert.Contains(t, s.CommandRegistry.GetCommands(), "var")
}

func TestCommands_Variables(t *testing.T) {
	s := newTestState(t, greetingWorkspace(false), &fakeProvider{output: "x"}, nil)

	msg := exec(t, s, "var add other Grace Hopper")
	require.NoError(t, msg.Err)
	assert.True(t, msg.Changed)

	p, _ := s.Library.Active()
	require.Len(t, p.Variables, 2)
	assert.Equal(t, "other", p.Variables[1].Name)
	assert.Equal(t, "Grace Hopper", p.Variables[1].Value)
	assert.Equal(t, "Hello Ada, meet Grace Hopper", p.Render())

	require.NoError(t, exec(t, s, "var set 1 Linus").Err)
	require.NoError(t, exec(t, s, "var name 2 friend").Err)
	p, _ = s.Library.Active()
	assert.Equal(t, "Linus", p.Variables[0].Value)
	assert.Equal(t, "friend", p.Variables[1].Name)

	assert.Error(t, exec(t, s, "var rm 9").Err)
	assert.Error(t, exec(t, s, "var rm x").Err)
	require.NoError(t, exec(t, s, "var rm 2").Err)

	msg = exec(t, s, "var sync")
	require.NoError(t, msg.Err)
	assert.Equal(t, "Added: other", msg.Output)
}

func TestCommands_PromptLifecycle(t *testing.T) {
	s := newTestState(t, greetingWorkspace(false), &fakeProvider{output: "x"}, nil)

	require.NoError(t, exec(t, s, "new").Err)
	newID := s.Library.ActiveID()
	assert.NotEqual(t, "greet", newID)

	require.NoError(t, exec(t, s, "rename My prompt").Err)
	p, _ := s.Library.Active()
	assert.Equal(t, "My prompt", p.Name)

	assert.Equal(t, "JSON output: true", exec(t, s, "json").Output)
	require.NoError(t, exec(t, s, "model o3-mini").Err)
	assert.Error(t, exec(t, s, "model gpt-99").Err)

	require.NoError(t, exec(t, s, "delete").Err)
	assert.Equal(t, "greet", s.Library.ActiveID(), "previous prompt becomes active")

	require.NoError(t, exec(t, s, "select greet").Err)
	assert.Error(t, exec(t, s, "select").Err)

	assert.Contains(t, exec(t, s, "find greet").Output, "greet")
}

func TestCommands_HistoryClear(t *testing.T) {
	log := openLog(t)
	s := newTestState(t, greetingWorkspace(false), &fakeProvider{output: "x"}, log)

	_, err := s.Runner.Run(context.Background())
	require.NoError(t, err)

	require.NoError(t, exec(t, s, "history clear").Err)

	entries, err := history.ForPrompt(context.Background(), log, "greet")
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = s.ActiveHistory(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}
