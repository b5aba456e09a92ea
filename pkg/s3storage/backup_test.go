package s3storage

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/promptlab/pkg/config"
	"github.com/ilkoid/promptlab/pkg/models"
	"github.com/ilkoid/promptlab/pkg/prompts"
)

// fakeStore - ObjectStore в памяти.
type fakeStore struct {
	objects map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (f *fakeStore) Put(_ context.Context, key string, data []byte) error {
	f.objects[key] = append([]byte(nil), data...)
	return nil
}

func (f *fakeStore) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return data, nil
}

func (f *fakeStore) List(_ context.Context, prefix string) ([]StoredObject, error) {
	var out []StoredObject
	for k, v := range f.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, StoredObject{Key: k, Size: int64(len(v))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func TestBackup_PushPull(t *testing.T) {
	ctx := context.Background()
	remote := newFakeStore()
	backup := NewBackup(remote, config.DefaultBackupKey)

	ws := &prompts.Workspace{
		Prompts:        []models.Prompt{{ID: "p1", Name: "One", Content: "{{x}}"}},
		ActivePromptID: "p1",
		SelectedLLM:    "o3-mini",
	}
	require.NoError(t, backup.Push(ctx, ws))

	objs, err := remote.List(ctx, "promptlab/")
	require.NoError(t, err)
	require.Len(t, objs, 1)

	local := prompts.NewMemoryStore(nil)
	pulled, err := backup.Pull(ctx, local)
	require.NoError(t, err)
	assert.Equal(t, "p1", pulled.ActivePromptID)

	saved, err := local.Load()
	require.NoError(t, err)
	assert.Equal(t, "One", saved.Prompts[0].Name)
}

func TestBackup_PullMissing(t *testing.T) {
	backup := NewBackup(newFakeStore(), "missing.yaml")

	_, err := backup.Pull(context.Background(), prompts.NewMemoryStore(nil))
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestBackup_PullCorrupt(t *testing.T) {
	remote := newFakeStore()
	remote.objects["bad.yaml"] = []byte("prompts: [")

	_, err := NewBackup(remote, "bad.yaml").Pull(context.Background(), prompts.NewMemoryStore(nil))
	assert.Error(t, err)
}

func TestNew_RequiresConfig(t *testing.T) {
	_, err := New(config.S3Config{})
	assert.Error(t, err)

	c, err := New(config.S3Config{Endpoint: "localhost:9000", Bucket: "b"})
	require.NoError(t, err)
	assert.NotNil(t, c)
}
