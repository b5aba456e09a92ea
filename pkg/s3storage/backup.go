package s3storage

import (
	"context"
	"fmt"

	"github.com/ilkoid/promptlab/pkg/prompts"
	"github.com/ilkoid/promptlab/pkg/utils"
)

// Backup копирует библиотеку промптов в объектное хранилище и обратно.
type Backup struct {
	store ObjectStore
	key   string
}

// NewBackup создаёт Backup для объекта key.
func NewBackup(store ObjectStore, key string) *Backup {
	return &Backup{store: store, key: key}
}

// Push сохраняет рабочее пространство в хранилище.
func (b *Backup) Push(ctx context.Context, ws *prompts.Workspace) error {
	data, err := prompts.Encode(ws)
	if err != nil {
		return err
	}

	if err := b.store.Put(ctx, b.key, data); err != nil {
		return err
	}

	utils.Info("Prompts backup pushed", "key", b.key, "prompts", len(ws.Prompts), "bytes", len(data))
	return nil
}

// Pull скачивает копию и записывает её в локальное хранилище.
// Локальная библиотека заменяется целиком.
func (b *Backup) Pull(ctx context.Context, local prompts.Store) (*prompts.Workspace, error) {
	data, err := b.store.Get(ctx, b.key)
	if err != nil {
		return nil, err
	}

	ws, err := prompts.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("backup %s is corrupt: %w", b.key, err)
	}

	if err := local.Save(ws); err != nil {
		return nil, fmt.Errorf("failed to save pulled prompts: %w", err)
	}

	utils.Info("Prompts backup pulled", "key", b.key, "prompts", len(ws.Prompts))
	return ws, nil
}
