package prompts

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ilkoid/promptlab/pkg/utils"
)

// FileStore хранит библиотеку промптов в YAML файле.
type FileStore struct {
	path string
}

// NewFileStore создаёт FileStore для указанного пути.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path возвращает путь к файлу.
func (s *FileStore) Path() string {
	return s.path
}

// Load читает библиотеку из файла.
//
// Отсутствующий файл - встроенные промпты. Повреждённый файл логируется
// и тоже заменяется встроенными промптами; файл при этом не трогается
// до следующего Save.
func (s *FileStore) Load() (*Workspace, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			utils.Debug("Prompts file not found, using defaults", "path", s.path)
			return DefaultWorkspace(), nil
		}
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}

	ws, err := Decode(data)
	if err != nil {
		utils.Error("Failed to parse prompts file, using defaults", "path", s.path, "error", err)
		return DefaultWorkspace(), nil
	}

	return ws, nil
}

// Save атомарно записывает библиотеку: временный файл + rename.
func (s *FileStore) Save(ws *Workspace) error {
	data, err := Encode(ws)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create prompts dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".prompts-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write prompts: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace prompts file: %w", err)
	}

	return nil
}

// Encode сериализует рабочее пространство в YAML.
func Encode(ws *Workspace) ([]byte, error) {
	data, err := yaml.Marshal(ws)
	if err != nil {
		return nil, fmt.Errorf("failed to encode prompts: %w", err)
	}
	return data, nil
}

// Decode разбирает YAML рабочего пространства.
// Файл без ключа prompts получает встроенные промпты.
func Decode(data []byte) (*Workspace, error) {
	var ws Workspace
	if err := yaml.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("failed to parse prompts YAML: %w", err)
	}
	if ws.Prompts == nil {
		ws.Prompts = DefaultWorkspace().Prompts
	}
	return &ws, nil
}
