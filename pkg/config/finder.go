package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// PathFinder ищет config.yaml.
//
// Порядок поиска:
// 1. Флаг --config (если указан)
// 2. Текущая директория (./config.yaml)
// 3. Директория бинарника
type PathFinder struct {
	// ConfigFlag - значение флага --config, если указан
	ConfigFlag string
}

// FindConfigPath возвращает путь к config.yaml и признак того, что файл найден.
func (f *PathFinder) FindConfigPath() (string, bool) {
	// 1. Флаг имеет приоритет
	if f.ConfigFlag != "" {
		return resolveAbsPath(f.ConfigFlag), true
	}

	// 2. Текущая директория
	if _, err := os.Stat("config.yaml"); err == nil {
		return resolveAbsPath("config.yaml"), true
	}

	// 3. Директория бинарника
	if execPath, err := os.Executable(); err == nil {
		cfgPath := filepath.Join(filepath.Dir(execPath), "config.yaml")
		if _, err := os.Stat(cfgPath); err == nil {
			return cfgPath, true
		}
	}

	return resolveAbsPath("config.yaml"), false
}

// Initialize находит и загружает конфигурацию.
//
// Если файл не найден и флаг не задан, возвращается Default() с путями
// в текущей директории. Явно указанный, но отсутствующий файл - ошибка.
func Initialize(finder *PathFinder) (*AppConfig, string, error) {
	cfgPath, found := finder.FindConfigPath()
	if !found {
		cfg := Default()
		cfg.resolvePaths(filepath.Dir(cfgPath))
		return cfg, "", nil
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config from %s: %w", cfgPath, err)
	}

	return cfg, cfgPath, nil
}

// resolveAbsPath преобразует путь в абсолютный (если это не уже абсолютный путь).
func resolveAbsPath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}
