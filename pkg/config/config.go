// Package config загружает настройки promptlab из config.yaml.
//
// Значения вида ${VAR} подставляются из окружения; перед этим подгружается .env.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppConfig - корневая структура конфигурации.
// Зеркалит структуру config.yaml.
type AppConfig struct {
	Models  ModelsConfig  `yaml:"models"`
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
	S3      S3Config      `yaml:"s3"`
	App     AppSpecific   `yaml:"app"`
}

// ModelsConfig - настройки моделей, доступных в селекторе.
type ModelsConfig struct {
	Default     string              `yaml:"default"`     // id модели по умолчанию (например, "gpt-4.1-mini")
	Definitions map[string]ModelDef `yaml:"definitions"` // id модели → определение
}

// ModelDef - параметры конкретной модели.
type ModelDef struct {
	Provider    string        `yaml:"provider"`   // "openai", "anthropic", "gemini"; OpenAI-совместимые: "openrouter", "deepseek", "zai"
	ModelName   string        `yaml:"model_name"` // Реальное имя в API
	Name        string        `yaml:"name"`       // Подпись в селекторе
	Group       string        `yaml:"group"`      // "Chat" или "Reasoning"
	APIKey      string        `yaml:"api_key"`    // Поддерживает ${VAR}
	BaseURL     string        `yaml:"base_url"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"` // "60s", "2m"
}

// StorageConfig - пути локальных хранилищ.
type StorageConfig struct {
	PromptsFile string `yaml:"prompts_file"` // YAML с библиотекой промптов
	HistoryDB   string `yaml:"history_db"`   // SQLite с историей запусков
}

// ServerConfig - настройки HTTP API (promptlab serve).
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// S3Config - хранилище для резервной копии библиотеки промптов (опционально).
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"` // Поддерживает ${VAR}
	SecretKey string `yaml:"secret_key"` // Поддерживает ${VAR}
	UseSSL    bool   `yaml:"use_ssl"`
	Key       string `yaml:"key"` // Ключ объекта с копией библиотеки
}

// Enabled сообщает, настроено ли S3 хранилище.
func (c S3Config) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

// AppSpecific - общие настройки приложения.
type AppSpecific struct {
	Debug   bool   `yaml:"debug"`
	LogFile string `yaml:"log_file"`
}

// Значения по умолчанию.
const (
	DefaultModelID     = "gpt-4.1-mini"
	DefaultPromptsFile = "promptlab.prompts.yaml"
	DefaultHistoryDB   = "promptlab.history.db"
	DefaultLogFile     = "promptlab.log"
	DefaultServerAddr  = ":8080"
	DefaultBackupKey   = "promptlab/prompts.yaml"
	DefaultTimeout     = 120 * time.Second
)

// Default возвращает конфигурацию без файла: две модели OpenAI,
// ключ берётся из OPENAI_API_KEY.
func Default() *AppConfig {
	apiKey := os.Getenv("OPENAI_API_KEY")

	cfg := &AppConfig{
		Models: ModelsConfig{
			Default: DefaultModelID,
			Definitions: map[string]ModelDef{
				"gpt-4.1-mini": {
					Provider:  "openai",
					ModelName: "gpt-4.1-mini",
					Name:      "GPT-4.1",
					Group:     "Chat",
					APIKey:    apiKey,
				},
				"o3-mini": {
					Provider:  "openai",
					ModelName: "o3-mini",
					Name:      "o3",
					Group:     "Reasoning",
					APIKey:    apiKey,
				},
			},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// Load читает YAML файл, подставляет ENV переменные и возвращает готовую структуру.
//
// Относительные пути хранилищ и лога разрешаются от директории файла.
func Load(path string) (*AppConfig, error) {
	// 1. Проверяем существование файла
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found at: %s", path)
	}

	// 2. Подгружаем .env рядом с конфигом и в текущей директории.
	// Отсутствие .env не ошибка.
	_ = godotenv.Load(filepath.Join(filepath.Dir(path), ".env"))
	_ = godotenv.Load()

	// 3. Читаем файл целиком
	rawBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// 4. Подставляем переменные окружения и парсим
	cfg, err := Parse([]byte(os.ExpandEnv(string(rawBytes))))
	if err != nil {
		return nil, err
	}

	cfg.resolvePaths(filepath.Dir(path))
	return cfg, nil
}

// Parse разбирает содержимое config.yaml (ENV уже подставлены).
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// applyDefaults заполняет незаданные поля.
func (c *AppConfig) applyDefaults() {
	if c.Storage.PromptsFile == "" {
		c.Storage.PromptsFile = DefaultPromptsFile
	}
	if c.Storage.HistoryDB == "" {
		c.Storage.HistoryDB = DefaultHistoryDB
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	if c.App.LogFile == "" {
		c.App.LogFile = DefaultLogFile
	}
	if c.S3.Key == "" {
		c.S3.Key = DefaultBackupKey
	}

	for id, def := range c.Models.Definitions {
		if def.Provider == "" {
			def.Provider = "openai"
		}
		if def.ModelName == "" {
			def.ModelName = id
		}
		if def.Name == "" {
			def.Name = id
		}
		if def.Group == "" {
			def.Group = "Chat"
		}
		if def.Timeout == 0 {
			def.Timeout = DefaultTimeout
		}
		c.Models.Definitions[id] = def
	}

	if c.Models.Default == "" && len(c.Models.Definitions) > 0 {
		c.Models.Default = c.ModelIDs()[0]
	}
}

// resolvePaths делает относительные пути абсолютными относительно baseDir.
func (c *AppConfig) resolvePaths(baseDir string) {
	c.Storage.PromptsFile = resolvePath(baseDir, c.Storage.PromptsFile)
	c.Storage.HistoryDB = resolvePath(baseDir, c.Storage.HistoryDB)
	c.App.LogFile = resolvePath(baseDir, c.App.LogFile)
}

func resolvePath(baseDir, p string) string {
	if p == "" || filepath.IsAbs(p) || p == ":memory:" {
		return p
	}
	return filepath.Join(baseDir, p)
}

// validate проверяет обязательные поля.
func (c *AppConfig) validate() error {
	if len(c.Models.Definitions) == 0 {
		return fmt.Errorf("models.definitions must define at least one model")
	}
	if _, ok := c.Models.Definitions[c.Models.Default]; !ok {
		return fmt.Errorf("default model '%s' is not defined in definitions", c.Models.Default)
	}
	if c.S3.Endpoint != "" && c.S3.Bucket == "" {
		return fmt.Errorf("s3.bucket is required when s3.endpoint is set")
	}
	return nil
}

// Helper методы для удобства доступа

// GetModel возвращает определение модели по id или модель по умолчанию.
func (c *AppConfig) GetModel(id string) (ModelDef, bool) {
	if id == "" {
		id = c.Models.Default
	}
	m, ok := c.Models.Definitions[id]
	return m, ok
}

// ModelIDs возвращает id моделей: сначала модель по умолчанию, остальные по алфавиту.
func (c *AppConfig) ModelIDs() []string {
	ids := make([]string, 0, len(c.Models.Definitions))
	for id := range c.Models.Definitions {
		if id != c.Models.Default {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	if _, ok := c.Models.Definitions[c.Models.Default]; ok {
		ids = append([]string{c.Models.Default}, ids...)
	}
	return ids
}
