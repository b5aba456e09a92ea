package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ilkoid/promptlab/internal/app"
	"github.com/ilkoid/promptlab/pkg/config"
	"github.com/ilkoid/promptlab/pkg/utils"
)

var (
	configPath string
	debugFlag  bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "promptlab",
		Short:         "Author, validate and run prompt templates with {{variables}}",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ./config.yaml or next to the binary)")
	root.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Write debug messages to the log file")

	root.AddCommand(
		newPromptsCmd(),
		newVarsCmd(),
		newRunCmd(),
		newRenderCmd(),
		newHistoryCmd(),
		newModelsCmd(),
		newServeCmd(),
		newTUICmd(),
		newBackupCmd(),
	)

	return root
}

// loadConfig находит конфиг и включает логгер.
func loadConfig() (*config.AppConfig, error) {
	cfg, cfgPath, err := config.Initialize(&config.PathFinder{ConfigFlag: configPath})
	if err != nil {
		return nil, err
	}
	if debugFlag {
		cfg.App.Debug = true
	}

	if err := utils.InitLogger(cfg.App.LogFile, cfg.App.Debug); err != nil {
		return nil, err
	}

	if cfgPath == "" {
		utils.Info("Config file not found, using defaults")
	} else {
		utils.Info("Config loaded", "path", cfgPath, "default_model", cfg.Models.Default)
	}
	logKeysInfo(cfg)

	return cfg, nil
}

// openState загружает конфиг и поднимает библиотеку, модели и историю.
// Возвращаемую функцию нужно вызвать через defer.
// clipboardWriter - буфер обмена для copy и run --copy.
var clipboardWriter = app.SystemClipboard

func openState() (*app.AppState, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	state, err := app.Bootstrap(cfg)
	if err != nil {
		utils.Error("Bootstrap failed", "error", err)
		utils.Close()
		return nil, nil, err
	}

	state.Clipboard = clipboardWriter

	cleanup := func() {
		if err := state.Close(); err != nil {
			utils.Error("Failed to close state", "error", err)
		}
		utils.Close()
	}
	return state, cleanup, nil
}

// logKeysInfo пишет в лог, у каких моделей задан ключ (с маскированием).
func logKeysInfo(cfg *config.AppConfig) {
	for _, id := range cfg.ModelIDs() {
		def := cfg.Models.Definitions[id]
		utils.Debug("Model configured", "id", id, "provider", def.Provider, "api_key", maskKey(def.APIKey))
	}
}

func maskKey(key string) string {
	if key == "" {
		return "<empty>"
	}
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// promptRef возвращает id из аргументов или "" (активный промпт).
func promptRef(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

var errNoActive = fmt.Errorf("no active prompt: select one with 'promptlab prompts select <id>'")
