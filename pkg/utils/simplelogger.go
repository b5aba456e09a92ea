// Package utils предоставляет файловый логгер и graceful shutdown.
//
// Логгер пишет в файл (stdout занят TUI и выводом CLI).
// До вызова InitLogger все сообщения отбрасываются.
package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	logFile   *os.File
	logger    = zerolog.Nop()
	logMutex  sync.RWMutex
	logOutput io.Writer
)

// InitLogger открывает (или создаёт) лог-файл и включает запись.
//
// debug=false отбрасывает сообщения уровня DEBUG.
// Повторный вызов переоткрывает файл.
func InitLogger(path string, debug bool) error {
	logMutex.Lock()
	defer logMutex.Unlock()

	closeLocked()

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create log dir: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	logFile = f
	setOutputLocked(f, debug)
	logger.Info().Str("file", path).Msg("Logger initialized")

	return nil
}

// SetOutput направляет лог в произвольный writer (используется в тестах).
func SetOutput(w io.Writer, debug bool) {
	logMutex.Lock()
	defer logMutex.Unlock()

	closeLocked()
	setOutputLocked(w, debug)
}

func setOutputLocked(w io.Writer, debug bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339
	logOutput = w
	logger = zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Info - информационное сообщение.
func Info(msg string, keyvals ...any) {
	write(zerolog.InfoLevel, msg, keyvals...)
}

// Error - сообщение об ошибке.
func Error(msg string, keyvals ...any) {
	write(zerolog.ErrorLevel, msg, keyvals...)
}

// Debug - отладочное сообщение.
func Debug(msg string, keyvals ...any) {
	write(zerolog.DebugLevel, msg, keyvals...)
}

// Warn - предупреждение.
func Warn(msg string, keyvals ...any) {
	write(zerolog.WarnLevel, msg, keyvals...)
}

// write пишет сообщение с парами key/value.
// Непарный последний ключ отбрасывается.
func write(level zerolog.Level, msg string, keyvals ...any) {
	logMutex.RLock()
	defer logMutex.RUnlock()

	if logOutput == nil {
		return
	}

	if len(keyvals)%2 != 0 {
		keyvals = keyvals[:len(keyvals)-1]
	}

	ev := logger.WithLevel(level)
	if len(keyvals) > 0 {
		ev = ev.Fields(keyvals)
	}
	ev.Msg(msg)
}

// Close закрывает лог-файл.
//
// Вызывается через defer в main().
func Close() {
	logMutex.Lock()
	defer logMutex.Unlock()

	closeLocked()
}

func closeLocked() {
	if logFile != nil {
		if err := logFile.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "[LOGGER WARNING: Close failed: %v]\n", err)
		}
		logFile = nil
	}
	logOutput = nil
	logger = zerolog.Nop()
}
