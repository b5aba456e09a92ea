package app

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"

	"github.com/ilkoid/promptlab/pkg/utils"
)

// ErrNothingToCopy - нечего копировать (нет вывода).
var ErrNothingToCopy = errors.New("nothing to copy")

// ClipboardWriter записывает текст в системный буфер обмена.
type ClipboardWriter func(text string) error

// SystemClipboard - буфер обмена ОС (xclip/xsel/wl-copy, pbcopy, Windows API).
var SystemClipboard ClipboardWriter = clipboard.WriteAll

// CopyPrompt копирует содержимое промпта (шаблон без подстановки).
// Пустой id - активный промпт.
func (s *AppState) CopyPrompt(id string) error {
	p, err := s.Library.Get(id)
	if err != nil {
		return err
	}
	if err := s.copy(p.Content); err != nil {
		return fmt.Errorf("failed to copy prompt content: %w", err)
	}
	utils.Debug("Prompt copied to clipboard", "prompt_id", p.ID, "len", len(p.Content))
	return nil
}

// CopyText копирует вывод модели.
func (s *AppState) CopyText(text string) error {
	if text == "" {
		return ErrNothingToCopy
	}
	if err := s.copy(text); err != nil {
		return fmt.Errorf("failed to copy output: %w", err)
	}
	return nil
}

func (s *AppState) copy(text string) error {
	write := s.Clipboard
	if write == nil {
		write = SystemClipboard
	}
	return write(text)
}
