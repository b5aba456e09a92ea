package utils

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// SetupGracefulShutdown отменяет контекст при SIGINT (Ctrl+C) или SIGTERM.
//
// Возвращённую функцию вызывают через defer: она снимает обработчик
// сигналов и закрывает лог. Повторный вызов ничего не делает.
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	defer utils.SetupGracefulShutdown(cancel)()
func SetupGracefulShutdown(cancel context.CancelFunc) func() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		select {
		case sig := <-sigChan:
			Info("Received signal, shutting down gracefully", "signal", sig.String())
			cancel()
		case <-done:
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(sigChan)
			close(done)
			Close()
		})
	}
}
