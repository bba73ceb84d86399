package main

import (
	"OllamaChat/internal/config"
	"OllamaChat/internal/inject"
	"OllamaChat/internal/server"
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do"
	"go.uber.org/zap"
)

// HTTP-сервер чата: POST /api/chat → бэкенд генерации с общим токеном контекста.
func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.NewConfig()

	// в режиме дебага — человекочитаемый dev-логгер, иначе JSON
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.DebugMode {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	sugar := logger.Sugar()
	//сброс буфера логгера
	defer func() {
		_ = logger.Sync()
	}()

	sugar.Infow(
		"Starting app",
		"DebugMode", cfg.DebugMode,
		"backend", cfg.GenerationBackend,
		"addr", cfg.Server.BindAddr,
		"path", cfg.Server.Path,
	)

	injector := inject.Setup(cfg, sugar)
	defer func() {
		if err := injector.Shutdown(); err != nil {
			sugar.Warnw("injector shutdown error", "error", err)
		}
	}()

	srv, err := do.Invoke[*server.ChatServer](injector)
	if err != nil {
		sugar.Errorw("failed to initialize components", "error", err)
		return 1
	}

	// Graceful shutdown on Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		sugar.Errorw("server error", "error", err)
		return 1
	}
	sugar.Infow("server stopped")
	return 0
}
