package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mylxsw/telegram-monitor/internal/log"
	"github.com/mylxsw/telegram-monitor/internal/monitor"
	"github.com/mylxsw/telegram-monitor/internal/pkg/config"
	"github.com/mylxsw/telegram-monitor/internal/telegram"
	"github.com/mylxsw/telegram-monitor/internal/webhook"
)

func main() {
	if err := run(); err != nil {
		slog.Error("monitor run failed", "error", err)
		os.Exit(1)
	}
}

// run инкапсулирует всю логику инициализации и запуска приложения.
func run() error {
	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig("config.yml")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Инициализация логгера с маскировкой секретов
	var level slog.Level
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	switch cfg.Logging.Format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	logger := log.NewMaskedLogger(handler)
	slog.SetDefault(logger)

	// 3. Валидация конфигурации (после инициализации логгера)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.IsDefaultWebhookURL() {
		slog.Warn("Using default webhook URL, make sure this is intended", "url", cfg.Webhook.URL)
	}

	slog.Info("Telegram Monitor starting",
		"session", cfg.Telegram.SessionFile,
		"webhook_url", cfg.Webhook.URL,
		"target_count", len(cfg.Targets),
	)

	// 4. Инициализация компонентов конвейера
	registry := monitor.NewRegistry()
	sink := webhook.NewClient(cfg.Webhook.URL,
		webhook.WithTimeout(cfg.WebhookTimeout()),
		webhook.WithLogger(logger.With(slog.String("component", "webhook"))),
	)
	pipeline := monitor.NewPipeline(registry, sink,
		monitor.WithPipelineLogger(logger.With(slog.String("component", "pipeline"))),
	)

	client := telegram.NewClient(telegram.Config{
		APIID:       cfg.Telegram.APIID,
		APIHash:     cfg.Telegram.APIHash,
		PhoneNumber: cfg.Telegram.PhoneNumber,
		SessionPath: cfg.Telegram.SessionFile,
	}, telegram.WithLogger(logger.With(slog.String("component", "telegram"))))

	resolver := monitor.NewResolver(client, registry,
		monitor.WithResolverLogger(logger.With(slog.String("component", "resolver"))),
	)

	// Обработчик регистрируется до запуска сессии; события из неотслеживаемых
	// чатов отбрасываются конвейером, поэтому обновления, пришедшие во время
	// резолвинга, безопасны.
	client.Subscribe(pipeline)

	// 5. Запуск сессии с ожиданием сигналов для graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = client.Run(ctx, func(runCtx context.Context) error {
		return resolver.ResolveTargets(runCtx, cfg.Targets)
	})

	switch {
	case err == nil, errors.Is(err, context.Canceled):
		// Отмена контекста по сигналу — штатное завершение; сессия
		// закрывается до выхода из Run.
		slog.Info("Monitor stopped gracefully")
		return nil
	case errors.Is(err, monitor.ErrNoTargets):
		return fmt.Errorf("startup aborted: %w", err)
	default:
		return fmt.Errorf("telegram session terminated: %w", err)
	}
}
