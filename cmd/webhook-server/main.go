// Тестовый webhook-сервер: принимает полезную нагрузку монитора и печатает
// ее в лог. Используется только для ручной проверки приемной стороны.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/mylxsw/telegram-monitor/internal/webhook"
)

func main() {
	port := 8080
	if len(os.Args) > 1 {
		p, err := strconv.Atoi(os.Args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid port number %q\n", os.Args[1])
			os.Exit(1)
		}
		port = p
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	addr := fmt.Sprintf(":%d", port)
	srv := webhook.NewServer(addr, logger)

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		slog.Info("Test webhook server listening", "addr", addr, "webhook_url", fmt.Sprintf("http://localhost:%d/webhook", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Signal received, shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	<-serverDone
	slog.Info("HTTP server stopped")
}
