package config

import "time"

// Значения конфигурации по умолчанию.
const (
	// Telegram defaults
	DefaultSessionFile = "telegram_monitor.session"

	// Webhook defaults
	DefaultWebhookURL     = "http://localhost:8080/webhook"
	DefaultWebhookTimeout = 10 * time.Second

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// placeholderAPIHash — плейсхолдер из примера конфигурации: запуск с ним
// бессмыслен и отклоняется валидацией.
const placeholderAPIHash = "your_API_HASH"
