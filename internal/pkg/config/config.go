// Package config предоставляет управление конфигурацией монитора.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Telegram содержит учетные данные Telegram API и параметры сессии.
type Telegram struct {
	APIID       int    `json:"api_id" yaml:"api_id"`
	APIHash     string `json:"api_hash" yaml:"api_hash"`
	PhoneNumber string `json:"phone_number" yaml:"phone_number"`
	SessionFile string `json:"session_file" yaml:"session_file"`
}

// Webhook содержит конфигурацию HTTP-приемника.
type Webhook struct {
	URL            string `json:"url" yaml:"url"`
	TimeoutSeconds int    `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// Logging содержит конфигурацию логирования.
type Logging struct {
	Level  string `json:"level" yaml:"level"`   // debug, info, warn, error
	Format string `json:"format" yaml:"format"` // text, json
}

// Config содержит конфигурацию приложения.
type Config struct {
	Telegram Telegram `json:"telegram" yaml:"telegram"`
	// Targets — упорядоченный список отслеживаемых чатов: @username или
	// числовой идентификатор (в том числе маркированный, вида -100XXXXXXXXXX).
	Targets []string `json:"targets" yaml:"targets"`
	Webhook Webhook  `json:"webhook" yaml:"webhook"`
	Logging Logging  `json:"logging" yaml:"logging"`
}

// WebhookTimeout возвращает бюджет времени доставки.
func (c *Config) WebhookTimeout() time.Duration {
	return time.Duration(c.Webhook.TimeoutSeconds) * time.Second
}

// IsDefaultWebhookURL сообщает, используется ли URL приемника по умолчанию.
// Это допустимо, но заслуживает предупреждения в логах.
func (c *Config) IsDefaultWebhookURL() bool {
	return c.Webhook.URL == DefaultWebhookURL
}

// LoadConfig загружает конфигурацию приложения из переменных окружения,
// .env файла или config.yml.
func LoadConfig(path string) (*Config, error) {
	// Загрузка переменных окружения из .env файла, если он существует.
	if err := godotenv.Load(); err != nil {
		// Если .env файла не существует, это нормально: полагаемся на
		// переменные окружения или config.yml.
	}

	// Попытка загрузки из YAML-файла сначала.
	cfg, err := loadFromYAML(path)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist):
		// Отсутствие файла конфигурации не ошибка: используем переменные
		// окружения. Существующий, но некорректный файл — ошибка: молча
		// проигнорировать его значит запуститься не с той конфигурацией.
		cfg = loadFromEnv()
	default:
		return nil, err
	}

	applyDefaults(cfg)
	return cfg, nil
}

// loadFromYAML загружает конфигурацию из YAML-файла.
func loadFromYAML(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать файл конфигурации %s: %w", filename, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("не удалось разобрать YAML конфигурацию: %w", err)
	}

	return &cfg, nil
}

// loadFromEnv загружает конфигурацию из переменных окружения. Имена
// переменных совпадают с историческими: TELEGRAM_API_ID, TELEGRAM_API_HASH,
// TELEGRAM_SESSION, TARGET_CHATS, WEBHOOK_URL, LOG_LEVEL.
func loadFromEnv() *Config {
	apiID, _ := strconv.Atoi(getEnv("TELEGRAM_API_ID", "0"))
	timeoutSeconds, _ := strconv.Atoi(getEnv("WEBHOOK_TIMEOUT_SECONDS", "0"))

	return &Config{
		Telegram: Telegram{
			APIID:       apiID,
			APIHash:     getEnv("TELEGRAM_API_HASH", ""),
			PhoneNumber: getEnv("PHONE_NUMBER", ""),
			SessionFile: getEnv("TELEGRAM_SESSION", ""),
		},
		Targets: SplitTargets(getEnv("TARGET_CHATS", "")),
		Webhook: Webhook{
			URL:            getEnv("WEBHOOK_URL", ""),
			TimeoutSeconds: timeoutSeconds,
		},
		Logging: Logging{
			Level:  getEnv("LOG_LEVEL", ""),
			Format: getEnv("LOG_FORMAT", ""),
		},
	}
}

// SplitTargets разбирает список целей из строки с разделителем-запятой,
// отбрасывая пустые элементы.
func SplitTargets(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	targets := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			targets = append(targets, trimmed)
		}
	}
	return targets
}

// applyDefaults заполняет незаданные поля значениями по умолчанию.
func applyDefaults(cfg *Config) {
	if cfg.Telegram.SessionFile == "" {
		cfg.Telegram.SessionFile = DefaultSessionFile
	}
	if cfg.Webhook.URL == "" {
		cfg.Webhook.URL = DefaultWebhookURL
	}
	if cfg.Webhook.TimeoutSeconds <= 0 {
		cfg.Webhook.TimeoutSeconds = int(DefaultWebhookTimeout / time.Second)
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}
}

// Validate проверяет, являются ли значения конфигурации допустимыми.
// Любая возвращенная ошибка фатальна: запуск должен завершиться с ненулевым
// кодом до установления сессии.
func (c *Config) Validate() error {
	if c.Telegram.APIID <= 0 {
		return fmt.Errorf("telegram.api_id должно быть положительным целым числом (получите его на https://my.telegram.org)")
	}
	if c.Telegram.APIHash == "" || c.Telegram.APIHash == placeholderAPIHash {
		return fmt.Errorf("telegram.api_hash не задан или оставлен плейсхолдером")
	}

	if len(c.Targets) == 0 {
		return fmt.Errorf("список отслеживаемых чатов пуст: задайте targets или TARGET_CHATS")
	}

	if c.Webhook.URL == "" {
		return fmt.Errorf("webhook.url не может быть пустым")
	}
	if c.Webhook.TimeoutSeconds <= 0 {
		return fmt.Errorf("webhook.timeout_seconds должно быть положительным")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// all good
	default:
		return fmt.Errorf("logging.level должен быть одним из: debug, info, warn, error")
	}

	switch c.Logging.Format {
	case "text", "json":
		// all good
	default:
		return fmt.Errorf("logging.format должен быть одним из: text, json")
	}

	return nil
}

// getEnv извлекает значение переменной окружения или возвращает значение по умолчанию, если она не установлена.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
