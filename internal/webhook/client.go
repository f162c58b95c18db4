// Package webhook содержит клиент доставки канонических записей сообщений
// на настроенный HTTP-приемник, а также обработчик тестового эхо-сервера.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/mylxsw/telegram-monitor/internal/domain"
	"github.com/mylxsw/telegram-monitor/internal/ports"
)

// DefaultTimeout — бюджет времени на одну попытку доставки: соединение
// плюс полное получение ответа.
const DefaultTimeout = 10 * time.Second

// bodyExcerptLimit ограничивает длину фрагмента тела ответа в логах.
const bodyExcerptLimit = 200

// Client выполняет доставку записей на webhook. Доставка одноразовая,
// негарантированная: ни один исход не приводит к повтору или буферизации.
type Client struct {
	url        string
	timeout    time.Duration
	httpClient *http.Client
	log        *slog.Logger
}

var _ ports.Sink = (*Client)(nil)

// ClientOption определяет функциональную опцию для конфигурации клиента.
type ClientOption func(*Client)

// WithTimeout устанавливает бюджет времени доставки.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger устанавливает логгер для клиента.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient создает новый клиент доставки для заданного URL.
func NewClient(webhookURL string, opts ...ClientOption) *Client {
	c := &Client{
		url:     webhookURL,
		timeout: DefaultTimeout,
		log:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.httpClient = &http.Client{Timeout: c.timeout}
	return c
}

// Deliver сериализует запись в JSON и выполняет одну попытку POST-запроса.
// Исход классифицируется ровно в одну из категорий DeliveryOutcome и
// логируется с серьезностью, соответствующей его влиянию.
func (c *Client) Deliver(ctx context.Context, payload domain.Payload) domain.DeliveryResult {
	body, err := json.Marshal(payload)
	if err != nil {
		c.log.ErrorContext(ctx, "Failed to serialize payload", "error", err)
		return domain.DeliveryResult{Outcome: domain.DeliveryUnknownFailure, Err: err}
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		c.log.ErrorContext(ctx, "Failed to build webhook request", "url", c.url, "error", err)
		return domain.DeliveryResult{Outcome: domain.DeliveryUnknownFailure, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.classifyRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		c.log.InfoContext(ctx, "Message sent to webhook", "status", resp.StatusCode)
		// Дочитываем тело, чтобы соединение можно было переиспользовать.
		_, _ = io.Copy(io.Discard, resp.Body)
		return domain.DeliveryResult{Outcome: domain.DeliveryDelivered, StatusCode: resp.StatusCode}
	}

	excerpt := readExcerpt(resp.Body)
	c.log.WarnContext(ctx, "Webhook returned non-200 status",
		"status", resp.StatusCode, "response", excerpt)
	return domain.DeliveryResult{
		Outcome:     domain.DeliveryRejected,
		StatusCode:  resp.StatusCode,
		BodyExcerpt: excerpt,
	}
}

// classifyRequestError разделяет ошибки выполнения запроса на таймаут,
// транспортную и неожиданную.
func (c *Client) classifyRequestError(ctx context.Context, err error) domain.DeliveryResult {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		c.log.ErrorContext(ctx, "Webhook delivery timed out", "url", c.url, "timeout", c.timeout)
		return domain.DeliveryResult{Outcome: domain.DeliveryTimedOut, Err: err}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		c.log.ErrorContext(ctx, "Failed to deliver to webhook, network error", "url", c.url, "error", err)
		return domain.DeliveryResult{Outcome: domain.DeliveryTransportFailed, Err: err}
	}

	c.log.ErrorContext(ctx, "Failed to deliver to webhook, unknown error", "url", c.url, "error", err)
	return domain.DeliveryResult{Outcome: domain.DeliveryUnknownFailure, Err: err}
}

// readExcerpt читает начало тела ответа и усекает его до bodyExcerptLimit рун.
func readExcerpt(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4*bodyExcerptLimit))
	if err != nil {
		return ""
	}

	runes := []rune(string(raw))
	if len(runes) > bodyExcerptLimit {
		runes = runes[:bodyExcerptLimit]
	}
	return string(runes)
}
