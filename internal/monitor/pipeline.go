package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/mylxsw/telegram-monitor/internal/domain"
	"github.com/mylxsw/telegram-monitor/internal/ports"
)

// textPreviewLimit ограничивает длину текста сообщения в логах.
const textPreviewLimit = 50

// Pipeline обрабатывает входящие события: фильтрует по множеству отслеживаемых
// чатов, нормализует принятые события в каноническую запись и передает ее
// клиенту доставки. События обрабатываются строго по одному, поэтому порядок
// доставки совпадает с порядком поступления.
type Pipeline struct {
	registry *Registry
	sink     ports.Sink
	clock    func() time.Time
	log      *slog.Logger
}

var _ ports.EventHandler = (*Pipeline)(nil)

// PipelineOption определяет функциональную опцию для конфигурации Pipeline.
type PipelineOption func(*Pipeline)

// WithPipelineLogger устанавливает логгер для Pipeline.
func WithPipelineLogger(l *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}

// WithClock подменяет источник времени. Используется в тестах.
func WithClock(clock func() time.Time) PipelineOption {
	return func(p *Pipeline) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// NewPipeline создает новый Pipeline.
func NewPipeline(registry *Registry, sink ports.Sink, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		registry: registry,
		sink:     sink,
		clock:    time.Now,
		log:      slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// HandleMessage обрабатывает одно входящее событие от начала до конца.
// События из неотслеживаемых чатов отбрасываются без каких-либо побочных
// эффектов. Паника при обработке одного события гасится на этой границе:
// одно аномальное событие не должно останавливать цикл обработки.
func (p *Pipeline) HandleMessage(ctx context.Context, event domain.MessageEvent) {
	defer func() {
		if rec := recover(); rec != nil {
			p.log.ErrorContext(ctx, "Panic while processing message, event dropped",
				"chat_id", event.ChatID, "message_id", event.MessageID, "panic", rec)
		}
	}()

	if !p.registry.Contains(event.ChatID) {
		return
	}

	payload := p.normalize(event)

	p.log.InfoContext(ctx, "Received message",
		"chat", payload.ChatName,
		"sender", payload.SenderName,
		"text", truncate(payload.Text, textPreviewLimit),
	)

	// Исход доставки логируется клиентом; сюда он возвращается только для того,
	// чтобы конвейер продолжил работу при любом исходе.
	_ = p.sink.Deliver(ctx, payload)
}

// normalize преобразует принятое событие в каноническую запись сообщения.
// Отсутствующие поля деградируют до значений по умолчанию, а не до ошибок.
func (p *Pipeline) normalize(event domain.MessageEvent) domain.Payload {
	chatName, cached := p.registry.Name(event.ChatID)
	if !cached {
		// Метаданные чата могли не резолвиться при запуске; выводим имя из
		// сущности самого события.
		chatName = domain.ChatName(event.Chat)
	}

	var senderID int64
	if event.Sender != nil {
		senderID = event.Sender.MarkedID()
	}

	var date string
	if !event.Date.IsZero() {
		date = event.Date.UTC().Format(time.RFC3339)
	}

	return domain.Payload{
		ChatID:     event.ChatID,
		ChatName:   chatName,
		MessageID:  event.MessageID,
		Text:       event.Text,
		Date:       date,
		SenderID:   senderID,
		SenderName: domain.SenderName(event.Sender),
		Media:      event.HasMedia,
		Timestamp:  p.clock().Unix(),
	}
}

// truncate обрезает строку до limit рун, добавляя многоточие.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
