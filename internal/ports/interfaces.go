// Package ports определяет интерфейсы между ядром монитора и внешними
// коллабораторами: источником событий Telegram и HTTP-приемником.
package ports

import (
	"context"

	"github.com/mylxsw/telegram-monitor/internal/domain"
)

// EntitySource определяет интерфейс для резолвинга настроенных идентификаторов
// чатов в сущности Telegram. Используется только на этапе запуска.
type EntitySource interface {
	// ResolveUsername резолвит @username в сущность.
	ResolveUsername(ctx context.Context, username string) (domain.Entity, error)
	// ResolveID резолвит числовой (возможно, маркированный) идентификатор в сущность.
	ResolveID(ctx context.Context, id int64) (domain.Entity, error)
}

// Sink определяет интерфейс доставки канонической записи сообщения потребителю.
type Sink interface {
	// Deliver сериализует запись и выполняет одну попытку доставки.
	// Попытка не повторяется ни при каком исходе.
	Deliver(ctx context.Context, payload domain.Payload) domain.DeliveryResult
}

// EventHandler определяет интерфейс обработчика входящих сообщений.
// Источник событий вызывает его последовательно, по одному событию за раз.
type EventHandler interface {
	HandleMessage(ctx context.Context, event domain.MessageEvent)
}
