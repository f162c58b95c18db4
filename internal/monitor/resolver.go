package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mylxsw/telegram-monitor/internal/domain"
	"github.com/mylxsw/telegram-monitor/internal/ports"
)

// ErrNoTargets возвращается, когда после обработки всего списка целей
// множество отслеживаемых чатов осталось пустым. Это фатальная ошибка
// конфигурации: сервису нечего мониторить.
var ErrNoTargets = errors.New("no resolvable monitoring targets")

// Resolver резолвит настроенные идентификаторы чатов в стабильные
// идентификаторы и заполняет Registry. Выполняется один раз при запуске.
type Resolver struct {
	source   ports.EntitySource
	registry *Registry
	log      *slog.Logger
}

// ResolverOption определяет функциональную опцию для конфигурации Resolver.
type ResolverOption func(*Resolver)

// WithResolverLogger устанавливает логгер для Resolver.
func WithResolverLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.log = l
		}
	}
}

// NewResolver создает новый Resolver.
func NewResolver(source ports.EntitySource, registry *Registry, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		source:   source,
		registry: registry,
		log:      slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// ResolveTargets резолвит каждый идентификатор из списка и добавляет результат
// в Registry. Ошибка резолвинга отдельного идентификатора логируется и не
// прерывает обработку остальных. Если в итоге не резолвился ни один,
// возвращается ErrNoTargets.
func (r *Resolver) ResolveTargets(ctx context.Context, identifiers []string) error {
	r.log.InfoContext(ctx, "Initializing monitoring targets", "count", len(identifiers))

	for _, raw := range identifiers {
		entity, err := r.resolveOne(ctx, raw)
		if err != nil {
			r.log.ErrorContext(ctx, "Failed to resolve monitoring target, skipping", "target", raw, "error", err)
			continue
		}

		chatID := entity.MarkedID()
		name := domain.ChatName(entity)
		if r.registry.Add(chatID, name) {
			r.log.InfoContext(ctx, "Added monitoring target", "name", name, "chat_id", chatID)
		} else {
			// Один и тот же чат, заданный в разных формах (@username и числовой
			// ID), резолвится в один идентификатор и попадает в Registry один раз.
			r.log.DebugContext(ctx, "Monitoring target already registered, skipping duplicate", "target", raw, "chat_id", chatID)
		}
	}

	if r.registry.Len() == 0 {
		return fmt.Errorf("%w: check the targets configuration", ErrNoTargets)
	}

	r.log.InfoContext(ctx, "Monitoring targets initialized", "count", r.registry.Len())
	return nil
}

// resolveOne резолвит один идентификатор: @username либо числовой ID
// (в маркированной или немаркированной форме).
func (r *Resolver) resolveOne(ctx context.Context, raw string) (domain.Entity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty chat identifier")
	}

	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return r.source.ResolveID(ctx, id)
	}

	return r.source.ResolveUsername(ctx, strings.TrimPrefix(raw, "@"))
}
