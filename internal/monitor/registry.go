// Package monitor реализует ядро сервиса: резолвинг целей мониторинга,
// фильтрацию входящих событий и конвейер нормализации и доставки.
package monitor

import (
	"sync"
)

// Registry хранит множество отслеживаемых чатов и кэш их отображаемых имен.
// Заполняется один раз на этапе запуска и далее только читается; мьютекс
// защищает от наложения резолвинга и первых обновлений сессии.
type Registry struct {
	mu    sync.RWMutex
	ids   map[int64]struct{}
	names map[int64]string
}

// NewRegistry создает новый пустой Registry.
func NewRegistry() *Registry {
	return &Registry{
		ids:   make(map[int64]struct{}),
		names: make(map[int64]string),
	}
}

// Add добавляет чат в множество отслеживаемых и кэширует его имя.
// Возвращает false, если чат уже был добавлен ранее; имя при этом не
// перезаписывается, так что повторный резолвинг того же чата идемпотентен.
func (r *Registry) Add(chatID int64, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.ids[chatID]; exists {
		return false
	}
	r.ids[chatID] = struct{}{}
	r.names[chatID] = name
	return true
}

// Contains проверяет принадлежность чата множеству отслеживаемых.
// Вызывается на каждое входящее событие, поэтому выполняется за O(1).
func (r *Registry) Contains(chatID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.ids[chatID]
	return exists
}

// Name возвращает закэшированное имя чата. Промах кэша не является ошибкой:
// вызывающая сторона подставляет имя, выведенное из самого события.
func (r *Registry) Name(chatID int64) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name, exists := r.names[chatID]
	return name, exists
}

// Len возвращает количество отслеживаемых чатов.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.ids)
}
