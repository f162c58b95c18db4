package domain

import "time"

// MessageEvent представляет одно входящее сообщение, уже извлеченное из
// транспортного обновления Telegram. Поля Chat и Sender могут быть nil,
// если обновление не содержало соответствующих сущностей.
type MessageEvent struct {
	// ChatID — маркированный идентификатор чата-источника.
	ChatID    int64
	MessageID int
	Text      string
	// Date — время отправки исходного сообщения. Нулевое значение означает,
	// что источник не передал дату.
	Date     time.Time
	HasMedia bool
	Chat     Entity
	Sender   Entity
}
