package domain

// Payload представляет каноническую запись сообщения — полезную нагрузку,
// отправляемую на webhook в виде JSON. Имена полей фиксированы контрактом
// потребителя и не должны меняться.
type Payload struct {
	ChatID     int64  `json:"chat_id"`
	ChatName   string `json:"chat_name"`
	MessageID  int    `json:"message_id"`
	Text       string `json:"text"`
	Date       string `json:"date"` // ISO-8601 или пустая строка
	SenderID   int64  `json:"sender_id"`
	SenderName string `json:"sender_name"`
	Media      bool   `json:"media"`
	Timestamp  int64  `json:"ts"` // Unix-время момента доставки
}
