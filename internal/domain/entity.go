// Package domain содержит внутренние модели монитора: сущности Telegram,
// входящие события и полезную нагрузку, отправляемую на webhook.
package domain

import "fmt"

// channelMarkOffset используется для преобразования ID канала в "маркированный"
// формат Bot API: -1000000000000 - id.
const channelMarkOffset int64 = 1000000000000

// UnknownName — значение, возвращаемое при невозможности определить имя отправителя.
const UnknownName = "Unknown"

// UnknownChatName — значение, возвращаемое при невозможности определить имя чата.
const UnknownChatName = "Unknown Chat"

// Entity представляет сущность Telegram (чат или собеседника) в виде
// размеченного объединения: Person, Group или Channel.
// Значение nil трактуется как неизвестная сущность.
type Entity interface {
	// MarkedID возвращает стабильный идентификатор сущности в маркированном
	// формате Bot API: положительный для пользователей, отрицательный для
	// групп и каналов.
	MarkedID() int64
}

// Person представляет пользователя Telegram.
type Person struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// MarkedID возвращает идентификатор пользователя (он не маркируется).
func (p Person) MarkedID() int64 { return p.ID }

// Group представляет обычную (legacy) группу.
type Group struct {
	ID    int64
	Title string
}

// MarkedID возвращает маркированный идентификатор группы: -id.
func (g Group) MarkedID() int64 { return -g.ID }

// Channel представляет канал или супергруппу.
type Channel struct {
	ID        int64
	Title     string
	Username  string
	Megagroup bool
}

// MarkedID возвращает маркированный идентификатор канала: -1000000000000 - id.
func (c Channel) MarkedID() int64 { return -channelMarkOffset - c.ID }

// SenderName возвращает отображаемое имя отправителя по правилу приоритета:
// @username > имя и фамилия > User_<id> > Unknown.
func SenderName(e Entity) string {
	switch v := e.(type) {
	case Person:
		if v.Username != "" {
			return "@" + v.Username
		}
		if name := joinNameParts(v.FirstName, v.LastName); name != "" {
			return name
		}
		if v.ID != 0 {
			return fmt.Sprintf("User_%d", v.ID)
		}
	case Group:
		// Группа в роли отправителя — нетипичный случай, но правило то же,
		// что и для имени чата.
		return ChatName(v)
	case Channel:
		return ChatName(v)
	}
	return UnknownName
}

// ChatName возвращает отображаемое имя чата по правилу приоритета:
// @username > заголовок > имя пользователя > Chat_<id> > Unknown Chat.
func ChatName(e Entity) string {
	switch v := e.(type) {
	case Person:
		if name := SenderName(v); name != UnknownName {
			return name
		}
	case Group:
		if v.Title != "" {
			return v.Title
		}
		return fmt.Sprintf("Chat_%d", v.ID)
	case Channel:
		if v.Username != "" {
			return "@" + v.Username
		}
		if v.Title != "" {
			return v.Title
		}
		return fmt.Sprintf("Chat_%d", v.ID)
	}
	return UnknownChatName
}

// joinNameParts объединяет непустые части имени через пробел.
func joinNameParts(first, last string) string {
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	default:
		return last
	}
}
