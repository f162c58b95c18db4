package telegram

import (
	"time"

	"github.com/gotd/td/tg"

	"github.com/mylxsw/telegram-monitor/internal/domain"
)

// eventFromMessage преобразует сообщение из обновления gotd в доменное
// событие. Возвращает false для служебных и пустых сообщений, которые
// событиями не являются. Отсутствие сущностей в обновлении не считается
// ошибкой: соответствующие поля события остаются nil.
func eventFromMessage(e tg.Entities, msg tg.MessageClass) (domain.MessageEvent, bool) {
	m, ok := msg.(*tg.Message)
	if !ok {
		return domain.MessageEvent{}, false
	}

	chatID, chatEntity := chatFromPeer(e, m.PeerID)

	var date time.Time
	if m.Date != 0 {
		date = time.Unix(int64(m.Date), 0).UTC()
	}

	_, hasMedia := m.GetMedia()

	return domain.MessageEvent{
		ChatID:    chatID,
		MessageID: m.ID,
		Text:      m.Message,
		Date:      date,
		HasMedia:  hasMedia,
		Chat:      chatEntity,
		Sender:    senderFromMessage(e, m),
	}, true
}

// chatFromPeer возвращает маркированный идентификатор чата-источника и его
// сущность, если она пришла вместе с обновлением.
func chatFromPeer(e tg.Entities, peer tg.PeerClass) (int64, domain.Entity) {
	switch p := peer.(type) {
	case *tg.PeerUser:
		if user, ok := e.Users[p.UserID]; ok {
			return p.UserID, entityFromUser(user)
		}
		return p.UserID, nil
	case *tg.PeerChat:
		if chat, ok := e.Chats[p.ChatID]; ok {
			ent := entityFromChat(chat)
			return ent.MarkedID(), ent
		}
		return domain.Group{ID: p.ChatID}.MarkedID(), nil
	case *tg.PeerChannel:
		if channel, ok := e.Channels[p.ChannelID]; ok {
			ent := entityFromChannel(channel)
			return ent.MarkedID(), ent
		}
		return domain.Channel{ID: p.ChannelID}.MarkedID(), nil
	}
	return 0, nil
}

// senderFromMessage определяет отправителя сообщения. В личных чатах поле
// FromID может отсутствовать: тогда отправителем считается собеседник.
func senderFromMessage(e tg.Entities, m *tg.Message) domain.Entity {
	if from, ok := m.GetFromID(); ok {
		switch p := from.(type) {
		case *tg.PeerUser:
			if user, ok := e.Users[p.UserID]; ok {
				return entityFromUser(user)
			}
			return domain.Person{ID: p.UserID}
		case *tg.PeerChannel:
			// Пост от имени канала.
			if channel, ok := e.Channels[p.ChannelID]; ok {
				return entityFromChannel(channel)
			}
			return domain.Channel{ID: p.ChannelID}
		}
		return nil
	}

	if p, ok := m.PeerID.(*tg.PeerUser); ok {
		if user, ok := e.Users[p.UserID]; ok {
			return entityFromUser(user)
		}
		return domain.Person{ID: p.UserID}
	}

	return nil
}

// entityFromUser преобразует пользователя gotd в доменную сущность.
func entityFromUser(u *tg.User) domain.Person {
	return domain.Person{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// entityFromChat преобразует обычную группу gotd в доменную сущность.
func entityFromChat(c *tg.Chat) domain.Group {
	return domain.Group{
		ID:    c.ID,
		Title: c.Title,
	}
}

// entityFromChannel преобразует канал или супергруппу gotd в доменную сущность.
func entityFromChannel(c *tg.Channel) domain.Channel {
	return domain.Channel{
		ID:        c.ID,
		Title:     c.Title,
		Username:  c.Username,
		Megagroup: c.Megagroup,
	}
}
