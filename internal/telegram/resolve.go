package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/gotd/td/tg"

	"github.com/mylxsw/telegram-monitor/internal/domain"
)

// channelMarkOffset дублирует смещение маркированных идентификаторов Bot API
// для распознавания конфигурационных форм вида -100XXXXXXXXXX.
const channelMarkOffset int64 = 1000000000000

// dialogFetchLimit ограничивает количество диалогов, загружаемых для
// резолвинга числовых идентификаторов.
const dialogFetchLimit = 500

// ResolveUsername резолвит @username в сущность через ContactsResolveUsername.
func (c *Client) ResolveUsername(ctx context.Context, username string) (domain.Entity, error) {
	cleanUsername := strings.TrimPrefix(username, "@")
	c.log.DebugContext(ctx, "Executing API call: ContactsResolveUsername", "username", cleanUsername)

	var res *tg.ContactsResolvedPeer
	err := c.do(ctx, func(ctx context.Context) error {
		resolved, err := c.tgRunner.API().ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{
			Username: cleanUsername,
		})
		if err == nil {
			res = resolved
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve username %q: %w", username, err)
	}
	if res == nil {
		return nil, fmt.Errorf("%w: resolve returned no result for %q", ErrEntityNotFound, username)
	}

	entity := entityFromResolvedPeer(res)
	if entity == nil {
		return nil, fmt.Errorf("%w: username %q did not resolve to a known peer", ErrEntityNotFound, username)
	}

	return entity, nil
}

// ResolveID резолвит числовой идентификатор чата по списку диалогов аккаунта.
// Принимаются как маркированные формы (-100XXXXXXXXXX, -XXXX), так и "голые"
// положительные идентификаторы. Аккаунт-пользователь может мониторить только
// чаты, участником которых он является, поэтому список диалогов покрывает все
// резолвируемые идентификаторы.
func (c *Client) ResolveID(ctx context.Context, id int64) (domain.Entity, error) {
	entities, err := c.dialogEntities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dialog list: %w", err)
	}

	for _, candidate := range markedCandidates(id) {
		if entity, ok := entities[candidate]; ok {
			return entity, nil
		}
	}

	return nil, fmt.Errorf("%w: chat id %d not found among account dialogs", ErrEntityNotFound, id)
}

// markedCandidates возвращает маркированные интерпретации конфигурационного
// числового идентификатора в порядке убывания вероятности.
func markedCandidates(id int64) []int64 {
	if id < 0 {
		return []int64{id}
	}
	// Положительный идентификатор: личный чат, либо "голый" ID канала или группы.
	return []int64{id, -channelMarkOffset - id, -id}
}

// dialogEntities возвращает сущности из списка диалогов аккаунта,
// индексированные по маркированному идентификатору. Список загружается одним
// запросом и кэшируется: резолвинг выполняется только на этапе запуска.
func (c *Client) dialogEntities(ctx context.Context) (map[int64]domain.Entity, error) {
	c.dialogMu.Lock()
	defer c.dialogMu.Unlock()

	if c.dialogCache != nil {
		return c.dialogCache, nil
	}

	c.log.DebugContext(ctx, "Executing API call: MessagesGetDialogs", "limit", dialogFetchLimit)

	var res tg.MessagesDialogsClass
	err := c.do(ctx, func(ctx context.Context) error {
		dialogs, err := c.tgRunner.API().MessagesGetDialogs(ctx, &tg.MessagesGetDialogsRequest{
			OffsetPeer: &tg.InputPeerEmpty{},
			Limit:      dialogFetchLimit,
		})
		if err == nil {
			res = dialogs
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	var users []tg.UserClass
	var chats []tg.ChatClass
	switch d := res.(type) {
	case *tg.MessagesDialogs:
		users, chats = d.Users, d.Chats
	case *tg.MessagesDialogsSlice:
		users, chats = d.Users, d.Chats
	default:
		return nil, fmt.Errorf("unexpected dialogs response type %T", res)
	}

	entities := make(map[int64]domain.Entity, len(users)+len(chats))
	for _, u := range users {
		if user, ok := u.(*tg.User); ok {
			ent := entityFromUser(user)
			entities[ent.MarkedID()] = ent
		}
	}
	for _, ch := range chats {
		switch v := ch.(type) {
		case *tg.Chat:
			ent := entityFromChat(v)
			entities[ent.MarkedID()] = ent
		case *tg.Channel:
			ent := entityFromChannel(v)
			entities[ent.MarkedID()] = ent
		}
	}

	c.dialogCache = entities
	c.log.DebugContext(ctx, "Dialog entities cached", "count", len(entities))
	return entities, nil
}

// entityFromResolvedPeer извлекает сущность из ответа ContactsResolveUsername.
func entityFromResolvedPeer(res *tg.ContactsResolvedPeer) domain.Entity {
	switch p := res.Peer.(type) {
	case *tg.PeerUser:
		for _, u := range res.Users {
			if user, ok := u.(*tg.User); ok && user.ID == p.UserID {
				return entityFromUser(user)
			}
		}
	case *tg.PeerChat:
		for _, ch := range res.Chats {
			if chat, ok := ch.(*tg.Chat); ok && chat.ID == p.ChatID {
				return entityFromChat(chat)
			}
		}
	case *tg.PeerChannel:
		for _, ch := range res.Chats {
			if channel, ok := ch.(*tg.Channel); ok && channel.ID == p.ChannelID {
				return entityFromChannel(channel)
			}
		}
	}
	return nil
}
