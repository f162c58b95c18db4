// Package telegram содержит адаптер внешнего источника событий: обертку над
// клиентом gotd, которая инкапсулирует аутентификацию, прием обновлений и
// резолвинг сущностей для ядра монитора.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"golang.org/x/term"

	"github.com/mylxsw/telegram-monitor/internal/domain"
	trm "github.com/mylxsw/telegram-monitor/internal/pkg/term"
	"github.com/mylxsw/telegram-monitor/internal/ports"
)

var (
	// ErrFloodWaitActive возвращается, когда клиент не может выполнить запрос из-за активного ограничения FLOOD_WAIT.
	ErrFloodWaitActive = errors.New("client is in flood wait")
	// ErrEntityNotFound возвращается, когда идентификатор чата не резолвится в сущность.
	ErrEntityNotFound = errors.New("entity not found")
	// floodWaitRegex используется для парсинга длительности ожидания из сообщения об ошибке.
	floodWaitRegex = regexp.MustCompile(`FLOOD_WAIT \((\d+)\)`)
)

// telegramAPI представляет необработанные методы API, которые мы используем.
type telegramAPI interface {
	UsersGetUsers(ctx context.Context, request []tg.InputUserClass) ([]tg.UserClass, error)
	ContactsResolveUsername(ctx context.Context, req *tg.ContactsResolveUsernameRequest) (*tg.ContactsResolvedPeer, error)
	MessagesGetDialogs(ctx context.Context, req *tg.MessagesGetDialogsRequest) (tg.MessagesDialogsClass, error)
}

// telegramAuth представляет клиент аутентификации.
type telegramAuth interface {
	auth.FlowClient
}

// telegramRunner определяет зависимости от клиента gotd.
// Это позволяет создавать моки в тестах.
type telegramRunner interface {
	Run(ctx context.Context, f func(ctx context.Context) error) error
	API() telegramAPI
	Auth() telegramAuth
}

// prodRunner является оберткой вокруг реального *telegram.Client для удовлетворения интерфейса telegramRunner.
type prodRunner struct {
	*telegram.Client
}

func (p *prodRunner) API() telegramAPI {
	return p.Client.API()
}

func (p *prodRunner) Auth() telegramAuth {
	return p.Client.Auth()
}

// authFlow определяет интерфейс для процесса аутентификации.
type authFlow interface {
	Run(ctx context.Context, client auth.FlowClient) error
}

// Client представляет собой клиент Telegram для сессии пользовательского
// аккаунта. Он инкапсулирует аутентификацию, обработку ошибок FLOOD_WAIT,
// прием обновлений и резолвинг сущностей.
type Client struct {
	id         string
	tgRunner   telegramRunner
	authFlow   authFlow
	dispatcher tg.UpdateDispatcher
	isTerminal func(fd int) bool
	clock      func() time.Time
	log        *slog.Logger

	mu             sync.RWMutex
	unhealthyUntil time.Time

	// dialogCache заполняется единственным вызовом MessagesGetDialogs
	// при первом резолвинге числового идентификатора.
	dialogMu    sync.Mutex
	dialogCache map[int64]domain.Entity
}

var _ ports.EntitySource = (*Client)(nil)

// Config содержит конфигурацию для создания нового клиента.
type Config struct {
	APIID       int
	APIHash     string
	PhoneNumber string
	SessionPath string
}

// ClientOption определяет функциональную опцию для конфигурации клиента.
type ClientOption func(*Client)

// WithLogger устанавливает логгер для клиента.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient создает новый экземпляр Client.
func NewClient(cfg Config, opts ...ClientOption) *Client {
	// Создаем аутентификатор для терминала.
	termAuth := trm.NewTerminal(cfg.PhoneNumber)

	// Настраиваем хранилище сессии.
	sessionStorage := &session.FileStorage{Path: cfg.SessionPath}

	// Диспетчер обновлений доставляет новые сообщения зарегистрированному
	// обработчику. Регистрация выполняется через Subscribe до запуска.
	dispatcher := tg.NewUpdateDispatcher()

	// Создаем и настраиваем базовый клиент gotd.
	tgClient := telegram.NewClient(cfg.APIID, cfg.APIHash, telegram.Options{
		SessionStorage: sessionStorage,
		UpdateHandler:  dispatcher,
	})

	c := &Client{
		id:         uuid.NewString(),
		tgRunner:   &prodRunner{Client: tgClient},
		authFlow:   auth.NewFlow(termAuth, auth.SendCodeOptions{}),
		dispatcher: dispatcher,
		isTerminal: func(fd int) bool { return term.IsTerminal(fd) },
		clock:      time.Now,
		log:        slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ID возвращает уникальный идентификатор клиента.
func (c *Client) ID() string {
	return c.id
}

// Subscribe регистрирует обработчик входящих сообщений. Диспетчер gotd
// вызывает обработчики последовательно в рамках одной сессии, поэтому
// события проходят конвейер по одному, в порядке поступления.
func (c *Client) Subscribe(handler ports.EventHandler) {
	c.dispatcher.OnNewMessage(func(ctx context.Context, e tg.Entities, u *tg.UpdateNewMessage) error {
		c.dispatchMessage(ctx, handler, e, u.Message)
		return nil
	})
	c.dispatcher.OnNewChannelMessage(func(ctx context.Context, e tg.Entities, u *tg.UpdateNewChannelMessage) error {
		c.dispatchMessage(ctx, handler, e, u.Message)
		return nil
	})
}

// dispatchMessage преобразует обновление в доменное событие и передает его
// обработчику. Служебные сообщения (вступления в чат и т.п.) пропускаются.
func (c *Client) dispatchMessage(ctx context.Context, handler ports.EventHandler, e tg.Entities, msg tg.MessageClass) {
	event, ok := eventFromMessage(e, msg)
	if !ok {
		c.log.DebugContext(ctx, "Skipping non-message update", "type", fmt.Sprintf("%T", msg))
		return
	}
	handler.HandleMessage(ctx, event)
}

// Run подключается к Telegram, при необходимости проходит интерактивную
// аутентификацию, вызывает ready и затем обслуживает обновления до отмены
// контекста. Обрыв сессии возвращается ошибкой вызывающей стороне.
func (c *Client) Run(ctx context.Context, ready func(ctx context.Context) error) error {
	return c.tgRunner.Run(ctx, func(runCtx context.Context) error {
		// Проверяем статус аутентификации при запуске.
		self, err := c.tgRunner.API().UsersGetUsers(runCtx, []tg.InputUserClass{&tg.InputUserSelf{}})
		if err != nil {
			// Если ошибка - это ожидаемое отсутствие сессии, логируем кратко.
			// Для всех остальных, непредвиденных ошибок, сохраняем полный вывод.
			if strings.Contains(err.Error(), "AUTH_KEY_UNREGISTERED") {
				c.log.WarnContext(runCtx, "Session check failed, attempting interactive auth", "client_id", c.id, "reason", "AUTH_KEY_UNREGISTERED")
			} else {
				c.log.WarnContext(runCtx, "Session check failed, attempting interactive auth", "client_id", c.id, "error", err)
			}
			if !c.isTerminal(int(os.Stdout.Fd())) {
				return fmt.Errorf("session is invalid and cannot perform interactive auth in non-terminal: %w", err)
			}
			if authErr := c.authFlow.Run(runCtx, c.tgRunner.Auth()); authErr != nil {
				return fmt.Errorf("interactive auth failed: %w", authErr)
			}
			c.log.InfoContext(runCtx, "Interactive auth successful, session saved", "client_id", c.id)
			self, err = c.tgRunner.API().UsersGetUsers(runCtx, []tg.InputUserClass{&tg.InputUserSelf{}})
			if err != nil {
				return fmt.Errorf("failed to fetch own account after auth: %w", err)
			}
		}

		if len(self) > 0 {
			if me, ok := self[0].(*tg.User); ok {
				c.log.InfoContext(runCtx, "Logged in", "name", domain.SenderName(entityFromUser(me)), "user_id", me.ID)
			}
		}

		// Резолвинг целей мониторинга выполняется до входа в цикл обработки
		// событий; его фатальная ошибка прерывает запуск.
		if err := ready(runCtx); err != nil {
			return err
		}

		c.log.InfoContext(runCtx, "Listening for new messages", "client_id", c.id)

		// Держим соединение активным, пока не завершится контекст.
		<-runCtx.Done()
		return runCtx.Err()
	})
}

// do выполняет операцию API с учетом состояния FLOOD_WAIT.
func (c *Client) do(ctx context.Context, f func(ctx context.Context) error) error {
	if err := c.checkHealthStatus(); err != nil {
		c.log.WarnContext(ctx, "Client is unhealthy, aborting API call", "error", err)
		return err
	}

	opErr := f(ctx)
	if opErr != nil {
		c.handleError(opErr)
	}

	return opErr
}

// checkHealthStatus проверяет, не находится ли клиент в состоянии FLOOD_WAIT.
func (c *Client) checkHealthStatus() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.unhealthyUntil.IsZero() && c.clock().Before(c.unhealthyUntil) {
		return fmt.Errorf("%w: active until %v", ErrFloodWaitActive, c.unhealthyUntil)
	}

	return nil
}

// handleError обрабатывает ошибки, ищет FLOOD_WAIT и обновляет состояние клиента.
func (c *Client) handleError(err error) {
	if waitDuration, ok := parseFloodWait(err); ok {
		c.mu.Lock()
		defer c.mu.Unlock()

		c.unhealthyUntil = c.clock().Add(waitDuration)
		c.log.Warn("Client got FLOOD_WAIT, set unhealthy", "wait_duration", waitDuration, "until", c.unhealthyUntil)
	}
}

// parseFloodWait извлекает длительность ожидания из ошибки.
func parseFloodWait(err error) (time.Duration, bool) {
	if err == nil {
		return 0, false
	}

	matches := floodWaitRegex.FindStringSubmatch(err.Error())
	if len(matches) < 2 {
		return 0, false
	}

	seconds, convErr := strconv.Atoi(matches[1])
	if convErr != nil {
		return 0, false
	}

	return time.Duration(seconds) * time.Second, true
}
