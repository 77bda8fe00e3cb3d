package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"gogotalk/internal/domain/entity"
	"gogotalk/internal/infrastructure/ratelimit"
	ws "gogotalk/internal/infrastructure/websocket"
	"gogotalk/internal/usecase"
	"gogotalk/pkg/errors"
	"gogotalk/pkg/logger"
	"gogotalk/pkg/response"
)

const (
	// sustained inbound frames per second per connection, and burst
	inboundRate  = 5
	inboundBurst = 20
)

type WebSocketHandler struct {
	wsManager   *ws.Manager
	session     *usecase.SessionHolder
	chatUseCase *usecase.ChatUseCase
	reconciler  *usecase.ChatListReconciler
	ledger      *usecase.UnreadLedger
	limiter     *ratelimit.RateLimiter
	baseCtx     context.Context
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // the daemon only listens for the local UI
	},
}

func NewWebSocketHandler(
	ctx context.Context,
	wsManager *ws.Manager,
	session *usecase.SessionHolder,
	chatUseCase *usecase.ChatUseCase,
	reconciler *usecase.ChatListReconciler,
	ledger *usecase.UnreadLedger,
) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:   wsManager,
		session:     session,
		chatUseCase: chatUseCase,
		reconciler:  reconciler,
		ledger:      ledger,
		limiter:     ratelimit.NewRateLimiter(rate.Limit(inboundRate), inboundBurst),
		baseCtx:     ctx,
	}
}

func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	identity := h.session.Current()
	if identity == nil {
		return response.Error(c, errors.Unauthorized("Sign in first", nil))
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return errors.Internal("Failed to upgrade connection", err)
	}

	client := ws.NewClient(uuid.New().String(), conn)
	if !h.wsManager.Add(client) {
		logger.Warn("Rejecting connection %s: shutting down", client.ID)
		conn.Close()
		return nil
	}

	go client.WritePump()
	go func() {
		client.ReadPump(h.wsManager, h.handleInbound)
		h.limiter.Forget(client.ID)
	}()

	// bring the new connection up to date
	h.wsManager.SendTo(client.ID, usecase.EventSession, usecase.SessionEvent{Authenticated: true, User: identity})
	h.wsManager.SendTo(client.ID, usecase.EventBadge, h.ledger.Badge())
	h.wsManager.SendTo(client.ID, usecase.EventChats, h.reconciler.Summaries(""))

	return nil
}

func (h *WebSocketHandler) handleInbound(client *ws.Client, message []byte) {
	if !h.limiter.Allow(client.ID) {
		logger.Warn("Dropping frame from %s: rate limit exceeded", client.ID)
		return
	}

	msg, err := ws.ParseInbound(message)
	if err != nil {
		logger.Warn("Ignoring frame from %s: %v", client.ID, err)
		return
	}

	switch msg.Type {
	case ws.MessageTypeOpenChat:
		h.openChat(client, msg.ChatID)
	case ws.MessageTypeCloseChat:
		client.Untrack(msg.ChatID)
	}
}

// openChat starts streaming the chat's messages to this connection until
// it closes the chat or disconnects.
func (h *WebSocketHandler) openChat(client *ws.Client, chatID string) {
	identity := h.session.Current()
	if identity == nil {
		return
	}

	ctx, cancel := context.WithCancel(h.baseCtx)
	client.Track(chatID, cancel)

	if _, err := h.chatUseCase.OpenChat(ctx, identity, chatID); err != nil {
		logger.Warn("Not marking chat %s read for %s: %v", chatID, client.ID, err)
	}

	go func() {
		err := h.chatUseCase.WatchMessages(ctx, identity, chatID, func(e usecase.MessagesEvent) {
			h.wsManager.SendTo(client.ID, usecase.EventMessages, e)
		})
		if err != nil {
			logger.Error("Watching chat %s for %s failed: %v", chatID, client.ID, err)
			h.wsManager.SendTo(client.ID, usecase.EventMessages, usecase.MessagesEvent{
				ChatID:   chatID,
				Messages: []entity.MessageView{},
			})
		}
	}()
}
