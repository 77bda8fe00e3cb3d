package handler

import (
	"github.com/labstack/echo/v4"

	"gogotalk/internal/usecase"
	"gogotalk/pkg/response"
)

type UnreadHandler struct {
	ledger *usecase.UnreadLedger
}

func NewUnreadHandler(ledger *usecase.UnreadLedger) *UnreadHandler {
	return &UnreadHandler{
		ledger: ledger,
	}
}

type unreadResponse struct {
	usecase.BadgeView
	Chats map[string]int `json:"chats"`
}

func (h *UnreadHandler) GetUnread(c echo.Context) error {
	return response.Success(c, unreadResponse{
		BadgeView: h.ledger.Badge(),
		Chats:     h.ledger.Snapshot(),
	})
}
