package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"gogotalk/internal/adapter/api/middleware"
	"gogotalk/internal/domain/entity"
	"gogotalk/internal/usecase"
	"gogotalk/pkg/errors"
	"gogotalk/pkg/logger"
	"gogotalk/pkg/response"
)

// maxImageSize caps multipart image uploads.
const maxImageSize = 10 << 20

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
	reconciler  *usecase.ChatListReconciler
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase, reconciler *usecase.ChatListReconciler) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
		reconciler:  reconciler,
	}
}

type createDirectChatRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type createGroupRequest struct {
	Name    string   `json:"name" validate:"required,max=30"`
	Members []string `json:"members" validate:"required,min=1,dive,email"`
}

type sendMessageRequest struct {
	Text string `json:"text" validate:"required,max=1000"`
}

type sendEmojiRequest struct {
	Emoji string `json:"emoji" validate:"required"`
}

type chatListResponse struct {
	Loaded bool                 `json:"loaded"`
	Chats  []entity.ChatSummary `json:"chats"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Created bool   `json:"created"`
}

// ListChats returns the rows of the latest chat list snapshot. Loaded is
// false until the first snapshot has arrived.
func (h *ChatHandler) ListChats(c echo.Context) error {
	return response.Success(c, chatListResponse{
		Loaded: h.reconciler.Loaded(),
		Chats:  h.reconciler.Summaries(c.QueryParam("q")),
	})
}

func (h *ChatHandler) CreateDirectChat(c echo.Context) error {
	var req createDirectChatRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	identity := middleware.Identity(c)
	chat, created, err := h.chatUseCase.CreateOrGetDirect(c.Request().Context(), identity, req.Email)
	if err != nil {
		return response.Error(c, err)
	}

	body := chatResponse{ID: chat.ID, Name: usecase.ChatName(chat, identity), Created: created}
	if created {
		return response.Created(c, body)
	}
	return response.Success(c, body)
}

func (h *ChatHandler) CreateGroup(c echo.Context) error {
	var req createGroupRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	chat, err := h.chatUseCase.CreateGroup(c.Request().Context(), middleware.Identity(c), req.Name, req.Members)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, chatResponse{ID: chat.ID, Name: chat.GroupName, Created: true})
}

func (h *ChatHandler) GetChatInfo(c echo.Context) error {
	info, err := h.chatUseCase.ChatInfo(c.Request().Context(), middleware.Identity(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, info)
}

func (h *ChatHandler) GetMessages(c echo.Context) error {
	messages, err := h.chatUseCase.GetMessages(c.Request().Context(), middleware.Identity(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, messages)
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	msg, err := h.chatUseCase.Send(c.Request().Context(), middleware.Identity(c), c.Param("id"), req.Text)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Accepted(c, msg)
}

func (h *ChatHandler) SendEmoji(c echo.Context) error {
	var req sendEmojiRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	msg, err := h.chatUseCase.SendEmoji(c.Request().Context(), middleware.Identity(c), c.Param("id"), req.Emoji)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Accepted(c, msg)
}

// UploadImage expects a multipart form with the picture in the "image" field.
func (h *ChatHandler) UploadImage(c echo.Context) error {
	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, maxImageSize)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return response.Error(c, errors.BadRequest("Image file is required", err))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.Error(c, errors.BadRequest("Failed to read image", err))
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	logger.Debug("Image upload for chat %s: %s (%d bytes, %s)", c.Param("id"), fileHeader.Filename, fileHeader.Size, contentType)

	msg, err := h.chatUseCase.SendImage(
		c.Request().Context(),
		middleware.Identity(c),
		c.Param("id"),
		contentType,
		file,
		fileHeader.Size,
	)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Accepted(c, msg)
}

func (h *ChatHandler) MarkRead(c echo.Context) error {
	badge, err := h.chatUseCase.OpenChat(c.Request().Context(), middleware.Identity(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, badge)
}

func (h *ChatHandler) ClearHistory(c echo.Context) error {
	if err := h.chatUseCase.ClearHistory(c.Request().Context(), middleware.Identity(c), c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Chat history cleared",
	})
}

func (h *ChatHandler) DeleteChat(c echo.Context) error {
	if err := h.chatUseCase.LeaveChat(c.Request().Context(), middleware.Identity(c), c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Chat deleted",
	})
}
