package router

import (
	"github.com/labstack/echo/v4"

	"gogotalk/internal/adapter/api/handler"
	"gogotalk/internal/adapter/api/middleware"
)

func SetupChatRouter(e *echo.Echo, sessionMiddleware *middleware.SessionMiddleware) {
	chatHandler := handler.GetChatHandler()
	unreadHandler := handler.GetUnreadHandler()

	v1 := e.Group("/v1")
	v1.Use(sessionMiddleware.RequireSession)

	v1.GET("/chats", chatHandler.ListChats)
	v1.POST("/chats", chatHandler.CreateDirectChat)
	v1.POST("/groups", chatHandler.CreateGroup)

	chats := v1.Group("/chats/:id")
	chats.GET("/info", chatHandler.GetChatInfo)
	chats.GET("/messages", chatHandler.GetMessages)
	chats.POST("/messages", chatHandler.SendMessage)
	chats.POST("/emoji", chatHandler.SendEmoji)
	chats.POST("/images", chatHandler.UploadImage)
	chats.PUT("/read", chatHandler.MarkRead)
	chats.POST("/clear", chatHandler.ClearHistory)
	chats.DELETE("", chatHandler.DeleteChat)

	v1.GET("/unread", unreadHandler.GetUnread)
}
