package router

import (
	"github.com/labstack/echo/v4"

	"gogotalk/internal/adapter/api/handler"
	"gogotalk/internal/adapter/api/middleware"
)

func SetupContactRouter(e *echo.Echo, sessionMiddleware *middleware.SessionMiddleware) {
	contactHandler := handler.GetContactHandler()

	contacts := e.Group("/v1/contacts")
	contacts.Use(sessionMiddleware.RequireSession)

	contacts.GET("", contactHandler.ListContacts)
	contacts.POST("/:email/follow", contactHandler.ToggleFollow)
}
