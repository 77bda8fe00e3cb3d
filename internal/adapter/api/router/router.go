package router

import (
	"github.com/labstack/echo/v4"

	"gogotalk/internal/adapter/api/middleware"
)

func Setup(e *echo.Echo, sessionMiddleware *middleware.SessionMiddleware) {
	SetupAuthRouter(e, sessionMiddleware)
	SetupUserRouter(e, sessionMiddleware)
	SetupSettingsRouter(e, sessionMiddleware)
	SetupChatRouter(e, sessionMiddleware)
	SetupContactRouter(e, sessionMiddleware)
	SetupHealthRouter(e)
}
