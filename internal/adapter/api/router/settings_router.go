package router

import (
	"github.com/labstack/echo/v4"

	"gogotalk/internal/adapter/api/handler"
	"gogotalk/internal/adapter/api/middleware"
)

func SetupSettingsRouter(e *echo.Echo, sessionMiddleware *middleware.SessionMiddleware) {
	settingsHandler := handler.GetSettingsHandler()

	settings := e.Group("/v1/settings")
	settings.Use(sessionMiddleware.RequireSession)

	settings.GET("/theme", settingsHandler.GetTheme)
	settings.PUT("/theme", settingsHandler.SetTheme)
	settings.POST("/theme/toggle", settingsHandler.ToggleTheme)
}
