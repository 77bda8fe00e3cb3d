package router

import (
	"github.com/labstack/echo/v4"

	"gogotalk/internal/adapter/api/handler"
	"gogotalk/internal/adapter/api/middleware"
)

func SetupUserRouter(e *echo.Echo, sessionMiddleware *middleware.SessionMiddleware) {
	userHandler := handler.GetUserHandler()

	profile := e.Group("/v1/profile")
	profile.Use(sessionMiddleware.RequireSession)

	profile.GET("", userHandler.GetProfile)
	profile.PUT("", userHandler.UpdateProfile)
}
