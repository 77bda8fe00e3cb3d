package router

import (
	"github.com/labstack/echo/v4"

	"gogotalk/internal/adapter/api/handler"
	"gogotalk/internal/adapter/api/middleware"
)

// SetupAuthRouter initializes auth routes
func SetupAuthRouter(e *echo.Echo, sessionMiddleware *middleware.SessionMiddleware) {
	authHandler := handler.GetAuthHandler()

	// Public routes
	e.POST("/v1/auth/signup", authHandler.SignUp)
	e.POST("/v1/auth/login", authHandler.Login)

	// Protected routes
	protected := e.Group("/v1")
	protected.Use(sessionMiddleware.RequireSession)

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/session", authHandler.Session)
	protected.DELETE("/account", authHandler.DeleteAccount)
}
