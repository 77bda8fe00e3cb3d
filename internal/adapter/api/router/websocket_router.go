package router

import (
	"github.com/labstack/echo/v4"

	"gogotalk/internal/adapter/api/handler"
)

// SetupWebSocketRouter sets up WebSocket routes
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler) {
	// the handler checks the session itself before upgrading
	e.GET("/ws", wsHandler.HandleWebSocket)
}
