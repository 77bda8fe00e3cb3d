package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger reports whether a backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	auth Pinger
}

var healthHandler *HealthHandler

func NewHealthHandler(auth Pinger) *HealthHandler {
	return &HealthHandler{
		auth: auth,
	}
}

func SetupHealthHandler(auth Pinger) {
	healthHandler = NewHealthHandler(auth)
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "Server is running",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (h *HealthHandler) CheckFirebaseHealth(c echo.Context) error {
	err := h.auth.Ping(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"status": "Firebase Auth connection failed",
			"error":  err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "Firebase Auth connected successfully",
	})
}
