package handler

import (
	"github.com/labstack/echo/v4"

	"gogotalk/internal/domain/entity"
	"gogotalk/internal/usecase"
	"gogotalk/pkg/errors"
	"gogotalk/pkg/response"
)

type SettingsHandler struct {
	theme *usecase.ThemeSettings
}

func NewSettingsHandler(theme *usecase.ThemeSettings) *SettingsHandler {
	return &SettingsHandler{
		theme: theme,
	}
}

type setThemeRequest struct {
	Theme string `json:"theme" validate:"required,oneof=light dark system"`
}

type themeResponse struct {
	Theme  entity.Theme `json:"theme"`
	IsDark bool         `json:"is_dark"`
}

// systemDark reads the device color scheme the UI passes as ?system=dark.
func systemDark(c echo.Context) bool {
	return c.QueryParam("system") == "dark"
}

func (h *SettingsHandler) GetTheme(c echo.Context) error {
	theme := h.theme.Get()
	return response.Success(c, themeResponse{
		Theme:  theme,
		IsDark: usecase.IsDarkTheme(theme, systemDark(c)),
	})
}

func (h *SettingsHandler) SetTheme(c echo.Context) error {
	var req setThemeRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	theme, err := h.theme.Set(c.Request().Context(), entity.Theme(req.Theme))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, themeResponse{
		Theme:  theme,
		IsDark: usecase.IsDarkTheme(theme, systemDark(c)),
	})
}

func (h *SettingsHandler) ToggleTheme(c echo.Context) error {
	theme := h.theme.Toggle(c.Request().Context())
	return response.Success(c, themeResponse{
		Theme:  theme,
		IsDark: usecase.IsDarkTheme(theme, systemDark(c)),
	})
}
