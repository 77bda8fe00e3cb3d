package handler

import (
	"github.com/labstack/echo/v4"

	"gogotalk/internal/adapter/api/middleware"
	"gogotalk/internal/usecase"
	"gogotalk/pkg/errors"
	"gogotalk/pkg/response"
)

type UserHandler struct {
	userUseCase *usecase.UserUseCase
}

func NewUserHandler(userUseCase *usecase.UserUseCase) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
	}
}

type updateProfileRequest struct {
	Name  string `json:"name" validate:"required,max=50"`
	About string `json:"about" validate:"max=150"`
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	profile, err := h.userUseCase.GetProfile(c.Request().Context(), middleware.Identity(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, profile)
}

// UpdateProfile answers 202: the write is fire-and-forget.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	profile, err := h.userUseCase.UpdateProfile(c.Request().Context(), middleware.Identity(c), req.Name, req.About)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Accepted(c, profile)
}
