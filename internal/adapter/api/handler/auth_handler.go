package handler

import (
	"github.com/labstack/echo/v4"

	"gogotalk/internal/adapter/api/middleware"
	"gogotalk/internal/domain/entity"
	"gogotalk/internal/usecase"
	"gogotalk/pkg/errors"
	"gogotalk/pkg/response"
)

type AuthHandler struct {
	authUseCase *usecase.AuthUseCase
	session     *usecase.SessionHolder
}

func NewAuthHandler(authUseCase *usecase.AuthUseCase, session *usecase.SessionHolder) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
		session:     session,
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type signUpRequest struct {
	Name            string `json:"name" validate:"required,max=50"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type sessionResponse struct {
	Authenticated bool             `json:"authenticated"`
	User          *entity.Identity `json:"user,omitempty"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	identity, err := h.authUseCase.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, sessionResponse{Authenticated: true, User: identity})
}

func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	identity, err := h.authUseCase.SignUp(c.Request().Context(), usecase.SignUpInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, sessionResponse{Authenticated: true, User: identity})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authUseCase.SignOut(c.Request().Context()); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, sessionResponse{Authenticated: false})
}

func (h *AuthHandler) Session(c echo.Context) error {
	identity := h.session.Current()
	return response.Success(c, sessionResponse{Authenticated: identity != nil, User: identity})
}

func (h *AuthHandler) DeleteAccount(c echo.Context) error {
	if err := h.authUseCase.DeleteAccount(c.Request().Context(), middleware.Identity(c)); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Account deleted",
	})
}
