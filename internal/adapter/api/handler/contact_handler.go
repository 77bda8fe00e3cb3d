package handler

import (
	"github.com/labstack/echo/v4"

	"gogotalk/internal/adapter/api/middleware"
	"gogotalk/internal/usecase"
	"gogotalk/pkg/errors"
	"gogotalk/pkg/response"
	"gogotalk/pkg/utils"
)

type ContactHandler struct {
	contactUseCase *usecase.ContactUseCase
}

func NewContactHandler(contactUseCase *usecase.ContactUseCase) *ContactHandler {
	return &ContactHandler{
		contactUseCase: contactUseCase,
	}
}

type followResponse struct {
	Email       string   `json:"email"`
	IsFollowing bool     `json:"is_following"`
	Following   []string `json:"following"`
}

func (h *ContactHandler) ListContacts(c echo.Context) error {
	tab := c.QueryParam("tab")
	if tab == "" {
		tab = usecase.ContactTabAll
	}
	if tab != usecase.ContactTabAll && tab != usecase.ContactTabFollowing {
		return response.Error(c, errors.BadRequest("tab must be all or following", nil))
	}

	pagination := utils.GetPaginationParams(c)

	contacts, total, err := h.contactUseCase.List(c.Request().Context(), middleware.Identity(c), usecase.ContactListInput{
		Tab:        tab,
		Query:      c.QueryParam("q"),
		Pagination: pagination,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, contacts, int64(total), pagination.Page, pagination.PageSize)
}

func (h *ContactHandler) ToggleFollow(c echo.Context) error {
	target := c.Param("email")

	following, isFollowing, err := h.contactUseCase.ToggleFollow(c.Request().Context(), middleware.Identity(c), target)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Accepted(c, followResponse{
		Email:       target,
		IsFollowing: isFollowing,
		Following:   following,
	})
}
