package utils

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// DefaultPageSize matches the batch size the contact list loads at a time.
const DefaultPageSize = 20

type PaginationParams struct {
	Page     int
	PageSize int
	Offset   int
}

func GetPaginationParams(c echo.Context) PaginationParams {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("limit"))

	if page <= 0 {
		page = 1
	}

	if pageSize <= 0 || pageSize > 100 {
		pageSize = DefaultPageSize
	}

	return PaginationParams{
		Page:     page,
		PageSize: pageSize,
		Offset:   (page - 1) * pageSize,
	}
}

// Page returns the window of items selected by p.
func Page[T any](items []T, p PaginationParams) []T {
	if p.Offset >= len(items) {
		return []T{}
	}
	end := p.Offset + p.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[p.Offset:end]
}
