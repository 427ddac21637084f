package handlers

import (
	"github.com/gofiber/fiber/v3"

	"github.com/seuros/jogo/internal/httpx"
)

// MaxPageSize caps the limit query parameter.
const MaxPageSize = 100

// PaginationParams holds pagination query parameters
type PaginationParams struct {
	Page   int `json:"page"`  // 1-indexed page number
	Limit  int `json:"limit"` // Items per page (max: 100)
	Offset int `json:"-"`     // Calculated offset for the store query
}

// PaginatedResponse is the list envelope: {success, count, total, page, pages, data}.
type PaginatedResponse struct {
	Success bool  `json:"success"`
	Count   int   `json:"count"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	Pages   int   `json:"pages"`
	Data    any   `json:"data"`
}

// ParsePaginationParams extracts page and limit from the query string.
func ParsePaginationParams(c fiber.Ctx, defaultLimit int) PaginationParams {
	page := max(httpx.QueryInt(c, "page", 1), 1)
	limit := min(max(httpx.QueryInt(c, "limit", defaultLimit), 1), MaxPageSize)
	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// TotalPages is the page count for total items.
func (p PaginationParams) TotalPages(total int64) int {
	if total <= 0 || p.Limit <= 0 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}

// NewPaginatedResponse wraps one page of items.
func NewPaginatedResponse[T any](items []T, params PaginationParams, total int64) PaginatedResponse {
	if items == nil {
		items = []T{}
	}
	return PaginatedResponse{
		Success: true,
		Count:   len(items),
		Total:   total,
		Page:    params.Page,
		Pages:   params.TotalPages(total),
		Data:    items,
	}
}
