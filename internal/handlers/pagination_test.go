package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePaginationParams(t *testing.T) {
	tests := []struct {
		name           string
		queryParams    map[string]string
		expectedPage   int
		expectedLimit  int
		expectedOffset int
	}{
		{
			name:           "default values",
			queryParams:    map[string]string{},
			expectedPage:   1,
			expectedLimit:  10,
			expectedOffset: 0,
		},
		{
			name:           "custom page and limit",
			queryParams:    map[string]string{"page": "2", "limit": "25"},
			expectedPage:   2,
			expectedLimit:  25,
			expectedOffset: 25,
		},
		{
			name:           "negative page defaults to 1",
			queryParams:    map[string]string{"page": "-1", "limit": "10"},
			expectedPage:   1,
			expectedLimit:  10,
			expectedOffset: 0,
		},
		{
			name:           "garbage page defaults to 1",
			queryParams:    map[string]string{"page": "abc"},
			expectedPage:   1,
			expectedLimit:  10,
			expectedOffset: 0,
		},
		{
			name:           "limit too large clamped to 100",
			queryParams:    map[string]string{"page": "1", "limit": "500"},
			expectedPage:   1,
			expectedLimit:  100,
			expectedOffset: 0,
		},
		{
			name:           "limit zero clamped to 1",
			queryParams:    map[string]string{"page": "3", "limit": "0"},
			expectedPage:   3,
			expectedLimit:  1,
			expectedOffset: 2,
		},
	}

	app := fiber.New()
	app.Get("/test", func(c fiber.Ctx) error {
		return c.JSON(ParsePaginationParams(c, 10))
	})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query := url.Values{}
			for k, v := range tt.queryParams {
				query.Set(k, v)
			}

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/test?"+query.Encode(), nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			var got struct {
				Page  int `json:"page"`
				Limit int `json:"limit"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
			assert.Equal(t, tt.expectedPage, got.Page)
			assert.Equal(t, tt.expectedLimit, got.Limit)

			params := PaginationParams{Page: got.Page, Limit: got.Limit, Offset: (got.Page - 1) * got.Limit}
			assert.Equal(t, tt.expectedOffset, params.Offset)
		})
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		name     string
		params   PaginationParams
		total    int64
		expected int
	}{
		{"partial last page", PaginationParams{Page: 1, Limit: 10}, 25, 3},
		{"exact page boundary", PaginationParams{Page: 1, Limit: 10}, 10, 1},
		{"zero total", PaginationParams{Page: 1, Limit: 10}, 0, 0},
		{"single item", PaginationParams{Page: 1, Limit: 12}, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.params.TotalPages(tt.total))
		})
	}
}

func TestNewPaginatedResponse(t *testing.T) {
	response := NewPaginatedResponse([]string{"item1", "item2", "item3"}, PaginationParams{Page: 1, Limit: 10}, 25)

	assert.True(t, response.Success)
	assert.Equal(t, 3, response.Count)
	assert.Equal(t, int64(25), response.Total)
	assert.Equal(t, 1, response.Page)
	assert.Equal(t, 3, response.Pages)
}

func TestNewPaginatedResponseNilItems(t *testing.T) {
	var items []string
	response := NewPaginatedResponse(items, PaginationParams{Page: 1, Limit: 10}, 0)

	assert.Equal(t, []string{}, response.Data)
	assert.Equal(t, 0, response.Pages)
}
