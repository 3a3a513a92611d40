// internal/utils/pagination_test.go
package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paginationParamsFor(t *testing.T, query string) PaginationParams {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/products?"+query, nil)
	return GetPaginationParams(c)
}

func TestGetPaginationParamsDefaults(t *testing.T) {
	params := paginationParamsFor(t, "")

	assert.Equal(t, 1, params.Page)
	assert.Equal(t, defaultPageSize, params.Limit)
	assert.Equal(t, "created_at", params.Sort)
	assert.Equal(t, "desc", params.Order)
}

func TestGetPaginationParamsClamping(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
		wantOrder string
	}{
		{"negative page", "page=-3", 1, defaultPageSize, "desc"},
		{"zero limit", "limit=0", 1, defaultPageSize, "desc"},
		{"oversized limit", "limit=5000", 1, defaultPageSize, "desc"},
		{"limit at cap", "limit=100", 1, maxPageSize, "desc"},
		{"bogus order", "order=sideways", 1, defaultPageSize, "desc"},
		{"ascending", "page=3&limit=50&order=asc", 3, 50, "asc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := paginationParamsFor(t, tt.query)
			assert.Equal(t, tt.wantPage, params.Page)
			assert.Equal(t, tt.wantLimit, params.Limit)
			assert.Equal(t, tt.wantOrder, params.Order)
		})
	}
}

func TestCreatePaginationResult(t *testing.T) {
	params := PaginationParams{Page: 2, Limit: 20}

	result := CreatePaginationResult([]string{"a"}, 41, params)
	assert.Equal(t, 2, result.Page)
	assert.Equal(t, int64(41), result.Total)
	assert.Equal(t, 3, result.TotalPages)

	empty := CreatePaginationResult(nil, 0, params)
	assert.Equal(t, 0, empty.TotalPages)
}
