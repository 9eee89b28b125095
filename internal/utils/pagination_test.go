package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/thecodingmontana/zadaci-api/internal/constants"
)

func paramsFor(t *testing.T, query string) PaginationParams {
	t.Helper()

	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/tasks"+query, nil)

	return GetPaginationParams(c)
}

func TestGetPaginationParams_Defaults(t *testing.T) {
	params := paramsFor(t, "")

	require.Equal(t, 1, params.Page)
	require.Equal(t, constants.DefaultPageSize, params.Limit)
	require.Zero(t, params.Offset)
}

func TestGetPaginationParams_CapsOversizedLimit(t *testing.T) {
	params := paramsFor(t, "?page=3&limit=500")

	require.Equal(t, 3, params.Page)
	require.Equal(t, constants.MaxPageSize, params.Limit)
	require.Equal(t, 2*constants.MaxPageSize, params.Offset)
}

func TestGetPaginationParams_RejectsGarbage(t *testing.T) {
	params := paramsFor(t, "?page=zero&limit=-5")

	require.Equal(t, 1, params.Page)
	require.Equal(t, constants.DefaultPageSize, params.Limit)
}

func TestNewPaginationResponse_RoundsPagesUp(t *testing.T) {
	response := NewPaginationResponse(PaginationParams{Page: 1, Limit: 2}, 5)

	require.Equal(t, int64(5), response.Total)
	require.Equal(t, int64(3), response.Pages)

	even := NewPaginationResponse(PaginationParams{Page: 2, Limit: 2}, 4)
	require.Equal(t, int64(2), even.Pages)
}
