package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/thecodingmontana/zadaci-api/internal/constants"
)

// PaginationParams is a validated page request.
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// PaginationResponse is the paging envelope of list responses.
type PaginationResponse struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// GetPaginationParams reads page and limit from the query string. Bad or
// missing values fall back to the defaults, oversized limits are capped.
func GetPaginationParams(c *gin.Context) PaginationParams {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		limit = constants.DefaultPageSize
	}
	if limit > constants.MaxPageSize {
		limit = constants.MaxPageSize
	}

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// NewPaginationResponse builds the paging envelope for a result count.
func NewPaginationResponse(params PaginationParams, total int64) PaginationResponse {
	pages := total / int64(params.Limit)
	if total%int64(params.Limit) != 0 {
		pages++
	}
	return PaginationResponse{
		Page:  params.Page,
		Limit: params.Limit,
		Total: total,
		Pages: pages,
	}
}
