package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/it-hub-api/internal/models"
	appErrors "github.com/noah-isme/it-hub-api/pkg/errors"
)

const maxPageSize = 100

// paginate slices items by the optional page and limit query parameters.
// Without limit the whole collection is returned as a single page.
func paginate[T any](c *gin.Context, items []T) ([]T, *models.Pagination, error) {
	page, err := queryInt(c, "page", 1)
	if err != nil || page < 1 {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "page must be a positive integer")
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil || limit < 0 {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "limit must be a positive integer")
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	paged, pagination := models.Paginate(items, page, limit)
	return paged, pagination, nil
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
