package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"modvault/internal/manifest"
	"modvault/internal/registry"
	"modvault/internal/store"
)

// PageSize is the listing page length.
const PageSize = 24

// writeServiceError maps service and store errors onto HTTP statuses.
// Hidden entities are reported as not found so visibility state does
// not leak.
func writeServiceError(c *gin.Context, err error) {
	var verr *manifest.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
	case errors.Is(err, store.ErrNotFound), errors.Is(err, registry.ErrHidden):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, store.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict"})
	case errors.Is(err, registry.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// pageOf slices one page out of a listing, 1-based.
func pageOf[T any](items []T, page int) []T {
	if page < 1 {
		page = 1
	}
	start := (page - 1) * PageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func pageCount(total int) int {
	if total == 0 {
		return 1
	}
	return (total + PageSize - 1) / PageSize
}
