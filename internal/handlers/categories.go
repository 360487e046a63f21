package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/newsdesk/internal/domain"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/logger"
)

// CategoryLister lists the category catalog.
type CategoryLister interface {
	List(ctx context.Context) ([]domain.Category, error)
}

// CategoryHandler serves the category catalog.
type CategoryHandler struct {
	categories    CategoryLister
	defaultLocale string
}

// NewCategoryHandler creates a CategoryHandler.
func NewCategoryHandler(categories CategoryLister, defaultLocale string) *CategoryHandler {
	return &CategoryHandler{categories: categories, defaultLocale: defaultLocale}
}

type categoryResponse struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// List handles GET /api/v1/categories.
func (h *CategoryHandler) List(c *gin.Context) {
	locale := requestLocale(c, h.defaultLocale)

	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		logger.FromContext(c.Request.Context()).Error("Failed to list categories", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list categories"})
		return
	}

	out := make([]categoryResponse, 0, len(categories))
	for _, cat := range categories {
		out = append(out, categoryResponse{ID: cat.ID, Key: cat.Key, Name: cat.Name(locale)})
	}
	c.JSON(http.StatusOK, out)
}

// requestLocale returns the lowercased ?lang value, or def when blank.
func requestLocale(c *gin.Context, def string) string {
	if lang := strings.ToLower(strings.TrimSpace(c.Query("lang"))); lang != "" {
		return lang
	}
	return strings.ToLower(def)
}
