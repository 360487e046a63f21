package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/north-cloud/newsdesk/internal/domain"
)

const categorySelectColumns = `id, key, names`

// CategoryRepository reads the category catalog.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository creates a new category repository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// GetByID returns a category or ErrNotFound.
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	if !isUUID(id) {
		return nil, fmt.Errorf("get category %q: %w", id, domain.ErrNotFound)
	}

	var category domain.Category
	query := `SELECT ` + categorySelectColumns + ` FROM categories WHERE id = $1`
	if err := r.db.GetContext(ctx, &category, query, id); err != nil {
		return nil, translateError("get category", err)
	}
	return &category, nil
}

// GetByKey returns a category by its stable key or ErrNotFound.
func (r *CategoryRepository) GetByKey(ctx context.Context, key string) (*domain.Category, error) {
	var category domain.Category
	query := `SELECT ` + categorySelectColumns + ` FROM categories WHERE key = $1`
	if err := r.db.GetContext(ctx, &category, query, strings.ToLower(strings.TrimSpace(key))); err != nil {
		return nil, translateError("get category by key", err)
	}
	return &category, nil
}

// List returns the full catalog ordered by key.
func (r *CategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	categories := make([]domain.Category, 0)
	query := `SELECT ` + categorySelectColumns + ` FROM categories ORDER BY key`
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, translateError("list categories", err)
	}
	return categories, nil
}
