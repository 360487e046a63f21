package domain

import (
	"strings"

	"github.com/google/uuid"
)

// CategoryRefKind discriminates a CategoryRef.
type CategoryRefKind string

const (
	CategoryRefID  CategoryRefKind = "id"
	CategoryRefKey CategoryRefKind = "key"
)

// CategoryRef references a category either by its stable id or by its key.
type CategoryRef struct {
	Kind  CategoryRefKind `json:"kind"`
	Value string          `json:"value"`
}

// NewCategoryID returns a reference by id.
func NewCategoryID(id string) CategoryRef {
	return CategoryRef{Kind: CategoryRefID, Value: strings.TrimSpace(id)}
}

// NewCategoryKey returns a reference by key.
func NewCategoryKey(key string) CategoryRef {
	return CategoryRef{Kind: CategoryRefKey, Value: strings.TrimSpace(key)}
}

// IsZero reports whether no reference was supplied.
func (r CategoryRef) IsZero() bool {
	return r.Kind == "" && r.Value == ""
}

// Validate returns a message describing why the reference is unusable, or
// "" when it is well formed.
func (r CategoryRef) Validate() string {
	value := strings.TrimSpace(r.Value)
	switch r.Kind {
	case CategoryRefID:
		if value == "" {
			return "category id is required"
		}
		if _, err := uuid.Parse(value); err != nil {
			return "category id must be a UUID"
		}
	case CategoryRefKey:
		if value == "" {
			return "category key is required"
		}
	case "":
		return "category is required"
	default:
		return "category kind must be id or key"
	}
	return ""
}
