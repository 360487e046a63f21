package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/jonesrussell/north-cloud/newsdesk/internal/domain"
)

// PostgreSQL SQLSTATE codes.
const (
	pqForeignKeyViolation = "23503"
	pqInvalidTextRepr     = "22P02"
	pqStringTooLong       = "22001"
)

// translateError maps driver errors onto domain error kinds.
func translateError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqForeignKeyViolation:
			return fmt.Errorf("%s: %w: %s", op, domain.ErrInvalidReference, pqErr.Constraint)
		case pqInvalidTextRepr:
			return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
		case pqStringTooLong:
			field := pqErr.Column
			if field == "" {
				field = "request"
			}
			return fmt.Errorf("%s: %w", op, domain.NewValidationError(field, "is too long"))
		}
	}
	return domain.StorageError(op, err)
}

// escapeLike escapes LIKE metacharacters so the term matches literally.
func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
