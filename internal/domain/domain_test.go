package domain_test

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/newsdesk/internal/domain"
)

func TestParseStatus(t *testing.T) {
	t.Parallel()

	st, err := domain.ParseStatus(" Approved ")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, st)

	_, err = domain.ParseStatus("archived")
	require.Error(t, err)
	_, err = domain.ParseStatus("")
	require.Error(t, err)
}

func TestDecisionTarget(t *testing.T) {
	t.Parallel()

	d, err := domain.ParseDecision("APPROVE")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, d.Target())
	assert.Equal(t, domain.StatusRejected, domain.DecisionReject.Target())

	_, err = domain.ParseDecision("publish")
	require.Error(t, err)
}

func TestStatusIsTerminal(t *testing.T) {
	t.Parallel()
	assert.False(t, domain.StatusPending.IsTerminal())
	assert.True(t, domain.StatusApproved.IsTerminal())
	assert.True(t, domain.StatusRejected.IsTerminal())
}

func TestCategoryRefValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		ref   domain.CategoryRef
		valid bool
	}{
		{name: "id", ref: domain.NewCategoryID("6f1c2a4e-8d0b-4c7e-9a51-3b2d1f0e9c88"), valid: true},
		{name: "key", ref: domain.NewCategoryKey("politics"), valid: true},
		{name: "id not uuid", ref: domain.NewCategoryID("politics")},
		{name: "empty key", ref: domain.NewCategoryKey("  ")},
		{name: "missing", ref: domain.CategoryRef{}},
		{name: "unknown kind", ref: domain.CategoryRef{Kind: "slug", Value: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			msg := tt.ref.Validate()
			if tt.valid {
				assert.Empty(t, msg)
			} else {
				assert.NotEmpty(t, msg)
			}
		})
	}
}

func TestCategoryName_Fallback(t *testing.T) {
	t.Parallel()

	c := domain.Category{Key: "economy", Names: domain.LocaleNames{"en": "Economy", "tr": "Ekonomi"}}
	assert.Equal(t, "Ekonomi", c.Name("tr"))
	assert.Equal(t, "Economy", c.Name("de"))

	bare := domain.Category{Key: "economy"}
	assert.Equal(t, "economy", bare.Name("tr"))
}

func TestLocaleNames_ScanValue(t *testing.T) {
	t.Parallel()

	var n domain.LocaleNames
	require.NoError(t, n.Scan([]byte(`{"en":"Sports","tr":"Spor"}`)))
	assert.Equal(t, "Spor", n["tr"])

	require.NoError(t, n.Scan(nil))
	assert.Empty(t, n)

	require.Error(t, n.Scan(42))

	v, err := domain.LocaleNames{"en": "Sports"}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"en":"Sports"}`, string(v.([]byte)))
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	var empty *domain.ValidationError
	assert.False(t, empty.HasErrors())

	v := &domain.ValidationError{}
	v.Add("title", "is required")
	v.Add("title", "second message ignored")
	v.Add("email", "must be a valid email")

	assert.True(t, v.HasErrors())
	assert.Equal(t, "is required", v.Fields["title"])
	assert.Equal(t, "validation failed: email: must be a valid email; title: is required", v.Error())
}

func TestConflictErrorIs(t *testing.T) {
	t.Parallel()

	var err error = &domain.ConflictError{ReportID: "r1", Current: domain.StatusRejected}
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.NotErrorIs(t, err, domain.ErrNotFound)

	var ce *domain.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, domain.StatusRejected, ce.Current)
}

func TestStorageError(t *testing.T) {
	t.Parallel()

	err := domain.StorageError("create report", sql.ErrConnDone)
	require.ErrorIs(t, err, domain.ErrStorage)
	require.ErrorIs(t, err, sql.ErrConnDone)
	assert.False(t, errors.Is(err, domain.ErrNotFound))
	assert.Contains(t, err.Error(), "create report")
}
