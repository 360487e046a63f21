// Package repository implements PostgreSQL persistence for reports,
// categories and view dedup claims.
package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/north-cloud/newsdesk/internal/domain"
)

const reportSelectColumns = `id, title, content, location_name, latitude, longitude, category_id,
	submitter_email, source_url, image_url, status, status_notes, status_changed_at,
	view_count, created_at`

const summarySelectColumns = `r.id, r.title, r.content, r.location_name, r.latitude, r.longitude,
	r.category_id, r.submitter_email, r.source_url, r.image_url, r.status, r.status_notes,
	r.status_changed_at, r.view_count, r.created_at,
	c.key AS category_key,
	COALESCE(NULLIF(c.names->>$1, ''), NULLIF(c.names->>'en', ''), c.key) AS category_name`

const defaultLocale = "en"

// ListFilter selects a page of report summaries.
type ListFilter struct {
	Status *domain.Status
	Search string
	Limit  int
	Offset int
	Locale string
}

// ReportRepository persists reports.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository creates a new report repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create inserts a new report. A missing category yields ErrInvalidReference.
func (r *ReportRepository) Create(ctx context.Context, report *domain.Report) error {
	query := `
		INSERT INTO reports (
			id, title, content, location_name, latitude, longitude, category_id,
			submitter_email, source_url, image_url, status, view_count, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.ExecContext(ctx, query,
		report.ID,
		report.Title,
		report.Content,
		report.LocationName,
		report.Latitude,
		report.Longitude,
		report.CategoryID,
		report.SubmitterEmail,
		report.SourceURL,
		report.ImageURL,
		string(report.Status),
		report.ViewCount,
		report.CreatedAt,
	)
	return translateError("create report", err)
}

// GetByID returns a report or ErrNotFound. Ids that are not UUIDs are
// reported as not found without a round trip.
func (r *ReportRepository) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	if !isUUID(id) {
		return nil, fmt.Errorf("get report %q: %w", id, domain.ErrNotFound)
	}

	query := `SELECT ` + reportSelectColumns + ` FROM reports WHERE id = $1`

	var report domain.Report
	if err := r.db.GetContext(ctx, &report, query, id); err != nil {
		return nil, translateError("get report", err)
	}
	return &report, nil
}

// Exists reports whether a report with id is stored.
func (r *ReportRepository) Exists(ctx context.Context, id string) (bool, error) {
	if !isUUID(id) {
		return false, nil
	}

	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM reports WHERE id = $1)`, id)
	if err != nil {
		return false, translateError("check report", err)
	}
	return exists, nil
}

// GetSummary returns a report joined with its category name in locale.
func (r *ReportRepository) GetSummary(ctx context.Context, id, locale string) (*domain.ReportSummary, error) {
	if !isUUID(id) {
		return nil, fmt.Errorf("get report summary %q: %w", id, domain.ErrNotFound)
	}

	query := `SELECT ` + summarySelectColumns + `
		FROM reports r
		JOIN categories c ON c.id = r.category_id
		WHERE r.id = $2`

	var summary domain.ReportSummary
	if err := r.db.GetContext(ctx, &summary, query, localeOrDefault(locale), id); err != nil {
		return nil, translateError("get report summary", err)
	}
	return &summary, nil
}

// List returns summaries newest first. Search matches title, location and
// submitter email case-insensitively.
func (r *ReportRepository) List(ctx context.Context, filter ListFilter) ([]domain.ReportSummary, error) {
	query, args := buildListQuery(filter)

	summaries := make([]domain.ReportSummary, 0, max(filter.Limit, 0))
	if err := r.db.SelectContext(ctx, &summaries, query, args...); err != nil {
		return nil, translateError("list reports", err)
	}
	return summaries, nil
}

func buildListQuery(filter ListFilter) (query string, args []any) {
	var b strings.Builder
	b.WriteString(`SELECT ` + summarySelectColumns + `
		FROM reports r
		JOIN categories c ON c.id = r.category_id`)

	args = []any{localeOrDefault(filter.Locale)}
	var conditions []string

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conditions = append(conditions, fmt.Sprintf("r.status = $%d", len(args)))
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+escapeLike(search)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(r.title ILIKE $%d OR r.location_name ILIKE $%d OR r.submitter_email ILIKE $%d)", n, n, n,
		))
	}

	if len(conditions) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conditions, " AND "))
	}

	args = append(args, filter.Limit, filter.Offset)
	fmt.Fprintf(&b, " ORDER BY r.created_at DESC, r.id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	return b.String(), args
}

// TransitionStatus moves a pending report to target. applied is false when
// the report is missing or no longer pending; nothing is written then.
func (r *ReportRepository) TransitionStatus(
	ctx context.Context,
	id string,
	target domain.Status,
	notes *string,
	at time.Time,
) (report *domain.Report, applied bool, err error) {
	if !isUUID(id) {
		return nil, false, nil
	}

	query := `
		UPDATE reports
		SET status = $2,
			status_notes = COALESCE($3, status_notes),
			status_changed_at = $4
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + reportSelectColumns

	var updated domain.Report
	err = r.db.GetContext(ctx, &updated, query, id, string(target), notes, at)
	if err != nil {
		translated := translateError("transition report", err)
		if isNotFound(translated) {
			return nil, false, nil
		}
		return nil, false, translated
	}
	return &updated, true, nil
}

// IncrementViews adds one view and returns the new count.
func (r *ReportRepository) IncrementViews(ctx context.Context, id string) (int64, error) {
	if !isUUID(id) {
		return 0, fmt.Errorf("increment views %q: %w", id, domain.ErrNotFound)
	}

	var count int64
	err := r.db.GetContext(ctx, &count,
		`UPDATE reports SET view_count = view_count + 1 WHERE id = $1 RETURNING view_count`, id)
	if err != nil {
		return 0, translateError("increment views", err)
	}
	return count, nil
}

func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func localeOrDefault(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if locale == "" {
		return defaultLocale
	}
	return locale
}
