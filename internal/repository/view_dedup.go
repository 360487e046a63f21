package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// ViewDedupRepository stores view dedup claims in report_view_dedup.
type ViewDedupRepository struct {
	db *sqlx.DB
}

// NewViewDedupRepository creates a new dedup claim repository.
func NewViewDedupRepository(db *sqlx.DB) *ViewDedupRepository {
	return &ViewDedupRepository{db: db}
}

// Claim inserts a claim for (reportID, fingerprint) unless an unexpired one
// exists. An expired claim is taken over in the same statement.
func (r *ViewDedupRepository) Claim(
	ctx context.Context,
	reportID, fingerprint string,
	window time.Duration,
) (bool, error) {
	query := `
		INSERT INTO report_view_dedup (report_id, fingerprint, expires_at)
		VALUES ($1, $2, NOW() + ($3 * INTERVAL '1 millisecond'))
		ON CONFLICT (report_id, fingerprint) DO UPDATE
		SET expires_at = EXCLUDED.expires_at
		WHERE report_view_dedup.expires_at <= NOW()
	`

	result, err := r.db.ExecContext(ctx, query, reportID, fingerprint, window.Milliseconds())
	if err != nil {
		return false, translateError("claim view", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, translateError("claim view rows affected", err)
	}
	return rows == 1, nil
}

// Release removes a claim.
func (r *ViewDedupRepository) Release(ctx context.Context, reportID, fingerprint string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM report_view_dedup WHERE report_id = $1 AND fingerprint = $2`,
		reportID, fingerprint,
	)
	return translateError("release view claim", err)
}

// PurgeExpired deletes expired claims and returns how many were removed.
func (r *ViewDedupRepository) PurgeExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM report_view_dedup WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, translateError("purge view claims", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, translateError("purge view claims rows affected", err)
	}
	return rows, nil
}
