package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/models"
	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/utils"
	"github.com/google/uuid"
)

type PrescriptionReviewRepository interface {
	CreateReview(ctx context.Context, review *models.PrescriptionReview) error
	GetReviewByID(ctx context.Context, id uuid.UUID) (*models.PrescriptionReview, error)
	ListReviewsByStatus(ctx context.Context, status models.PrescriptionStatus, page int, size int) ([]*models.PrescriptionReview, int, error)
	UpdateReviewDecision(ctx context.Context, review *models.PrescriptionReview) error
}

type prescriptionReviewRepository struct {
	DB *sql.DB
}

func NewPrescriptionReviewRepo(db *sql.DB) PrescriptionReviewRepository {
	return &prescriptionReviewRepository{DB: db}
}

const reviewSchema = `
	CREATE TABLE IF NOT EXISTS prescription_reviews (
		id               UUID PRIMARY KEY,
		session_id       TEXT NOT NULL,
		item_id          TEXT NOT NULL,
		item_name        TEXT NOT NULL,
		file_name        TEXT NOT NULL,
		content_type     TEXT NOT NULL,
		status           TEXT NOT NULL DEFAULT 'pending',
		rejection_reason TEXT NOT NULL DEFAULT '',
		reviewed_by      UUID,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_prescription_reviews_status ON prescription_reviews (status, created_at);
`

// CreateReview supersedes any pending review of the same session item and
// inserts the new one in a single transaction.
func (r *prescriptionReviewRepository) CreateReview(ctx context.Context, review *models.PrescriptionReview) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback()

	supersedeQuery := `
		UPDATE prescription_reviews
		SET status = $1, updated_at = NOW()
		WHERE session_id = $2 AND item_id = $3 AND status = $4
	`

	if _, err := tx.ExecContext(dbCtx, supersedeQuery, models.ReviewStatusSuperseded, review.SessionID, review.ItemID, models.PrescriptionStatusPending); err != nil {
		return fmt.Errorf("failed to supersede previous reviews: %w", err)
	}

	insertQuery := `
		INSERT INTO prescription_reviews (id, session_id, item_id, item_name, file_name, content_type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err = tx.QueryRowContext(dbCtx, insertQuery,
		review.ID, review.SessionID, review.ItemID, review.ItemName, review.FileName, review.ContentType, review.Status,
	).Scan(&review.CreatedAt, &review.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert review: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit review: %w", err)
	}

	return nil
}

func (r *prescriptionReviewRepository) GetReviewByID(ctx context.Context, id uuid.UUID) (*models.PrescriptionReview, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, session_id, item_id, item_name, file_name, content_type, status, rejection_reason, reviewed_by, created_at, updated_at
		FROM prescription_reviews
		WHERE id = $1
	`

	review, err := scanReview(r.DB.QueryRowContext(dbCtx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		return nil, fmt.Errorf("querying review: %w", err)
	}

	return review, nil
}

// ListReviewsByStatus returns one page, oldest first, plus the total count.
func (r *prescriptionReviewRepository) ListReviewsByStatus(ctx context.Context, status models.PrescriptionStatus, page int, size int) ([]*models.PrescriptionReview, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var total int

	countQuery := `SELECT COUNT(*) FROM prescription_reviews WHERE status = $1`
	if err := r.DB.QueryRowContext(dbCtx, countQuery, status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	offset := (page - 1) * size

	query := `
		SELECT id, session_id, item_id, item_name, file_name, content_type, status, rejection_reason, reviewed_by, created_at, updated_at
		FROM prescription_reviews
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.DB.QueryContext(dbCtx, query, status, size, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}

	defer rows.Close()

	var reviews []*models.PrescriptionReview

	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan review: %w", err)
		}

		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate reviews: %w", err)
	}

	return reviews, total, nil
}

// UpdateReviewDecision only moves pending reviews; sql.ErrNoRows means the
// review was already decided or superseded.
func (r *prescriptionReviewRepository) UpdateReviewDecision(ctx context.Context, review *models.PrescriptionReview) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE prescription_reviews
		SET status = $1, rejection_reason = $2, reviewed_by = $3, updated_at = NOW()
		WHERE id = $4 AND status = $5
		RETURNING updated_at
	`

	err := r.DB.QueryRowContext(dbCtx, query,
		review.Status, review.RejectionReason, review.ReviewedBy, review.ID, models.PrescriptionStatusPending,
	).Scan(&review.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}

		return fmt.Errorf("failed to update review decision: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReview(row rowScanner) (*models.PrescriptionReview, error) {
	var (
		review     models.PrescriptionReview
		reviewedBy uuid.NullUUID
	)

	err := row.Scan(
		&review.ID, &review.SessionID, &review.ItemID, &review.ItemName, &review.FileName, &review.ContentType,
		&review.Status, &review.RejectionReason, &reviewedBy, &review.CreatedAt, &review.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if reviewedBy.Valid {
		review.ReviewedBy = &reviewedBy.UUID
	}

	return &review, nil
}
