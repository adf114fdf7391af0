package repository_test

import (
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/models"
	repository "github.com/aaravmahajanofficial/pharmacy-checkout/internal/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reviewColumns = []string{
	"id", "session_id", "item_id", "item_name", "file_name", "content_type",
	"status", "rejection_reason", "reviewed_by", "created_at", "updated_at",
}

func setupReviewRepoTest(t *testing.T) (repository.PrescriptionReviewRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "Failed to create sqlmock")

	t.Cleanup(func() {
		db.Close()
	})

	repo := repository.NewPrescriptionReviewRepo(db)
	require.NotNil(t, repo)

	return repo, mock
}

func newPendingReview() *models.PrescriptionReview {
	return &models.PrescriptionReview{
		ID:          uuid.New(),
		SessionID:   "session-1",
		ItemID:      "amoxicillin-500",
		ItemName:    "Amoxicillin",
		FileName:    "rx.png",
		ContentType: "image/png",
		Status:      models.PrescriptionStatusPending,
	}
}

func TestCreateReview(t *testing.T) {
	ctx := t.Context()
	supersedeSQL := regexp.QuoteMeta("UPDATE prescription_reviews SET status = $1, updated_at = NOW() WHERE session_id = $2 AND item_id = $3 AND status = $4")
	insertSQL := regexp.QuoteMeta("INSERT INTO prescription_reviews")

	t.Run("Success", func(t *testing.T) {
		// Arrange
		repo, mock := setupReviewRepoTest(t)
		review := newPendingReview()
		now := time.Now()

		mock.ExpectBegin()
		mock.ExpectExec(supersedeSQL).
			WithArgs(models.ReviewStatusSuperseded, review.SessionID, review.ItemID, models.PrescriptionStatusPending).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(insertSQL).
			WithArgs(review.ID, review.SessionID, review.ItemID, review.ItemName, review.FileName, review.ContentType, review.Status).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
		mock.ExpectCommit()

		// Act
		err := repo.CreateReview(ctx, review)

		// Assert
		require.NoError(t, err)
		assert.WithinDuration(t, now, review.CreatedAt, time.Second)
		assert.WithinDuration(t, now, review.UpdatedAt, time.Second)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Insert Error Rolls Back", func(t *testing.T) {
		// Arrange
		repo, mock := setupReviewRepoTest(t)
		review := newPendingReview()
		dbError := errors.New("insert failed")

		mock.ExpectBegin()
		mock.ExpectExec(supersedeSQL).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(insertSQL).WillReturnError(dbError)
		mock.ExpectRollback()

		// Act
		err := repo.CreateReview(ctx, review)

		// Assert
		require.Error(t, err)
		assert.ErrorIs(t, err, dbError)
		assert.ErrorContains(t, err, "failed to insert review")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Begin Error", func(t *testing.T) {
		// Arrange
		repo, mock := setupReviewRepoTest(t)
		dbError := errors.New("connection reset")
		mock.ExpectBegin().WillReturnError(dbError)

		// Act
		err := repo.CreateReview(ctx, newPendingReview())

		// Assert
		require.Error(t, err)
		assert.ErrorIs(t, err, dbError)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetReviewByID(t *testing.T) {
	ctx := t.Context()
	selectSQL := regexp.QuoteMeta("FROM prescription_reviews WHERE id = $1")

	t.Run("Success", func(t *testing.T) {
		// Arrange
		repo, mock := setupReviewRepoTest(t)
		review := newPendingReview()
		reviewer := uuid.New()
		now := time.Now()

		mock.ExpectQuery(selectSQL).
			WithArgs(review.ID).
			WillReturnRows(sqlmock.NewRows(reviewColumns).AddRow(
				review.ID.String(), review.SessionID, review.ItemID, review.ItemName, review.FileName, review.ContentType,
				"rejected", "illegible", reviewer.String(), now, now,
			))

		// Act
		got, err := repo.GetReviewByID(ctx, review.ID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, review.ID, got.ID)
		assert.Equal(t, models.PrescriptionStatusRejected, got.Status)
		assert.Equal(t, "illegible", got.RejectionReason)
		require.NotNil(t, got.ReviewedBy)
		assert.Equal(t, reviewer, *got.ReviewedBy)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success - Not Yet Reviewed", func(t *testing.T) {
		// Arrange
		repo, mock := setupReviewRepoTest(t)
		review := newPendingReview()
		now := time.Now()

		mock.ExpectQuery(selectSQL).
			WithArgs(review.ID).
			WillReturnRows(sqlmock.NewRows(reviewColumns).AddRow(
				review.ID.String(), review.SessionID, review.ItemID, review.ItemName, review.FileName, review.ContentType,
				"pending", "", nil, now, now,
			))

		// Act
		got, err := repo.GetReviewByID(ctx, review.ID)

		// Assert
		require.NoError(t, err)
		assert.Nil(t, got.ReviewedBy)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Not Found", func(t *testing.T) {
		// Arrange
		repo, mock := setupReviewRepoTest(t)
		id := uuid.New()
		mock.ExpectQuery(selectSQL).WithArgs(id).WillReturnError(sql.ErrNoRows)

		// Act
		got, err := repo.GetReviewByID(ctx, id)

		// Assert
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListReviewsByStatus(t *testing.T) {
	ctx := t.Context()
	countSQL := regexp.QuoteMeta("SELECT COUNT(*) FROM prescription_reviews WHERE status = $1")
	listSQL := regexp.QuoteMeta("ORDER BY created_at ASC LIMIT $2 OFFSET $3")

	t.Run("Success", func(t *testing.T) {
		// Arrange
		repo, mock := setupReviewRepoTest(t)
		first, second := newPendingReview(), newPendingReview()
		now := time.Now()

		mock.ExpectQuery(countSQL).
			WithArgs(models.PrescriptionStatusPending).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
		mock.ExpectQuery(listSQL).
			WithArgs(models.PrescriptionStatusPending, 10, 10).
			WillReturnRows(sqlmock.NewRows(reviewColumns).
				AddRow(first.ID.String(), first.SessionID, first.ItemID, first.ItemName, first.FileName, first.ContentType, "pending", "", nil, now, now).
				AddRow(second.ID.String(), second.SessionID, second.ItemID, second.ItemName, second.FileName, second.ContentType, "pending", "", nil, now, now))

		// Act
		reviews, total, err := repo.ListReviewsByStatus(ctx, models.PrescriptionStatusPending, 2, 10)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 12, total)
		require.Len(t, reviews, 2)
		assert.Equal(t, first.ID, reviews[0].ID)
		assert.Equal(t, second.ID, reviews[1].ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Count Error", func(t *testing.T) {
		// Arrange
		repo, mock := setupReviewRepoTest(t)
		dbError := errors.New("count failed")
		mock.ExpectQuery(countSQL).WillReturnError(dbError)

		// Act
		reviews, total, err := repo.ListReviewsByStatus(ctx, models.PrescriptionStatusPending, 1, 10)

		// Assert
		assert.ErrorIs(t, err, dbError)
		assert.Nil(t, reviews)
		assert.Zero(t, total)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateReviewDecision(t *testing.T) {
	ctx := t.Context()
	updateSQL := regexp.QuoteMeta("UPDATE prescription_reviews SET status = $1, rejection_reason = $2, reviewed_by = $3, updated_at = NOW() WHERE id = $4 AND status = $5")

	t.Run("Success", func(t *testing.T) {
		// Arrange
		repo, mock := setupReviewRepoTest(t)
		reviewer := uuid.New()
		review := newPendingReview()
		review.Status = models.PrescriptionStatusVerified
		review.ReviewedBy = &reviewer
		now := time.Now()

		mock.ExpectQuery(updateSQL).
			WithArgs(models.PrescriptionStatusVerified, "", sqlmock.AnyArg(), review.ID, models.PrescriptionStatusPending).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

		// Act
		err := repo.UpdateReviewDecision(ctx, review)

		// Assert
		require.NoError(t, err)
		assert.WithinDuration(t, now, review.UpdatedAt, time.Second)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Already Decided", func(t *testing.T) {
		// Arrange
		repo, mock := setupReviewRepoTest(t)
		review := newPendingReview()
		review.Status = models.PrescriptionStatusRejected
		review.RejectionReason = "expired"

		mock.ExpectQuery(updateSQL).WillReturnError(sql.ErrNoRows)

		// Act
		err := repo.UpdateReviewDecision(ctx, review)

		// Assert
		assert.ErrorIs(t, err, sql.ErrNoRows)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
