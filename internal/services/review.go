package service

import (
	"context"
	"database/sql"
	stdErrors "errors"
	"log/slog"

	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/api/middleware"
	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/errors"
	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/models"
	repository "github.com/aaravmahajanofficial/pharmacy-checkout/internal/repositories"
	"github.com/google/uuid"
)

type ReviewService interface {
	ListPending(ctx context.Context, page int, size int) (*models.PaginatedResponse, error)
	Decide(ctx context.Context, reviewID uuid.UUID, reviewerID uuid.UUID, req *models.ReviewDecisionRequest) (*models.PrescriptionReview, error)
}

type reviewService struct {
	repo      repository.PrescriptionReviewRepository
	carts     CartService
	text      plainText
}

func NewReviewService(repo repository.PrescriptionReviewRepository, carts CartService) ReviewService {
	return &reviewService{repo: repo, carts: carts, text: newPlainText()}
}

// ListPending returns the oldest pending reviews first.
func (s *reviewService) ListPending(ctx context.Context, page int, size int) (*models.PaginatedResponse, error) {

	if page < 1 {
		page = 1
	}

	if size < 1 || size > 10 {
		size = 10
	}

	reviews, total, err := s.repo.ListReviewsByStatus(ctx, models.PrescriptionStatusPending, page, size)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list prescription reviews").WithError(err)
	}

	if reviews == nil {
		reviews = []*models.PrescriptionReview{}
	}

	return &models.PaginatedResponse{
		Data:     reviews,
		Total:    total,
		Page:     page,
		PageSize: size,
	}, nil
}

// Decide records a pharmacist's verdict and forwards it to the session cart.
// The verdict stands even if the cart has since moved on.
func (s *reviewService) Decide(ctx context.Context, reviewID uuid.UUID, reviewerID uuid.UUID, req *models.ReviewDecisionRequest) (*models.PrescriptionReview, error) {

	logger := middleware.LoggerFromContext(ctx)

	if req.Status != models.PrescriptionStatusVerified && req.Status != models.PrescriptionStatusRejected {
		return nil, errors.AddValidationError("status", "must be verified or rejected")
	}

	review, err := s.repo.GetReviewByID(ctx, reviewID)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("Prescription review not found").WithError(err)
		}
		return nil, errors.DatabaseError("Failed to get prescription review").WithError(err)
	}

	if review.Status != models.PrescriptionStatusPending {
		return nil, errors.ConflictError("Prescription review already closed").WithDetail(string(review.Status))
	}

	review.Status = req.Status
	review.RejectionReason = ""
	if req.Status == models.PrescriptionStatusRejected {
		review.RejectionReason = s.text.clean(req.RejectionReason)
	}
	review.ReviewedBy = &reviewerID

	if err := s.repo.UpdateReviewDecision(ctx, review); err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return nil, errors.ConflictError("Prescription review already closed").WithError(err)
		}
		return nil, errors.DatabaseError("Failed to record prescription decision").WithError(err)
	}

	applied, err := s.carts.ApplyPrescriptionDecision(ctx, models.PrescriptionDecision{
		SessionID:       review.SessionID,
		ItemID:          review.ItemID,
		ReviewID:        review.ID,
		Status:          review.Status,
		RejectionReason: review.RejectionReason,
	})
	if err != nil {
		logger.Error("Failed to deliver prescription decision to cart",
			slog.String("reviewId", review.ID.String()),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	if !applied {
		logger.Warn("Prescription decision no longer matches the cart",
			slog.String("reviewId", review.ID.String()),
			slog.String("itemId", review.ItemID),
		)
	}

	logger.Info("Prescription reviewed",
		slog.String("reviewId", review.ID.String()),
		slog.String("status", string(review.Status)),
	)

	return review, nil
}
