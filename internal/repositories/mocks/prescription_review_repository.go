package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type PrescriptionReviewRepository struct {
	mock.Mock
}

func (m *PrescriptionReviewRepository) CreateReview(ctx context.Context, review *models.PrescriptionReview) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *PrescriptionReviewRepository) GetReviewByID(ctx context.Context, id uuid.UUID) (*models.PrescriptionReview, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.PrescriptionReview), args.Error(1)
}

func (m *PrescriptionReviewRepository) ListReviewsByStatus(ctx context.Context, status models.PrescriptionStatus, page int, size int) ([]*models.PrescriptionReview, int, error) {
	args := m.Called(ctx, status, page, size)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}

	return args.Get(0).([]*models.PrescriptionReview), args.Int(1), args.Error(2)
}

func (m *PrescriptionReviewRepository) UpdateReviewDecision(ctx context.Context, review *models.PrescriptionReview) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}
