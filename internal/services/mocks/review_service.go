package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type ReviewService struct {
	mock.Mock
}

func (m *ReviewService) ListPending(ctx context.Context, page int, size int) (*models.PaginatedResponse, error) {
	args := m.Called(ctx, page, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.PaginatedResponse), args.Error(1)
}

func (m *ReviewService) Decide(ctx context.Context, reviewID uuid.UUID, reviewerID uuid.UUID, req *models.ReviewDecisionRequest) (*models.PrescriptionReview, error) {
	args := m.Called(ctx, reviewID, reviewerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.PrescriptionReview), args.Error(1)
}
