package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/models"
	"github.com/stretchr/testify/mock"
)

type CartCache struct {
	mock.Mock
}

func (m *CartCache) Load(ctx context.Context, sessionID string) (*models.CartSnapshot, bool, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}

	return args.Get(0).(*models.CartSnapshot), args.Bool(1), args.Error(2)
}

func (m *CartCache) Save(ctx context.Context, snapshot *models.CartSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *CartCache) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}
