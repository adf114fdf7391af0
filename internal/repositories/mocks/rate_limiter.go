package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type UploadRateLimiter struct {
	mock.Mock
}

func (m *UploadRateLimiter) Allow(ctx context.Context, sessionID string) (bool, int, int, error) {
	args := m.Called(ctx, sessionID)
	return args.Bool(0), args.Int(1), args.Int(2), args.Error(3)
}
