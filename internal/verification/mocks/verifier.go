package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/verification"
	"github.com/stretchr/testify/mock"
)

type Verifier struct {
	mock.Mock
}

func (m *Verifier) Submit(ctx context.Context, sub verification.Submission) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}
