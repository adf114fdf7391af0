package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/models"
	"github.com/stretchr/testify/mock"
)

type CartService struct {
	mock.Mock
}

func (m *CartService) GetCart(ctx context.Context, sessionID string) (*models.CartView, error) {
	args := m.Called(ctx, sessionID)
	return view(args)
}

func (m *CartService) AddItem(ctx context.Context, sessionID string, req *models.AddItemRequest) (*models.CartView, error) {
	args := m.Called(ctx, sessionID, req)
	return view(args)
}

func (m *CartService) RemoveItem(ctx context.Context, sessionID string, itemID string) (*models.CartView, error) {
	args := m.Called(ctx, sessionID, itemID)
	return view(args)
}

func (m *CartService) UpdateQuantity(ctx context.Context, sessionID string, itemID string, req *models.UpdateQuantityRequest) (*models.CartView, error) {
	args := m.Called(ctx, sessionID, itemID, req)
	return view(args)
}

func (m *CartService) UploadPrescription(ctx context.Context, sessionID string, itemID string, file models.PrescriptionFile) (*models.CartView, error) {
	args := m.Called(ctx, sessionID, itemID, file)
	return view(args)
}

func (m *CartService) ApplyPrescriptionDecision(ctx context.Context, decision models.PrescriptionDecision) (bool, error) {
	args := m.Called(ctx, decision)
	return args.Bool(0), args.Error(1)
}

func (m *CartService) Checkout(ctx context.Context, sessionID string) (*models.CheckoutResult, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.CheckoutResult), args.Error(1)
}

func view(args mock.Arguments) (*models.CartView, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.CartView), args.Error(1)
}
