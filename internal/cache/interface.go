package cache

import (
	"context"

	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/models"
)

// CartCache keeps one cart snapshot per shopping session.
type CartCache interface {
	Load(ctx context.Context, sessionID string) (*models.CartSnapshot, bool, error)
	Save(ctx context.Context, snapshot *models.CartSnapshot) error
	Delete(ctx context.Context, sessionID string) error
}

func Key(prefix string, id string) string {
	return prefix + ":" + id
}

const CartKeyPrefix = "cart"
