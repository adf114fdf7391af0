package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LineItem struct {
	ID                   string          `json:"id"`
	Name                 string          `json:"name"`
	Image                string          `json:"image"`
	Variation            string          `json:"variation"`
	Quantity             string          `json:"quantity"` // display label, e.g. "60TAB"
	Price                decimal.Decimal `json:"price"`
	Qty                  int             `json:"qty"`
	RequiresPrescription bool            `json:"requires_prescription"`
	Prescription         *Prescription   `json:"prescription,omitempty"`
}

// LineTotal is price × qty at full precision.
func (i LineItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Qty)))
}

// Stored per session in the cache; restored into a cart.Store on every request.
type CartSnapshot struct {
	SessionID string     `json:"session_id"`
	Items     []LineItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

type BlockReason string

const (
	BlockReasonMissing  BlockReason = "missing"
	BlockReasonPending  BlockReason = "pending"
	BlockReasonRejected BlockReason = "rejected"
)

// Blocker names a gated line item that keeps the cart from being checked out.
type Blocker struct {
	ItemID          string      `json:"item_id"`
	Name            string      `json:"name"`
	Reason          BlockReason `json:"reason"`
	RejectionReason string      `json:"rejection_reason,omitempty"`
}

type CartView struct {
	SessionID     string     `json:"session_id"`
	Items         []LineItem `json:"items"`
	Count         int        `json:"count"`
	Totals        Totals     `json:"totals"`
	CanPlaceOrder bool       `json:"can_place_order"`
	Blockers      []Blocker  `json:"blockers,omitempty"`
	Events        []string   `json:"events,omitempty"`
}

type AddItemRequest struct {
	ID                   string          `json:"id"                    validate:"required,max=64"`
	Name                 string          `json:"name"                  validate:"required,max=255"`
	Image                string          `json:"image"                 validate:"max=2048"`
	Variation            string          `json:"variation"             validate:"max=128"`
	Quantity             string          `json:"quantity"              validate:"max=64"`
	Price                decimal.Decimal `json:"price"`
	RequiresPrescription bool            `json:"requires_prescription"`
}

// Qty below 1 is accepted on the wire and ignored by the cart.
type UpdateQuantityRequest struct {
	Qty int `json:"qty"`
}

type CheckoutResult struct {
	OrderReference uuid.UUID  `json:"order_reference"`
	SessionID      string     `json:"session_id"`
	Items          []LineItem `json:"items"`
	Count          int        `json:"count"`
	Totals         Totals     `json:"totals"`
	PlacedAt       time.Time  `json:"placed_at"`
}
