// Package pricing derives the monetary figures shown at checkout from a cart subtotal.
package pricing

import (
	"fmt"

	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/config"
	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/models"
	"github.com/shopspring/decimal"
)

var (
	DefaultTaxRate               = decimal.RequireFromString("0.15")
	DefaultFreeShippingThreshold = decimal.NewFromInt(199)
	DefaultFlatShippingFee       = decimal.RequireFromString("15.00")
)

type Calculator struct {
	taxRate   decimal.Decimal
	threshold decimal.Decimal
	fee       decimal.Decimal
}

func NewCalculator(taxRate, freeShippingThreshold, flatShippingFee decimal.Decimal) *Calculator {
	return &Calculator{taxRate: taxRate, threshold: freeShippingThreshold, fee: flatShippingFee}
}

func Default() *Calculator {
	return NewCalculator(DefaultTaxRate, DefaultFreeShippingThreshold, DefaultFlatShippingFee)
}

func FromConfig(cfg config.PricingConfig) (*Calculator, error) {
	taxRate, err := parseNonNegative("tax_rate", cfg.TaxRate)
	if err != nil {
		return nil, err
	}

	threshold, err := parseNonNegative("free_shipping_threshold", cfg.FreeShippingThreshold)
	if err != nil {
		return nil, err
	}

	fee, err := parseNonNegative("flat_shipping_fee", cfg.FlatShippingFee)
	if err != nil {
		return nil, err
	}

	return NewCalculator(taxRate, threshold, fee), nil
}

func (c *Calculator) Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(c.taxRate)
}

// Shipping is free only strictly above the threshold.
func (c *Calculator) Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(c.threshold) {
		return decimal.Zero
	}

	return c.fee
}

func (c *Calculator) Quote(subtotal decimal.Decimal) models.Totals {
	tax := c.Tax(subtotal)
	shipping := c.Shipping(subtotal)

	return models.Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    subtotal.Add(tax).Add(shipping),
	}
}

func parseNonNegative(name, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid pricing %s %q: %w", name, value, err)
	}

	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("invalid pricing %s %q: must not be negative", name, value)
	}

	return d, nil
}
