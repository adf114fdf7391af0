package cart

import "github.com/aaravmahajanofficial/pharmacy-checkout/internal/models"

// CanPlaceOrder reports whether every item that requires a prescription has a
// verified one. A cart without gated items is always eligible.
func (s *Store) CanPlaceOrder() bool {
	for _, item := range s.items {
		if blocked(item) {
			return false
		}
	}

	return true
}

// Blockers lists the gated items that keep the cart from checkout, in cart order.
func (s *Store) Blockers() []models.Blocker {
	var blockers []models.Blocker

	for _, item := range s.items {
		if !blocked(item) {
			continue
		}

		b := models.Blocker{ItemID: item.ID, Name: item.Name}

		switch {
		case item.Prescription == nil:
			b.Reason = models.BlockReasonMissing
		case item.Prescription.Status == models.PrescriptionStatusRejected:
			b.Reason = models.BlockReasonRejected
			b.RejectionReason = item.Prescription.RejectionReason
		default:
			b.Reason = models.BlockReasonPending
		}

		blockers = append(blockers, b)
	}

	return blockers
}

func blocked(item models.LineItem) bool {
	if !item.RequiresPrescription {
		return false
	}

	return item.Prescription == nil || item.Prescription.Status != models.PrescriptionStatusVerified
}
