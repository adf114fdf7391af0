// Package cart holds the in-memory cart of one shopping session: line items,
// prescription attachments and the checkout gate derived from them.
//
// A Store has a single writer. Callers that share a Store between goroutines
// must serialise access themselves.
package cart

import (
	"time"

	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Store struct {
	items     []models.LineItem
	publisher Publisher
	now       func() time.Time
}

type Option func(*Store)

func WithPublisher(p Publisher) Option {
	return func(s *Store) {
		if p != nil {
			s.publisher = p
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithItems seeds the cart, e.g. from a session snapshot. Duplicate ids are
// merged and quantities below 1 are raised to 1 so the seeded cart satisfies
// the same invariants as one built through AddItem.
func WithItems(items ...models.LineItem) Option {
	return func(s *Store) {
		for _, item := range items {
			if item.Qty < 1 {
				item.Qty = 1
			}

			if i := s.index(item.ID); i >= 0 {
				s.items[i].Qty += item.Qty
				continue
			}

			s.items = append(s.items, clone(item))
		}
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		publisher: nopPublisher{},
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// AddItem increments the quantity of an existing line item or appends a new
// one with qty 1. The incoming Qty is ignored either way. The returned event
// asks the presentation layer to show the cart.
func (s *Store) AddItem(item models.LineItem) Event {
	if i := s.index(item.ID); i >= 0 {
		s.items[i].Qty++
	} else {
		item.Qty = 1
		item.Prescription = nil
		s.items = append(s.items, item)
	}

	s.publish(EventItemAdded, item.ID)

	return s.Open()
}

// RemoveItem reports whether an item was removed.
func (s *Store) RemoveItem(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}

	s.items = append(s.items[:i], s.items[i+1:]...)
	s.publish(EventItemRemoved, id)

	return true
}

// UpdateQty never removes an item: qty < 1 leaves the cart untouched.
func (s *Store) UpdateQty(id string, qty int) bool {
	if qty < 1 {
		return false
	}

	i := s.index(id)
	if i < 0 {
		return false
	}

	s.items[i].Qty = qty
	s.publish(EventQuantityUpdated, id)

	return true
}

// UploadPrescription records file against a gated item as pending, replacing
// any previous attachment.
func (s *Store) UploadPrescription(itemID string, file models.PrescriptionFile) bool {
	i := s.index(itemID)
	if i < 0 || !s.items[i].RequiresPrescription {
		return false
	}

	s.items[i].Prescription = &models.Prescription{
		Status:     models.PrescriptionStatusPending,
		FileName:   file.Name,
		UploadedAt: s.now().UTC(),
	}
	s.publish(EventPrescriptionUploaded, itemID)

	return true
}

// AttachReview links the current attachment of an item to the review that
// will decide it.
func (s *Store) AttachReview(itemID string, reviewID uuid.UUID) bool {
	i := s.index(itemID)
	if i < 0 || s.items[i].Prescription == nil {
		return false
	}

	s.items[i].Prescription.ReviewID = reviewID

	return true
}

// SetPrescriptionStatus applies an externally decided status. Items without an
// attachment are left alone. The rejection reason survives only on rejected.
func (s *Store) SetPrescriptionStatus(itemID string, status models.PrescriptionStatus, reason string) bool {
	if !status.Valid() {
		return false
	}

	i := s.index(itemID)
	if i < 0 || s.items[i].Prescription == nil {
		return false
	}

	p := s.items[i].Prescription
	p.Status = status
	p.RejectionReason = ""

	if status == models.PrescriptionStatusRejected {
		p.RejectionReason = reason
	}

	s.publish(EventPrescriptionStatusChanged, itemID)

	return true
}

func (s *Store) Open() Event {
	return s.publish(EventCartOpened, "")
}

func (s *Store) Close() Event {
	return s.publish(EventCartClosed, "")
}

// Item returns a copy of the line item with the given id.
func (s *Store) Item(id string) (models.LineItem, bool) {
	i := s.index(id)
	if i < 0 {
		return models.LineItem{}, false
	}

	return clone(s.items[i]), true
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []models.LineItem {
	items := make([]models.LineItem, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, clone(item))
	}

	return items
}

func (s *Store) Len() int {
	return len(s.items)
}

// Count is the total number of units, not of distinct items.
func (s *Store) Count() int {
	count := 0
	for _, item := range s.items {
		count += item.Qty
	}

	return count
}

func (s *Store) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.LineTotal())
	}

	return total
}

func (s *Store) index(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}

	return -1
}

func (s *Store) publish(topic, itemID string) Event {
	ev := Event{Topic: topic, ItemID: itemID}
	s.publisher.Publish(topic, ev)

	return ev
}

func clone(item models.LineItem) models.LineItem {
	if item.Prescription != nil {
		p := *item.Prescription
		item.Prescription = &p
	}

	return item
}
