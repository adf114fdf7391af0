package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/api/middleware"
	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/cache"
	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/cart"
	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/errors"
	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/metrics"
	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/models"
	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/pricing"
	repository "github.com/aaravmahajanofficial/pharmacy-checkout/internal/repositories"
	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/verification"
	"github.com/google/uuid"
)

type CartService interface {
	GetCart(ctx context.Context, sessionID string) (*models.CartView, error)
	AddItem(ctx context.Context, sessionID string, req *models.AddItemRequest) (*models.CartView, error)
	RemoveItem(ctx context.Context, sessionID string, itemID string) (*models.CartView, error)
	UpdateQuantity(ctx context.Context, sessionID string, itemID string, req *models.UpdateQuantityRequest) (*models.CartView, error)
	UploadPrescription(ctx context.Context, sessionID string, itemID string, file models.PrescriptionFile) (*models.CartView, error)
	ApplyPrescriptionDecision(ctx context.Context, decision models.PrescriptionDecision) (bool, error)
	Checkout(ctx context.Context, sessionID string) (*models.CheckoutResult, error)
}

type cartService struct {
	cache      cache.CartCache
	calculator *pricing.Calculator
	verifier   verification.Verifier
	limiter    repository.UploadRateLimiter
	publisher  cart.Publisher
	text       plainText
	locks      *sessionLocks
}

func NewCartService(
	cartCache cache.CartCache,
	calculator *pricing.Calculator,
	verifier verification.Verifier,
	limiter repository.UploadRateLimiter,
	publisher cart.Publisher,
) CartService {
	return &cartService{
		cache:      cartCache,
		calculator: calculator,
		verifier:   verifier,
		limiter:    limiter,
		publisher:  publisher,
		text:       newPlainText(),
		locks:      newSessionLocks(),
	}
}

func (s *cartService) GetCart(ctx context.Context, sessionID string) (*models.CartView, error) {
	return s.mutate(ctx, sessionID, func(*cart.Store) error { return nil })
}

func (s *cartService) AddItem(ctx context.Context, sessionID string, req *models.AddItemRequest) (*models.CartView, error) {

	if req.Price.IsNegative() {
		return nil, errors.AddValidationError("price", "must not be negative")
	}

	item := models.LineItem{
		ID:                   req.ID,
		Name:                 s.text.clean(req.Name),
		Image:                req.Image,
		Variation:            s.text.clean(req.Variation),
		Quantity:             s.text.clean(req.Quantity),
		Price:                req.Price,
		RequiresPrescription: req.RequiresPrescription,
	}

	return s.mutate(ctx, sessionID, func(store *cart.Store) error {
		store.AddItem(item)
		return nil
	})
}

// RemoveItem leaves the cart untouched when the item is not in it.
func (s *cartService) RemoveItem(ctx context.Context, sessionID string, itemID string) (*models.CartView, error) {
	return s.mutate(ctx, sessionID, func(store *cart.Store) error {
		store.RemoveItem(itemID)
		return nil
	})
}

// UpdateQuantity ignores quantities below 1 and unknown items.
func (s *cartService) UpdateQuantity(ctx context.Context, sessionID string, itemID string, req *models.UpdateQuantityRequest) (*models.CartView, error) {
	return s.mutate(ctx, sessionID, func(store *cart.Store) error {
		store.UpdateQty(itemID, req.Qty)
		return nil
	})
}

// UploadPrescription records the file as the pending attachment of the item
// and submits it for review. The cart references the review before the review
// exists, and is restored if the submission fails.
func (s *cartService) UploadPrescription(ctx context.Context, sessionID string, itemID string, file models.PrescriptionFile) (*models.CartView, error) {

	logger := middleware.LoggerFromContext(ctx)
	file.Name = s.text.clean(file.Name)

	unlock := s.locks.lock(sessionID)
	defer unlock()

	rec := &eventRecorder{next: s.publisher}

	store, err := s.restore(ctx, sessionID, rec)
	if err != nil {
		return nil, err
	}

	item, ok := store.Item(itemID)
	if !ok {
		return nil, errors.NotFoundError("Item not found in the cart")
	}

	if !item.RequiresPrescription {
		return nil, errors.BadRequestError("Item does not require a prescription")
	}

	allowed, remaining, retryAfter, err := s.limiter.Allow(ctx, sessionID)
	if err != nil {
		return nil, errors.ThirdPartyError("Rate limit check failed").WithError(err)
	}

	if !allowed {
		logger.Warn("Prescription upload rate limited", slog.String("sessionId", sessionID), slog.Int("retryAfter", retryAfter))
		return nil, errors.TooManyRequestsError("Too many prescription uploads. Please try again later.").
			WithDetail(fmt.Sprintf("retry after %d seconds", retryAfter))
	}

	previous := store.Items()
	reviewID := uuid.New()

	store.UploadPrescription(itemID, file)
	store.AttachReview(itemID, reviewID)

	if err := s.save(ctx, sessionID, store.Items()); err != nil {
		return nil, err
	}

	err = s.verifier.Submit(ctx, verification.Submission{
		ReviewID:  reviewID,
		SessionID: sessionID,
		ItemID:    itemID,
		ItemName:  item.Name,
		File:      file,
	})
	if err != nil {
		if restoreErr := s.save(ctx, sessionID, previous); restoreErr != nil {
			logger.Error("Failed to restore cart after review submission failed",
				slog.String("itemId", itemID),
				slog.String("reviewId", reviewID.String()),
				slog.String("error", restoreErr.Error()),
			)
		}

		return nil, errors.DatabaseError("Failed to submit prescription for review").WithError(err)
	}

	logger.Info("Prescription submitted for review",
		slog.String("itemId", itemID),
		slog.String("reviewId", reviewID.String()),
		slog.Int("remainingUploads", remaining),
	)

	return s.view(sessionID, store, rec.topics), nil
}

// ApplyPrescriptionDecision reports false when the decision no longer matches
// the attachment on the item: the cart expired, the item was removed, or a
// newer file replaced the reviewed one.
func (s *cartService) ApplyPrescriptionDecision(ctx context.Context, decision models.PrescriptionDecision) (bool, error) {

	applied := false

	_, err := s.mutate(ctx, decision.SessionID, func(store *cart.Store) error {

		item, ok := store.Item(decision.ItemID)
		if !ok || item.Prescription == nil || item.Prescription.ReviewID != decision.ReviewID {
			return nil
		}

		applied = store.SetPrescriptionStatus(decision.ItemID, decision.Status, s.text.clean(decision.RejectionReason))

		return nil
	})
	if err != nil {
		return false, err
	}

	return applied, nil
}

func (s *cartService) Checkout(ctx context.Context, sessionID string) (*models.CheckoutResult, error) {

	logger := middleware.LoggerFromContext(ctx)

	unlock := s.locks.lock(sessionID)
	defer unlock()

	rec := &eventRecorder{next: s.publisher}

	store, err := s.restore(ctx, sessionID, rec)
	if err != nil {
		return nil, err
	}

	if store.Len() == 0 {
		metrics.RecordCheckout(metrics.CheckoutEmpty)
		return nil, errors.BadRequestError("Cannot check out an empty cart")
	}

	if !store.CanPlaceOrder() {
		blockers := store.Blockers()
		details := make([]string, 0, len(blockers))

		for _, b := range blockers {
			details = append(details, describeBlocker(b))
		}

		logger.Warn("Checkout blocked by prescriptions", slog.String("sessionId", sessionID), slog.Int("blockers", len(blockers)))
		metrics.RecordCheckout(metrics.CheckoutBlocked)

		return nil, errors.CheckoutBlockedError("Prescription verification required before checkout", details...)
	}

	result := &models.CheckoutResult{
		OrderReference: uuid.New(),
		SessionID:      sessionID,
		Items:          store.Items(),
		Count:          store.Count(),
		Totals:         s.calculator.Quote(store.Subtotal()),
		PlacedAt:       time.Now().UTC(),
	}

	if err := s.cache.Delete(ctx, sessionID); err != nil {
		return nil, errors.InternalError("Failed to clear cart").WithError(err)
	}

	store.Close()
	metrics.RecordCheckout(metrics.CheckoutPlaced)

	logger.Info("Checkout completed",
		slog.String("orderReference", result.OrderReference.String()),
		slog.String("total", result.Totals.Total.StringFixed(2)),
	)

	return result, nil
}

// mutate runs fn against the restored session cart and saves the snapshot if
// fn changed anything.
func (s *cartService) mutate(ctx context.Context, sessionID string, fn func(*cart.Store) error) (*models.CartView, error) {

	unlock := s.locks.lock(sessionID)
	defer unlock()

	rec := &eventRecorder{next: s.publisher}

	store, err := s.restore(ctx, sessionID, rec)
	if err != nil {
		return nil, err
	}

	if err := fn(store); err != nil {
		return nil, err
	}

	if len(rec.topics) > 0 {
		if err := s.save(ctx, sessionID, store.Items()); err != nil {
			return nil, err
		}
	}

	return s.view(sessionID, store, rec.topics), nil
}

func (s *cartService) save(ctx context.Context, sessionID string, items []models.LineItem) error {

	snapshot := &models.CartSnapshot{
		SessionID: sessionID,
		Items:     items,
		UpdatedAt: time.Now().UTC(),
	}

	if err := s.cache.Save(ctx, snapshot); err != nil {
		return errors.InternalError("Failed to save cart").WithError(err)
	}

	return nil
}

func (s *cartService) restore(ctx context.Context, sessionID string, publisher cart.Publisher) (*cart.Store, error) {

	snapshot, found, err := s.cache.Load(ctx, sessionID)
	if err != nil {
		return nil, errors.InternalError("Failed to load cart").WithError(err)
	}

	opts := []cart.Option{cart.WithPublisher(publisher)}
	if found {
		opts = append(opts, cart.WithItems(snapshot.Items...))
	}

	return cart.New(opts...), nil
}

func (s *cartService) view(sessionID string, store *cart.Store, events []string) *models.CartView {
	return &models.CartView{
		SessionID:     sessionID,
		Items:         store.Items(),
		Count:         store.Count(),
		Totals:        s.calculator.Quote(store.Subtotal()),
		CanPlaceOrder: store.CanPlaceOrder(),
		Blockers:      store.Blockers(),
		Events:        events,
	}
}

func describeBlocker(b models.Blocker) string {
	switch b.Reason {
	case models.BlockReasonMissing:
		return fmt.Sprintf("%s: prescription missing", b.Name)
	case models.BlockReasonRejected:
		if b.RejectionReason != "" {
			return fmt.Sprintf("%s: prescription rejected (%s)", b.Name, b.RejectionReason)
		}
		return fmt.Sprintf("%s: prescription rejected", b.Name)
	default:
		return fmt.Sprintf("%s: prescription pending verification", b.Name)
	}
}

// eventRecorder forwards to the shared bus and remembers the topics of one request.
type eventRecorder struct {
	next   cart.Publisher
	topics []string
}

func (r *eventRecorder) Publish(topic string, args ...interface{}) {
	r.topics = append(r.topics, topic)

	if r.next != nil {
		r.next.Publish(topic, args...)
	}
}
