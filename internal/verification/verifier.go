// Package verification hands prescription attachments to whoever decides them.
package verification

import (
	"context"
	"errors"
	"fmt"

	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/models"
	repository "github.com/aaravmahajanofficial/pharmacy-checkout/internal/repositories"
	"github.com/google/uuid"
)

// Verifier accepts an attachment for review. The decision arrives later
// through the review service, addressed by ReviewID.
type Verifier interface {
	Submit(ctx context.Context, sub Submission) error
}

// Submission is identified by a ReviewID the caller picks, so the cart can
// reference the review before it is enqueued.
type Submission struct {
	ReviewID  uuid.UUID
	SessionID string
	ItemID    string
	ItemName  string
	File      models.PrescriptionFile
}

// ReviewQueue enqueues submissions as pending pharmacist reviews.
type ReviewQueue struct {
	repo repository.PrescriptionReviewRepository
}

func NewReviewQueue(repo repository.PrescriptionReviewRepository) *ReviewQueue {
	return &ReviewQueue{repo: repo}
}

func (q *ReviewQueue) Submit(ctx context.Context, sub Submission) error {

	if sub.ReviewID == uuid.Nil {
		return errors.New("submission has no review id")
	}

	review := &models.PrescriptionReview{
		ID:          sub.ReviewID,
		SessionID:   sub.SessionID,
		ItemID:      sub.ItemID,
		ItemName:    sub.ItemName,
		FileName:    sub.File.Name,
		ContentType: sub.File.ContentType,
		Status:      models.PrescriptionStatusPending,
	}

	if err := q.repo.CreateReview(ctx, review); err != nil {
		return fmt.Errorf("enqueue prescription review: %w", err)
	}

	return nil
}
