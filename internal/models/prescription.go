package models

import (
	"time"

	"github.com/google/uuid"
)

type PrescriptionStatus string

const (
	PrescriptionStatusPending  PrescriptionStatus = "pending"
	PrescriptionStatusVerified PrescriptionStatus = "verified"
	PrescriptionStatusRejected PrescriptionStatus = "rejected"

	// Review-only status for a pending review replaced by a newer upload.
	ReviewStatusSuperseded PrescriptionStatus = "superseded"
)

func (s PrescriptionStatus) Valid() bool {
	switch s {
	case PrescriptionStatusPending, PrescriptionStatusVerified, PrescriptionStatusRejected:
		return true
	}

	return false
}

// Prescription is the attachment recorded against a gated line item.
type Prescription struct {
	Status          PrescriptionStatus `json:"status"`
	FileName        string             `json:"file_name"`
	RejectionReason string             `json:"rejection_reason,omitempty"`
	ReviewID        uuid.UUID          `json:"review_id"`
	UploadedAt      time.Time          `json:"uploaded_at"`
}

// PrescriptionFile describes an upload that already passed the type and size checks.
type PrescriptionFile struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// PrescriptionDecision is the external status-set call delivered to a session cart.
type PrescriptionDecision struct {
	SessionID       string             `json:"session_id"`
	ItemID          string             `json:"item_id"`
	ReviewID        uuid.UUID          `json:"review_id"`
	Status          PrescriptionStatus `json:"status"`
	RejectionReason string             `json:"rejection_reason,omitempty"`
}

type PrescriptionReview struct {
	ID              uuid.UUID          `json:"id"`
	SessionID       string             `json:"session_id"`
	ItemID          string             `json:"item_id"`
	ItemName        string             `json:"item_name"`
	FileName        string             `json:"file_name"`
	ContentType     string             `json:"content_type"`
	Status          PrescriptionStatus `json:"status"`
	RejectionReason string             `json:"rejection_reason,omitempty"`
	ReviewedBy      *uuid.UUID         `json:"reviewed_by,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

type ReviewDecisionRequest struct {
	Status          PrescriptionStatus `json:"status"           validate:"required,oneof=verified rejected"`
	RejectionReason string             `json:"rejection_reason" validate:"required_if=Status rejected,max=500"`
}
