package dto

import "github.com/wmou-edu/portal-api/internal/models"

// BulkSubmitResponse echoes the courses covered by a bulk payment
// submission alongside the created ledger rows.
type BulkSubmitResponse struct {
	Payments []models.Payment `json:"payments"`
	Courses  []models.Course  `json:"courses"`
	Total    float64          `json:"total"`
}

// ReviewRequest is the admin decision payload for a pending payment.
type ReviewRequest struct {
	Approved        bool    `json:"approved"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
}

// ReviewResponse acknowledges a processed review.
type ReviewResponse struct {
	PaymentID string               `json:"payment_id"`
	Status    models.PaymentStatus `json:"status"`
}
