package models

import "time"

// PaymentStatus is the review state of a fee-payment claim.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusApproved PaymentStatus = "approved"
	PaymentStatusRejected PaymentStatus = "rejected"
)

// Payment is one ledger row: a student's claim of having paid a course
// fee, awaiting or having received admin review. Rows are never deleted.
type Payment struct {
	ID              string        `db:"id" json:"id"`
	StudentID       string        `db:"student_id" json:"student_id"`
	CourseID        string        `db:"course_id" json:"course_id"`
	AmountPaid      *float64      `db:"amount_paid" json:"amount_paid,omitempty"`
	ReceiptURL      string        `db:"receipt_url" json:"receipt_url"`
	Status          PaymentStatus `db:"status" json:"status"`
	CreatedAt       *time.Time    `db:"created_at" json:"created_at,omitempty"`
	ReviewedAt      *time.Time    `db:"reviewed_at" json:"reviewed_at,omitempty"`
	ReviewedBy      *string       `db:"reviewed_by" json:"reviewed_by,omitempty"`
	RejectionReason *string       `db:"rejection_reason" json:"rejection_reason,omitempty"`
}

// PaymentDetail enriches Payment with student and course info for
// admin ledger views.
type PaymentDetail struct {
	Payment
	StudentName  string `db:"student_name" json:"student_name"`
	StudentRegNo string `db:"student_reg_no" json:"student_reg_no"`
	CourseCode   string `db:"course_code" json:"course_code"`
	CourseTitle  string `db:"course_title" json:"course_title"`
}

// PaymentFilter narrows admin ledger listings.
type PaymentFilter struct {
	Status   PaymentStatus
	Page     int
	PageSize int
}
