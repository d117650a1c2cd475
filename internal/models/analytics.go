package models

import "time"

// StudentFacts is the minimal student projection the dashboard
// aggregator groups over. Rows arrive in stable fetch order so
// first-seen grouping is reproducible.
type StudentFacts struct {
	Department string  `db:"department"`
	Status     *string `db:"status"`
}

// CourseEnrollmentCount pairs a course with its registration count.
type CourseEnrollmentCount struct {
	CourseCode        string `db:"course_code"`
	Title             string `db:"title"`
	RegistrationCount int    `db:"registration_count"`
}

// ApprovedPaymentFacts is one approved ledger row as seen by the
// revenue aggregation. Amount and CreatedAt are nullable in the store;
// missing amounts count as zero and missing timestamps are excluded
// from date-bucketed series.
type ApprovedPaymentFacts struct {
	Amount    *float64   `db:"amount_paid"`
	CreatedAt *time.Time `db:"created_at"`
}
