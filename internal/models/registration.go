package models

import "time"

// Registration is proof of enrollment in a course. Rows are created
// only as a side effect of payment approval and are never mutated or
// deleted through the exposed surface. (student_id, course_id) carries
// a unique constraint; the reconciliation engine treats a conflict as
// "already registered".
type Registration struct {
	ID           string    `db:"id" json:"id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	CourseID     string    `db:"course_id" json:"course_id"`
	RegisteredAt time.Time `db:"registered_at" json:"registered_at"`
}

// RegistrationDetail enriches a registration with course info and the
// student's most recent payment for that course.
type RegistrationDetail struct {
	Registration
	Course  Course   `json:"course"`
	Payment *Payment `json:"payment,omitempty"`
}
