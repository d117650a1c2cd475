package models

import "time"

// Semester enumerates the two academic semesters.
type Semester string

const (
	SemesterFirst  Semester = "First Semester"
	SemesterSecond Semester = "Second Semester"
)

// Course represents a row in the courses table. Code, department,
// session and semester are fixed at creation; title and fee are
// admin-mutable.
type Course struct {
	ID         string    `db:"id" json:"id"`
	CourseCode string    `db:"course_code" json:"course_code"`
	Title      string    `db:"title" json:"title"`
	Department string    `db:"department" json:"department"`
	Session    string    `db:"session" json:"session"`
	Semester   Semester  `db:"semester" json:"semester"`
	Fee        float64   `db:"fee" json:"fee"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// CourseFilter narrows course listings.
type CourseFilter struct {
	Department string
	Session    string
	Semester   string
}

// CourseWithPayment pairs a course with the student's latest payment, if any.
type CourseWithPayment struct {
	Course
	Payment *Payment `json:"payment,omitempty"`
}
