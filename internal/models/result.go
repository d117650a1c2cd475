package models

import "time"

// Result is one graded course outcome for a student.
type Result struct {
	ID         string    `db:"id" json:"id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	CourseID   string    `db:"course_id" json:"course_id"`
	Score      float64   `db:"score" json:"score"`
	Grade      string    `db:"grade" json:"grade"`
	Session    string    `db:"session" json:"session"`
	Semester   string    `db:"semester" json:"semester"`
	UploadedAt time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// ResultDetail enriches Result with course identity for display.
type ResultDetail struct {
	Result
	CourseCode  string `db:"course_code" json:"course_code"`
	CourseTitle string `db:"course_title" json:"course_title"`
}

// ResultFilter narrows result listings.
type ResultFilter struct {
	Session  string
	Semester string
}
