package models

import "time"

// Announcement is a portal-wide or department-scoped notice.
// A nil TargetDepartment means the announcement is visible to everyone.
type Announcement struct {
	ID               string    `db:"id" json:"id"`
	Title            string    `db:"title" json:"title"`
	Content          string    `db:"content" json:"content"`
	TargetDepartment *string   `db:"target_department" json:"target_department,omitempty"`
	CreatedBy        string    `db:"created_by" json:"created_by"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}
