package models

import "time"

// UserRole distinguishes portal administrators from students.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleStudent UserRole = "student"
)

// StudentStatus tracks a student's standing. Stored values are not
// guaranteed to be consistently cased, so comparisons normalise first.
type StudentStatus string

const (
	StudentStatusActive    StudentStatus = "active"
	StudentStatusSuspended StudentStatus = "suspended"
	StudentStatusGraduated StudentStatus = "graduated"
)

// User represents a portal account stored in the users table.
type User struct {
	ID                string     `db:"id" json:"id"`
	RegNo             string     `db:"reg_no" json:"reg_no"`
	Email             string     `db:"email" json:"email"`
	PasswordHash      string     `db:"password_hash" json:"-"`
	FullName          string     `db:"full_name" json:"full_name"`
	Department        string     `db:"department" json:"department"`
	Phone             *string    `db:"phone" json:"phone,omitempty"`
	Address           *string    `db:"address" json:"address,omitempty"`
	Role              UserRole   `db:"role" json:"role"`
	Status            *string    `db:"status" json:"status,omitempty"`
	ProfilePictureURL *string    `db:"profile_picture_url" json:"profile_picture_url,omitempty"`
	CreatedAt         *time.Time `db:"created_at" json:"created_at,omitempty"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role     *UserRole
	Status   string
	Search   string
	Page     int
	PageSize int
}

// UpdateProfileRequest carries the self-service profile fields.
type UpdateProfileRequest struct {
	Email    *string `json:"email" validate:"omitempty,email"`
	FullName *string `json:"full_name" validate:"omitempty,min=2"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
}

// UpdateStatusRequest changes a student's standing.
type UpdateStatusRequest struct {
	Status StudentStatus `json:"status" validate:"required,oneof=active suspended graduated"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
