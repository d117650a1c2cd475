package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/wmou-edu/portal-api/internal/models"
)

// RegistrationRepository handles persistence of course registrations.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository constructs the repository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// Exists reports whether a registration already exists for the pair.
func (r *RegistrationRepository) Exists(ctx context.Context, studentID, courseID string) (bool, error) {
	const query = `SELECT 1 FROM course_registrations WHERE student_id = $1 AND course_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, courseID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check registration: %w", err)
	}
	return true, nil
}

// CreateIfAbsent inserts a registration unless the (student, course)
// pair is already present. The unique constraint backstops concurrent
// approvals: a conflict is reported as inserted=false, not an error.
func (r *RegistrationRepository) CreateIfAbsent(ctx context.Context, registration *models.Registration) (bool, error) {
	if registration.ID == "" {
		registration.ID = uuid.NewString()
	}
	if registration.RegisteredAt.IsZero() {
		registration.RegisteredAt = time.Now().UTC()
	}
	const query = `INSERT INTO course_registrations (id, student_id, course_id, registered_at)
        VALUES (:id, :student_id, :course_id, :registered_at)
        ON CONFLICT (student_id, course_id) DO NOTHING`
	result, err := r.db.NamedExecContext(ctx, query, registration)
	if err != nil {
		return false, fmt.Errorf("create registration: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("registration rows affected: %w", err)
	}
	return affected > 0, nil
}

// ListByStudent returns a student's registrations with course context,
// newest first.
func (r *RegistrationRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Registration, error) {
	const query = `SELECT id, student_id, course_id, registered_at FROM course_registrations
        WHERE student_id = $1 ORDER BY registered_at DESC`
	var registrations []models.Registration
	if err := r.db.SelectContext(ctx, &registrations, query, studentID); err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return registrations, nil
}

// CountByStudent returns how many courses the student is registered in.
func (r *RegistrationRepository) CountByStudent(ctx context.Context, studentID string) (int, error) {
	const query = `SELECT COUNT(*) FROM course_registrations WHERE student_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, studentID); err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return count, nil
}
