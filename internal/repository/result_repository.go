package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/wmou-edu/portal-api/internal/models"
)

const resultDetailSelect = `SELECT r.id, r.student_id, r.course_id, r.score, r.grade, r.session, r.semester, r.uploaded_at,
        c.course_code AS course_code, c.title AS course_title
        FROM results r
        LEFT JOIN courses c ON c.id = r.course_id`

// ResultRepository handles read access to published results.
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository constructs the repository.
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// ListByStudent returns a student's results, optionally narrowed to a
// session and semester.
func (r *ResultRepository) ListByStudent(ctx context.Context, studentID string, filter models.ResultFilter) ([]models.ResultDetail, error) {
	conditions := []string{"r.student_id = $1"}
	args := []interface{}{studentID}

	if filter.Session != "" {
		conditions = append(conditions, fmt.Sprintf("r.session = $%d", len(args)+1))
		args = append(args, filter.Session)
	}
	if filter.Semester != "" {
		conditions = append(conditions, fmt.Sprintf("r.semester = $%d", len(args)+1))
		args = append(args, filter.Semester)
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY r.uploaded_at DESC", resultDetailSelect, strings.Join(conditions, " AND "))
	var results []models.ResultDetail
	if err := r.db.SelectContext(ctx, &results, query, args...); err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return results, nil
}

// RecentByStudent returns the most recent results by upload time.
func (r *ResultRepository) RecentByStudent(ctx context.Context, studentID string, limit int) ([]models.ResultDetail, error) {
	if limit <= 0 {
		limit = 5
	}
	query := fmt.Sprintf("%s WHERE r.student_id = $1 ORDER BY r.uploaded_at DESC LIMIT %d", resultDetailSelect, limit)
	var results []models.ResultDetail
	if err := r.db.SelectContext(ctx, &results, query, studentID); err != nil {
		return nil, fmt.Errorf("recent results: %w", err)
	}
	return results, nil
}
