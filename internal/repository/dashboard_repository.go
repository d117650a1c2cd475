package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/wmou-edu/portal-api/internal/models"
)

// DashboardRepository exposes the aggregate queries behind the admin
// and student dashboards. Grouping that is sensitive to encounter order
// (departments, month buckets, enrollment tie-breaks) stays in the
// service; everything the store can express exactly is pushed down.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository constructs the repository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// CountActiveStudents counts students whose stored status normalises
// to "active". Stored casing is not trusted.
func (r *DashboardRepository) CountActiveStudents(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM users WHERE role = 'student' AND LOWER(TRIM(status)) = 'active'`
	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count active students: %w", err)
	}
	return count, nil
}

// CountStudentsCreatedSince counts students created at or after the
// given instant. Filtering happens store-side so the window is
// consistent within one aggregation pass.
func (r *DashboardRepository) CountStudentsCreatedSince(ctx context.Context, since time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM users WHERE role = 'student' AND created_at >= $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, since); err != nil {
		return 0, fmt.Errorf("count new students: %w", err)
	}
	return count, nil
}

// CountCourses returns the catalog size.
func (r *DashboardRepository) CountCourses(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM courses`
	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count courses: %w", err)
	}
	return count, nil
}

// StudentFacts returns the department/status projection of every
// student in stable creation order, for first-seen grouping.
func (r *DashboardRepository) StudentFacts(ctx context.Context) ([]models.StudentFacts, error) {
	const query = `SELECT department, status FROM users WHERE role = 'student' ORDER BY created_at, id`
	var facts []models.StudentFacts
	if err := r.db.SelectContext(ctx, &facts, query); err != nil {
		return nil, fmt.Errorf("student facts: %w", err)
	}
	return facts, nil
}

// CourseEnrollmentCounts returns every course with its registration
// count, in fixed catalog order so ties resolve reproducibly.
func (r *DashboardRepository) CourseEnrollmentCounts(ctx context.Context) ([]models.CourseEnrollmentCount, error) {
	const query = `SELECT c.course_code, c.title, COUNT(cr.id) AS registration_count
        FROM courses c
        LEFT JOIN course_registrations cr ON cr.course_id = c.id
        GROUP BY c.id, c.course_code, c.title
        ORDER BY c.created_at, c.id`
	var counts []models.CourseEnrollmentCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("course enrollment counts: %w", err)
	}
	return counts, nil
}

// ApprovedPayments returns amount and creation time for every approved
// ledger row, in creation order.
func (r *DashboardRepository) ApprovedPayments(ctx context.Context) ([]models.ApprovedPaymentFacts, error) {
	const query = `SELECT amount_paid, created_at FROM course_payments WHERE status = 'approved' ORDER BY created_at, id`
	var facts []models.ApprovedPaymentFacts
	if err := r.db.SelectContext(ctx, &facts, query); err != nil {
		return nil, fmt.Errorf("approved payments: %w", err)
	}
	return facts, nil
}

// CountPaymentsByStatus counts ledger rows in the given state.
func (r *DashboardRepository) CountPaymentsByStatus(ctx context.Context, status models.PaymentStatus) (int, error) {
	const query = `SELECT COUNT(*) FROM course_payments WHERE status = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, status); err != nil {
		return 0, fmt.Errorf("count payments by status: %w", err)
	}
	return count, nil
}

// LatestPendingPayments returns the newest pending ledger rows with
// student and course context.
func (r *DashboardRepository) LatestPendingPayments(ctx context.Context, limit int) ([]models.PaymentDetail, error) {
	if limit <= 0 {
		limit = 5
	}
	query := fmt.Sprintf(`%s WHERE p.status = 'pending' ORDER BY p.created_at DESC LIMIT %d`, paymentDetailSelect, limit)
	var payments []models.PaymentDetail
	if err := r.db.SelectContext(ctx, &payments, query); err != nil {
		return nil, fmt.Errorf("latest pending payments: %w", err)
	}
	return payments, nil
}

// CountStudentPaymentsByStatus counts one student's ledger rows in the
// given state.
func (r *DashboardRepository) CountStudentPaymentsByStatus(ctx context.Context, studentID string, status models.PaymentStatus) (int, error) {
	const query = `SELECT COUNT(*) FROM course_payments WHERE student_id = $1 AND status = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, studentID, status); err != nil {
		return 0, fmt.Errorf("count student payments: %w", err)
	}
	return count, nil
}
