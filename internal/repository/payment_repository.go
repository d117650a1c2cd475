package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/wmou-edu/portal-api/internal/models"
)

const paymentColumns = `id, student_id, course_id, amount_paid, receipt_url, status, created_at, reviewed_at, reviewed_by, rejection_reason`

const paymentDetailSelect = `SELECT p.id, p.student_id, p.course_id, p.amount_paid, p.receipt_url, p.status,
        p.created_at, p.reviewed_at, p.reviewed_by, p.rejection_reason,
        u.full_name AS student_name, u.reg_no AS student_reg_no,
        c.course_code AS course_code, c.title AS course_title
        FROM course_payments p
        LEFT JOIN users u ON u.id = p.student_id
        LEFT JOIN courses c ON c.id = p.course_id`

// PaymentRepository handles persistence of the payment ledger.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs the repository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts one ledger row. Bulk submissions call this per course;
// a failure partway leaves earlier rows committed.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if payment.CreatedAt == nil {
		now := time.Now().UTC()
		payment.CreatedAt = &now
	}
	if payment.Status == "" {
		payment.Status = models.PaymentStatusPending
	}
	const query = `INSERT INTO course_payments (id, student_id, course_id, amount_paid, receipt_url, status, created_at)
        VALUES (:id, :student_id, :course_id, :amount_paid, :receipt_url, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// FindByID returns a ledger row by primary key.
func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	query := fmt.Sprintf("SELECT %s FROM course_payments WHERE id = $1 LIMIT 1", paymentColumns)
	var payment models.Payment
	if err := r.db.GetContext(ctx, &payment, query, id); err != nil {
		return nil, err
	}
	return &payment, nil
}

// List returns ledger rows with student and course context, newest first.
func (r *PaymentRepository) List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, int, error) {
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("p.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("%s%s ORDER BY p.created_at DESC LIMIT %d OFFSET %d", paymentDetailSelect, clause, size, offset)
	var payments []models.PaymentDetail
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM course_payments p%s", clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}
	return payments, total, nil
}

// UpdateReview records the admin decision. The update is unconditional:
// a row that already left pending is overwritten again (callers warn).
func (r *PaymentRepository) UpdateReview(ctx context.Context, id string, status models.PaymentStatus, reviewedBy string, reviewedAt time.Time, rejectionReason *string) error {
	if rejectionReason != nil {
		const query = `UPDATE course_payments SET status = $2, reviewed_at = $3, reviewed_by = $4, rejection_reason = $5 WHERE id = $1`
		if _, err := r.db.ExecContext(ctx, query, id, status, reviewedAt, reviewedBy, *rejectionReason); err != nil {
			return fmt.Errorf("review payment: %w", err)
		}
		return nil
	}
	const query = `UPDATE course_payments SET status = $2, reviewed_at = $3, reviewed_by = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, reviewedAt, reviewedBy); err != nil {
		return fmt.Errorf("review payment: %w", err)
	}
	return nil
}

// LatestForStudentAndCourse returns the newest payment a student made
// toward a course, or sql.ErrNoRows when none exists.
func (r *PaymentRepository) LatestForStudentAndCourse(ctx context.Context, studentID, courseID string) (*models.Payment, error) {
	query := fmt.Sprintf("SELECT %s FROM course_payments WHERE student_id = $1 AND course_id = $2 ORDER BY created_at DESC LIMIT 1", paymentColumns)
	var payment models.Payment
	if err := r.db.GetContext(ctx, &payment, query, studentID, courseID); err != nil {
		return nil, err
	}
	return &payment, nil
}

// ListAll streams the full ledger with context for exports.
func (r *PaymentRepository) ListAll(ctx context.Context) ([]models.PaymentDetail, error) {
	query := paymentDetailSelect + " ORDER BY p.created_at DESC"
	var payments []models.PaymentDetail
	if err := r.db.SelectContext(ctx, &payments, query); err != nil {
		return nil, fmt.Errorf("list all payments: %w", err)
	}
	return payments, nil
}
