package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/wmou-edu/portal-api/internal/models"
)

func newPaymentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestPaymentRepositoryCreateDefaults(t *testing.T) {
	db, mock, cleanup := newPaymentRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	amount := 150.0
	payment := &models.Payment{
		StudentID:  "stu-1",
		CourseID:   "course-1",
		AmountPaid: &amount,
		ReceiptURL: "receipts/r1.png",
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO course_payments")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), payment)
	require.NoError(t, err)
	require.NotEmpty(t, payment.ID)
	require.NotNil(t, payment.CreatedAt)
	require.Equal(t, models.PaymentStatusPending, payment.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newPaymentRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	amount := 200.0
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "student_id", "course_id", "amount_paid", "receipt_url", "status", "created_at", "reviewed_at", "reviewed_by", "rejection_reason"}).
		AddRow("pay-1", "stu-1", "course-1", amount, "receipts/r1.png", models.PaymentStatusPending, now, nil, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM course_payments WHERE id = $1 LIMIT 1")).
		WithArgs("pay-1").
		WillReturnRows(rows)

	payment, err := repo.FindByID(context.Background(), "pay-1")
	require.NoError(t, err)
	require.Equal(t, "pay-1", payment.ID)
	require.Equal(t, models.PaymentStatusPending, payment.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryListFiltersByStatus(t *testing.T) {
	db, mock, cleanup := newPaymentRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	amount := 75.5
	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "student_id", "course_id", "amount_paid", "receipt_url", "status",
		"created_at", "reviewed_at", "reviewed_by", "rejection_reason",
		"student_name", "student_reg_no", "course_code", "course_title",
	}).AddRow("pay-1", "stu-1", "course-1", amount, "receipts/r1.png", models.PaymentStatusPending,
		now, nil, nil, nil, "Ada Obi", "WMOU/2023/001", "CSC101", "Intro to Computing")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.status = $1 ORDER BY p.created_at DESC")).
		WithArgs(models.PaymentStatusPending).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM course_payments p WHERE p.status = $1")).
		WithArgs(models.PaymentStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	payments, total, err := repo.List(context.Background(), models.PaymentFilter{Status: models.PaymentStatusPending})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, payments, 1)
	require.Equal(t, "Ada Obi", payments[0].StudentName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryUpdateReviewRejection(t *testing.T) {
	db, mock, cleanup := newPaymentRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	reason := "illegible receipt"
	reviewedAt := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE course_payments SET status = $2, reviewed_at = $3, reviewed_by = $4, rejection_reason = $5 WHERE id = $1")).
		WithArgs("pay-1", models.PaymentStatusRejected, reviewedAt, "admin-1", reason).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateReview(context.Background(), "pay-1", models.PaymentStatusRejected, "admin-1", reviewedAt, &reason)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryUpdateReviewApproval(t *testing.T) {
	db, mock, cleanup := newPaymentRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	reviewedAt := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE course_payments SET status = $2, reviewed_at = $3, reviewed_by = $4 WHERE id = $1")).
		WithArgs("pay-1", models.PaymentStatusApproved, reviewedAt, "admin-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateReview(context.Background(), "pay-1", models.PaymentStatusApproved, "admin-1", reviewedAt, nil)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
