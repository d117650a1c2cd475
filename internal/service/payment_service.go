package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wmou-edu/portal-api/internal/dto"
	"github.com/wmou-edu/portal-api/internal/models"
	appErrors "github.com/wmou-edu/portal-api/pkg/errors"
	"github.com/wmou-edu/portal-api/pkg/export"
)

// amountTolerance absorbs float drift between a declared bulk total and
// the sum of course fees. Differences at or below a cent are accepted.
const amountTolerance = 0.01

type paymentLedgerRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	FindByID(ctx context.Context, id string) (*models.Payment, error)
	List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, int, error)
	UpdateReview(ctx context.Context, id string, status models.PaymentStatus, reviewedBy string, reviewedAt time.Time, rejectionReason *string) error
	ListAll(ctx context.Context) ([]models.PaymentDetail, error)
}

type paymentCourseRepository interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]models.Course, error)
}

type paymentRegistrationRepository interface {
	Exists(ctx context.Context, studentID, courseID string) (bool, error)
	CreateIfAbsent(ctx context.Context, registration *models.Registration) (bool, error)
}

type receiptStore interface {
	SaveStream(filename string, r io.Reader) (string, error)
}

type paymentNotifier interface {
	PaymentReceived(studentID string, courseTitles []string, total float64)
	PaymentDecided(studentID, courseTitle string, approved bool, reason string)
}

// ReceiptUpload carries an uploaded receipt image through the service
// layer without binding it to the HTTP framework.
type ReceiptUpload struct {
	Filename string
	Content  io.Reader
}

// PaymentService reconciles payment claims against the course catalog
// and converts approvals into registrations.
type PaymentService struct {
	payments      paymentLedgerRepository
	courses       paymentCourseRepository
	registrations paymentRegistrationRepository
	receipts      receiptStore
	notifier      paymentNotifier
	metrics       *MetricsService
	logger        *zap.Logger
}

// NewPaymentService constructs the reconciliation service.
func NewPaymentService(
	payments paymentLedgerRepository,
	courses paymentCourseRepository,
	registrations paymentRegistrationRepository,
	receipts receiptStore,
	notifier paymentNotifier,
	metrics *MetricsService,
	logger *zap.Logger,
) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		payments:      payments,
		courses:       courses,
		registrations: registrations,
		receipts:      receipts,
		notifier:      notifier,
		metrics:       metrics,
		logger:        logger,
	}
}

// Submit records a single-course payment claim as pending.
func (s *PaymentService) Submit(ctx context.Context, studentID, courseID string, amount float64, receipt ReceiptUpload) (*models.Payment, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve course")
	}

	receiptURL, err := s.storeReceipt(receipt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store receipt")
	}

	payment := &models.Payment{
		StudentID:  studentID,
		CourseID:   course.ID,
		AmountPaid: &amount,
		ReceiptURL: receiptURL,
		Status:     models.PaymentStatusPending,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record payment")
	}

	if s.notifier != nil {
		s.notifier.PaymentReceived(studentID, []string{course.Title}, amount)
	}
	s.metrics.RecordPaymentOutcome("submitted")
	return payment, nil
}

// SubmitBulk records one pending claim per course against a single
// receipt. The declared total must match the summed course fees within
// tolerance before anything is written. Row inserts are not atomic: a
// failure partway leaves the earlier rows pending, which the admin
// review queue surfaces.
func (s *PaymentService) SubmitBulk(ctx context.Context, studentID string, courseIDs []string, declaredTotal float64, receipt ReceiptUpload) (*dto.BulkSubmitResponse, error) {
	if len(courseIDs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one course is required")
	}

	found, err := s.courses.FindByIDs(ctx, courseIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve courses")
	}

	courses := make([]models.Course, 0, len(courseIDs))
	expectedTotal := 0.0
	for _, id := range courseIDs {
		course, ok := found[id]
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("course %s not found", id))
		}
		courses = append(courses, course)
		expectedTotal += course.Fee
	}

	if math.Abs(declaredTotal-expectedTotal) > amountTolerance {
		return nil, appErrors.Clone(appErrors.ErrAmountMismatch,
			fmt.Sprintf("declared total %.2f does not match course fees %.2f", declaredTotal, expectedTotal))
	}

	receiptURL, err := s.storeReceipt(receipt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store receipt")
	}

	createdAt := time.Now().UTC()
	payments := make([]models.Payment, 0, len(courses))
	titles := make([]string, 0, len(courses))
	for _, course := range courses {
		fee := course.Fee
		at := createdAt
		payment := models.Payment{
			StudentID:  studentID,
			CourseID:   course.ID,
			AmountPaid: &fee,
			ReceiptURL: receiptURL,
			Status:     models.PaymentStatusPending,
			CreatedAt:  &at,
		}
		if err := s.payments.Create(ctx, &payment); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record payment")
		}
		payments = append(payments, payment)
		titles = append(titles, course.Title)
	}

	if s.notifier != nil {
		s.notifier.PaymentReceived(studentID, titles, expectedTotal)
	}
	s.metrics.RecordPaymentOutcome("submitted")

	return &dto.BulkSubmitResponse{
		Payments: payments,
		Courses:  courses,
		Total:    expectedTotal,
	}, nil
}

// Review records an admin decision on a payment claim. Approval
// registers the student for the course; the unique pair constraint
// turns a concurrent duplicate into a no-op. The outcome email is
// best-effort and never fails the review.
func (s *PaymentService) Review(ctx context.Context, paymentID string, req dto.ReviewRequest, adminID string) (*dto.ReviewResponse, error) {
	payment, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}

	if payment.Status != models.PaymentStatusPending {
		s.logger.Warn("re-reviewing a decided payment",
			zap.String("payment_id", payment.ID),
			zap.String("current_status", string(payment.Status)),
			zap.String("admin_id", adminID))
	}

	status := models.PaymentStatusRejected
	if req.Approved {
		status = models.PaymentStatusApproved
	}

	var reason *string
	if !req.Approved && req.RejectionReason != nil && strings.TrimSpace(*req.RejectionReason) != "" {
		trimmed := strings.TrimSpace(*req.RejectionReason)
		reason = &trimmed
	}

	reviewedAt := time.Now().UTC()
	if err := s.payments.UpdateReview(ctx, payment.ID, status, adminID, reviewedAt, reason); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record review")
	}

	if req.Approved {
		if err := s.registerOnApproval(ctx, payment); err != nil {
			return nil, err
		}
	}

	s.notifyDecision(ctx, payment, req.Approved, reason)
	s.metrics.RecordPaymentOutcome(string(status))

	return &dto.ReviewResponse{PaymentID: payment.ID, Status: status}, nil
}

func (s *PaymentService) registerOnApproval(ctx context.Context, payment *models.Payment) error {
	exists, err := s.registrations.Exists(ctx, payment.StudentID, payment.CourseID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check registration")
	}
	if exists {
		return nil
	}

	inserted, err := s.registrations.CreateIfAbsent(ctx, &models.Registration{
		StudentID: payment.StudentID,
		CourseID:  payment.CourseID,
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create registration")
	}
	if !inserted {
		s.logger.Info("registration already present, approval kept",
			zap.String("student_id", payment.StudentID),
			zap.String("course_id", payment.CourseID))
	}
	return nil
}

func (s *PaymentService) notifyDecision(ctx context.Context, payment *models.Payment, approved bool, reason *string) {
	if s.notifier == nil {
		return
	}
	courseTitle := payment.CourseID
	if course, err := s.courses.FindByID(ctx, payment.CourseID); err == nil {
		courseTitle = course.Title
	} else {
		s.logger.Warn("failed to resolve course for notification",
			zap.String("course_id", payment.CourseID), zap.Error(err))
	}
	reasonText := ""
	if reason != nil {
		reasonText = *reason
	}
	s.notifier.PaymentDecided(payment.StudentID, courseTitle, approved, reasonText)
}

// Get loads one ledger row by ID.
func (s *PaymentService) Get(ctx context.Context, paymentID string) (*models.Payment, error) {
	payment, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}
	return payment, nil
}

// List returns the admin ledger with pagination metadata.
func (s *PaymentService) List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, *models.Pagination, error) {
	payments, total, err := s.payments.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return payments, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Export renders the full ledger as CSV or PDF bytes.
func (s *PaymentService) Export(ctx context.Context, format string) ([]byte, string, error) {
	payments, err := s.payments.ListAll(ctx)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load ledger")
	}

	dataset := export.Dataset{
		Headers: []string{"Date", "Student", "Reg No", "Course", "Amount", "Status", "Reviewed By"},
	}
	for _, p := range payments {
		amount := ""
		if p.AmountPaid != nil {
			amount = fmt.Sprintf("%.2f", *p.AmountPaid)
		}
		date := ""
		if p.CreatedAt != nil {
			date = p.CreatedAt.UTC().Format("2006-01-02 15:04")
		}
		reviewedBy := ""
		if p.ReviewedBy != nil {
			reviewedBy = *p.ReviewedBy
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":        date,
			"Student":     p.StudentName,
			"Reg No":      p.StudentRegNo,
			"Course":      p.CourseCode,
			"Amount":      amount,
			"Status":      string(p.Status),
			"Reviewed By": reviewedBy,
		})
	}

	switch strings.ToLower(format) {
	case "pdf":
		data, err := export.NewPDFExporter().Render(dataset, "Payment Ledger")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return data, "application/pdf", nil
	case "", "csv":
		data, err := export.NewCSVExporter().Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return data, "text/csv", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}

func (s *PaymentService) storeReceipt(receipt ReceiptUpload) (string, error) {
	if receipt.Content == nil {
		return "", fmt.Errorf("receipt is required")
	}
	ext := filepath.Ext(receipt.Filename)
	name := filepath.Join("receipts", uuid.NewString()+ext)
	return s.receipts.SaveStream(name, receipt.Content)
}
