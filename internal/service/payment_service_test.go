package service

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wmou-edu/portal-api/internal/dto"
	"github.com/wmou-edu/portal-api/internal/models"
	appErrors "github.com/wmou-edu/portal-api/pkg/errors"
)

type fakePaymentLedger struct {
	payments map[string]*models.Payment
	created  []*models.Payment
}

func newFakePaymentLedger() *fakePaymentLedger {
	return &fakePaymentLedger{payments: map[string]*models.Payment{}}
}

func (f *fakePaymentLedger) Create(_ context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = "pay-" + strings.ToLower(payment.CourseID)
	}
	if payment.Status == "" {
		payment.Status = models.PaymentStatusPending
	}
	copied := *payment
	f.payments[payment.ID] = &copied
	f.created = append(f.created, &copied)
	return nil
}

func (f *fakePaymentLedger) FindByID(_ context.Context, id string) (*models.Payment, error) {
	payment, ok := f.payments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *payment
	return &copied, nil
}

func (f *fakePaymentLedger) List(context.Context, models.PaymentFilter) ([]models.PaymentDetail, int, error) {
	return nil, 0, nil
}

func (f *fakePaymentLedger) UpdateReview(_ context.Context, id string, status models.PaymentStatus, reviewedBy string, reviewedAt time.Time, rejectionReason *string) error {
	payment := f.payments[id]
	payment.Status = status
	payment.ReviewedBy = &reviewedBy
	payment.ReviewedAt = &reviewedAt
	payment.RejectionReason = rejectionReason
	return nil
}

func (f *fakePaymentLedger) ListAll(context.Context) ([]models.PaymentDetail, error) {
	return nil, nil
}

type fakeCourseCatalog struct {
	courses map[string]models.Course
}

func (f *fakeCourseCatalog) FindByID(_ context.Context, id string) (*models.Course, error) {
	course, ok := f.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &course, nil
}

func (f *fakeCourseCatalog) FindByIDs(_ context.Context, ids []string) (map[string]models.Course, error) {
	found := map[string]models.Course{}
	for _, id := range ids {
		if course, ok := f.courses[id]; ok {
			found[id] = course
		}
	}
	return found, nil
}

type fakeRegistrations struct {
	pairs   map[string]bool
	inserts int
}

func newFakeRegistrations() *fakeRegistrations {
	return &fakeRegistrations{pairs: map[string]bool{}}
}

func (f *fakeRegistrations) key(studentID, courseID string) string {
	return studentID + "/" + courseID
}

func (f *fakeRegistrations) Exists(_ context.Context, studentID, courseID string) (bool, error) {
	return f.pairs[f.key(studentID, courseID)], nil
}

func (f *fakeRegistrations) CreateIfAbsent(_ context.Context, registration *models.Registration) (bool, error) {
	key := f.key(registration.StudentID, registration.CourseID)
	if f.pairs[key] {
		return false, nil
	}
	f.pairs[key] = true
	f.inserts++
	return true, nil
}

type fakeReceiptStore struct {
	saved []string
}

func (f *fakeReceiptStore) SaveStream(filename string, _ io.Reader) (string, error) {
	f.saved = append(f.saved, filename)
	return filename, nil
}

type fakeNotifier struct {
	received []string
	decided  []string
}

func (f *fakeNotifier) PaymentReceived(studentID string, _ []string, _ float64) {
	f.received = append(f.received, studentID)
}

func (f *fakeNotifier) PaymentDecided(studentID, _ string, approved bool, _ string) {
	outcome := "rejected"
	if approved {
		outcome = "approved"
	}
	f.decided = append(f.decided, studentID+":"+outcome)
}

func newPaymentServiceForTest(ledger *fakePaymentLedger, catalog *fakeCourseCatalog, regs *fakeRegistrations, notifier *fakeNotifier) *PaymentService {
	return NewPaymentService(ledger, catalog, regs, &fakeReceiptStore{}, notifier, nil, zap.NewNop())
}

func testCatalog() *fakeCourseCatalog {
	return &fakeCourseCatalog{courses: map[string]models.Course{
		"course-1": {ID: "course-1", CourseCode: "CSC101", Title: "Intro to Computing", Fee: 100},
		"course-2": {ID: "course-2", CourseCode: "CSC102", Title: "Data Structures", Fee: 50},
	}}
}

func receipt() ReceiptUpload {
	return ReceiptUpload{Filename: "teller.png", Content: strings.NewReader("receipt-bytes")}
}

func TestSubmitBulkWithinTolerance(t *testing.T) {
	ledger := newFakePaymentLedger()
	notifier := &fakeNotifier{}
	svc := newPaymentServiceForTest(ledger, testCatalog(), newFakeRegistrations(), notifier)

	resp, err := svc.SubmitBulk(context.Background(), "stu-1", []string{"course-1", "course-2"}, 150.005, receipt())
	require.NoError(t, err)
	require.Len(t, resp.Payments, 2)
	assert.Equal(t, 150.0, resp.Total)

	for _, payment := range resp.Payments {
		assert.Equal(t, models.PaymentStatusPending, payment.Status)
		assert.Equal(t, resp.Payments[0].ReceiptURL, payment.ReceiptURL)
		require.NotNil(t, payment.CreatedAt)
		assert.True(t, payment.CreatedAt.Equal(*resp.Payments[0].CreatedAt))
	}
	assert.Equal(t, []string{"stu-1"}, notifier.received)
}

func TestSubmitBulkRejectsMismatchedTotal(t *testing.T) {
	ledger := newFakePaymentLedger()
	svc := newPaymentServiceForTest(ledger, testCatalog(), newFakeRegistrations(), &fakeNotifier{})

	_, err := svc.SubmitBulk(context.Background(), "stu-1", []string{"course-1", "course-2"}, 150.02, receipt())
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrAmountMismatch.Code, appErr.Code)
	assert.Empty(t, ledger.created, "nothing is written when the total mismatches")
}

func TestSubmitBulkUnknownCourse(t *testing.T) {
	svc := newPaymentServiceForTest(newFakePaymentLedger(), testCatalog(), newFakeRegistrations(), &fakeNotifier{})

	_, err := svc.SubmitBulk(context.Background(), "stu-1", []string{"course-1", "course-9"}, 100, receipt())
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestReviewApprovalRegistersOnce(t *testing.T) {
	ledger := newFakePaymentLedger()
	regs := newFakeRegistrations()
	notifier := &fakeNotifier{}
	svc := newPaymentServiceForTest(ledger, testCatalog(), regs, notifier)

	_, err := svc.Submit(context.Background(), "stu-1", "course-1", 100, receipt())
	require.NoError(t, err)
	paymentID := ledger.created[0].ID

	resp, err := svc.Review(context.Background(), paymentID, dto.ReviewRequest{Approved: true}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusApproved, resp.Status)
	assert.Equal(t, 1, regs.inserts)

	// A second approval of the same claim stays permitted and must not
	// create a duplicate registration.
	resp, err = svc.Review(context.Background(), paymentID, dto.ReviewRequest{Approved: true}, "admin-2")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusApproved, resp.Status)
	assert.Equal(t, 1, regs.inserts)
	assert.Contains(t, notifier.decided, "stu-1:approved")
}

func TestReviewRejectionKeepsReason(t *testing.T) {
	ledger := newFakePaymentLedger()
	svc := newPaymentServiceForTest(ledger, testCatalog(), newFakeRegistrations(), &fakeNotifier{})

	_, err := svc.Submit(context.Background(), "stu-1", "course-1", 100, receipt())
	require.NoError(t, err)
	paymentID := ledger.created[0].ID

	reason := "  illegible receipt  "
	resp, err := svc.Review(context.Background(), paymentID, dto.ReviewRequest{Approved: false, RejectionReason: &reason}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusRejected, resp.Status)

	stored := ledger.payments[paymentID]
	require.NotNil(t, stored.RejectionReason)
	assert.Equal(t, "illegible receipt", *stored.RejectionReason)
}

func TestReviewApprovalDiscardsReason(t *testing.T) {
	ledger := newFakePaymentLedger()
	svc := newPaymentServiceForTest(ledger, testCatalog(), newFakeRegistrations(), &fakeNotifier{})

	_, err := svc.Submit(context.Background(), "stu-1", "course-1", 100, receipt())
	require.NoError(t, err)
	paymentID := ledger.created[0].ID

	reason := "should be ignored"
	_, err = svc.Review(context.Background(), paymentID, dto.ReviewRequest{Approved: true, RejectionReason: &reason}, "admin-1")
	require.NoError(t, err)
	assert.Nil(t, ledger.payments[paymentID].RejectionReason)
}

func TestReviewUnknownPayment(t *testing.T) {
	svc := newPaymentServiceForTest(newFakePaymentLedger(), testCatalog(), newFakeRegistrations(), &fakeNotifier{})

	_, err := svc.Review(context.Background(), "missing", dto.ReviewRequest{Approved: true}, "admin-1")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
