package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wmou-edu/portal-api/internal/models"
	"github.com/wmou-edu/portal-api/pkg/jobs"
	"github.com/wmou-edu/portal-api/pkg/mailer"
)

const (
	notificationPaymentReceived = "payment_received"
	notificationPaymentApproved = "payment_approved"
	notificationPaymentRejected = "payment_rejected"
)

// paymentNotificationPayload travels through the in-memory queue. It
// carries identifiers only; the handler resolves fresh user data at
// delivery time.
type paymentNotificationPayload struct {
	StudentID    string
	CourseTitles []string
	Total        float64
	Reason       string
}

type notificationUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// NotificationService delivers payment lifecycle emails off the request
// path. Enqueue failures and delivery failures are logged, never
// surfaced to the caller.
type NotificationService struct {
	queue  *jobs.Queue
	mailer mailer.Mailer
	users  notificationUserRepository
	logger *zap.Logger
}

// NewNotificationService wires the worker queue around the mailer.
func NewNotificationService(m mailer.Mailer, users notificationUserRepository, logger *zap.Logger, cfg jobs.QueueConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{mailer: m, users: users, logger: logger}
	cfg.Logger = logger
	s.queue = jobs.NewQueue("notifications", s.handle, cfg)
	return s
}

// Start launches the delivery workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// PaymentReceived queues the submission confirmation email.
func (s *NotificationService) PaymentReceived(studentID string, courseTitles []string, total float64) {
	s.enqueue(notificationPaymentReceived, paymentNotificationPayload{
		StudentID:    studentID,
		CourseTitles: courseTitles,
		Total:        total,
	})
}

// PaymentDecided queues the review outcome email.
func (s *NotificationService) PaymentDecided(studentID, courseTitle string, approved bool, reason string) {
	jobType := notificationPaymentRejected
	if approved {
		jobType = notificationPaymentApproved
	}
	s.enqueue(jobType, paymentNotificationPayload{
		StudentID:    studentID,
		CourseTitles: []string{courseTitle},
		Reason:       reason,
	})
}

func (s *NotificationService) enqueue(jobType string, payload paymentNotificationPayload) {
	err := s.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    jobType,
		Payload: payload,
	})
	if err != nil {
		s.logger.Warn("failed to enqueue notification",
			zap.String("type", jobType),
			zap.String("student_id", payload.StudentID),
			zap.Error(err))
	}
}

func (s *NotificationService) handle(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(paymentNotificationPayload)
	if !ok {
		s.logger.Error("unexpected notification payload", zap.String("job_id", job.ID))
		return nil
	}

	user, err := s.users.FindByID(ctx, payload.StudentID)
	if err != nil {
		return fmt.Errorf("resolve notification recipient %s: %w", payload.StudentID, err)
	}
	if user.Email == "" {
		s.logger.Warn("recipient has no email address", zap.String("student_id", payload.StudentID))
		return nil
	}

	subject, body := s.compose(job.Type, user, payload)
	if err := s.mailer.Send(user.Email, subject, body); err != nil {
		return err
	}
	return nil
}

func (s *NotificationService) compose(jobType string, user *models.User, payload paymentNotificationPayload) (string, string) {
	name := html.EscapeString(user.FullName)
	courses := html.EscapeString(strings.Join(payload.CourseTitles, ", "))

	switch jobType {
	case notificationPaymentReceived:
		subject := "Payment Received - WMOU Portal"
		body := fmt.Sprintf(
			`<p>Dear %s,</p>
<p>We have received your payment of <b>&#8358;%.2f</b> for: %s.</p>
<p>Your payment is pending review. You will be notified once it has been processed.</p>
<p>WMOU Registry</p>`, name, payload.Total, courses)
		return subject, body
	case notificationPaymentApproved:
		subject := "Payment Approved - WMOU Portal"
		body := fmt.Sprintf(
			`<p>Dear %s,</p>
<p>Your payment for <b>%s</b> has been <b>approved</b> and you are now registered for the course.</p>
<p>WMOU Registry</p>`, name, courses)
		return subject, body
	default:
		reason := strings.TrimSpace(payload.Reason)
		if reason == "" {
			reason = "No reason was provided."
		}
		subject := "Payment Rejected - WMOU Portal"
		body := fmt.Sprintf(
			`<p>Dear %s,</p>
<p>Your payment for <b>%s</b> has been <b>rejected</b>.</p>
<p>Reason: %s</p>
<p>Please contact the registry or submit a new payment.</p>
<p>WMOU Registry</p>`, name, courses, html.EscapeString(reason))
		return subject, body
	}
}
