package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/wmou-edu/portal-api/internal/models"
	appErrors "github.com/wmou-edu/portal-api/pkg/errors"
)

type courseCatalogRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type coursePaymentLookup interface {
	LatestForStudentAndCourse(ctx context.Context, studentID, courseID string) (*models.Payment, error)
}

type courseRegistrationLookup interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Registration, error)
}

// CourseService serves the read-only course catalog: the admin view,
// the student view annotated with payment state, and the registered
// courses list.
type CourseService struct {
	courses       courseCatalogRepository
	payments      coursePaymentLookup
	registrations courseRegistrationLookup
	logger        *zap.Logger
}

// NewCourseService constructs the service.
func NewCourseService(courses courseCatalogRepository, payments coursePaymentLookup, registrations courseRegistrationLookup, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{courses: courses, payments: payments, registrations: registrations, logger: logger}
}

// List returns catalog courses matching the filter.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	courses, err := s.courses.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

// Get returns a single course.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// ListForStudent returns the filtered catalog annotated with the
// student's latest payment per course, when one exists.
func (s *CourseService) ListForStudent(ctx context.Context, studentID string, filter models.CourseFilter) ([]models.CourseWithPayment, error) {
	courses, err := s.courses.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}

	annotated := make([]models.CourseWithPayment, 0, len(courses))
	for _, course := range courses {
		entry := models.CourseWithPayment{Course: course}
		payment, err := s.payments.LatestForStudentAndCourse(ctx, studentID, course.ID)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment state")
			}
		} else {
			entry.Payment = payment
		}
		annotated = append(annotated, entry)
	}
	return annotated, nil
}

// RegisteredCourses returns the courses the student is enrolled in,
// each with its registration and latest payment.
func (s *CourseService) RegisteredCourses(ctx context.Context, studentID string) ([]models.RegistrationDetail, error) {
	registrations, err := s.registrations.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registrations")
	}

	details := make([]models.RegistrationDetail, 0, len(registrations))
	for _, registration := range registrations {
		course, err := s.courses.FindByID(ctx, registration.CourseID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				s.logger.Warn("registration references missing course",
					zap.String("registration_id", registration.ID),
					zap.String("course_id", registration.CourseID))
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
		}

		detail := models.RegistrationDetail{Registration: registration, Course: *course}
		payment, err := s.payments.LatestForStudentAndCourse(ctx, studentID, registration.CourseID)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment state")
			}
		} else {
			detail.Payment = payment
		}
		details = append(details, detail)
	}
	return details, nil
}
