package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/wmou-edu/portal-api/internal/models"
	appErrors "github.com/wmou-edu/portal-api/pkg/errors"
)

type materialRepository interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.Material, error)
}

type materialRegistrationLookup interface {
	Exists(ctx context.Context, studentID, courseID string) (bool, error)
}

// MaterialService serves course materials. Student access is gated on
// an existing registration for the course.
type MaterialService struct {
	materials     materialRepository
	registrations materialRegistrationLookup
	logger        *zap.Logger
}

// NewMaterialService constructs the service.
func NewMaterialService(materials materialRepository, registrations materialRegistrationLookup, logger *zap.Logger) *MaterialService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MaterialService{materials: materials, registrations: registrations, logger: logger}
}

// ListForStudent returns a course's materials if the student is
// registered for it.
func (s *MaterialService) ListForStudent(ctx context.Context, studentID, courseID string) ([]models.Material, error) {
	registered, err := s.registrations.Exists(ctx, studentID, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check registration")
	}
	if !registered {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you are not registered for this course")
	}
	return s.list(ctx, courseID)
}

// ListForAdmin returns a course's materials without the registration gate.
func (s *MaterialService) ListForAdmin(ctx context.Context, courseID string) ([]models.Material, error) {
	return s.list(ctx, courseID)
}

func (s *MaterialService) list(ctx context.Context, courseID string) ([]models.Material, error) {
	materials, err := s.materials.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list materials")
	}
	return materials, nil
}
