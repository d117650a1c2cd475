package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/wmou-edu/portal-api/internal/models"
	appErrors "github.com/wmou-edu/portal-api/pkg/errors"
)

type announcementRepository interface {
	ListVisible(ctx context.Context, department string) ([]models.Announcement, error)
}

// AnnouncementService serves notices scoped to a student's department
// or published portal-wide.
type AnnouncementService struct {
	repo   announcementRepository
	logger *zap.Logger
}

// NewAnnouncementService constructs the service.
func NewAnnouncementService(repo announcementRepository, logger *zap.Logger) *AnnouncementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnnouncementService{repo: repo, logger: logger}
}

// ListVisible returns announcements visible to the given department.
// An empty department returns everything (the admin view).
func (s *AnnouncementService) ListVisible(ctx context.Context, department string) ([]models.Announcement, error) {
	announcements, err := s.repo.ListVisible(ctx, department)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list announcements")
	}
	return announcements, nil
}
