package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/wmou-edu/portal-api/internal/models"
)

const announcementColumns = `id, title, content, target_department, created_by, created_at`

// AnnouncementRepository handles read access to posted announcements.
type AnnouncementRepository struct {
	db *sqlx.DB
}

// NewAnnouncementRepository constructs the repository.
func NewAnnouncementRepository(db *sqlx.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

// ListVisible returns announcements visible to the given department:
// department-targeted plus global ones, newest first. An empty
// department (admin view) returns everything.
func (r *AnnouncementRepository) ListVisible(ctx context.Context, department string) ([]models.Announcement, error) {
	var announcements []models.Announcement
	if department == "" {
		query := fmt.Sprintf("SELECT %s FROM announcements ORDER BY created_at DESC", announcementColumns)
		if err := r.db.SelectContext(ctx, &announcements, query); err != nil {
			return nil, fmt.Errorf("list announcements: %w", err)
		}
		return announcements, nil
	}
	query := fmt.Sprintf("SELECT %s FROM announcements WHERE target_department = $1 OR target_department IS NULL ORDER BY created_at DESC", announcementColumns)
	if err := r.db.SelectContext(ctx, &announcements, query, department); err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	return announcements, nil
}

// Latest returns the newest announcements by creation time.
func (r *AnnouncementRepository) Latest(ctx context.Context, limit int) ([]models.Announcement, error) {
	if limit <= 0 {
		limit = 5
	}
	query := fmt.Sprintf("SELECT %s FROM announcements ORDER BY created_at DESC LIMIT %d", announcementColumns, limit)
	var announcements []models.Announcement
	if err := r.db.SelectContext(ctx, &announcements, query); err != nil {
		return nil, fmt.Errorf("latest announcements: %w", err)
	}
	return announcements, nil
}
