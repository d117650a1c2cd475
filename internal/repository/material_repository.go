package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/wmou-edu/portal-api/internal/models"
)

// MaterialRepository handles read access to course materials.
type MaterialRepository struct {
	db *sqlx.DB
}

// NewMaterialRepository constructs the repository.
func NewMaterialRepository(db *sqlx.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

// ListByCourse returns materials attached to a course, newest first.
func (r *MaterialRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Material, error) {
	const query = `SELECT id, course_id, title, file_url, file_type, uploaded_by, uploaded_at
        FROM course_materials WHERE course_id = $1 ORDER BY uploaded_at DESC`
	var materials []models.Material
	if err := r.db.SelectContext(ctx, &materials, query, courseID); err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	return materials, nil
}
