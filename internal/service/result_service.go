package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/wmou-edu/portal-api/internal/models"
	appErrors "github.com/wmou-edu/portal-api/pkg/errors"
)

type resultRepository interface {
	ListByStudent(ctx context.Context, studentID string, filter models.ResultFilter) ([]models.ResultDetail, error)
}

// ResultService serves a student's graded results.
type ResultService struct {
	repo   resultRepository
	logger *zap.Logger
}

// NewResultService constructs the service.
func NewResultService(repo resultRepository, logger *zap.Logger) *ResultService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultService{repo: repo, logger: logger}
}

// ResultsSummary pairs a result listing with the GPA over those results.
type ResultsSummary struct {
	Results []models.ResultDetail `json:"results"`
	GPA     float64               `json:"gpa"`
}

// ListForStudent returns the student's results matching the filter,
// with the GPA computed over exactly the returned set.
func (s *ResultService) ListForStudent(ctx context.Context, studentID string, filter models.ResultFilter) (*ResultsSummary, error) {
	results, err := s.repo.ListByStudent(ctx, studentID, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list results")
	}

	grades := make([]string, 0, len(results))
	for _, r := range results {
		grades = append(grades, r.Grade)
	}

	return &ResultsSummary{Results: results, GPA: ComputeGPA(grades)}, nil
}
