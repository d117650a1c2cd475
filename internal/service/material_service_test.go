package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wmou-edu/portal-api/internal/models"
	appErrors "github.com/wmou-edu/portal-api/pkg/errors"
)

type fakeMaterials struct {
	byCourse map[string][]models.Material
}

func (f *fakeMaterials) ListByCourse(_ context.Context, courseID string) ([]models.Material, error) {
	return f.byCourse[courseID], nil
}

func TestMaterialsRequireRegistration(t *testing.T) {
	materials := &fakeMaterials{byCourse: map[string][]models.Material{
		"course-1": {{ID: "mat-1", CourseID: "course-1", Title: "Week 1 Notes"}},
	}}
	regs := newFakeRegistrations()
	svc := NewMaterialService(materials, regs, zap.NewNop())

	_, err := svc.ListForStudent(context.Background(), "stu-1", "course-1")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)

	regs.pairs[regs.key("stu-1", "course-1")] = true
	listed, err := svc.ListForStudent(context.Background(), "stu-1", "course-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Week 1 Notes", listed[0].Title)
}

func TestMaterialsAdminBypassesGate(t *testing.T) {
	materials := &fakeMaterials{byCourse: map[string][]models.Material{
		"course-1": {{ID: "mat-1", CourseID: "course-1", Title: "Week 1 Notes"}},
	}}
	svc := NewMaterialService(materials, newFakeRegistrations(), zap.NewNop())

	listed, err := svc.ListForAdmin(context.Background(), "course-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
}
