package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wmou-edu/portal-api/internal/models"
)

type fakeDashboardRepo struct {
	activeStudents int
	newStudents    int
	courses        int
	students       []models.StudentFacts
	enrollments    []models.CourseEnrollmentCount
	approved       []models.ApprovedPaymentFacts
	pendingCount   int
	latestPending  []models.PaymentDetail
	studentCounts  map[models.PaymentStatus]int
}

func (f *fakeDashboardRepo) CountActiveStudents(context.Context) (int, error) {
	return f.activeStudents, nil
}

func (f *fakeDashboardRepo) CountStudentsCreatedSince(context.Context, time.Time) (int, error) {
	return f.newStudents, nil
}

func (f *fakeDashboardRepo) CountCourses(context.Context) (int, error) {
	return f.courses, nil
}

func (f *fakeDashboardRepo) StudentFacts(context.Context) ([]models.StudentFacts, error) {
	return f.students, nil
}

func (f *fakeDashboardRepo) CourseEnrollmentCounts(context.Context) ([]models.CourseEnrollmentCount, error) {
	return f.enrollments, nil
}

func (f *fakeDashboardRepo) ApprovedPayments(context.Context) ([]models.ApprovedPaymentFacts, error) {
	return f.approved, nil
}

func (f *fakeDashboardRepo) CountPaymentsByStatus(context.Context, models.PaymentStatus) (int, error) {
	return f.pendingCount, nil
}

func (f *fakeDashboardRepo) LatestPendingPayments(context.Context, int) ([]models.PaymentDetail, error) {
	return f.latestPending, nil
}

func (f *fakeDashboardRepo) CountStudentPaymentsByStatus(_ context.Context, _ string, status models.PaymentStatus) (int, error) {
	return f.studentCounts[status], nil
}

type fakeDashboardAnnouncements struct {
	latest []models.Announcement
}

func (f *fakeDashboardAnnouncements) Latest(context.Context, int) ([]models.Announcement, error) {
	return f.latest, nil
}

type fakeDashboardRegistrations struct {
	count int
}

func (f *fakeDashboardRegistrations) CountByStudent(context.Context, string) (int, error) {
	return f.count, nil
}

type fakeDashboardResults struct {
	recent []models.ResultDetail
}

func (f *fakeDashboardResults) RecentByStudent(context.Context, string, int) ([]models.ResultDetail, error) {
	return f.recent, nil
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func timePtr(t time.Time) *time.Time { return &t }

func newDashboardServiceForTest(repo *fakeDashboardRepo) *DashboardService {
	return NewDashboardService(
		repo,
		&fakeDashboardAnnouncements{},
		&fakeDashboardRegistrations{},
		&fakeDashboardResults{},
		nil,
		zap.NewNop(),
		DashboardConfig{},
	)
}

func TestAdminRevenueSumsApprovedOnly(t *testing.T) {
	// The repository hands over approved rows only; a pending 50 and a
	// rejected 30 never reach the aggregator.
	repo := &fakeDashboardRepo{
		approved: []models.ApprovedPaymentFacts{
			{Amount: floatPtr(100), CreatedAt: timePtr(time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC))},
		},
	}
	svc := newDashboardServiceForTest(repo)

	snapshot, cached, err := svc.Admin(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 100.0, snapshot.TotalRevenue)
}

func TestAdminRevenueTrendBucketsByMonth(t *testing.T) {
	repo := &fakeDashboardRepo{
		approved: []models.ApprovedPaymentFacts{
			{Amount: floatPtr(40), CreatedAt: timePtr(time.Date(2025, time.March, 2, 0, 0, 0, 0, time.UTC))},
			{Amount: floatPtr(60), CreatedAt: timePtr(time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC))},
			{Amount: floatPtr(25), CreatedAt: timePtr(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC))},
			{Amount: floatPtr(10), CreatedAt: nil},
			{Amount: nil, CreatedAt: timePtr(time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC))},
		},
	}
	svc := newDashboardServiceForTest(repo)

	snapshot, _, err := svc.Admin(context.Background())
	require.NoError(t, err)

	// Timestamp-less payments count toward revenue but not the trend;
	// the same month across years merges into one bucket.
	assert.Equal(t, 135.0, snapshot.TotalRevenue)

	months := make([]string, 0, len(snapshot.RevenueTrend))
	amounts := map[string]float64{}
	for _, bucket := range snapshot.RevenueTrend {
		months = append(months, bucket.Month)
		amounts[bucket.Month] = bucket.Amount
	}
	assert.Equal(t, []string{"Jan", "Mar", "Jul"}, months)
	assert.Equal(t, 100.0, amounts["Mar"])
	assert.Equal(t, 25.0, amounts["Jan"])
	assert.Equal(t, 0.0, amounts["Jul"])
}

func TestAdminDepartmentsGroupInFirstSeenOrder(t *testing.T) {
	repo := &fakeDashboardRepo{
		students: []models.StudentFacts{
			{Department: "Physics", Status: strPtr("active")},
			{Department: "History", Status: strPtr("  Active ")},
			{Department: "Physics", Status: strPtr("suspended")},
		},
	}
	svc := newDashboardServiceForTest(repo)

	snapshot, _, err := svc.Admin(context.Background())
	require.NoError(t, err)

	require.Len(t, snapshot.StudentsByDepartment, 2)
	assert.Equal(t, "Physics", snapshot.StudentsByDepartment[0].Department)
	assert.Equal(t, 2, snapshot.StudentsByDepartment[0].Count)
	assert.Equal(t, "History", snapshot.StudentsByDepartment[1].Department)

	require.Len(t, snapshot.StatusDistribution, 2)
	assert.Equal(t, "Active", snapshot.StatusDistribution[0].Status)
	assert.Equal(t, 2, snapshot.StatusDistribution[0].Count)
	assert.Equal(t, "Suspended", snapshot.StatusDistribution[1].Status)
}

func TestAdminMostEnrolledTieBreaksByFetchOrder(t *testing.T) {
	repo := &fakeDashboardRepo{
		enrollments: []models.CourseEnrollmentCount{
			{CourseCode: "CSC101", Title: "Intro to Computing", RegistrationCount: 7},
			{CourseCode: "CSC102", Title: "Data Structures", RegistrationCount: 7},
			{CourseCode: "CSC103", Title: "Algorithms", RegistrationCount: 3},
		},
	}
	svc := newDashboardServiceForTest(repo)

	snapshot, _, err := svc.Admin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "CSC101", snapshot.MostEnrolled.CourseCode)
	assert.Equal(t, 7, snapshot.MostEnrolled.Count)
}

func TestAdminMostEnrolledEmptyCatalog(t *testing.T) {
	svc := newDashboardServiceForTest(&fakeDashboardRepo{})

	snapshot, _, err := svc.Admin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "N/A", snapshot.MostEnrolled.Title)
	assert.Equal(t, 0, snapshot.MostEnrolled.Count)
}

func TestStudentDashboardGPA(t *testing.T) {
	repo := &fakeDashboardRepo{
		studentCounts: map[models.PaymentStatus]int{
			models.PaymentStatusPending:  2,
			models.PaymentStatusApproved: 3,
		},
	}
	results := &fakeDashboardResults{recent: []models.ResultDetail{
		{Result: models.Result{Grade: "A"}},
		{Result: models.Result{Grade: "B"}},
	}}
	svc := NewDashboardService(repo, &fakeDashboardAnnouncements{}, &fakeDashboardRegistrations{count: 4}, results, nil, zap.NewNop(), DashboardConfig{})

	summary, err := svc.Student(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, 4, summary.RegisteredCourses)
	assert.Equal(t, 2, summary.PendingPayments)
	assert.Equal(t, 3, summary.ApprovedPayments)
	assert.Equal(t, 4.5, summary.GPA)
}

func TestComputeGPA(t *testing.T) {
	assert.Equal(t, 0.0, ComputeGPA(nil))
	assert.Equal(t, 4.5, ComputeGPA([]string{"A", "B"}))
	assert.Equal(t, 0.0, ComputeGPA([]string{"Z"}))
	assert.Equal(t, 2.33, ComputeGPA([]string{"A", "D", "F"}))
	assert.Equal(t, 5.0, ComputeGPA([]string{" a "}))
}
