package service

import (
	"context"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wmou-edu/portal-api/internal/dto"
	"github.com/wmou-edu/portal-api/internal/models"
	appErrors "github.com/wmou-edu/portal-api/pkg/errors"
)

const (
	adminDashboardCacheKey = "dashboard:admin"
	newStudentWindow       = 30 * 24 * time.Hour
	recentResultsLimit     = 5
	latestItemsLimit       = 5
)

type dashboardRepository interface {
	CountActiveStudents(ctx context.Context) (int, error)
	CountStudentsCreatedSince(ctx context.Context, since time.Time) (int, error)
	CountCourses(ctx context.Context) (int, error)
	StudentFacts(ctx context.Context) ([]models.StudentFacts, error)
	CourseEnrollmentCounts(ctx context.Context) ([]models.CourseEnrollmentCount, error)
	ApprovedPayments(ctx context.Context) ([]models.ApprovedPaymentFacts, error)
	CountPaymentsByStatus(ctx context.Context, status models.PaymentStatus) (int, error)
	LatestPendingPayments(ctx context.Context, limit int) ([]models.PaymentDetail, error)
	CountStudentPaymentsByStatus(ctx context.Context, studentID string, status models.PaymentStatus) (int, error)
}

type dashboardAnnouncementRepository interface {
	Latest(ctx context.Context, limit int) ([]models.Announcement, error)
}

type dashboardRegistrationRepository interface {
	CountByStudent(ctx context.Context, studentID string) (int, error)
}

type dashboardResultRepository interface {
	RecentByStudent(ctx context.Context, studentID string, limit int) ([]models.ResultDetail, error)
}

type dashboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
	Enabled() bool
}

// DashboardConfig tunes snapshot caching.
type DashboardConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// DashboardService composes the admin and student dashboard read
// models. The admin snapshot is assembled from scratch on every cache
// miss; any store error aborts the whole snapshot rather than serving
// a partial one.
type DashboardService struct {
	repo          dashboardRepository
	announcements dashboardAnnouncementRepository
	registrations dashboardRegistrationRepository
	results       dashboardResultRepository
	cache         dashboardCache
	logger        *zap.Logger
	config        DashboardConfig
}

// NewDashboardService constructs the aggregator.
func NewDashboardService(
	repo dashboardRepository,
	announcements dashboardAnnouncementRepository,
	registrations dashboardRegistrationRepository,
	results dashboardResultRepository,
	cache dashboardCache,
	logger *zap.Logger,
	config DashboardConfig,
) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = 5 * time.Minute
	}
	return &DashboardService{
		repo:          repo,
		announcements: announcements,
		registrations: registrations,
		results:       results,
		cache:         cache,
		logger:        logger,
		config:        config,
	}
}

// Admin returns the aggregated admin dashboard, from cache when fresh.
// The second return reports whether the snapshot came from cache.
func (s *DashboardService) Admin(ctx context.Context) (*dto.AdminDashboardResponse, bool, error) {
	if s.cacheActive() {
		var cached dto.AdminDashboardResponse
		hit, err := s.cache.Get(ctx, adminDashboardCacheKey, &cached)
		if err != nil {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
		if hit {
			return &cached, true, nil
		}
	}

	snapshot, err := s.buildAdminSnapshot(ctx)
	if err != nil {
		return nil, false, err
	}

	if s.cacheActive() {
		if err := s.cache.Set(ctx, adminDashboardCacheKey, snapshot, s.config.CacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return snapshot, false, nil
}

func (s *DashboardService) cacheActive() bool {
	return s.config.CacheEnabled && s.cache != nil && s.cache.Enabled()
}

// InvalidateAdmin drops the cached admin snapshot. Called after writes
// that change what the dashboard shows.
func (s *DashboardService) InvalidateAdmin(ctx context.Context) {
	if !s.cacheActive() {
		return
	}
	if err := s.cache.Invalidate(ctx, adminDashboardCacheKey); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

func (s *DashboardService) buildAdminSnapshot(ctx context.Context) (*dto.AdminDashboardResponse, error) {
	totalActive, err := s.repo.CountActiveStudents(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count active students")
	}

	newStudents, err := s.repo.CountStudentsCreatedSince(ctx, time.Now().UTC().Add(-newStudentWindow))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count new students")
	}

	totalCourses, err := s.repo.CountCourses(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count courses")
	}

	students, err := s.repo.StudentFacts(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student facts")
	}

	enrollments, err := s.repo.CourseEnrollmentCounts(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment counts")
	}

	approved, err := s.repo.ApprovedPayments(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load approved payments")
	}

	pendingCount, err := s.repo.CountPaymentsByStatus(ctx, models.PaymentStatusPending)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending payments")
	}

	latestPending, err := s.repo.LatestPendingPayments(ctx, latestItemsLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load latest pending payments")
	}

	latestAnnouncements, err := s.announcements.Latest(ctx, latestItemsLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load announcements")
	}

	totalRevenue, trend := revenueAggregates(approved)

	return &dto.AdminDashboardResponse{
		TotalActiveStudents:   totalActive,
		NewStudents30d:        newStudents,
		TotalCourses:          totalCourses,
		StudentsByDepartment:  departmentCounts(students),
		MostEnrolled:          mostEnrolled(enrollments),
		TotalRevenue:          totalRevenue,
		PendingCount:          pendingCount,
		RevenueTrend:          trend,
		StatusDistribution:    statusDistribution(students),
		LatestPendingPayments: latestPending,
		LatestAnnouncements:   latestAnnouncements,
	}, nil
}

// Student returns one student's dashboard summary.
func (s *DashboardService) Student(ctx context.Context, studentID string) (*dto.StudentDashboardResponse, error) {
	registered, err := s.registrations.CountByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count registrations")
	}

	pending, err := s.repo.CountStudentPaymentsByStatus(ctx, studentID, models.PaymentStatusPending)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending payments")
	}

	approved, err := s.repo.CountStudentPaymentsByStatus(ctx, studentID, models.PaymentStatusApproved)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count approved payments")
	}

	recent, err := s.results.RecentByStudent(ctx, studentID, recentResultsLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent results")
	}

	grades := make([]string, 0, len(recent))
	for _, r := range recent {
		grades = append(grades, r.Grade)
	}

	return &dto.StudentDashboardResponse{
		RegisteredCourses: registered,
		PendingPayments:   pending,
		ApprovedPayments:  approved,
		GPA:               ComputeGPA(grades),
		RecentResults:     recent,
	}, nil
}

// gradePoints maps letter grades onto the 5-point scale.
var gradePoints = map[string]float64{
	"A": 5, "B": 4, "C": 3, "D": 2, "E": 1, "F": 0,
}

// ComputeGPA averages letter grades on the 5-point scale, rounded to
// two decimals. Unknown grades score zero; no grades means 0.0.
func ComputeGPA(grades []string) float64 {
	if len(grades) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, grade := range grades {
		sum += gradePoints[strings.ToUpper(strings.TrimSpace(grade))]
	}
	return math.Round(sum/float64(len(grades))*100) / 100
}

// departmentCounts groups students by department in first-seen order.
func departmentCounts(students []models.StudentFacts) []dto.DepartmentCount {
	counts := []dto.DepartmentCount{}
	index := map[string]int{}
	for _, s := range students {
		dept := s.Department
		if dept == "" {
			dept = "Unassigned"
		}
		if i, ok := index[dept]; ok {
			counts[i].Count++
			continue
		}
		index[dept] = len(counts)
		counts = append(counts, dto.DepartmentCount{Department: dept, Count: 1})
	}
	return counts
}

// statusDistribution counts students by normalised status, display
// capitalised, in first-seen order.
func statusDistribution(students []models.StudentFacts) []dto.StatusCount {
	counts := []dto.StatusCount{}
	index := map[string]int{}
	for _, s := range students {
		status := normalizedStatus(s.Status)
		if status == "" {
			status = "unknown"
		}
		if i, ok := index[status]; ok {
			counts[i].Count++
			continue
		}
		index[status] = len(counts)
		counts = append(counts, dto.StatusCount{Status: capitalize(status), Count: 1})
	}
	return counts
}

// mostEnrolled picks the course with the highest registration count.
// The first course encountered wins ties; an empty catalog yields
// {"N/A", 0}.
func mostEnrolled(courses []models.CourseEnrollmentCount) dto.MostEnrolledCourse {
	winner := dto.MostEnrolledCourse{Title: "N/A"}
	found := false
	for _, c := range courses {
		if !found || c.RegistrationCount > winner.Count {
			winner = dto.MostEnrolledCourse{
				CourseCode: c.CourseCode,
				Title:      c.Title,
				Count:      c.RegistrationCount,
			}
			found = true
		}
	}
	return winner
}

// revenueAggregates computes total approved revenue and the monthly
// trend. Amounts missing in the store count as zero toward the total.
// Buckets are keyed by UTC month abbreviation only, so the same month
// across years merges; empty months are dropped and the series runs
// Jan through Dec.
func revenueAggregates(payments []models.ApprovedPaymentFacts) (float64, []dto.MonthRevenue) {
	total := 0.0
	byMonth := map[time.Month]float64{}
	seen := map[time.Month]bool{}
	for _, p := range payments {
		amount := 0.0
		if p.Amount != nil {
			amount = *p.Amount
		}
		total += amount
		if p.CreatedAt == nil {
			continue
		}
		month := p.CreatedAt.UTC().Month()
		byMonth[month] += amount
		seen[month] = true
	}

	trend := []dto.MonthRevenue{}
	for month := time.January; month <= time.December; month++ {
		if !seen[month] {
			continue
		}
		trend = append(trend, dto.MonthRevenue{
			Month:  month.String()[:3],
			Amount: byMonth[month],
		})
	}
	return total, trend
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
