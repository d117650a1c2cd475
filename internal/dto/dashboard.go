package dto

import "github.com/wmou-edu/portal-api/internal/models"

// AdminDashboardResponse is the aggregated read model served to the
// admin dashboard. It is computed per request (or from cache) and never
// persisted.
type AdminDashboardResponse struct {
	TotalActiveStudents  int                     `json:"total_active_students"`
	NewStudents30d       int                     `json:"new_students_30d"`
	TotalCourses         int                     `json:"total_courses"`
	StudentsByDepartment []DepartmentCount       `json:"students_by_department"`
	MostEnrolled         MostEnrolledCourse      `json:"most_enrolled"`
	TotalRevenue         float64                 `json:"total_revenue"`
	PendingCount         int                     `json:"pending_count"`
	RevenueTrend         []MonthRevenue          `json:"revenue_trend"`
	StatusDistribution   []StatusCount           `json:"status_distribution"`
	LatestPendingPayments []models.PaymentDetail `json:"latest_pending_payments"`
	LatestAnnouncements  []models.Announcement   `json:"latest_announcements"`
}

// DepartmentCount is one students-by-department bucket. Buckets appear
// in first-seen order, not sorted.
type DepartmentCount struct {
	Department string `json:"department"`
	Count      int    `json:"count"`
}

// MostEnrolledCourse names the course with the highest registration
// count. Title is "N/A" when no courses exist.
type MostEnrolledCourse struct {
	CourseCode string `json:"course_code"`
	Title      string `json:"title"`
	Count      int    `json:"count"`
}

// MonthRevenue is one calendar-month revenue bucket ("Jan".."Dec").
type MonthRevenue struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

// StatusCount is one student-status bucket, capitalised for display.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// StudentDashboardResponse summarises a single student's standing.
type StudentDashboardResponse struct {
	RegisteredCourses int                   `json:"registered_courses"`
	PendingPayments   int                   `json:"pending_payments"`
	ApprovedPayments  int                   `json:"approved_payments"`
	GPA               float64               `json:"gpa"`
	RecentResults     []models.ResultDetail `json:"recent_results"`
}
