package service

import (
	"context"
	"math"
	"time"

	"github.com/sensoryplay/portal-backend/internal/repository"
)

// DashboardData consolidates all metrics for the admin dashboard.
type DashboardData struct {
	repository.DashboardCounts
	FillRate        float64                             `json:"fill_rate"`
	Revenue         repository.DashboardRevenue         `json:"revenue"`
	UpcomingClasses []repository.DashboardUpcomingClass `json:"next_classes"`
}

// DefaultUpcomingClasses is how many next classes the dashboard lists by default.
const DefaultUpcomingClasses = 5

// DashboardService handles admin dashboard business logic.
type DashboardService struct {
	repo DashboardStore
	now  func() time.Time
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(repo DashboardStore) *DashboardService {
	return &DashboardService{repo: repo, now: time.Now}
}

// FillRate is the share of upcoming seats already taken, rounded to 0.1%.
func FillRate(enrolled, capacity int) float64 {
	if capacity <= 0 {
		return 0
	}
	return math.Round(float64(enrolled)/float64(capacity)*1000) / 10
}

// GetDashboardData gathers the dashboard metrics with the next `upcoming`
// classes; zero means DefaultUpcomingClasses.
func (s *DashboardService) GetDashboardData(ctx context.Context, upcoming int) (*DashboardData, error) {
	if upcoming <= 0 {
		upcoming = DefaultUpcomingClasses
	}
	now := s.now()

	counts, err := s.repo.GetSummaryCounts(ctx, now)
	if err != nil {
		return nil, err
	}

	revenue, err := s.repo.GetRevenue(ctx)
	if err != nil {
		return nil, err
	}

	next, err := s.repo.GetUpcomingClasses(ctx, now, upcoming)
	if err != nil {
		return nil, err
	}

	return &DashboardData{
		DashboardCounts: counts,
		FillRate:        FillRate(counts.UpcomingEnrolled, counts.UpcomingCapacity),
		Revenue:         revenue,
		UpcomingClasses: next,
	}, nil
}
