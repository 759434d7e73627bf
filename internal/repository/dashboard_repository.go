package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sensoryplay/portal-backend/internal/model"
)

// DashboardRepository handles admin dashboard data access.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// DashboardCounts holds the headline numbers shown on the admin dashboard.
type DashboardCounts struct {
	TotalUsers        int `json:"total_users"`
	TotalParents      int `json:"total_parents"`
	TotalLocations    int `json:"total_locations"`
	TotalClasses      int `json:"total_classes"`
	UpcomingClasses   int `json:"upcoming_classes"`
	ActiveBookings    int `json:"active_bookings"`
	PendingPayments   int `json:"pending_payments"`
	CancelledBookings int `json:"cancelled_bookings"`
	Subscribers       int `json:"newsletter_subscribers"`
	UpcomingEnrolled  int `json:"upcoming_enrolled"`
	UpcomingCapacity  int `json:"upcoming_capacity"`
}

// GetSummaryCounts retrieves the high-level metrics for the dashboard.
func (r *DashboardRepository) GetSummaryCounts(ctx context.Context, now time.Time) (DashboardCounts, error) {
	var c DashboardCounts
	err := r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM users WHERE role = $5),
			(SELECT COUNT(*) FROM locations),
			(SELECT COUNT(*) FROM classes),
			(SELECT COUNT(*) FROM classes WHERE starts_at > $1),
			(SELECT COUNT(*) FROM bookings WHERE status = $2),
			(SELECT COUNT(*) FROM bookings WHERE status = $2 AND payment_status = $3),
			(SELECT COUNT(*) FROM bookings WHERE status = $4),
			(SELECT COUNT(*) FROM newsletter_subscribers WHERE unsubscribed_at IS NULL),
			(SELECT COALESCE(SUM(enrolled), 0) FROM classes WHERE starts_at > $1),
			(SELECT COALESCE(SUM(capacity), 0) FROM classes WHERE starts_at > $1)`,
		now, model.BookingActive, model.PaymentPending, model.BookingCancelled, model.RoleParent,
	).Scan(&c.TotalUsers, &c.TotalParents, &c.TotalLocations, &c.TotalClasses, &c.UpcomingClasses,
		&c.ActiveBookings, &c.PendingPayments, &c.CancelledBookings, &c.Subscribers,
		&c.UpcomingEnrolled, &c.UpcomingCapacity)
	return c, err
}

// DashboardUpcomingClass is the fill-rate view of a scheduled class.
type DashboardUpcomingClass struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	StartsAt     time.Time `json:"starts_at"`
	LocationName string    `json:"location_name"`
	Enrolled     int       `json:"enrolled"`
	Capacity     int       `json:"capacity"`
}

// GetUpcomingClasses retrieves the next N classes by start time.
func (r *DashboardRepository) GetUpcomingClasses(ctx context.Context, now time.Time, limit int) ([]DashboardUpcomingClass, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT c.id, c.title, c.starts_at, l.name, c.enrolled, c.capacity
		 FROM classes c
		 JOIN locations l ON l.id = c.location_id
		 WHERE c.starts_at > $1
		 ORDER BY c.starts_at ASC LIMIT $2`,
		now, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	classes := []DashboardUpcomingClass{}
	for rows.Next() {
		var c DashboardUpcomingClass
		if err := rows.Scan(&c.ID, &c.Title, &c.StartsAt, &c.LocationName, &c.Enrolled, &c.Capacity); err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

// DashboardRevenue sums booking value by payment state, net of refunds.
type DashboardRevenue struct {
	CollectedCents int `json:"collected_cents"`
	PendingCents   int `json:"pending_cents"`
	RefundedCents  int `json:"refunded_cents"`
}

// GetRevenue aggregates class prices over bookings.
func (r *DashboardRepository) GetRevenue(ctx context.Context) (DashboardRevenue, error) {
	var rev DashboardRevenue
	err := r.pool.QueryRow(ctx,
		`SELECT
			COALESCE(SUM(c.price_cents) FILTER (WHERE b.payment_status = $1), 0),
			COALESCE(SUM(c.price_cents) FILTER (WHERE b.payment_status = $2 AND b.status = $3), 0),
			COALESCE(SUM(b.refund_cents), 0)
		 FROM bookings b
		 JOIN classes c ON c.id = b.class_id`,
		model.PaymentCompleted, model.PaymentPending, model.BookingActive,
	).Scan(&rev.CollectedCents, &rev.PendingCents, &rev.RefundedCents)
	return rev, err
}
