package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sensoryplay/portal-backend/internal/model"
	"github.com/sensoryplay/portal-backend/internal/repository"
)

// UserStore is the persistence surface the auth and user services need.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) error
	ListPaginated(ctx context.Context, limit, offset int) ([]model.User, int, error)
}

// LocationStore persists locations.
type LocationStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Location, error)
	List(ctx context.Context) ([]model.Location, error)
	Create(ctx context.Context, l *model.Location) error
	Update(ctx context.Context, l *model.Location) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ClassStore persists classes.
type ClassStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Class, error)
	List(ctx context.Context, f model.ClassFilter) ([]model.Class, error)
	Create(ctx context.Context, c *model.Class) error
	Update(ctx context.Context, c *model.Class) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// BookingStore persists bookings and moves the enrollment counter with them.
type BookingStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]model.BookingWithClass, error)
	ListByUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]model.BookingWithClass, error)
	ListPaginated(ctx context.Context, status model.BookingStatus, limit, offset int) ([]model.BookingWithClass, int, error)
	CreateWithEnrollment(ctx context.Context, b *model.Booking) (model.Availability, error)
	CancelWithEnrollment(ctx context.Context, b *model.Booking, tier model.RefundTier, refundCents int, at time.Time) (model.Availability, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) error
}

// NewsletterStore persists the mailing list.
type NewsletterStore interface {
	Upsert(ctx context.Context, s *model.Subscriber) error
	Unsubscribe(ctx context.Context, email string) error
	ListActive(ctx context.Context, limit, offset int) ([]model.Subscriber, int, error)
}

// ContactStore persists contact form submissions.
type ContactStore interface {
	Create(ctx context.Context, m *model.ContactMessage) error
}

// SettingStore persists key-value application settings.
type SettingStore interface {
	GetAll(ctx context.Context) ([]model.AppSetting, error)
	GetByKey(ctx context.Context, key string) (*model.AppSetting, error)
	UpsertMany(ctx context.Context, settings map[string]string) error
}

// DashboardStore runs the aggregate queries behind the admin dashboard.
type DashboardStore interface {
	GetSummaryCounts(ctx context.Context, now time.Time) (repository.DashboardCounts, error)
	GetRevenue(ctx context.Context) (repository.DashboardRevenue, error)
	GetUpcomingClasses(ctx context.Context, now time.Time, limit int) ([]repository.DashboardUpcomingClass, error)
}

// SessionStore tracks live token IDs and single-use password reset tokens.
type SessionStore interface {
	Create(ctx context.Context, userID uuid.UUID, jti string, ttl time.Duration) error
	Lookup(ctx context.Context, jti string) (uuid.UUID, error)
	Revoke(ctx context.Context, userID uuid.UUID, jti string) error
	RevokeAll(ctx context.Context, userID uuid.UUID) error
	SaveResetToken(ctx context.Context, tokenHash string, userID uuid.UUID, ttl time.Duration) error
	ConsumeResetToken(ctx context.Context, tokenHash string) (uuid.UUID, error)
}

// Outbox accepts rendered email for asynchronous delivery.
type Outbox interface {
	Enqueue(ctx context.Context, msg model.EmailMessage) error
}

// AvailabilityPublisher announces enrollment changes of a class.
type AvailabilityPublisher interface {
	PublishAvailability(ctx context.Context, a model.Availability) error
}

// CatalogCache caches public catalog listings.
type CatalogCache interface {
	Get(ctx context.Context, name string, dst interface{}) (version int64, hit bool)
	Set(ctx context.Context, version int64, name string, v interface{})
	Invalidate(ctx context.Context) error
}

// SettingReader resolves a single setting value.
type SettingReader interface {
	GetSettingByKey(ctx context.Context, key string) (string, error)
}
