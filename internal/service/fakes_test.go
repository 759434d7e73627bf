package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sensoryplay/portal-backend/internal/model"
	"github.com/sensoryplay/portal-backend/internal/repository"
)

type fakeUsers struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]*model.User
	order []uuid.UUID
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[uuid.UUID]*model.User{}}
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u.Email = strings.ToLower(u.Email)
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	f.byID[u.ID] = &cp
	f.order = append(f.order, u.ID)
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUsers) UpdateRole(_ context.Context, id uuid.UUID, role model.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Role = role
	return nil
}

func (f *fakeUsers) ListPaginated(_ context.Context, limit, offset int) ([]model.User, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.User{}
	for i := len(f.order) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, *f.byID[f.order[i]])
	}
	return out, len(f.order), nil
}

type fakeSessions struct {
	mu     sync.Mutex
	owners map[string]uuid.UUID
	resets map[string]uuid.UUID
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{owners: map[string]uuid.UUID{}, resets: map[string]uuid.UUID{}}
}

func (f *fakeSessions) Create(_ context.Context, userID uuid.UUID, jti string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.owners[jti] = userID
	return nil
}

func (f *fakeSessions) Lookup(_ context.Context, jti string) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.owners[jti]
	if !ok {
		return uuid.Nil, ErrSessionNotFound
	}
	return id, nil
}

func (f *fakeSessions) Revoke(_ context.Context, _ uuid.UUID, jti string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.owners, jti)
	return nil
}

func (f *fakeSessions) RevokeAll(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for jti, owner := range f.owners {
		if owner == userID {
			delete(f.owners, jti)
		}
	}
	return nil
}

func (f *fakeSessions) SaveResetToken(_ context.Context, hash string, userID uuid.UUID, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets[hash] = userID
	return nil
}

func (f *fakeSessions) ConsumeResetToken(_ context.Context, hash string) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.resets[hash]
	if !ok {
		return uuid.Nil, ErrResetTokenInvalid
	}
	delete(f.resets, hash)
	return id, nil
}

type fakeLocations struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*model.Location
	used map[uuid.UUID]bool
}

func newFakeLocations() *fakeLocations {
	return &fakeLocations{byID: map[uuid.UUID]*model.Location{}, used: map[uuid.UUID]bool{}}
}

func (f *fakeLocations) add(name string) *model.Location {
	f.mu.Lock()
	defer f.mu.Unlock()
	l := &model.Location{ID: uuid.New(), Name: name, City: "Austin", State: "TX"}
	f.byID[l.ID] = l
	return l
}

func (f *fakeLocations) GetByID(_ context.Context, id uuid.UUID) (*model.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *fakeLocations) List(context.Context) ([]model.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Location{}
	for _, l := range f.byID {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeLocations) Create(_ context.Context, l *model.Location) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l.ID = uuid.New()
	cp := *l
	f.byID[l.ID] = &cp
	return nil
}

func (f *fakeLocations) Update(_ context.Context, l *model.Location) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[l.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *l
	f.byID[l.ID] = &cp
	return nil
}

func (f *fakeLocations) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	if f.used[id] {
		return repository.ErrInUse
	}
	delete(f.byID, id)
	return nil
}

// fakeClasses doubles as the enrollment counter behind fakeBookings.
type fakeClasses struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*model.Class
}

func newFakeClasses() *fakeClasses {
	return &fakeClasses{byID: map[uuid.UUID]*model.Class{}}
}

func (f *fakeClasses) add(c model.Class) *model.Class {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	f.byID[c.ID] = &c
	return &c
}

func (f *fakeClasses) enrolled(id uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id].Enrolled
}

func (f *fakeClasses) GetByID(_ context.Context, id uuid.UUID) (*model.Class, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeClasses) List(_ context.Context, flt model.ClassFilter) ([]model.Class, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Class{}
	for _, c := range f.byID {
		if flt.LocationID != nil && c.LocationID != *flt.LocationID {
			continue
		}
		if flt.AgeGroup != "" && c.AgeGroup != flt.AgeGroup {
			continue
		}
		if flt.From != nil && c.StartsAt.Before(*flt.From) {
			continue
		}
		if flt.To != nil && !c.StartsAt.Before(*flt.To) {
			continue
		}
		if flt.UpcomingOnly && !c.StartsAt.After(flt.Now) {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (f *fakeClasses) Create(_ context.Context, c *model.Class) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = uuid.New()
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeClasses) Update(_ context.Context, c *model.Class) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.byID[c.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if c.Capacity < existing.Enrolled {
		return repository.ErrCheck
	}
	c.Enrolled = existing.Enrolled
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeClasses) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	if c.Enrolled > 0 {
		return repository.ErrInUse
	}
	delete(f.byID, id)
	return nil
}

// increment mirrors increment_enrollment.
func (f *fakeClasses) increment(id uuid.UUID) (model.Availability, bool) {
	c := f.byID[id]
	if c.Enrolled >= c.Capacity {
		return model.Availability{}, false
	}
	c.Enrolled++
	return model.NewAvailability(id, c.Enrolled, c.Capacity), true
}

// decrement mirrors decrement_enrollment.
func (f *fakeClasses) decrement(id uuid.UUID) model.Availability {
	c := f.byID[id]
	if c.Enrolled > 0 {
		c.Enrolled--
	}
	return model.NewAvailability(id, c.Enrolled, c.Capacity)
}

type fakeBookings struct {
	classes *fakeClasses
	byID    map[uuid.UUID]*model.Booking
	order   []uuid.UUID
}

func newFakeBookings(classes *fakeClasses) *fakeBookings {
	return &fakeBookings{classes: classes, byID: map[uuid.UUID]*model.Booking{}}
}

func (f *fakeBookings) count() int {
	f.classes.mu.Lock()
	defer f.classes.mu.Unlock()
	return len(f.byID)
}

func (f *fakeBookings) withClass(b *model.Booking) model.BookingWithClass {
	c := f.classes.byID[b.ClassID]
	return model.BookingWithClass{
		Booking: *b,
		Class:   model.ClassSummary{ID: c.ID, Title: c.Title, StartsAt: c.StartsAt, PriceCents: c.PriceCents, LocationID: c.LocationID},
	}
}

func (f *fakeBookings) GetByID(_ context.Context, id uuid.UUID) (*model.Booking, error) {
	f.classes.mu.Lock()
	defer f.classes.mu.Unlock()
	b, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookings) ListActiveByUser(_ context.Context, userID uuid.UUID) ([]model.BookingWithClass, error) {
	f.classes.mu.Lock()
	defer f.classes.mu.Unlock()
	out := []model.BookingWithClass{}
	for i := len(f.order) - 1; i >= 0; i-- {
		b := f.byID[f.order[i]]
		if b.UserID == userID && b.Status == model.BookingActive {
			out = append(out, f.withClass(b))
		}
	}
	return out, nil
}

func (f *fakeBookings) ListByUsers(_ context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]model.BookingWithClass, error) {
	f.classes.mu.Lock()
	defer f.classes.mu.Unlock()
	want := map[uuid.UUID]bool{}
	for _, id := range userIDs {
		want[id] = true
	}
	out := map[uuid.UUID][]model.BookingWithClass{}
	for _, id := range f.order {
		b := f.byID[id]
		if want[b.UserID] {
			out[b.UserID] = append(out[b.UserID], f.withClass(b))
		}
	}
	return out, nil
}

func (f *fakeBookings) ListPaginated(_ context.Context, status model.BookingStatus, limit, offset int) ([]model.BookingWithClass, int, error) {
	f.classes.mu.Lock()
	defer f.classes.mu.Unlock()
	all := []model.BookingWithClass{}
	for _, id := range f.order {
		b := f.byID[id]
		if status == "" || b.Status == status {
			all = append(all, f.withClass(b))
		}
	}
	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (f *fakeBookings) CreateWithEnrollment(_ context.Context, b *model.Booking) (model.Availability, error) {
	f.classes.mu.Lock()
	defer f.classes.mu.Unlock()
	if _, ok := f.classes.byID[b.ClassID]; !ok {
		return model.Availability{}, repository.ErrInUse
	}
	avail, ok := f.classes.increment(b.ClassID)
	if !ok {
		return model.Availability{}, repository.ErrClassFull
	}
	b.ID = uuid.New()
	b.CreatedAt = time.Now()
	cp := *b
	f.byID[b.ID] = &cp
	f.order = append(f.order, b.ID)
	return avail, nil
}

func (f *fakeBookings) CancelWithEnrollment(_ context.Context, b *model.Booking, tier model.RefundTier, cents int, at time.Time) (model.Availability, error) {
	f.classes.mu.Lock()
	defer f.classes.mu.Unlock()
	stored, ok := f.byID[b.ID]
	if !ok || stored.Status != model.BookingActive {
		return model.Availability{}, repository.ErrNotFound
	}
	stored.Status = model.BookingCancelled
	stored.RefundTier = tier
	stored.RefundCents = cents
	stored.CancelledAt = &at
	*b = *stored
	return f.classes.decrement(b.ClassID), nil
}

func (f *fakeBookings) UpdatePaymentStatus(_ context.Context, id uuid.UUID, status model.PaymentStatus) error {
	f.classes.mu.Lock()
	defer f.classes.mu.Unlock()
	b, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	b.PaymentStatus = status
	return nil
}

type fakeBookingNotifier struct {
	mu        sync.Mutex
	confirmed []uuid.UUID
	cancelled []model.Cancellation
	err       error
}

func (f *fakeBookingNotifier) BookingConfirmed(_ context.Context, b *model.Booking, _ *model.Class) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmed = append(f.confirmed, b.ID)
	return f.err
}

func (f *fakeBookingNotifier) BookingCancelled(_ context.Context, _ *model.Booking, _ *model.Class, c model.Cancellation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, c)
	return f.err
}

type fakePublisher struct {
	mu     sync.Mutex
	events []model.Availability
}

func (f *fakePublisher) PublishAvailability(_ context.Context, a model.Availability) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, a)
	return nil
}

type fakeOutbox struct {
	mu   sync.Mutex
	sent []model.EmailMessage
	err  error
}

func (f *fakeOutbox) Enqueue(_ context.Context, msg model.EmailMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeSettingReader map[string]string

func (f fakeSettingReader) GetSettingByKey(_ context.Context, key string) (string, error) {
	v, ok := f[key]
	if !ok {
		return "", ErrSettingNotFound
	}
	return v, nil
}

// countingCache keeps entries per version like the Redis cache and records
// invalidations.
type countingCache struct {
	mu          sync.Mutex
	version     int64
	entries     map[string]interface{}
	invalidated int
}

func newCountingCache() *countingCache {
	return &countingCache{entries: map[string]interface{}{}}
}

func (c *countingCache) key(version int64, name string) string {
	return fmt.Sprintf("v%d:%s", version, name)
}

func (c *countingCache) Get(_ context.Context, name string, dst interface{}) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[c.key(c.version, name)]
	if !ok {
		return c.version, false
	}
	switch d := dst.(type) {
	case *[]model.Class:
		*d = v.([]model.Class)
	case *[]model.Location:
		*d = v.([]model.Location)
	default:
		return c.version, false
	}
	return c.version, true
}

func (c *countingCache) Set(_ context.Context, version int64, name string, v interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[c.key(version, name)] = v
}

func (c *countingCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version++
	c.invalidated++
	return nil
}
