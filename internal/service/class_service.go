package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sensoryplay/portal-backend/internal/model"
	"github.com/sensoryplay/portal-backend/internal/repository"
)

// Catalog errors.
var (
	ErrClassNotFound         = errors.New("class not found")
	ErrLocationNotFound      = errors.New("location not found")
	ErrCapacityBelowEnrolled = errors.New("capacity is below the enrolled count")
	ErrDependencyExists      = errors.New("record still has bookings or classes")
	ErrInvalidDateRange      = errors.New("from date is after to date")
	ErrInvalidSchedule       = errors.New("invalid class date or time")
)

const dateLayout = "2006-01-02"

// ClassService handles class business logic.
type ClassService struct {
	classes   ClassStore
	locations LocationStore
	cache     CatalogCache
	tz        *time.Location
	now       func() time.Time
	log       zerolog.Logger
}

// NewClassService creates a new ClassService. tz is the zone admins enter class times in.
func NewClassService(classes ClassStore, locations LocationStore, cache CatalogCache, tz *time.Location, log zerolog.Logger) *ClassService {
	return &ClassService{
		classes:   classes,
		locations: locations,
		cache:     cache,
		tz:        tz,
		now:       time.Now,
		log:       log.With().Str("component", "class_service").Logger(),
	}
}

// filterFromQuery converts query string values into a repository filter.
// The to date is inclusive.
func (s *ClassService) filterFromQuery(q model.ClassQuery) (model.ClassFilter, error) {
	f := model.ClassFilter{AgeGroup: q.AgeGroup, UpcomingOnly: q.UpcomingOnly, Now: s.now()}

	if q.LocationID != "" {
		id, err := uuid.Parse(q.LocationID)
		if err != nil {
			return f, ErrLocationNotFound
		}
		f.LocationID = &id
	}
	if q.From != "" {
		from, err := time.ParseInLocation(dateLayout, q.From, s.tz)
		if err != nil {
			return f, ErrInvalidDateRange
		}
		f.From = &from
	}
	if q.To != "" {
		to, err := time.ParseInLocation(dateLayout, q.To, s.tz)
		if err != nil {
			return f, ErrInvalidDateRange
		}
		to = to.AddDate(0, 0, 1)
		f.To = &to
	}
	if f.From != nil && f.To != nil && !f.From.Before(*f.To) {
		return f, ErrInvalidDateRange
	}
	return f, nil
}

func cacheName(q model.ClassQuery) string {
	v := url.Values{}
	v.Set("location_id", q.LocationID)
	v.Set("age_group", q.AgeGroup)
	v.Set("from", q.From)
	v.Set("to", q.To)
	return "classes?" + v.Encode()
}

// List returns classes matching the query ordered by start time.
func (s *ClassService) List(ctx context.Context, q model.ClassQuery) ([]model.ClassView, error) {
	f, err := s.filterFromQuery(q)
	if err != nil {
		return nil, err
	}

	// Cached entries ignore upcoming_only; it is applied against the clock below.
	name := cacheName(q)
	var classes []model.Class
	version, hit := s.cache.Get(ctx, name, &classes)
	if !hit {
		unbounded := f
		unbounded.UpcomingOnly = false
		classes, err = s.classes.List(ctx, unbounded)
		if err != nil {
			return nil, err
		}
		s.cache.Set(ctx, version, name, classes)
	}

	views := make([]model.ClassView, 0, len(classes))
	for _, c := range classes {
		if f.UpcomingOnly && c.HasStarted(f.Now) {
			continue
		}
		views = append(views, model.NewClassView(c))
	}
	return views, nil
}

// Get returns a single class with its derived fields.
func (s *ClassService) Get(ctx context.Context, id uuid.UUID) (*model.ClassView, error) {
	c, err := s.classes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	view := model.NewClassView(*c)
	return &view, nil
}

// StartTime combines a wall-clock date and time in the class timezone.
func (s *ClassService) StartTime(date, clock string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout+" 15:04", date+" "+clock, s.tz)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	return t, nil
}

func (s *ClassService) fromRequest(ctx context.Context, req model.ClassRequest, c *model.Class) error {
	startsAt, err := s.StartTime(req.Date, req.Time)
	if err != nil {
		return err
	}
	locationID, err := uuid.Parse(req.LocationID)
	if err != nil {
		return ErrLocationNotFound
	}
	loc, err := s.locations.GetByID(ctx, locationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrLocationNotFound
		}
		return err
	}

	c.Title = req.Title
	c.Description = req.Description
	c.StartsAt = startsAt
	c.DurationMinutes = req.DurationMinutes
	c.Capacity = req.Capacity
	c.PriceCents = req.PriceCents
	c.LocationID = loc.ID
	c.LocationName = loc.Name
	c.AgeGroup = req.AgeGroup
	c.Skills = req.Skills
	c.ImageURL = req.ImageURL
	return nil
}

// Create adds a class to the catalog.
func (s *ClassService) Create(ctx context.Context, req model.ClassRequest) (*model.Class, error) {
	c := &model.Class{}
	if err := s.fromRequest(ctx, req, c); err != nil {
		return nil, err
	}
	if err := s.classes.Create(ctx, c); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.log.Info().Str("class_id", c.ID.String()).Str("title", c.Title).Msg("class created")
	return c, nil
}

// Update rewrites a class. Capacity may not drop below the seats already taken.
func (s *ClassService) Update(ctx context.Context, id uuid.UUID, req model.ClassRequest) (*model.Class, error) {
	c, err := s.classes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	if req.Capacity < c.Enrolled {
		return nil, ErrCapacityBelowEnrolled
	}
	if err := s.fromRequest(ctx, req, c); err != nil {
		return nil, err
	}

	if err := s.classes.Update(ctx, c); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrClassNotFound
		case errors.Is(err, repository.ErrCheck):
			return nil, ErrCapacityBelowEnrolled
		}
		return nil, err
	}
	s.invalidate(ctx)
	return c, nil
}

// Delete removes a class that has no bookings.
func (s *ClassService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.classes.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return ErrClassNotFound
		case errors.Is(err, repository.ErrInUse):
			return ErrDependencyExists
		}
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *ClassService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("catalog cache invalidation failed")
	}
}
