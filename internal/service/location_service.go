package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sensoryplay/portal-backend/internal/model"
	"github.com/sensoryplay/portal-backend/internal/repository"
)

// LocationService handles location business logic.
type LocationService struct {
	locations LocationStore
	classes   ClassStore
	cache     CatalogCache
	now       func() time.Time
	log       zerolog.Logger
}

// NewLocationService creates a new LocationService.
func NewLocationService(locations LocationStore, classes ClassStore, cache CatalogCache, log zerolog.Logger) *LocationService {
	return &LocationService{
		locations: locations,
		classes:   classes,
		cache:     cache,
		now:       time.Now,
		log:       log.With().Str("component", "location_service").Logger(),
	}
}

// List returns all locations ordered by name.
func (s *LocationService) List(ctx context.Context) ([]model.Location, error) {
	var locations []model.Location
	version, hit := s.cache.Get(ctx, "locations", &locations)
	if hit {
		return locations, nil
	}

	locations, err := s.locations.List(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, version, "locations", locations)
	return locations, nil
}

// Get returns a location together with its upcoming classes.
func (s *LocationService) Get(ctx context.Context, id uuid.UUID) (*model.LocationDetail, error) {
	loc, err := s.locations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}

	classes, err := s.classes.List(ctx, model.ClassFilter{LocationID: &id, UpcomingOnly: true, Now: s.now()})
	if err != nil {
		return nil, err
	}
	return &model.LocationDetail{Location: *loc, UpcomingClasses: classes}, nil
}

func applyLocation(l *model.Location, req model.LocationRequest) {
	l.Name = req.Name
	l.Address = req.Address
	l.City = req.City
	l.State = req.State
	l.Zip = req.Zip
	l.ImageURL = req.ImageURL
}

// Create adds a location.
func (s *LocationService) Create(ctx context.Context, req model.LocationRequest) (*model.Location, error) {
	l := &model.Location{}
	applyLocation(l, req)
	if err := s.locations.Create(ctx, l); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.log.Info().Str("location_id", l.ID.String()).Str("name", l.Name).Msg("location created")
	return l, nil
}

// Update rewrites a location.
func (s *LocationService) Update(ctx context.Context, id uuid.UUID, req model.LocationRequest) (*model.Location, error) {
	l := &model.Location{ID: id}
	applyLocation(l, req)
	if err := s.locations.Update(ctx, l); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}
	s.invalidate(ctx)
	return l, nil
}

// Delete removes a location that hosts no classes.
func (s *LocationService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.locations.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return ErrLocationNotFound
		case errors.Is(err, repository.ErrInUse):
			return ErrDependencyExists
		}
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *LocationService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("catalog cache invalidation failed")
	}
}
