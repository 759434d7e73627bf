package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sensoryplay/portal-backend/internal/model"
)

// LocationRepository handles location data access.
type LocationRepository struct {
	pool *pgxpool.Pool
}

// NewLocationRepository creates a new LocationRepository.
func NewLocationRepository(pool *pgxpool.Pool) *LocationRepository {
	return &LocationRepository{pool: pool}
}

// GetByID retrieves a location by its ID.
func (r *LocationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Location, error) {
	l := &model.Location{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, address, city, state, zip, image_url, created_at, updated_at
		 FROM locations WHERE id = $1`, id,
	).Scan(&l.ID, &l.Name, &l.Address, &l.City, &l.State, &l.Zip, &l.ImageURL, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return l, nil
}

// List retrieves all locations ordered by name.
func (r *LocationRepository) List(ctx context.Context) ([]model.Location, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, address, city, state, zip, image_url, created_at, updated_at
		 FROM locations ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locations := []model.Location{}
	for rows.Next() {
		var l model.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Address, &l.City, &l.State, &l.Zip, &l.ImageURL, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

// Create inserts a new location.
func (r *LocationRepository) Create(ctx context.Context, l *model.Location) error {
	return translate(r.pool.QueryRow(ctx,
		`INSERT INTO locations (name, address, city, state, zip, image_url)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		l.Name, l.Address, l.City, l.State, l.Zip, l.ImageURL,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt))
}

// Update modifies an existing location.
func (r *LocationRepository) Update(ctx context.Context, l *model.Location) error {
	return translate(r.pool.QueryRow(ctx,
		`UPDATE locations
		 SET name = $1, address = $2, city = $3, state = $4, zip = $5, image_url = $6, updated_at = NOW()
		 WHERE id = $7
		 RETURNING created_at, updated_at`,
		l.Name, l.Address, l.City, l.State, l.Zip, l.ImageURL, l.ID,
	).Scan(&l.CreatedAt, &l.UpdatedAt))
}

// Delete removes a location. Locations with classes yield ErrInUse.
func (r *LocationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
