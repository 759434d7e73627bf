package repository

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sensoryplay/portal-backend/internal/model"
)

const classSelect = `
	SELECT c.id, c.title, c.description, c.starts_at, c.duration_minutes, c.capacity, c.enrolled,
	       c.price_cents, c.location_id, l.name, c.age_group, c.skills, c.image_url, c.created_at, c.updated_at
	FROM classes c
	JOIN locations l ON l.id = c.location_id`

// ClassRepository handles class data access.
type ClassRepository struct {
	pool *pgxpool.Pool
}

// NewClassRepository creates a new ClassRepository.
func NewClassRepository(pool *pgxpool.Pool) *ClassRepository {
	return &ClassRepository{pool: pool}
}

func scanClass(row pgx.Row, c *model.Class) error {
	return row.Scan(
		&c.ID, &c.Title, &c.Description, &c.StartsAt, &c.DurationMinutes, &c.Capacity, &c.Enrolled,
		&c.PriceCents, &c.LocationID, &c.LocationName, &c.AgeGroup, &c.Skills, &c.ImageURL, &c.CreatedAt, &c.UpdatedAt,
	)
}

// GetByID retrieves a class with its location name.
func (r *ClassRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Class, error) {
	c := &model.Class{}
	if err := scanClass(r.pool.QueryRow(ctx, classSelect+` WHERE c.id = $1`, id), c); err != nil {
		return nil, translate(err)
	}
	return c, nil
}

// List retrieves classes matching the filter ordered by start time.
func (r *ClassRepository) List(ctx context.Context, f model.ClassFilter) ([]model.Class, error) {
	var (
		conds []string
		args  []interface{}
	)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}

	if f.LocationID != nil {
		add("c.location_id = ?", *f.LocationID)
	}
	if f.AgeGroup != "" {
		add("c.age_group = ?", f.AgeGroup)
	}
	if f.From != nil {
		add("c.starts_at >= ?", *f.From)
	}
	if f.To != nil {
		add("c.starts_at < ?", *f.To)
	}
	if f.UpcomingOnly {
		add("c.starts_at > ?", f.Now)
	}

	query := classSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY c.starts_at, c.title"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	classes := []model.Class{}
	for rows.Next() {
		var c model.Class
		if err := scanClass(rows, &c); err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

// Create inserts a new class with zero enrollment.
func (r *ClassRepository) Create(ctx context.Context, c *model.Class) error {
	if c.Skills == nil {
		c.Skills = []string{}
	}
	return translate(r.pool.QueryRow(ctx,
		`INSERT INTO classes (title, description, starts_at, duration_minutes, capacity, price_cents,
		                      location_id, age_group, skills, image_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, enrolled, created_at, updated_at`,
		c.Title, c.Description, c.StartsAt, c.DurationMinutes, c.Capacity, c.PriceCents,
		c.LocationID, c.AgeGroup, c.Skills, c.ImageURL,
	).Scan(&c.ID, &c.Enrolled, &c.CreatedAt, &c.UpdatedAt))
}

// Update modifies an existing class. The enrollment counter is left untouched.
func (r *ClassRepository) Update(ctx context.Context, c *model.Class) error {
	if c.Skills == nil {
		c.Skills = []string{}
	}
	return translate(r.pool.QueryRow(ctx,
		`UPDATE classes
		 SET title = $1, description = $2, starts_at = $3, duration_minutes = $4, capacity = $5,
		     price_cents = $6, location_id = $7, age_group = $8, skills = $9, image_url = $10, updated_at = NOW()
		 WHERE id = $11
		 RETURNING enrolled, created_at, updated_at`,
		c.Title, c.Description, c.StartsAt, c.DurationMinutes, c.Capacity,
		c.PriceCents, c.LocationID, c.AgeGroup, c.Skills, c.ImageURL, c.ID,
	).Scan(&c.Enrolled, &c.CreatedAt, &c.UpdatedAt))
}

// Delete removes a class. Classes with bookings yield ErrInUse.
func (r *ClassRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM classes WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
