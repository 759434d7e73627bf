package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sensoryplay/portal-backend/internal/model"
)

// ContactRepository stores contact form submissions.
type ContactRepository struct {
	pool *pgxpool.Pool
}

// NewContactRepository creates a new ContactRepository.
func NewContactRepository(pool *pgxpool.Pool) *ContactRepository {
	return &ContactRepository{pool: pool}
}

// Create inserts a contact message.
func (r *ContactRepository) Create(ctx context.Context, m *model.ContactMessage) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO contact_messages (name, email, subject, message)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		m.Name, m.Email, m.Subject, m.Message,
	).Scan(&m.ID, &m.CreatedAt)
}
