package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sensoryplay/portal-backend/internal/model"
)

// NewsletterRepository handles mailing list data access.
type NewsletterRepository struct {
	pool *pgxpool.Pool
}

// NewNewsletterRepository creates a new NewsletterRepository.
func NewNewsletterRepository(pool *pgxpool.Pool) *NewsletterRepository {
	return &NewsletterRepository{pool: pool}
}

// Upsert subscribes an address, reviving it if it had unsubscribed.
// An existing name is kept when the new one is empty.
func (r *NewsletterRepository) Upsert(ctx context.Context, s *model.Subscriber) error {
	s.Email = strings.ToLower(s.Email)
	return r.pool.QueryRow(ctx,
		`INSERT INTO newsletter_subscribers (email, name)
		 VALUES ($1, $2)
		 ON CONFLICT (email) DO UPDATE
		 SET name = COALESCE(NULLIF(EXCLUDED.name, ''), newsletter_subscribers.name),
		     subscribed_at = CASE WHEN newsletter_subscribers.unsubscribed_at IS NULL
		                          THEN newsletter_subscribers.subscribed_at ELSE NOW() END,
		     unsubscribed_at = NULL
		 RETURNING name, subscribed_at, unsubscribed_at`,
		s.Email, s.Name,
	).Scan(&s.Name, &s.SubscribedAt, &s.UnsubscribedAt)
}

// Unsubscribe marks an address as unsubscribed. Unknown addresses are ignored.
func (r *NewsletterRepository) Unsubscribe(ctx context.Context, email string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE newsletter_subscribers SET unsubscribed_at = NOW()
		 WHERE email = $1 AND unsubscribed_at IS NULL`,
		strings.ToLower(email),
	)
	return err
}

// ListActive returns current subscribers, newest first, with the total count.
func (r *NewsletterRepository) ListActive(ctx context.Context, limit, offset int) ([]model.Subscriber, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM newsletter_subscribers WHERE unsubscribed_at IS NULL`,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT email, name, subscribed_at, unsubscribed_at
		 FROM newsletter_subscribers
		 WHERE unsubscribed_at IS NULL
		 ORDER BY subscribed_at DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	subs := []model.Subscriber{}
	for rows.Next() {
		var s model.Subscriber
		if err := rows.Scan(&s.Email, &s.Name, &s.SubscribedAt, &s.UnsubscribedAt); err != nil {
			return nil, 0, err
		}
		subs = append(subs, s)
	}
	return subs, total, rows.Err()
}
