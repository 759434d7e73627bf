package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sensoryplay/portal-backend/internal/model"
)

const bookingColumns = `b.id, b.class_id, b.user_id, b.parent_name, b.contact_email, b.contact_phone,
	b.child_name, b.child_age, b.special_needs, b.payment_status, b.status, b.refund_tier,
	b.refund_cents, b.cancelled_at, b.created_at`

const bookingWithClassSelect = `
	SELECT ` + bookingColumns + `, c.id, c.title, c.starts_at, c.price_cents, c.location_id
	FROM bookings b
	JOIN classes c ON c.id = b.class_id`

// BookingRepository handles booking data access and the enrollment counter.
type BookingRepository struct {
	pool *pgxpool.Pool
}

// NewBookingRepository creates a new BookingRepository.
func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

func scanBooking(row pgx.Row, b *model.Booking, extra ...interface{}) error {
	dest := []interface{}{
		&b.ID, &b.ClassID, &b.UserID, &b.ParentName, &b.ContactEmail, &b.ContactPhone,
		&b.ChildName, &b.ChildAge, &b.SpecialNeeds, &b.PaymentStatus, &b.Status, &b.RefundTier,
		&b.RefundCents, &b.CancelledAt, &b.CreatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

func scanBookingWithClass(row pgx.Row, bw *model.BookingWithClass) error {
	return scanBooking(row, &bw.Booking,
		&bw.Class.ID, &bw.Class.Title, &bw.Class.StartsAt, &bw.Class.PriceCents, &bw.Class.LocationID,
	)
}

// GetByID retrieves a booking regardless of status.
func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	b := &model.Booking{}
	if err := scanBooking(r.pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings b WHERE b.id = $1`, id), b); err != nil {
		return nil, translate(err)
	}
	return b, nil
}

// ListActiveByUser returns a user's live bookings, newest first.
func (r *BookingRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]model.BookingWithClass, error) {
	rows, err := r.pool.Query(ctx,
		bookingWithClassSelect+` WHERE b.user_id = $1 AND b.status = $2 ORDER BY b.created_at DESC`,
		userID, model.BookingActive,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := []model.BookingWithClass{}
	for rows.Next() {
		var bw model.BookingWithClass
		if err := scanBookingWithClass(rows, &bw); err != nil {
			return nil, err
		}
		bookings = append(bookings, bw)
	}
	return bookings, rows.Err()
}

// ListByUsers returns every booking of the given users keyed by user ID.
func (r *BookingRepository) ListByUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]model.BookingWithClass, error) {
	out := make(map[uuid.UUID][]model.BookingWithClass, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	rows, err := r.pool.Query(ctx,
		bookingWithClassSelect+` WHERE b.user_id = ANY($1) ORDER BY b.created_at DESC`, userIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var bw model.BookingWithClass
		if err := scanBookingWithClass(rows, &bw); err != nil {
			return nil, err
		}
		out[bw.UserID] = append(out[bw.UserID], bw)
	}
	return out, rows.Err()
}

// ListPaginated returns all bookings, optionally filtered by status, newest first.
func (r *BookingRepository) ListPaginated(ctx context.Context, status model.BookingStatus, limit, offset int) ([]model.BookingWithClass, int, error) {
	where := ""
	args := []interface{}{}
	if status != "" {
		where = ` WHERE b.status = $1`
		args = append(args, status)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM bookings b`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := bookingWithClassSelect + where + ` ORDER BY b.created_at DESC`
	if status != "" {
		query += ` LIMIT $2 OFFSET $3`
	} else {
		query += ` LIMIT $1 OFFSET $2`
	}
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	bookings := []model.BookingWithClass{}
	for rows.Next() {
		var bw model.BookingWithClass
		if err := scanBookingWithClass(rows, &bw); err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, bw)
	}
	return bookings, total, rows.Err()
}

// CreateWithEnrollment takes a seat with increment_enrollment and inserts the
// booking in the same transaction. ErrClassFull rolls both back.
func (r *BookingRepository) CreateWithEnrollment(ctx context.Context, b *model.Booking) (model.Availability, error) {
	var avail model.Availability

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var seated bool
		if err := tx.QueryRow(ctx, `SELECT increment_enrollment($1)`, b.ClassID).Scan(&seated); err != nil {
			return err
		}
		if !seated {
			return ErrClassFull
		}

		if err := tx.QueryRow(ctx,
			`INSERT INTO bookings (class_id, user_id, parent_name, contact_email, contact_phone,
			                       child_name, child_age, special_needs, payment_status, status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			 RETURNING id, created_at`,
			b.ClassID, b.UserID, b.ParentName, b.ContactEmail, b.ContactPhone,
			b.ChildName, b.ChildAge, b.SpecialNeeds, b.PaymentStatus, b.Status,
		).Scan(&b.ID, &b.CreatedAt); err != nil {
			return err
		}

		return scanAvailability(ctx, tx, b.ClassID, &avail)
	})
	if err != nil {
		return model.Availability{}, translate(err)
	}
	return avail, nil
}

// CancelWithEnrollment marks an active booking cancelled and releases its seat
// with decrement_enrollment in one transaction. A booking that is not active
// yields ErrNotFound.
func (r *BookingRepository) CancelWithEnrollment(ctx context.Context, b *model.Booking, tier model.RefundTier, refundCents int, at time.Time) (model.Availability, error) {
	var avail model.Availability

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE bookings
			 SET status = $1, refund_tier = $2, refund_cents = $3, cancelled_at = $4
			 WHERE id = $5 AND status = $6`,
			model.BookingCancelled, tier, refundCents, at, b.ID, model.BookingActive,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}

		if _, err := tx.Exec(ctx, `SELECT decrement_enrollment($1)`, b.ClassID); err != nil {
			return err
		}

		return scanAvailability(ctx, tx, b.ClassID, &avail)
	})
	if err != nil {
		return model.Availability{}, translate(err)
	}

	b.Status = model.BookingCancelled
	b.RefundTier = tier
	b.RefundCents = refundCents
	b.CancelledAt = &at
	return avail, nil
}

// UpdatePaymentStatus sets the payment status of a booking.
func (r *BookingRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE bookings SET payment_status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAvailability(ctx context.Context, tx pgx.Tx, classID uuid.UUID, avail *model.Availability) error {
	var enrolled, capacity int
	if err := tx.QueryRow(ctx,
		`SELECT enrolled, capacity FROM classes WHERE id = $1`, classID,
	).Scan(&enrolled, &capacity); err != nil {
		return err
	}
	*avail = model.NewAvailability(classID, enrolled, capacity)
	return nil
}
