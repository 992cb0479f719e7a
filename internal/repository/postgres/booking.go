package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/servease/marketplace-api/internal/model"
	"github.com/servease/marketplace-api/internal/repository"
)

type bookingRepository struct {
	*BaseRepository
}

func NewBookingRepository(base *BaseRepository) repository.BookingRepository {
	return &bookingRepository{BaseRepository: base}
}

func (r *bookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (
			id, quote_id, customer_id, provider_id, listing_id,
			scheduled_time, status, has_review, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		booking.ID,
		booking.QuoteID,
		booking.CustomerID,
		booking.ProviderID,
		booking.ListingID,
		booking.ScheduledTime,
		booking.Status,
		booking.HasReview,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *bookingRepository) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	query := `
		SELECT id, quote_id, customer_id, provider_id, listing_id,
			   scheduled_time, status, has_review, created_at, updated_at
		FROM bookings
		WHERE id = $1
	`
	var booking model.Booking
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

func (r *bookingRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Booking, error) {
	query := `
		SELECT id, quote_id, customer_id, provider_id, listing_id,
			   scheduled_time, status, has_review, created_at, updated_at
		FROM bookings
		WHERE customer_id = $1 OR provider_id = $1
		ORDER BY scheduled_time DESC
	`
	var bookings []*model.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus) error {
	query := `UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("booking not found")
	}
	return nil
}

func (r *bookingRepository) SetHasReview(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE bookings SET has_review = TRUE, updated_at = $1 WHERE id = $2`

	if _, err := r.db.ExecContext(ctx, query, time.Now(), id); err != nil {
		return fmt.Errorf("failed to flag booking review: %w", err)
	}
	return nil
}
