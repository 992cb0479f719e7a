package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/servease/marketplace-api/internal/model"
	"github.com/servease/marketplace-api/internal/repository"
)

type reviewRepository struct {
	*BaseRepository
}

func NewReviewRepository(base *BaseRepository) repository.ReviewRepository {
	return &reviewRepository{BaseRepository: base}
}

func (r *reviewRepository) Create(ctx context.Context, review *model.Review) error {
	query := `
		INSERT INTO reviews (
			id, booking_id, reviewer_id, reviewee_id, rating, comment, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	review.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		review.ID,
		review.BookingID,
		review.ReviewerID,
		review.RevieweeID,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *reviewRepository) ExistsForBooking(ctx context.Context, bookingID, reviewerID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM reviews WHERE booking_id = $1 AND reviewer_id = $2)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, bookingID, reviewerID); err != nil {
		return false, fmt.Errorf("failed to check review existence: %w", err)
	}
	return exists, nil
}
