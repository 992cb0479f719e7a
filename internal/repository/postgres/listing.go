package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/servease/marketplace-api/internal/model"
	"github.com/servease/marketplace-api/internal/repository"
)

type listingRepository struct {
	*BaseRepository
}

func NewListingRepository(base *BaseRepository) repository.ListingRepository {
	return &listingRepository{BaseRepository: base}
}

func (r *listingRepository) Create(ctx context.Context, listing *model.Listing) error {
	query := `
		INSERT INTO listings (
			id, user_id, title, description, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`
	listing.CreatedAt = time.Now()
	listing.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		listing.ID,
		listing.UserID,
		listing.Title,
		listing.Description,
		listing.CreatedAt,
		listing.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}
	return nil
}

func (r *listingRepository) Get(ctx context.Context, id uuid.UUID) (*model.Listing, error) {
	query := `
		SELECT id, user_id, title, description, created_at, updated_at
		FROM listings
		WHERE id = $1
	`
	var listing model.Listing
	if err := r.db.GetContext(ctx, &listing, query, id); err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return &listing, nil
}

func (r *listingRepository) GetOwned(ctx context.Context, id, userID uuid.UUID) (*model.Listing, error) {
	query := `
		SELECT id, user_id, title, description, created_at, updated_at
		FROM listings
		WHERE id = $1 AND user_id = $2
	`
	var listing model.Listing
	if err := r.db.GetContext(ctx, &listing, query, id, userID); err != nil {
		return nil, fmt.Errorf("failed to get owned listing: %w", err)
	}
	return &listing, nil
}

func (r *listingRepository) List(ctx context.Context) ([]*model.Listing, error) {
	query := `
		SELECT id, user_id, title, description, created_at, updated_at
		FROM listings
		ORDER BY created_at DESC
	`
	var listings []*model.Listing
	if err := r.db.SelectContext(ctx, &listings, query); err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	return listings, nil
}
