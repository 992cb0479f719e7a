package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/servease/marketplace-api/internal/model"
	"github.com/servease/marketplace-api/internal/repository"
)

type requestRepository struct {
	*BaseRepository
}

func NewRequestRepository(base *BaseRepository) repository.RequestRepository {
	return &requestRepository{BaseRepository: base}
}

func (r *requestRepository) Create(ctx context.Context, request *model.Request) error {
	query := `
		INSERT INTO requests (
			id, user_id, listing_id, description, location,
			preferred_date, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	request.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		request.ID,
		request.UserID,
		request.ListingID,
		request.Description,
		request.Location,
		request.PreferredDate,
		request.Status,
		request.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return nil
}

func (r *requestRepository) Get(ctx context.Context, id uuid.UUID) (*model.Request, error) {
	query := `
		SELECT id, user_id, listing_id, description, location,
			   preferred_date, status, created_at
		FROM requests
		WHERE id = $1
	`
	var request model.Request
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return &request, nil
}

func (r *requestRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Request, error) {
	query := `
		SELECT id, user_id, listing_id, description, location,
			   preferred_date, status, created_at
		FROM requests
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	var requests []*model.Request
	if err := r.db.SelectContext(ctx, &requests, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return requests, nil
}

func (r *requestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.RequestStatus) error {
	query := `UPDATE requests SET status = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update request status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("request not found")
	}
	return nil
}
