package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/servease/marketplace-api/internal/model"
	"github.com/servease/marketplace-api/internal/repository"
)

type quoteRepository struct {
	*BaseRepository
}

func NewQuoteRepository(base *BaseRepository) repository.QuoteRepository {
	return &quoteRepository{BaseRepository: base}
}

func (r *quoteRepository) Create(ctx context.Context, quote *model.Quote) error {
	query := `
		INSERT INTO quotes (
			id, provider_id, request_id, listing_id, price, message, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	quote.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		quote.ID,
		quote.ProviderID,
		quote.RequestID,
		quote.ListingID,
		quote.Price,
		quote.Message,
		quote.Status,
		quote.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create quote: %w", err)
	}
	return nil
}

func (r *quoteRepository) Get(ctx context.Context, id uuid.UUID) (*model.Quote, error) {
	query := `
		SELECT id, provider_id, request_id, listing_id, price, message, status, created_at
		FROM quotes
		WHERE id = $1
	`
	var quote model.Quote
	if err := r.db.GetContext(ctx, &quote, query, id); err != nil {
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	return &quote, nil
}

func (r *quoteRepository) ListForRequest(ctx context.Context, requestID uuid.UUID) ([]*model.Quote, error) {
	query := `
		SELECT id, provider_id, request_id, listing_id, price, message, status, created_at
		FROM quotes
		WHERE request_id = $1
		ORDER BY created_at DESC
	`
	var quotes []*model.Quote
	if err := r.db.SelectContext(ctx, &quotes, query, requestID); err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	return quotes, nil
}

func (r *quoteRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.QuoteStatus) error {
	query := `UPDATE quotes SET status = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update quote status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("quote not found")
	}
	return nil
}
