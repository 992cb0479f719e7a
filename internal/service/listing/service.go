package listing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/servease/marketplace-api/internal/model"
	"github.com/servease/marketplace-api/internal/repository"
)

var ErrNotFound = errors.New("listing not found")

type Service struct {
	repo repository.ListingRepository
}

func NewService(repo repository.ListingRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, req *model.CreateListingRequest) (*model.Listing, error) {
	now := time.Now().UTC()
	listing := &model.Listing{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}
	return listing, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Listing, error) {
	listing, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return listing, nil
}

func (s *Service) List(ctx context.Context) ([]*model.Listing, error) {
	return s.repo.List(ctx)
}
