package request

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/servease/marketplace-api/internal/model"
	"github.com/servease/marketplace-api/internal/repository"
	"github.com/servease/marketplace-api/pkg/event"
)

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrOwnListing      = errors.New("cannot request your own service")
	ErrNotFound        = errors.New("request not found")
)

// Notifier delivers an in-app notification. Failures are the notifier's
// problem, never the caller's.
type Notifier interface {
	Notify(ctx context.Context, recipientID uuid.UUID, category, message, link string) *model.Notification
}

type Service struct {
	repo     repository.RequestRepository
	listings repository.ListingRepository
	notifier Notifier
	events   *event.Recorder
}

func NewService(repo repository.RequestRepository, listings repository.ListingRepository, notifier Notifier, events *event.Recorder) *Service {
	return &Service{
		repo:     repo,
		listings: listings,
		notifier: notifier,
		events:   events,
	}
}

// Create opens a service request against a listing and tells the listing
// owner about it.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req *model.CreateRequestRequest) (*model.Request, error) {
	listing, err := s.listings.Get(ctx, req.ListingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	if listing.UserID == userID {
		return nil, ErrOwnListing
	}

	request := &model.Request{
		ID:            uuid.New(),
		UserID:        userID,
		ListingID:     req.ListingID,
		Description:   req.Description,
		Location:      req.Location,
		PreferredDate: req.PreferredDate,
		Status:        model.RequestStatusOpen,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	s.events.Record(ctx, model.EventRequestCreated, request)
	s.notifier.Notify(ctx, listing.UserID, model.NotificationTypeRequest,
		fmt.Sprintf("You received a new request for '%s'", listing.Title),
		"/request/"+request.ID.String())

	return request, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Request, error) {
	request, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return request, nil
}

func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Request, error) {
	return s.repo.ListForUser(ctx, userID)
}
