package quote

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/servease/marketplace-api/internal/model"
	"github.com/servease/marketplace-api/internal/repository"
	"github.com/servease/marketplace-api/pkg/event"
)

var (
	ErrRequestNotFound = errors.New("request not found")
	ErrListingNotOwned = errors.New("listing not found or not owned by user")
	ErrNotFound        = errors.New("quote not found")
	ErrNotRequestOwner = errors.New("only the request owner can decide on a quote")
	ErrRequestClosed   = errors.New("request is no longer open for quotes")
)

type Notifier interface {
	Notify(ctx context.Context, recipientID uuid.UUID, category, message, link string) *model.Notification
}

type Service struct {
	repo     repository.QuoteRepository
	requests repository.RequestRepository
	listings repository.ListingRepository
	notifier Notifier
	events   *event.Recorder
	logger   zerolog.Logger
}

func NewService(repo repository.QuoteRepository, requests repository.RequestRepository, listings repository.ListingRepository, notifier Notifier, events *event.Recorder, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		requests: requests,
		listings: listings,
		notifier: notifier,
		events:   events,
		logger:   logger,
	}
}

// Create submits a provider's quote against an open request. The listing
// must belong to the quoting provider. The request owner gets notified.
func (s *Service) Create(ctx context.Context, providerID uuid.UUID, req *model.CreateQuoteRequest) (*model.Quote, error) {
	request, err := s.requests.Get(ctx, req.RequestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	if request.Status != model.RequestStatusOpen && request.Status != model.RequestStatusQuoted {
		return nil, ErrRequestClosed
	}

	listing, err := s.listings.GetOwned(ctx, req.ListingID, providerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrListingNotOwned
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}

	quote := &model.Quote{
		ID:         uuid.New(),
		ProviderID: providerID,
		RequestID:  req.RequestID,
		ListingID:  req.ListingID,
		Price:      req.Price,
		Message:    req.Message,
		Status:     model.QuoteStatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, quote); err != nil {
		return nil, fmt.Errorf("failed to create quote: %w", err)
	}

	if request.Status == model.RequestStatusOpen {
		if err := s.requests.UpdateStatus(ctx, request.ID, model.RequestStatusQuoted); err != nil {
			s.logger.Error().Err(err).Str("request_id", request.ID.String()).Msg("failed to mark request quoted")
		}
	}

	s.events.Record(ctx, model.EventQuoteCreated, quote)
	s.notifier.Notify(ctx, request.UserID, model.NotificationTypeQuote,
		fmt.Sprintf("You received a quote for '%s' - $%s", listing.Title, formatPrice(quote.Price)),
		"/request/"+request.ID.String())

	return quote, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Quote, error) {
	quote, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	return quote, nil
}

func (s *Service) ListForRequest(ctx context.Context, requestID uuid.UUID) ([]*model.Quote, error) {
	return s.repo.ListForRequest(ctx, requestID)
}

// Decide accepts or rejects a quote on behalf of the request owner.
func (s *Service) Decide(ctx context.Context, customerID, quoteID uuid.UUID, status model.QuoteStatus) (*model.Quote, error) {
	quote, err := s.Get(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	request, err := s.requests.Get(ctx, quote.RequestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	if request.UserID != customerID {
		return nil, ErrNotRequestOwner
	}

	if err := s.repo.UpdateStatus(ctx, quoteID, status); err != nil {
		return nil, fmt.Errorf("failed to update quote status: %w", err)
	}
	quote.Status = status
	return quote, nil
}

func formatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', 2, 64)
}
