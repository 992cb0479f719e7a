package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/servease/marketplace-api/internal/model"
	"github.com/servease/marketplace-api/internal/repository"
	"github.com/servease/marketplace-api/pkg/event"
)

var (
	ErrQuoteNotAccepted = errors.New("quote not found or not accepted")
	ErrNotQuoteOwner    = errors.New("cannot book a quote on someone else's request")
	ErrNotFound         = errors.New("booking not found")
	ErrNotParticipant   = errors.New("not a party to this booking")
)

type Notifier interface {
	Notify(ctx context.Context, recipientID uuid.UUID, category, message, link string) *model.Notification
}

type Service struct {
	repo     repository.BookingRepository
	quotes   repository.QuoteRepository
	requests repository.RequestRepository
	listings repository.ListingRepository
	notifier Notifier
	events   *event.Recorder
	logger   zerolog.Logger
}

func NewService(repo repository.BookingRepository, quotes repository.QuoteRepository, requests repository.RequestRepository, listings repository.ListingRepository, notifier Notifier, events *event.Recorder, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		quotes:   quotes,
		requests: requests,
		listings: listings,
		notifier: notifier,
		events:   events,
		logger:   logger,
	}
}

// Create books an accepted quote for the customer who owns the underlying
// request. The provider gets notified with the scheduled slot.
func (s *Service) Create(ctx context.Context, customerID uuid.UUID, req *model.CreateBookingRequest) (*model.Booking, error) {
	quote, err := s.quotes.Get(ctx, req.QuoteID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrQuoteNotAccepted
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	if quote.Status != model.QuoteStatusAccepted {
		return nil, ErrQuoteNotAccepted
	}

	request, err := s.requests.Get(ctx, quote.RequestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	if request.UserID != customerID {
		return nil, ErrNotQuoteOwner
	}

	now := time.Now().UTC()
	booking := &model.Booking{
		ID:            uuid.New(),
		QuoteID:       quote.ID,
		CustomerID:    customerID,
		ProviderID:    quote.ProviderID,
		ListingID:     quote.ListingID,
		ScheduledTime: req.ScheduledTime,
		Status:        model.BookingStatusScheduled,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	if err := s.requests.UpdateStatus(ctx, request.ID, model.RequestStatusBooked); err != nil {
		s.logger.Error().Err(err).Str("request_id", request.ID.String()).Msg("failed to mark request booked")
	}

	s.events.Record(ctx, model.EventBookingCreated, booking)
	s.notifier.Notify(ctx, quote.ProviderID, model.NotificationTypeBooking,
		fmt.Sprintf("Your service '%s' has been booked for %s",
			s.listingTitle(ctx, quote.ListingID),
			booking.ScheduledTime.Format("2006-01-02 at 15:04")),
		"/booking/"+booking.ID.String())

	return booking, nil
}

// Get returns a booking only to one of its two parties.
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*model.Booking, error) {
	booking, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking.CustomerID != userID && booking.ProviderID != userID {
		return nil, ErrNotFound
	}
	return booking, nil
}

func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Booking, error) {
	return s.repo.ListForUser(ctx, userID)
}

// UpdateStatus moves a booking through its lifecycle. Either party may do it.
func (s *Service) UpdateStatus(ctx context.Context, userID, id uuid.UUID, status model.BookingStatus) (*model.Booking, error) {
	booking, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	booking.Status = status
	return booking, nil
}

func (s *Service) listingTitle(ctx context.Context, listingID uuid.UUID) string {
	listing, err := s.listings.Get(ctx, listingID)
	if err != nil {
		s.logger.Error().Err(err).Str("listing_id", listingID.String()).Msg("failed to resolve listing title")
		return "your service"
	}
	return listing.Title
}
