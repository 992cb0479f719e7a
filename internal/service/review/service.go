package review

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
	ErrBookingNotCompleted = errors.New("booking not found or not completed")
	ErrNotParticipant      = errors.New("not authorized to review this booking")
	ErrAlreadyReviewed     = errors.New("booking already reviewed")
)

type Notifier interface {
	Notify(ctx context.Context, recipientID uuid.UUID, category, message, link string) *model.Notification
}

type Service struct {
	repo     repository.ReviewRepository
	bookings repository.BookingRepository
	listings repository.ListingRepository
	notifier Notifier
	events   *event.Recorder
	logger   zerolog.Logger
}

func NewService(repo repository.ReviewRepository, bookings repository.BookingRepository, listings repository.ListingRepository, notifier Notifier, events *event.Recorder, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		bookings: bookings,
		listings: listings,
		notifier: notifier,
		events:   events,
		logger:   logger,
	}
}

// Create files a review on a completed booking. Either party may review the
// other, once each. The reviewee gets notified.
func (s *Service) Create(ctx context.Context, reviewerID uuid.UUID, req *model.CreateReviewRequest) (*model.Review, error) {
	booking, err := s.bookings.Get(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotCompleted
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking.Status != model.BookingStatusCompleted {
		return nil, ErrBookingNotCompleted
	}

	var revieweeID uuid.UUID
	switch reviewerID {
	case booking.CustomerID:
		revieweeID = booking.ProviderID
	case booking.ProviderID:
		revieweeID = booking.CustomerID
	default:
		return nil, ErrNotParticipant
	}

	exists, err := s.repo.ExistsForBooking(ctx, req.BookingID, reviewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}
	if exists {
		return nil, ErrAlreadyReviewed
	}

	review := &model.Review{
		ID:         uuid.New(),
		BookingID:  req.BookingID,
		ReviewerID: reviewerID,
		RevieweeID: revieweeID,
		Rating:     req.Rating,
		Comment:    req.Comment,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	if err := s.bookings.SetHasReview(ctx, booking.ID); err != nil {
		s.logger.Error().Err(err).Str("booking_id", booking.ID.String()).Msg("failed to flag booking as reviewed")
	}

	s.events.Record(ctx, model.EventReviewCreated, review)
	s.notifier.Notify(ctx, revieweeID, model.NotificationTypeReview,
		s.message(ctx, booking, reviewerID, req.Rating),
		"/booking/"+booking.ID.String())

	return review, nil
}

func (s *Service) message(ctx context.Context, booking *model.Booking, reviewerID uuid.UUID, rating int) string {
	if reviewerID == booking.ProviderID {
		return fmt.Sprintf("You received a %d-star review from a service provider", rating)
	}

	serviceName := "your service"
	if listing, err := s.listings.Get(ctx, booking.ListingID); err == nil {
		serviceName = listing.Title
	}
	return fmt.Sprintf("You received a %d-star review for %s", rating, serviceName)
}
