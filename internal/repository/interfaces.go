package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/servease/marketplace-api/internal/model"
)

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Exists(ctx context.Context, id uuid.UUID) (bool, error)
	}

	NotificationRepository interface {
		Create(ctx context.Context, notification *model.Notification) error
		Get(ctx context.Context, id uuid.UUID) (*model.Notification, error)
		ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*model.Notification, error)
		CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
		MarkRead(ctx context.Context, id, userID uuid.UUID, isRead bool) (*model.Notification, error)
		MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	}

	ListingRepository interface {
		Create(ctx context.Context, listing *model.Listing) error
		Get(ctx context.Context, id uuid.UUID) (*model.Listing, error)
		GetOwned(ctx context.Context, id, userID uuid.UUID) (*model.Listing, error)
		List(ctx context.Context) ([]*model.Listing, error)
	}

	RequestRepository interface {
		Create(ctx context.Context, request *model.Request) error
		Get(ctx context.Context, id uuid.UUID) (*model.Request, error)
		ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Request, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.RequestStatus) error
	}

	QuoteRepository interface {
		Create(ctx context.Context, quote *model.Quote) error
		Get(ctx context.Context, id uuid.UUID) (*model.Quote, error)
		ListForRequest(ctx context.Context, requestID uuid.UUID) ([]*model.Quote, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.QuoteStatus) error
	}

	BookingRepository interface {
		Create(ctx context.Context, booking *model.Booking) error
		Get(ctx context.Context, id uuid.UUID) (*model.Booking, error)
		ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Booking, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus) error
		SetHasReview(ctx context.Context, id uuid.UUID) error
	}

	ReviewRepository interface {
		Create(ctx context.Context, review *model.Review) error
		ExistsForBooking(ctx context.Context, bookingID, reviewerID uuid.UUID) (bool, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, retryAt *time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
