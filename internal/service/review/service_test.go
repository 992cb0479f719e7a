package review

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servease/marketplace-api/internal/model"
	"github.com/servease/marketplace-api/pkg/event"
)

type memReviewRepo struct {
	reviews []*model.Review
}

func (r *memReviewRepo) Create(ctx context.Context, review *model.Review) error {
	r.reviews = append(r.reviews, review)
	return nil
}

func (r *memReviewRepo) ExistsForBooking(ctx context.Context, bookingID, reviewerID uuid.UUID) (bool, error) {
	for _, rev := range r.reviews {
		if rev.BookingID == bookingID && rev.ReviewerID == reviewerID {
			return true, nil
		}
	}
	return false, nil
}

type memBookingRepo struct {
	bookings map[uuid.UUID]*model.Booking
}

func (r *memBookingRepo) Create(ctx context.Context, booking *model.Booking) error { return nil }
func (r *memBookingRepo) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	if b, ok := r.bookings[id]; ok {
		return b, nil
	}
	return nil, sql.ErrNoRows
}
func (r *memBookingRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Booking, error) {
	return nil, nil
}
func (r *memBookingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus) error {
	return nil
}
func (r *memBookingRepo) SetHasReview(ctx context.Context, id uuid.UUID) error {
	if b, ok := r.bookings[id]; ok {
		b.HasReview = true
		return nil
	}
	return sql.ErrNoRows
}

type memListingRepo struct {
	listings map[uuid.UUID]*model.Listing
}

func (r *memListingRepo) Create(ctx context.Context, listing *model.Listing) error { return nil }
func (r *memListingRepo) Get(ctx context.Context, id uuid.UUID) (*model.Listing, error) {
	if l, ok := r.listings[id]; ok {
		return l, nil
	}
	return nil, sql.ErrNoRows
}
func (r *memListingRepo) GetOwned(ctx context.Context, id, userID uuid.UUID) (*model.Listing, error) {
	return nil, sql.ErrNoRows
}
func (r *memListingRepo) List(ctx context.Context) ([]*model.Listing, error) { return nil, nil }

type memOutboxRepo struct {
	events []*model.OutboxEvent
}

func (r *memOutboxRepo) Create(ctx context.Context, event *model.OutboxEvent) error {
	r.events = append(r.events, event)
	return nil
}

func (r *memOutboxRepo) GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	return r.events, nil
}

func (r *memOutboxRepo) MarkProcessed(ctx context.Context, id uuid.UUID) error { return nil }
func (r *memOutboxRepo) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, retryAt *time.Time) error {
	return nil
}
func (r *memOutboxRepo) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

type notifyCall struct {
	recipient uuid.UUID
	category  string
	message   string
	link      string
}

type recordingNotifier struct {
	calls []notifyCall
}

func (n *recordingNotifier) Notify(ctx context.Context, recipientID uuid.UUID, category, message, link string) *model.Notification {
	n.calls = append(n.calls, notifyCall{recipient: recipientID, category: category, message: message, link: link})
	return &model.Notification{ID: uuid.New(), UserID: recipientID}
}

type fixture struct {
	svc      *Service
	reviews  *memReviewRepo
	notifier *recordingNotifier
	outbox   *memOutboxRepo

	customer uuid.UUID
	provider uuid.UUID
	booking  *model.Booking
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		reviews:  &memReviewRepo{},
		notifier: &recordingNotifier{},
		outbox:   &memOutboxRepo{},
		customer: uuid.New(),
		provider: uuid.New(),
	}

	listing := &model.Listing{ID: uuid.New(), UserID: f.provider, Title: "Lawn Care"}
	listings := &memListingRepo{listings: map[uuid.UUID]*model.Listing{listing.ID: listing}}

	f.booking = &model.Booking{
		ID:         uuid.New(),
		CustomerID: f.customer,
		ProviderID: f.provider,
		ListingID:  listing.ID,
		Status:     model.BookingStatusCompleted,
	}
	bookings := &memBookingRepo{bookings: map[uuid.UUID]*model.Booking{f.booking.ID: f.booking}}

	recorder := event.NewRecorder(f.outbox, zerolog.Nop())
	f.svc = NewService(f.reviews, bookings, listings, f.notifier, recorder, zerolog.Nop())
	return f
}

func TestCreate_CustomerReviewsProvider(t *testing.T) {
	f := newFixture(t)

	review, err := f.svc.Create(context.Background(), f.customer, &model.CreateReviewRequest{
		BookingID: f.booking.ID,
		Rating:    5,
		Comment:   "Great job",
	})

	require.NoError(t, err)
	assert.Equal(t, f.provider, review.RevieweeID)
	assert.True(t, f.booking.HasReview)

	require.Len(t, f.notifier.calls, 1)
	call := f.notifier.calls[0]
	assert.Equal(t, f.provider, call.recipient)
	assert.Equal(t, model.NotificationTypeReview, call.category)
	assert.Equal(t, "You received a 5-star review for Lawn Care", call.message)
	assert.Equal(t, "/booking/"+f.booking.ID.String(), call.link)

	require.Len(t, f.outbox.events, 1)
	assert.Equal(t, model.EventReviewCreated, f.outbox.events[0].EventType)
}

func TestCreate_ProviderReviewsCustomer(t *testing.T) {
	f := newFixture(t)

	review, err := f.svc.Create(context.Background(), f.provider, &model.CreateReviewRequest{
		BookingID: f.booking.ID,
		Rating:    3,
	})

	require.NoError(t, err)
	assert.Equal(t, f.customer, review.RevieweeID)

	require.Len(t, f.notifier.calls, 1)
	call := f.notifier.calls[0]
	assert.Equal(t, f.customer, call.recipient)
	assert.Equal(t, "You received a 3-star review from a service provider", call.message)
}

func TestCreate_BookingNotCompleted(t *testing.T) {
	f := newFixture(t)
	f.booking.Status = model.BookingStatusScheduled

	_, err := f.svc.Create(context.Background(), f.customer, &model.CreateReviewRequest{
		BookingID: f.booking.ID,
		Rating:    4,
	})

	assert.ErrorIs(t, err, ErrBookingNotCompleted)
	assert.Empty(t, f.notifier.calls)
}

func TestCreate_StrangerRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), uuid.New(), &model.CreateReviewRequest{
		BookingID: f.booking.ID,
		Rating:    4,
	})

	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestCreate_DuplicatePerReviewer(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.customer, &model.CreateReviewRequest{
		BookingID: f.booking.ID,
		Rating:    5,
	})
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), f.customer, &model.CreateReviewRequest{
		BookingID: f.booking.ID,
		Rating:    4,
	})
	assert.ErrorIs(t, err, ErrAlreadyReviewed)

	// The other party still gets their turn.
	_, err = f.svc.Create(context.Background(), f.provider, &model.CreateReviewRequest{
		BookingID: f.booking.ID,
		Rating:    4,
	})
	require.NoError(t, err)
}
