package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servease/marketplace-api/internal/model"
	"github.com/servease/marketplace-api/internal/ws"
)

type fakeUserRepo struct {
	existing map[uuid.UUID]bool
	err      error
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error { return nil }
func (f *fakeUserRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeUserRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.existing[id], nil
}

type fakeNotificationRepo struct {
	created   []*model.Notification
	createErr error
	unread    int
	countHits int
}

func (f *fakeNotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, n)
	return nil
}

func (f *fakeNotificationRepo) Get(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeNotificationRepo) ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*model.Notification, error) {
	return f.created, nil
}

func (f *fakeNotificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	f.countHits++
	return f.unread, nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, id, userID uuid.UUID, isRead bool) (*model.Notification, error) {
	return &model.Notification{ID: id, UserID: userID, IsRead: isRead}, nil
}

func (f *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

type recordingBroadcaster struct {
	payloads chan interface{}
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{payloads: make(chan interface{}, 8)}
}

func (b *recordingBroadcaster) BroadcastToUser(ownerID uuid.UUID, payload interface{}) bool {
	b.payloads <- payload
	return true
}

func TestNotify_UnknownRecipientReturnsNil(t *testing.T) {
	repo := &fakeNotificationRepo{}
	users := &fakeUserRepo{existing: map[uuid.UUID]bool{}}
	svc := NewService(repo, users, newRecordingBroadcaster(), zerolog.Nop())

	got := svc.Notify(context.Background(), uuid.New(), "booking", "hello", "")

	assert.Nil(t, got)
	assert.Empty(t, repo.created, "no record may be written for an unknown recipient")
}

func TestNotify_PersistenceFailureReturnsNil(t *testing.T) {
	user := uuid.New()
	repo := &fakeNotificationRepo{createErr: errors.New("insert failed")}
	users := &fakeUserRepo{existing: map[uuid.UUID]bool{user: true}}
	broadcaster := newRecordingBroadcaster()
	svc := NewService(repo, users, broadcaster, zerolog.Nop())

	got := svc.Notify(context.Background(), user, "booking", "hello", "")

	assert.Nil(t, got)
	select {
	case <-broadcaster.payloads:
		t.Fatal("no dispatch may happen when persistence fails")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNotify_PersistsAndDispatches(t *testing.T) {
	user := uuid.New()
	repo := &fakeNotificationRepo{}
	users := &fakeUserRepo{existing: map[uuid.UUID]bool{user: true}}
	broadcaster := newRecordingBroadcaster()
	svc := NewService(repo, users, broadcaster, zerolog.Nop())

	before := time.Now().UTC()
	got := svc.Notify(context.Background(), user, "quote", "You received a quote", "/request/42")

	require.NotNil(t, got)
	require.Len(t, repo.created, 1)
	stored := repo.created[0]
	assert.Equal(t, user, stored.UserID)
	assert.Equal(t, "quote", stored.Type)
	assert.Equal(t, "You received a quote", stored.Message)
	require.NotNil(t, stored.Link)
	assert.Equal(t, "/request/42", *stored.Link)
	assert.False(t, stored.IsRead)
	assert.False(t, stored.CreatedAt.Before(before))

	select {
	case payload := <-broadcaster.payloads:
		msg, ok := payload.(ws.NotificationMessage)
		require.True(t, ok)
		assert.Equal(t, ws.MessageTypeNotification, msg.Type)
		data, ok := msg.Data.(model.NotificationPayload)
		require.True(t, ok)
		assert.Equal(t, stored.ID, data.ID)
		assert.False(t, data.IsRead)
	case <-time.After(time.Second):
		t.Fatal("expected exactly one dispatch attempt")
	}

	select {
	case <-broadcaster.payloads:
		t.Fatal("expected exactly one dispatch attempt, got a second")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNotify_EmptyLinkStoredAsNull(t *testing.T) {
	user := uuid.New()
	repo := &fakeNotificationRepo{}
	users := &fakeUserRepo{existing: map[uuid.UUID]bool{user: true}}
	svc := NewService(repo, users, newRecordingBroadcaster(), zerolog.Nop())

	got := svc.Notify(context.Background(), user, "booking", "hello", "")

	require.NotNil(t, got)
	assert.Nil(t, got.Link)
}

func TestNotify_DeliversToEveryLiveConnection(t *testing.T) {
	user := uuid.New()
	repo := &fakeNotificationRepo{}
	users := &fakeUserRepo{existing: map[uuid.UUID]bool{user: true}}

	registry := ws.NewRegistry(nil)
	dispatcher := ws.NewDispatcher(registry, zerolog.Nop(), nil)
	svc := NewService(repo, users, dispatcher, zerolog.Nop())

	first := newChanSender()
	second := newChanSender()
	registry.Register("conn-1", user, first)
	registry.Register("conn-2", user, second)

	message := "Your service 'Plumbing' has been booked for 2025-09-01 at 10:00"
	got := svc.Notify(context.Background(), user, "booking", message, "/booking/42")
	require.NotNil(t, got)

	for _, sender := range []*chanSender{first, second} {
		select {
		case payload := <-sender.received:
			msg, ok := payload.(ws.NotificationMessage)
			require.True(t, ok)
			data := msg.Data.(model.NotificationPayload)
			assert.Equal(t, message, data.Message)
			require.NotNil(t, data.Link)
			assert.Equal(t, "/booking/42", *data.Link)
			assert.False(t, data.IsRead)
		case <-time.After(time.Second):
			t.Fatal("connection did not receive the notification")
		}
	}
}

func TestUnreadCount_Cached(t *testing.T) {
	user := uuid.New()
	repo := &fakeNotificationRepo{unread: 3}
	users := &fakeUserRepo{existing: map[uuid.UUID]bool{user: true}}
	svc := NewService(repo, users, newRecordingBroadcaster(), zerolog.Nop())

	count, err := svc.UnreadCount(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	_, err = svc.UnreadCount(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.countHits, "second read must come from cache")

	_, err = svc.MarkAllRead(context.Background(), user)
	require.NoError(t, err)

	_, err = svc.UnreadCount(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.countHits, "write paths must invalidate the cache")
}

type chanSender struct {
	received chan interface{}
}

func newChanSender() *chanSender {
	return &chanSender{received: make(chan interface{}, 8)}
}

func (c *chanSender) Send(v interface{}) error {
	c.received <- v
	return nil
}

func (c *chanSender) Close() error { return nil }
