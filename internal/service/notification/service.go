package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/servease/marketplace-api/internal/model"
	"github.com/servease/marketplace-api/internal/repository"
	"github.com/servease/marketplace-api/internal/ws"
)

const (
	unreadCountTTL = 30 * time.Second
)

// Broadcaster pushes a payload to every live connection of a user and
// reports whether at least one send succeeded.
type Broadcaster interface {
	BroadcastToUser(ownerID uuid.UUID, payload interface{}) bool
}

// Service owns the notification records and their best-effort fan-out.
//
// Notify is called by business-write collaborators after their own commit,
// so nothing in here is allowed to propagate an error back into the caller:
// every failure is logged and reduced to a nil return. The durable row is
// the source of truth; the websocket push is advisory.
type Service struct {
	repo       repository.NotificationRepository
	userRepo   repository.UserRepository
	dispatcher Broadcaster
	counts     *cache.Cache
	logger     zerolog.Logger
}

func NewService(repo repository.NotificationRepository, userRepo repository.UserRepository, dispatcher Broadcaster, logger zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		userRepo:   userRepo,
		dispatcher: dispatcher,
		counts:     cache.New(unreadCountTTL, 2*unreadCountTTL),
		logger:     logger,
	}
}

// Notify persists a notification for recipientID and fans it out to the
// recipient's live connections in the background. Returns the stored record,
// or nil on any failure: missing recipient and persistence errors are soft
// failures by contract, since the triggering domain write has already
// committed.
func (s *Service) Notify(ctx context.Context, recipientID uuid.UUID, category, message, link string) *model.Notification {
	if message == "" {
		s.logger.Error().Str("user_id", recipientID.String()).Msg("refusing notification with empty message")
		return nil
	}

	exists, err := s.userRepo.Exists(ctx, recipientID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", recipientID.String()).Msg("failed to check notification recipient")
		return nil
	}
	if !exists {
		s.logger.Error().Str("user_id", recipientID.String()).Msg("notification recipient not found")
		return nil
	}

	notification := &model.Notification{
		ID:        uuid.New(),
		UserID:    recipientID,
		Type:      category,
		Message:   message,
		IsRead:    false,
		CreatedAt: time.Now().UTC(),
	}
	if link != "" {
		notification.Link = &link
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		s.logger.Error().Err(err).Str("user_id", recipientID.String()).Msg("failed to persist notification")
		return nil
	}

	s.counts.Delete(recipientID.String())

	// Fire and forget: the HTTP response must not wait on dispatch.
	go s.push(notification)

	return notification
}

func (s *Service) push(notification *model.Notification) {
	defer func() {
		if p := recover(); p != nil {
			s.logger.Error().Interface("panic", p).Msg("panic during notification push")
		}
	}()

	payload := ws.NotificationMessage{
		Type: ws.MessageTypeNotification,
		Data: notification.Payload(),
	}
	if !s.dispatcher.BroadcastToUser(notification.UserID, payload) {
		s.logger.Debug().
			Str("notification_id", notification.ID.String()).
			Str("user_id", notification.UserID.String()).
			Msg("notification not delivered to any live connection")
	}
}

// List returns the user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*model.Notification, error) {
	return s.repo.ListForUser(ctx, userID, unreadOnly)
}

// UnreadCount returns the user's unread notification count, served from a
// short-lived cache that write paths invalidate.
func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	if cached, ok := s.counts.Get(userID.String()); ok {
		return cached.(int), nil
	}

	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.counts.Set(userID.String(), count, cache.DefaultExpiration)
	return count, nil
}

// MarkRead flips the read flag on one of the user's notifications.
func (s *Service) MarkRead(ctx context.Context, id, userID uuid.UUID, isRead bool) (*model.Notification, error) {
	notification, err := s.repo.MarkRead(ctx, id, userID, isRead)
	if err != nil {
		return nil, err
	}
	s.counts.Delete(userID.String())
	return notification, nil
}

// MarkAllRead marks every unread notification of the user as read.
func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	updated, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.counts.Delete(userID.String())
	return updated, nil
}
