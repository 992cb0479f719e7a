package notification

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servease/marketplace-api/internal/middleware"
	"github.com/servease/marketplace-api/internal/model"
	"github.com/servease/marketplace-api/internal/service/notification"
)

type memNotificationRepo struct {
	notifications map[uuid.UUID]*model.Notification
}

func (r *memNotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	r.notifications[n.ID] = n
	return nil
}

func (r *memNotificationRepo) Get(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	if n, ok := r.notifications[id]; ok {
		return n, nil
	}
	return nil, sql.ErrNoRows
}

func (r *memNotificationRepo) ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*model.Notification, error) {
	out := []*model.Notification{}
	for _, n := range r.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *memNotificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *memNotificationRepo) MarkRead(ctx context.Context, id, userID uuid.UUID, isRead bool) (*model.Notification, error) {
	n, ok := r.notifications[id]
	if !ok || n.UserID != userID {
		return nil, sql.ErrNoRows
	}
	n.IsRead = isRead
	return n, nil
}

func (r *memNotificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	var updated int64
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			updated++
		}
	}
	return updated, nil
}

type stubUserRepo struct{}

func (stubUserRepo) Create(ctx context.Context, user *model.User) error { return nil }
func (stubUserRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return nil, sql.ErrNoRows
}
func (stubUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, sql.ErrNoRows
}
func (stubUserRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) { return true, nil }

type noopBroadcaster struct{}

func (noopBroadcaster) BroadcastToUser(ownerID uuid.UUID, payload interface{}) bool { return false }

type env struct {
	router *gin.Engine
	repo   *memNotificationRepo
	userID uuid.UUID
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := &memNotificationRepo{notifications: make(map[uuid.UUID]*model.Notification)}
	svc := notification.NewService(repo, stubUserRepo{}, noopBroadcaster{}, zerolog.Nop())
	h := NewHandler(svc)

	userID := uuid.New()
	router := gin.New()
	// Stand-in for the auth middleware.
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID.String())
	})
	h.RegisterRoutes(router.Group("/api/v1"))

	return &env{router: router, repo: repo, userID: userID}
}

func (e *env) seed(isRead bool) *model.Notification {
	link := "/request/abc"
	n := &model.Notification{
		ID:      uuid.New(),
		UserID:  e.userID,
		Type:    "quote",
		Message: "You received a quote",
		Link:    &link,
		IsRead:  isRead,
	}
	e.repo.notifications[n.ID] = n
	return n
}

func (e *env) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestList(t *testing.T) {
	e := newEnv(t)
	e.seed(false)
	e.seed(true)

	w := e.do(http.MethodGet, "/api/v1/notifications", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status string                `json:"status"`
		Data   []*model.Notification `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Len(t, resp.Data, 2)
}

func TestList_UnreadOnly(t *testing.T) {
	e := newEnv(t)
	e.seed(false)
	e.seed(true)

	w := e.do(http.MethodGet, "/api/v1/notifications?unread_only=true", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []*model.Notification `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.False(t, resp.Data[0].IsRead)
}

func TestUnreadCount(t *testing.T) {
	e := newEnv(t)
	e.seed(false)
	e.seed(false)
	e.seed(true)

	w := e.do(http.MethodGet, "/api/v1/notifications/count", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data model.UnreadCountResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.UnreadCount)
}

func TestMarkRead(t *testing.T) {
	e := newEnv(t)
	n := e.seed(false)

	w := e.do(http.MethodPatch, "/api/v1/notifications/"+n.ID.String()+"/read", `{"is_read":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, n.IsRead)

	// Unread it again; false must survive binding.
	w = e.do(http.MethodPatch, "/api/v1/notifications/"+n.ID.String()+"/read", `{"is_read":false}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, n.IsRead)
}

func TestMarkRead_UnknownID(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPatch, "/api/v1/notifications/"+uuid.New().String()+"/read", `{"is_read":true}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMarkRead_BadID(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPatch, "/api/v1/notifications/not-a-uuid/read", `{"is_read":true}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMarkAllRead(t *testing.T) {
	e := newEnv(t)
	e.seed(false)
	e.seed(false)
	already := e.seed(true)

	w := e.do(http.MethodPatch, "/api/v1/notifications/read-all", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Updated int64 `json:"updated"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Data.Updated)
	assert.True(t, already.IsRead)

	for _, n := range e.repo.notifications {
		assert.True(t, n.IsRead)
	}
}
