package auth

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/servease/marketplace-api/internal/model"
	pkgauth "github.com/servease/marketplace-api/pkg/auth"
)

type memUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]*model.User
	byID    map[uuid.UUID]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		byEmail: make(map[string]*model.User),
		byID:    make(map[uuid.UUID]*model.User),
	}
}

func (r *memUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byEmail[user.Email] = user
	r.byID[user.ID] = user
	return nil
}

func (r *memUserRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byEmail[email]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (r *memUserRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byID[id]
	return ok, nil
}

type recordingEmail struct {
	welcomes chan string
}

func newRecordingEmail() *recordingEmail {
	return &recordingEmail{welcomes: make(chan string, 4)}
}

func (e *recordingEmail) SendWelcome(ctx context.Context, to string, name string) error {
	e.welcomes <- to
	return nil
}

func (e *recordingEmail) SendCustom(ctx context.Context, to, subject, content string) error {
	return nil
}

func newTestService(t *testing.T, repo *memUserRepo, mail *recordingEmail) *Service {
	t.Helper()
	jwtSvc := pkgauth.NewJWTService(pkgauth.Config{
		Secret:             "test-secret",
		RefreshSecret:      "test-refresh-secret",
		ExpiryHours:        1,
		RefreshExpiryHours: 24,
	})
	return NewService(repo, jwtSvc, mail, 1, zerolog.Nop())
}

func TestRegister_CreatesUserAndSendsWelcome(t *testing.T) {
	repo := newMemUserRepo()
	mail := newRecordingEmail()
	svc := newTestService(t, repo, mail)

	user, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "jo@example.com",
		Name:     "Jo",
		Password: "hunter2hunter2",
		Role:     model.UserRoleCustomer,
	})

	require.NoError(t, err)
	assert.Equal(t, "jo@example.com", user.Email)
	assert.Equal(t, model.UserStatusEnabled, user.Status)
	assert.NotEqual(t, "hunter2hunter2", user.PasswordHash, "password must be hashed")
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter2hunter2")))

	select {
	case to := <-mail.welcomes:
		assert.Equal(t, "jo@example.com", to)
	case <-time.After(time.Second):
		t.Fatal("welcome email was never sent")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := newMemUserRepo()
	svc := newTestService(t, repo, newRecordingEmail())

	req := &model.RegisterRequest{
		Email:    "jo@example.com",
		Name:     "Jo",
		Password: "hunter2hunter2",
		Role:     model.UserRoleProvider,
	}
	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin_IssuesValidTokens(t *testing.T) {
	repo := newMemUserRepo()
	svc := newTestService(t, repo, newRecordingEmail())

	user, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "jo@example.com",
		Name:     "Jo",
		Password: "hunter2hunter2",
		Role:     model.UserRoleProvider,
	})
	require.NoError(t, err)

	tokens, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "jo@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", tokens.TokenType)
	assert.Equal(t, 3600, tokens.ExpiresIn)

	claims, err := svc.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, model.UserRoleProvider, claims.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newMemUserRepo()
	svc := newTestService(t, repo, newRecordingEmail())

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "jo@example.com",
		Name:     "Jo",
		Password: "hunter2hunter2",
		Role:     model.UserRoleCustomer,
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &model.LoginRequest{
		Email:    "jo@example.com",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := newTestService(t, newMemUserRepo(), newRecordingEmail())

	_, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever1234",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_DisabledAccount(t *testing.T) {
	repo := newMemUserRepo()
	svc := newTestService(t, repo, newRecordingEmail())

	user, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "jo@example.com",
		Name:     "Jo",
		Password: "hunter2hunter2",
		Role:     model.UserRoleCustomer,
	})
	require.NoError(t, err)
	user.Status = model.UserStatusDisabled

	_, err = svc.Login(context.Background(), &model.LoginRequest{
		Email:    "jo@example.com",
		Password: "hunter2hunter2",
	})
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestRefresh_IssuesNewPair(t *testing.T) {
	repo := newMemUserRepo()
	svc := newTestService(t, repo, newRecordingEmail())

	user, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "jo@example.com",
		Name:     "Jo",
		Password: "hunter2hunter2",
		Role:     model.UserRoleCustomer,
	})
	require.NoError(t, err)

	tokens, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "jo@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), tokens.RefreshToken)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestValidateToken_RejectsGarbageAndWrongKey(t *testing.T) {
	svc := newTestService(t, newMemUserRepo(), newRecordingEmail())

	_, err := svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": uuid.New().String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := forged.SignedString([]byte("some-other-secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
