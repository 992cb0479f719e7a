package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/servease/marketplace-api/internal/email"
	"github.com/servease/marketplace-api/internal/model"
	"github.com/servease/marketplace-api/internal/repository"
	"github.com/servease/marketplace-api/pkg/auth"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrInvalidToken       = errors.New("invalid token")
)

type Service struct {
	users       repository.UserRepository
	jwt         auth.JWTService
	email       email.Service
	expiryHours int
	logger      zerolog.Logger
}

func NewService(users repository.UserRepository, jwt auth.JWTService, emailSvc email.Service, expiryHours int, logger zerolog.Logger) *Service {
	return &Service{
		users:       users,
		jwt:         jwt,
		email:       emailSvc,
		expiryHours: expiryHours,
		logger:      logger,
	}
}

// Register creates a new account and sends the welcome mail in the
// background. Mail failures never fail the registration.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	existing, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.New(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		Role:         req.Role,
		Status:       model.UserStatusEnabled,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if s.email != nil {
		go func() {
			if err := s.email.SendWelcome(context.Background(), user.Email, user.Name); err != nil {
				s.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to send welcome email")
			}
		}()
	}

	return user, nil
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Status != model.UserStatusEnabled {
		return nil, ErrAccountDisabled
	}

	return s.issueTokens(user)
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	userID, err := claimUserID(claims)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user.Status != model.UserStatusEnabled {
		return nil, ErrAccountDisabled
	}

	return s.issueTokens(user)
}

// ValidateToken parses an access token into typed claims. Both the HTTP
// auth middleware and the websocket handshake go through here.
func (s *Service) ValidateToken(token string) (*model.TokenClaims, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	userID, err := claimUserID(claims)
	if err != nil {
		return nil, ErrInvalidToken
	}

	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)

	return &model.TokenClaims{
		UserID: userID,
		Email:  email,
		Role:   model.UserRole(role),
	}, nil
}

func (s *Service) issueTokens(user *model.User) (*model.TokenResponse, error) {
	access, err := s.jwt.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.jwt.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &model.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    s.expiryHours * 3600,
	}, nil
}

func claimUserID(claims map[string]interface{}) (uuid.UUID, error) {
	raw, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing user_id claim")
	}
	return uuid.Parse(raw)
}
