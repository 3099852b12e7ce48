package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/patente-quiz/internal/auth/jwt"
	"github.com/gokatarajesh/patente-quiz/internal/db/queries"
	"github.com/gokatarajesh/patente-quiz/internal/db/repository"
)

type userRepo interface {
	Create(ctx context.Context, email, passwordHash string) (queries.User, error)
	GetByEmail(ctx context.Context, email string) (queries.User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (queries.User, error)
	UpdateLogin(ctx context.Context, userID uuid.UUID) error
}

type profileCreator interface {
	Create(ctx context.Context, userID uuid.UUID, username string) error
}

// Service handles authentication and the session lifecycle.
type Service struct {
	users    userRepo
	profiles profileCreator
	tokenMgr *jwt.Manager
	redis    *redis.Client
	logger   zerolog.Logger

	mu        sync.RWMutex
	listeners []SignOutListener
}

// ServiceOptions configures the auth service.
type ServiceOptions struct {
	TokenConfig jwt.TokenConfig
	// Redis backs the refresh-token revocation list. Sign-out is still
	// accepted without it, but revoked refresh tokens stay usable.
	Redis *redis.Client
}

// NewService creates an authentication service.
func NewService(users userRepo, profiles profileCreator, opts ServiceOptions, logger zerolog.Logger) *Service {
	return &Service{
		users:    users,
		profiles: profiles,
		tokenMgr: jwt.NewManager(opts.TokenConfig),
		redis:    opts.Redis,
		logger:   logger.With().Str("component", "auth").Logger(),
	}
}

// OnSignOut registers a listener for sign-out events.
func (s *Service) OnSignOut(fn SignOutListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Register creates an account plus its default profile.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, *TokenPair, error) {
	email := normalizeEmail(req.Email)
	if email == "" {
		return nil, nil, ErrEmailRequired
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, nil, ErrEmailTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, fmt.Errorf("lookup email: %w", err)
	}

	passwordHash, err := HashPassword(req.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	dbUser, err := s.users.Create(ctx, email, passwordHash)
	if err != nil {
		return nil, nil, fmt.Errorf("create user: %w", err)
	}
	user := &User{ID: repository.UUIDFrom(dbUser.UserID), Email: email}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		username = strings.SplitN(email, "@", 2)[0]
	}
	if err := s.profiles.Create(ctx, user.ID, username); err != nil {
		// The rewards loader recreates a missing profile row on first use.
		s.logger.Warn().Err(err).Str("user_id", user.ID.String()).Msg("create profile failed")
	}

	tokens, err := s.generateTokenPair(*user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user registered")
	return user, tokens, nil
}

// Login authenticates a user with email/password.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*User, *TokenPair, error) {
	email := normalizeEmail(req.Email)
	dbUser, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("lookup email: %w", err)
	}
	if err := VerifyPassword(dbUser.PasswordHash, req.Password); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	user := &User{ID: repository.UUIDFrom(dbUser.UserID), Email: dbUser.Email}
	if err := s.users.UpdateLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID.String()).Msg("update last login failed")
	}

	tokens, err := s.generateTokenPair(*user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user logged in")
	return user, tokens, nil
}

// RefreshToken exchanges a live refresh token for a new pair.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokenMgr.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}
	revoked, err := s.isRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	dbUser, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	// Rotate: the presented refresh token is single-use.
	if err := s.revoke(ctx, claims); err != nil {
		s.logger.Warn().Err(err).Msg("revoke rotated refresh token failed")
	}
	return s.generateTokenPair(User{ID: claims.UserID, Email: dbUser.Email})
}

// SignOut revokes the refresh token and notifies listeners.
func (s *Service) SignOut(ctx context.Context, refreshToken string) error {
	claims, err := s.tokenMgr.ValidateRefreshToken(refreshToken)
	if err != nil {
		return fmt.Errorf("invalid refresh token: %w", err)
	}
	if err := s.revoke(ctx, claims); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}

	s.mu.RLock()
	listeners := append([]SignOutListener(nil), s.listeners...)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(claims.UserID)
	}

	s.logger.Info().Str("user_id", claims.UserID.String()).Msg("user signed out")
	return nil
}

// ValidateToken validates an access token and returns user claims.
func (s *Service) ValidateToken(tokenString string) (*jwt.Claims, error) {
	return s.tokenMgr.ValidateAccessToken(tokenString)
}

// Me returns the account behind userID.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*User, error) {
	dbUser, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &User{ID: userID, Email: dbUser.Email}, nil
}

func (s *Service) revoke(ctx context.Context, claims *jwt.Claims) error {
	if s.redis == nil || claims.ID == "" {
		return nil
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		if remaining := time.Until(claims.ExpiresAt.Time); remaining > 0 {
			ttl = remaining
		}
	}
	return s.redis.Set(ctx, revokedKey(claims.ID), claims.UserID.String(), ttl).Err()
}

func (s *Service) isRevoked(ctx context.Context, tokenID string) (bool, error) {
	if s.redis == nil || tokenID == "" {
		return false, nil
	}
	n, err := s.redis.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Service) generateTokenPair(user User) (*TokenPair, error) {
	accessToken, err := s.tokenMgr.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tokenMgr.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.tokenMgr.AccessTTL().Seconds()),
	}, nil
}

func revokedKey(tokenID string) string {
	return "auth:revoked:" + tokenID
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
