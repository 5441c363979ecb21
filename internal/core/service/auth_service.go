package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/stashly/stash-api/internal/api/metrics"
	"github.com/stashly/stash-api/internal/core/domain"
	"github.com/stashly/stash-api/internal/core/ports"
)

// dummyHash is compared against when the email is unknown so that both login
// failure paths do the same bcrypt work.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z3p5Zf3Pnd0pp6nmk0rWRV0G"

// AuthService implements registration, login and token refresh.
type AuthService struct {
	repo   ports.AuthRepository
	hasher ports.PasswordHasher
	tokens ports.TokenService
	log    zerolog.Logger
}

func NewAuthService(repo ports.AuthRepository, hasher ports.PasswordHasher, tokens ports.TokenService, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, hasher: hasher, tokens: tokens, log: log}
}

// NormalizeEmail trims and lower-cases an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}
	if len([]rune(password)) < domain.MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, domain.MinPasswordLength)
	}
	if len(password) > domain.MaxPasswordBytes {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", domain.ErrValidation, domain.MaxPasswordBytes)
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "error").Inc()
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			metrics.AuthAttemptsTotal.WithLabelValues("register", "duplicate").Inc()
		} else {
			metrics.AuthAttemptsTotal.WithLabelValues("register", "error").Inc()
		}
		return nil, err
	}

	metrics.AuthAttemptsTotal.WithLabelValues("register", "success").Inc()
	s.log.Info().Str("user_id", created.ID).Msg("user registered")
	return created, nil
}

// Login verifies credentials and returns a fresh access/refresh pair. An
// unknown email and a wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}

	user, err := s.repo.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		if _, verr := s.hasher.Verify(ctx, password, dummyHash); verr != nil {
			return nil, verr
		}
		metrics.AuthAttemptsTotal.WithLabelValues("login", "invalid").Inc()
		return nil, domain.ErrInvalidCredentials
	case err != nil:
		metrics.AuthAttemptsTotal.WithLabelValues("login", "error").Inc()
		return nil, err
	}

	ok, err := s.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "invalid").Inc()
		s.log.Debug().Str("user_id", user.ID).Msg("login rejected")
		return nil, domain.ErrInvalidCredentials
	}

	pair, err := s.issuePair(user.ID)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "error").Inc()
		return nil, err
	}

	metrics.AuthAttemptsTotal.WithLabelValues("login", "success").Inc()
	s.log.Info().Str("user_id", user.ID).Msg("user logged in")
	return pair, nil
}

// Refresh mints a new access token for the identity in a refresh token. The
// refresh token itself is neither rotated nor revoked.
func (s *AuthService) Refresh(_ context.Context, refreshToken string) (string, error) {
	userID, err := s.tokens.Validate(refreshToken, domain.TokenRefresh)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("refresh", "invalid").Inc()
		return "", fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}

	access, err := s.tokens.IssueAccess(userID)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("refresh", "error").Inc()
		return "", err
	}

	metrics.AuthAttemptsTotal.WithLabelValues("refresh", "success").Inc()
	return access, nil
}

// Me returns the account behind a validated access token.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// The token outlived its account.
			return nil, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issuePair(userID string) (*domain.TokenPair, error) {
	access, err := s.tokens.IssueAccess(userID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefresh(userID)
	if err != nil {
		return nil, err
	}
	return &domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
