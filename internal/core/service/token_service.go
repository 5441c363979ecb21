package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/stashly/stash-api/internal/core/domain"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 30 * 24 * time.Hour
)

// tokenClaims binds a user id (sub) to a token type.
type tokenClaims struct {
	jwt.RegisteredClaims
	Type domain.TokenType `json:"typ"`
}

// TokenService issues and validates HS256 JWTs. It holds no per-token state,
// so a token stays valid until it expires.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) *TokenService {
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTTL
	}
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// WithClock returns a copy of s that reads the current time from now.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	clone := *s
	clone.now = now
	return &clone
}

func (s *TokenService) IssueAccess(userID string) (string, error) {
	return s.issue(userID, domain.TokenAccess, s.accessTTL)
}

func (s *TokenService) IssueRefresh(userID string) (string, error) {
	return s.issue(userID, domain.TokenRefresh, s.refreshTTL)
}

func (s *TokenService) issue(userID string, typ domain.TokenType, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", errors.New("issue token: empty user id")
	}

	now := s.now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Type: typ,
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, nil
}

// Validate parses token and returns its subject. Expiry is checked against
// the service clock: a token is expired once now >= exp.
func (s *TokenService) Validate(token string, want domain.TokenType) (string, error) {
	if token == "" {
		return "", domain.ErrMissingToken
	}

	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", domain.ErrExpiredToken
		}
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return "", domain.ErrInvalidToken
	}
	if claims.Type != want {
		return "", fmt.Errorf("%w: expected %s token", domain.ErrInvalidToken, want)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", domain.ErrInvalidToken)
	}

	return claims.Subject, nil
}
