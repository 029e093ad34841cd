// Package auth issues, parses and revokes the bearer tokens that identify callers.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agora/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL is the lifetime of tokens minted without an explicit TTL.
const DefaultTTL = 7 * 24 * time.Hour

const blacklistPrefix = "blacklist:"

var (
	// ErrInvalidToken covers every reason a token cannot be trusted.
	ErrInvalidToken = errors.New("token is not valid")
	// ErrRevoked is returned for a well-formed token whose jti was revoked.
	ErrRevoked = errors.New("token has been revoked")
)

// Claims are the registered JWT claims. The subject is the user id.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 tokens for one issuer/audience pair.
type TokenService struct {
	secret   []byte
	issuer   string
	audience string
	rdb      *redis.Client
	now      func() time.Time
}

// NewTokenService builds a TokenService from cfg. rdb may be nil, in which
// case revocation is neither recorded nor checked.
func NewTokenService(cfg *config.Config, rdb *redis.Client) *TokenService {
	return &TokenService{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.JWTIssuer,
		audience: cfg.JWTAudience,
		rdb:      rdb,
		now:      time.Now,
	}
}

// Issue mints a signed token for userID. A zero ttl means DefaultTTL.
func (s *TokenService) Issue(userID string, ttl time.Duration) (string, error) {
	if len(s.secret) == 0 {
		return "", fmt.Errorf("JWT secret not configured")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse verifies signature, issuer, audience and time claims, then checks
// the jti against the revocation list.
func (s *TokenService) Parse(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	if s.IsRevoked(ctx, claims.ID) {
		return nil, ErrRevoked
	}
	return claims, nil
}

// IsRevoked reports whether jti is on the revocation list. Lookup failures
// count as not revoked.
func (s *TokenService) IsRevoked(ctx context.Context, jti string) bool {
	if s.rdb == nil || jti == "" {
		return false
	}
	n, err := s.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	return err == nil && n > 0
}

// Revoke blacklists the token's jti until the token would have expired anyway.
func (s *TokenService) Revoke(ctx context.Context, claims *Claims) error {
	if s.rdb == nil {
		return fmt.Errorf("revocation requires redis")
	}
	if claims.ID == "" {
		return fmt.Errorf("token has no jti")
	}

	ttl := DefaultTTL
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Sub(s.now())
	}
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, blacklistPrefix+claims.ID, 1, ttl).Err()
}
