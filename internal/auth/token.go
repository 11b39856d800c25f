// Package auth issues and verifies the signed identity tokens that gate
// every private API route.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// Issuer is the iss claim of every token we sign.
	Issuer = "devconnector-api"
	// Audience is the aud claim of every token we sign.
	Audience = "devconnector-client"

	revokedKeyPrefix = "revoked:"
)

var (
	// ErrMissingToken is returned when no token was presented.
	ErrMissingToken = errors.New("no token, authorization denied")
	// ErrInvalidToken covers malformed, expired and badly-signed tokens.
	ErrInvalidToken = errors.New("token is not valid")
	// ErrRevokedToken is returned for tokens revoked by logout.
	ErrRevokedToken = errors.New("token has been revoked")
)

// Claims is the verified identity carried by a token.
type Claims struct {
	UserID    uint
	JTI       string
	ExpiresAt time.Time
}

// TokenService signs and verifies HS256 JWTs. Revocation is tracked in Redis
// when a client is configured; without Redis tokens are purely stateless.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	rdb    *redis.Client
	now    func() time.Time
}

// NewTokenService creates a TokenService. A zero ttl falls back to 100 hours.
func NewTokenService(secret string, ttl time.Duration, rdb *redis.Client) *TokenService {
	if ttl <= 0 {
		ttl = 100 * time.Hour
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		rdb:    rdb,
		now:    time.Now,
	}
}

// Issue returns a signed token for userID.
func (s *TokenService) Issue(userID uint) (string, error) {
	if len(s.secret) == 0 {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		Issuer:    Issuer,
		Audience:  jwt.ClaimStrings{Audience},
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses tokenString and returns its claims. It fails with
// ErrMissingToken, ErrInvalidToken or ErrRevokedToken.
func (s *TokenService) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	var registered jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &registered, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := strconv.ParseUint(registered.Subject, 10, 32)
	if err != nil || userID == 0 {
		return nil, ErrInvalidToken
	}

	claims := &Claims{
		UserID:    uint(userID),
		JTI:       registered.ID,
		ExpiresAt: registered.ExpiresAt.Time,
	}

	if claims.JTI != "" && s.rdb != nil {
		revoked, err := s.rdb.Exists(ctx, revokedKeyPrefix+claims.JTI).Result()
		if err == nil && revoked > 0 {
			return nil, ErrRevokedToken
		}
	}

	return claims, nil
}

// Revoke marks the token's JTI until it would have expired anyway.
func (s *TokenService) Revoke(ctx context.Context, claims *Claims) error {
	if s.rdb == nil || claims == nil || claims.JTI == "" {
		return nil
	}
	remaining := claims.ExpiresAt.Sub(s.now())
	if remaining <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, revokedKeyPrefix+claims.JTI, "1", remaining).Err()
}
