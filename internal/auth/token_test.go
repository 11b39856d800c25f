package auth

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour, nil)

	token, err := svc.Issue(42)
	require.NoError(t, err)

	claims, err := svc.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.NotEmpty(t, claims.JTI)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestTokenService_IssueWithoutSecret(t *testing.T) {
	svc := NewTokenService("", time.Hour, nil)
	_, err := svc.Issue(1)
	assert.Error(t, err)
}

func TestTokenService_VerifyRejects(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour, nil)

	sign := func(claims jwt.MapClaims, secret string) string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		str, _ := token.SignedString([]byte(secret))
		return str
	}
	valid := func() jwt.MapClaims {
		return jwt.MapClaims{
			"sub": strconv.Itoa(7),
			"iss": Issuer,
			"aud": Audience,
			"exp": time.Now().Add(time.Hour).Unix(),
			"jti": "test-jti",
		}
	}

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"Missing", "", ErrMissingToken},
		{"Malformed", "not.a.token", ErrInvalidToken},
		{"Wrong secret", sign(valid(), "another-secret-another-secret-123456"), ErrInvalidToken},
		{"Expired", func() string {
			c := valid()
			c["exp"] = time.Now().Add(-time.Hour).Unix()
			return sign(c, testSecret)
		}(), ErrInvalidToken},
		{"No expiry", func() string {
			c := valid()
			delete(c, "exp")
			return sign(c, testSecret)
		}(), ErrInvalidToken},
		{"Wrong issuer", func() string {
			c := valid()
			c["iss"] = "someone-else"
			return sign(c, testSecret)
		}(), ErrInvalidToken},
		{"Wrong audience", func() string {
			c := valid()
			c["aud"] = "someone-else"
			return sign(c, testSecret)
		}(), ErrInvalidToken},
		{"Non numeric subject", func() string {
			c := valid()
			c["sub"] = "abc"
			return sign(c, testSecret)
		}(), ErrInvalidToken},
		{"Unsigned", func() string {
			token := jwt.NewWithClaims(jwt.SigningMethodNone, valid())
			str, _ := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
			return str
		}(), ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(context.Background(), tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTokenService_Revoke(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	svc := NewTokenService(testSecret, time.Hour, rdb)
	ctx := context.Background()

	token, err := svc.Issue(3)
	require.NoError(t, err)

	claims, err := svc.Verify(ctx, token)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, claims))
	assert.True(t, mr.Exists("revoked:"+claims.JTI))

	_, err = svc.Verify(ctx, token)
	assert.ErrorIs(t, err, ErrRevokedToken)

	other, err := svc.Issue(3)
	require.NoError(t, err)
	_, err = svc.Verify(ctx, other)
	assert.NoError(t, err)
}

func TestTokenService_RevokeWithoutRedis(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour, nil)
	assert.NoError(t, svc.Revoke(context.Background(), &Claims{JTI: "x", ExpiresAt: time.Now().Add(time.Hour)}))
}
