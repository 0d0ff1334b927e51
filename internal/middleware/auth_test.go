package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestJWTAuthForwardsVerifiedIdentity(t *testing.T) {
	token := signToken(t, "secret", jwt.MapClaims{
		"user_id": "7",
		"email":   "user@example.com",
		"admin":   true,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	var seenID, seenEmail, seenAdmin string
	handler := JWTAuth("secret", nil)(func(ctx *fasthttp.RequestCtx) {
		seenID = string(ctx.Request.Header.Peek(HeaderUserID))
		seenEmail = string(ctx.Request.Header.Peek(HeaderUserEmail))
		seenAdmin = string(ctx.Request.Header.Peek(HeaderUserAdmin))
	})

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.Set("Authorization", "Bearer "+token)
	// Spoofed identity headers must be replaced by the verified claims.
	ctx.Request.Header.Set(HeaderUserID, "999")
	ctx.Request.Header.Set(HeaderUserAdmin, "true")
	handler(ctx)

	assert.Equal(t, "7", seenID)
	assert.Equal(t, "user@example.com", seenEmail)
	assert.Equal(t, "true", seenAdmin)
}

func TestJWTAuthStripsSpoofedAdminFlag(t *testing.T) {
	token := signToken(t, "secret", jwt.MapClaims{
		"user_id": "7",
		"email":   "user@example.com",
		"admin":   false,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	var seenAdmin string
	handler := JWTAuth("secret", nil)(func(ctx *fasthttp.RequestCtx) {
		seenAdmin = string(ctx.Request.Header.Peek(HeaderUserAdmin))
	})

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.Set("Authorization", "Bearer "+token)
	ctx.Request.Header.Set(HeaderUserAdmin, "true")
	handler(ctx)

	assert.Empty(t, seenAdmin)
}

func TestJWTAuthRejectsBadTokens(t *testing.T) {
	tests := []struct {
		name  string
		setup func(ctx *fasthttp.RequestCtx, t *testing.T)
	}{
		{
			name:  "missing token",
			setup: func(ctx *fasthttp.RequestCtx, t *testing.T) {},
		},
		{
			name: "wrong signing key",
			setup: func(ctx *fasthttp.RequestCtx, t *testing.T) {
				token := signToken(t, "other-secret", jwt.MapClaims{
					"user_id": "7",
					"exp":     time.Now().Add(time.Hour).Unix(),
				})
				ctx.Request.Header.Set("Authorization", "Bearer "+token)
			},
		},
		{
			name: "expired token",
			setup: func(ctx *fasthttp.RequestCtx, t *testing.T) {
				token := signToken(t, "secret", jwt.MapClaims{
					"user_id": "7",
					"exp":     time.Now().Add(-time.Hour).Unix(),
				})
				ctx.Request.Header.Set("Authorization", "Bearer "+token)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := JWTAuth("secret", nil)(func(ctx *fasthttp.RequestCtx) {
				called = true
			})

			ctx := &fasthttp.RequestCtx{}
			tt.setup(ctx, t)
			handler(ctx)

			assert.False(t, called)
			assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
		})
	}
}
