package middleware

import (
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Headers the middleware forwards to handlers after token validation.
// They form the session context: a read-only identity input.
const (
	HeaderUserID    = "X-User-ID"
	HeaderUserEmail = "X-User-Email"
	HeaderUserAdmin = "X-User-Admin"
)

func JWTAuth(secret string, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			tokenString := extractToken(ctx)
			if tokenString == "" {
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				logger.Warn("invalid jwt token", zap.Error(err))
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			// Strip any client-supplied identity headers before
			// forwarding the verified claims.
			ctx.Request.Header.Del(HeaderUserID)
			ctx.Request.Header.Del(HeaderUserEmail)
			ctx.Request.Header.Del(HeaderUserAdmin)

			if userID, ok := claims["user_id"].(string); ok {
				ctx.Request.Header.Set(HeaderUserID, userID)
			}
			if email, ok := claims["email"].(string); ok {
				ctx.Request.Header.Set(HeaderUserEmail, email)
			}
			if admin, ok := claims["admin"].(bool); ok && admin {
				ctx.Request.Header.Set(HeaderUserAdmin, "true")
			}

			next(ctx)
		}
	}
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}
