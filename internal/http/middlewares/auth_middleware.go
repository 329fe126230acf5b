package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/avelasq/taskhub/internal/session"
)

// SessionResolver is kept small so tests can fake it easily.
type SessionResolver interface {
	Resolve(ctx context.Context, raw string) (session.Record, error)
}

type AuthMiddleware struct {
	sessions SessionResolver
}

func NewAuthMiddleware(sessions SessionResolver) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// RequireAuth resolves the bearer token to a live session and stashes the
// identity on the context. Anything unresolvable is a plain 401; downstream
// ownership checks handle 403.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Missing or invalid Authorization header",
				},
			})
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Missing or invalid session token",
				},
			})
			return
		}

		rec, err := m.sessions.Resolve(c.Request.Context(), raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Invalid or expired session",
				},
			})
			return
		}

		c.Set(CtxUserIDKey, rec.UserID)
		c.Set(CtxSessionKey, rec.JTI)
		c.Set(CtxRawTokenKey, raw)

		c.Next()
	}
}

// Helpers so handlers don't need to know the magic keys.

func UserIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxUserIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

func SessionJTIFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxSessionKey)
	if !ok {
		return "", false
	}
	jti, ok := v.(string)
	return jti, ok
}

func RawTokenFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxRawTokenKey)
	if !ok {
		return "", false
	}
	raw, ok := v.(string)
	return raw, ok
}
