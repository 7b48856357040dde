package session

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
)

type ctxKey struct{}

// WithSession stores a resolved session in a request context.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session placed by Require.
func FromContext(ctx context.Context) (Session, bool) {
	v := ctx.Value(ctxKey{})
	if s, ok := v.(Session); ok {
		return s, true
	}
	return Session{}, false
}

// Require resolves the bearer token to a live session and injects it into
// the request context. Requests without one are rejected with 401.
func Require(g *Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(authorizationHeader))
		if raw == "" || !strings.HasPrefix(raw, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tok := strings.TrimPrefix(raw, bearerPrefix)

		s, err := g.Get(c.Request.Context(), tok)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
			return
		}
		c.Request = c.Request.WithContext(WithSession(c.Request.Context(), s))
		c.Next()
	}
}

// RequireElevated admits only elevated sessions. Standard users are sent to
// the standard protected view rather than refused outright.
func RequireElevated(standardViewPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := FromContext(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session required"})
			return
		}
		if !s.Elevated {
			c.Redirect(http.StatusSeeOther, standardViewPath)
			c.Abort()
			return
		}
		c.Next()
	}
}
