package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"marketplace-backend/internal/models"
	"marketplace-backend/internal/policy"
)

const (
	currentUserKey = "currentUser"

	// SessionUserKey is the session value holding the logged-in user id.
	SessionUserKey = "user_id"
)

// Identity resolves who is calling. accounts.Service satisfies it.
type Identity interface {
	User(ctx context.Context, id uint) (*models.User, error)
	ParseToken(raw string) (uint, error)
}

// Authenticate attaches the caller, if any, to the context. A bearer token
// wins over the session cookie. A bad token is rejected outright; a stale
// session is cleared and the request continues anonymously.
func Authenticate(ids Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		if header := c.GetHeader("Authorization"); header != "" {
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must be a Bearer token"})
				return
			}
			id, err := ids.ParseToken(strings.TrimSpace(raw))
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
				return
			}
			u, err := ids.User(c.Request.Context(), id)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
				return
			}
			c.Set(currentUserKey, u)
			c.Next()
			return
		}

		sess := sessions.Default(c)
		if id, ok := sess.Get(SessionUserKey).(uint); ok && id != 0 {
			u, err := ids.User(c.Request.Context(), id)
			if err == nil {
				c.Set(currentUserKey, u)
			} else {
				sess.Clear()
				_ = sess.Save()
			}
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated caller or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(currentUserKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

// RequireAuth rejects anonymous callers.
func RequireAuth(c *gin.Context) {
	if CurrentUser(c) == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided."})
		return
	}
	c.Next()
}

// SellerOrReadOnly lets reads through and requires a seller for writes.
func SellerOrReadOnly(c *gin.Context) {
	caller := CurrentUser(c)
	if policy.Allow(c.Request.Method, caller) {
		c.Next()
		return
	}
	if caller == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided."})
		return
	}
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to perform this action."})
}
