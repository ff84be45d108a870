package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// SessionCookie carries the browser session id.
	SessionCookie = "pr_session"
	sessionIDKey  = "sessionId"
	sessionMaxAge = 12 * 60 * 60
)

// Session makes sure every browser carries a session id cookie and stores the
// id in context. Unknown or malformed ids are replaced.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(SessionCookie)
		if err != nil || uuid.Validate(strings.TrimSpace(id)) != nil {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, id, sessionMaxAge, "/", "", false, true)
		}
		c.Set(sessionIDKey, id)
		c.Next()
	}
}

// SessionIDFromContext fetches the session ID set by the Session middleware.
func SessionIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(sessionIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}
