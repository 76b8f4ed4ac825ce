package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/scrapedeck/scrapedeck/session"
)

// SessionCookie is the cookie that binds a browser to its panel state.
const SessionCookie = "sd_session"

const sessionKey = "session"

// Session resolves the caller's session from the cookie, minting a new
// one when the cookie is missing, stale or forged. The session is
// stashed in the gin context for handlers to pick up.
func Session(store *session.Store, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(SessionCookie)
		sess := store.GetOrCreate(id)
		if sess.ID != id {
			c.SetCookie(SessionCookie, sess.ID, int(ttl.Seconds()), "/", "", false, true)
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

// CurrentSession returns the session bound by the Session middleware.
func CurrentSession(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}
