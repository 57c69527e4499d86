package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DipuTony/trulyhelp-portal/internal/access"
	"github.com/DipuTony/trulyhelp-portal/internal/session"
)

// RequireRole gates a route group on an exact role. A request without an
// active session is redirected to login; an active session with the wrong
// role is redirected to its own home instead of seeing a bare 403.
func RequireRole(sessions *session.Store, required session.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := access.Decide(required, sessions.Current())
		if !decision.Allowed {
			c.Redirect(http.StatusSeeOther, decision.Target)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAnyRole gates a route shared by several roles.
func RequireAnyRole(sessions *session.Store, roles ...session.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := access.DecideAny(roles, sessions.Current())
		if !decision.Allowed {
			c.Redirect(http.StatusSeeOther, decision.Target)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAuthenticated gates a route group on any active session, regardless
// of role.
func RequireAuthenticated(sessions *session.Store) gin.HandlerFunc {
	return RequireRole(sessions, access.AnyRole)
}
