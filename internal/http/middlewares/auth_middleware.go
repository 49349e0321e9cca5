package middlewares

import (
	"context"
	"net/http"

	"github.com/geocoder89/valehub/internal/actorctx"
	"github.com/geocoder89/valehub/internal/domain/user"
	"github.com/geocoder89/valehub/internal/policy"
	"github.com/geocoder89/valehub/internal/session"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (user.User, bool)
}

// LoadSession resolves the session cookie, when present, and stashes the
// current user on both the gin and the request context. It never rejects.
func LoadSession(sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(session.CookieName)
		if err != nil || raw == "" {
			c.Next()
			return
		}

		u, ok := sessions.Resolve(c.Request.Context(), raw)
		if ok {
			c.Set(CtxUser, u)
			c.Request = c.Request.WithContext(actorctx.WithActor(c.Request.Context(), policy.ActorOf(u)))
		}

		c.Next()
	}
}

// RequireSession rejects API calls without a valid session.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Authentication required",
				},
			})
			return
		}
		c.Next()
	}
}

// RequirePage sends visitors without a session to the login page.
func RequirePage() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GuestOnly sends signed-in users away from the login page.
func GuestOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); ok {
			c.Redirect(http.StatusFound, "/dashboard")
			c.Abort()
			return
		}
		c.Next()
	}
}

// Optional helpers so handlers don’t need to know the magic keys.

func CurrentUser(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(CtxUser)
	if !ok {
		return user.User{}, false
	}
	u, ok := v.(user.User)
	return u, ok
}

// ActorFrom returns the signed-in actor, or the zero Actor which every
// policy check denies.
func ActorFrom(c *gin.Context) policy.Actor {
	u, ok := CurrentUser(c)
	if !ok {
		return policy.Actor{}
	}
	return policy.ActorOf(u)
}
