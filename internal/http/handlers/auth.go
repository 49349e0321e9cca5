package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/valehub/internal/domain"
	"github.com/geocoder89/valehub/internal/domain/user"
	"github.com/geocoder89/valehub/internal/http/middlewares"
	"github.com/geocoder89/valehub/internal/session"
	"github.com/gin-gonic/gin"
)

type Sessions interface {
	Authenticate(ctx context.Context, email, password string) (user.User, error)
	Create(u user.User) (session.Session, error)
	Destroy(ctx context.Context, token string) error
	TTL() time.Duration
}

// LoginRecorder counts login outcomes. nil disables it.
type LoginRecorder interface {
	ObserveLogin(result string)
	ObserveLogout()
}

type AuthHandler struct {
	sessions Sessions
	metrics  LoginRecorder
	secure   bool
}

func NewAuthHandler(sessions Sessions, metrics LoginRecorder, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		metrics:  metrics,
		secure:   secureCookie,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	u, err := h.sessions.Authenticate(cctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			h.observe("invalid")
		} else {
			h.observe("error")
		}
		RespondDomainError(ctx, err, "", "Could not sign in")
		return
	}

	s, err := h.sessions.Create(u)
	if err != nil {
		h.observe("error")
		RespondInternal(ctx, "Could not create session")
		return
	}

	h.setSessionCookie(ctx, s.Token)
	h.observe("success")

	ctx.JSON(http.StatusOK, gin.H{
		"user": s.User,
	})
}

// Logout always clears the cookie, whether or not a session was present.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	raw, _ := ctx.Cookie(session.CookieName)

	if raw != "" {
		cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()

		if err := h.sessions.Destroy(cctx, raw); err != nil {
			// the cookie is still cleared; the token expires on its own
			slog.Default().WarnContext(cctx, "session revoke failed", "err", err, "request_id", requestIDFrom(ctx))
		}
		if h.metrics != nil {
			h.metrics.ObserveLogout()
		}
	}

	h.clearSessionCookie(ctx)
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// Session reports the user behind the cookie, resolved by LoadSession.
func (h *AuthHandler) Session(ctx *gin.Context) {
	u, ok := middlewares.CurrentUser(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"user": nil})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *AuthHandler) observe(result string) {
	if h.metrics != nil {
		h.metrics.ObserveLogin(result)
	}
}

func (h *AuthHandler) setSessionCookie(ctx *gin.Context, token string) {
	ctx.SetSameSite(http.SameSiteLaxMode)

	ctx.SetCookie(
		session.CookieName,
		token,
		int(h.sessions.TTL().Seconds()),
		"/",
		"",
		h.secure,
		true, // HttpOnly.
	)
}

func (h *AuthHandler) clearSessionCookie(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(
		session.CookieName,
		"",
		-1,
		"/",
		"",
		h.secure,
		true,
	)
}
