// Package session authenticates users and manages their signed session tokens.
package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/geocoder89/valehub/internal/auth"
	"github.com/geocoder89/valehub/internal/domain"
	"github.com/geocoder89/valehub/internal/domain/user"
	"github.com/geocoder89/valehub/internal/security"
)

// CookieName is the session cookie set on login.
const CookieName = "vale_simplificado_session"

// DefaultTTL is how long a session stays valid.
const DefaultTTL = 7 * 24 * time.Hour

type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
}

type Session struct {
	Token     string
	ExpiresAt time.Time
	User      user.User
}

type Manager struct {
	tokens  *auth.Manager
	revoked RevocationStore
	users   UserLookup
	log     *slog.Logger
}

func NewManager(tokens *auth.Manager, revoked RevocationStore, users UserLookup, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{tokens: tokens, revoked: revoked, users: users, log: log}
}

func (m *Manager) TTL() time.Duration {
	return m.tokens.TTL()
}

// Authenticate checks email + password. Unknown email and wrong password both
// return domain.ErrInvalidCredentials after the same amount of bcrypt work.
func (m *Manager) Authenticate(ctx context.Context, email, password string) (user.User, error) {
	if email == "" || password == "" {
		return user.User{}, domain.ErrInvalidCredentials
	}

	u, err := m.users.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return user.User{}, err
		}
		security.CheckAgainstDummy(password)
		return user.User{}, domain.ErrInvalidCredentials
	}

	if err := security.CheckPassword(u.PasswordHash, password); err != nil {
		return user.User{}, domain.ErrInvalidCredentials
	}

	return u.Public(), nil
}

// Create issues a signed token for u.
func (m *Manager) Create(u user.User) (Session, error) {
	raw, claims, err := m.tokens.GenerateSessionToken(u)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: raw, ExpiresAt: claims.ExpiresAt.Time, User: u.Public()}, nil
}

// Resolve returns the current user behind token. Any problem (missing,
// malformed, expired, revoked, user gone) yields ok=false.
func (m *Manager) Resolve(ctx context.Context, token string) (user.User, bool) {
	if token == "" {
		return user.User{}, false
	}

	claims, err := m.tokens.VerifySessionToken(token)
	if err != nil {
		return user.User{}, false
	}

	revoked, err := m.revoked.IsRevoked(ctx, claims.JTI)
	if err != nil {
		m.log.WarnContext(ctx, "session revocation check failed", "err", err)
		return user.User{}, false
	}
	if revoked {
		return user.User{}, false
	}

	u, err := m.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			m.log.WarnContext(ctx, "session user lookup failed", "err", err, "user_id", claims.UserID)
		}
		return user.User{}, false
	}

	return u.Public(), true
}

// Destroy revokes token. Unknown or invalid tokens are ignored.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := m.tokens.VerifySessionToken(token)
	if err != nil {
		return nil
	}
	return m.revoked.Revoke(ctx, claims.JTI, claims.ExpiresAt.Time)
}
