package auth

import (
	"testing"
	"time"

	"github.com/geocoder89/valehub/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() user.User {
	return user.User{
		ID:           "user1",
		Email:        "funcionario1@empresa.com",
		Name:         "Ana Silva",
		Role:         user.RoleEmployee,
		PasswordHash: "$2a$10$secret",
	}
}

func TestSessionToken_RoundTrip(t *testing.T) {
	m := NewManager("test-secret", 7*24*time.Hour)

	raw, issued, err := m.GenerateSessionToken(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, raw)
	assert.NotEmpty(t, issued.JTI)

	claims, err := m.VerifySessionToken(raw)
	require.NoError(t, err)

	assert.Equal(t, "user1", claims.UserID)
	assert.Equal(t, user.RoleEmployee, claims.Role)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestSessionToken_RejectsWrongSecret(t *testing.T) {
	raw, _, err := NewManager("a", time.Hour).GenerateSessionToken(testUser())
	require.NoError(t, err)

	_, err = NewManager("b", time.Hour).VerifySessionToken(raw)
	assert.Error(t, err)
}

func TestSessionToken_RejectsExpired(t *testing.T) {
	m := NewManager("s", time.Hour)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	raw, _, err := m.GenerateSessionToken(testUser())
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.VerifySessionToken(raw)
	assert.Error(t, err)
}

func TestSessionToken_RejectsGarbage(t *testing.T) {
	m := NewManager("s", time.Hour)

	for _, raw := range []string{"", "abc", "a.b.c", `{"id":"admin","role":"admin"}`} {
		_, err := m.VerifySessionToken(raw)
		assert.Error(t, err, raw)
	}
}
