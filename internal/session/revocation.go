package session

import (
	"context"
	"time"

	"github.com/geocoder89/valehub/internal/cache"
)

// RevocationStore remembers logged-out token ids until the token would have
// expired anyway.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type MemoryRevocations struct {
	c *cache.Cache[struct{}]
}

func NewMemoryRevocations() *MemoryRevocations {
	return &MemoryRevocations{c: cache.New[struct{}]()}
}

func (m *MemoryRevocations) Revoke(_ context.Context, jti string, until time.Time) error {
	m.c.Sweep()
	m.c.SetUntil(jti, struct{}{}, until)
	return nil
}

// Sweep drops entries whose token has expired and returns how many went.
func (m *MemoryRevocations) Sweep() int {
	return m.c.Sweep()
}

func (m *MemoryRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	_, ok := m.c.Get(jti)
	return ok, nil
}

type redisMarker interface {
	MarkUntil(ctx context.Context, key string, exp time.Time) error
	Exists(ctx context.Context, key string) (bool, error)
}

// RedisRevocations shares the revocation list between API instances.
type RedisRevocations struct {
	client redisMarker
	prefix string
}

func NewRedisRevocations(client redisMarker) *RedisRevocations {
	return &RedisRevocations{client: client, prefix: "valehub:session:revoked:"}
}

func (r *RedisRevocations) key(jti string) string {
	return r.prefix + jti
}

func (r *RedisRevocations) Revoke(ctx context.Context, jti string, until time.Time) error {
	return r.client.MarkUntil(ctx, r.key(jti), until)
}

func (r *RedisRevocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return r.client.Exists(ctx, r.key(jti))
}
