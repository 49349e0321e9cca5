// Package actorctx carries the signed-in actor on a context.Context so code
// below the HTTP layer (logging, services) can read it.
package actorctx

import (
	"context"

	"github.com/geocoder89/valehub/internal/policy"
)

type ctxKey struct{}

func WithActor(ctx context.Context, actor policy.Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, actor)
}

func ActorFrom(ctx context.Context) (policy.Actor, bool) {
	a, ok := ctx.Value(ctxKey{}).(policy.Actor)
	return a, ok && a.UserID != ""
}
