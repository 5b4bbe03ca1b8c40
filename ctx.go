package identity

import (
	"context"
)

var actorCtxKey = &contextKey{"actor"}
var principalCtxKey = &contextKey{"principal"}

type contextKey struct {
	name string
}

// WithActor sets the calling Actor in the given context. The HTTP layer is
// expected to populate this after resolving the bearer token.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorCtxKey, actor)
}

// ActorFromContext finds the calling Actor from the context.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	raw, ok := ctx.Value(actorCtxKey).(Actor)
	return raw, ok
}

// WithPrincipal sets the resolved Principal in the given context
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey, p)
}

// PrincipalFromContext finds the resolved Principal from the context.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	raw, ok := ctx.Value(principalCtxKey).(*Principal)
	return raw, ok
}
