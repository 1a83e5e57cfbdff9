package auth

import (
	"context"

	"connectrpc.com/connect"
	"github.com/mcdev12/icetime/go/internal/models"
)

type actorKey struct{}

// WithActor returns a context carrying the authenticated actor
func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor set by the interceptor or middleware
func ActorFromContext(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(models.Actor)
	return actor, ok
}

// RequireActor is ActorFromContext for handlers that must not run anonymously
func RequireActor(ctx context.Context) (models.Actor, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return models.Actor{}, connect.NewError(connect.CodeUnauthenticated, ErrMissingToken)
	}
	return actor, nil
}
