package shared

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type actorContextKey struct{}

// ActorHeader carries the operator identifier on API requests.
const ActorHeader = "X-Actor-ID"

// ContextWithActor stores the operator id in context.
func ContextWithActor(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actorID)
}

// ActorFromContext extracts the operator id from context.
func ActorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(actorContextKey{}).(string)
	return actor
}

// ActorFromRequest reads and validates the operator id header.
func ActorFromRequest(r *http.Request) (string, error) {
	raw := r.Header.Get(ActorHeader)
	if raw == "" {
		return "", ErrInvalidActor
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", ErrInvalidActor
	}
	return id.String(), nil
}
