package shared

import (
	"context"
	"strings"
)

// Actor identifies the authenticated caller. The ledger treats ID as opaque and
// only stamps it on audit records, closed_by and reopened_by.
type Actor struct {
	ID          int64
	Subject     string
	Permissions []string
}

// HasPermission reports whether the actor was granted perm (case-insensitive).
func (a Actor) HasPermission(perm string) bool {
	perm = strings.ToLower(strings.TrimSpace(perm))
	for _, granted := range a.Permissions {
		granted = strings.ToLower(strings.TrimSpace(granted))
		if granted == perm || granted == "*" {
			return true
		}
	}
	return false
}

type actorContextKey struct{}

// ContextWithActor stores the actor in context.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor from context.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}

// ActorID returns the actor id from context or zero for system calls.
func ActorID(ctx context.Context) int64 {
	actor, _ := ActorFromContext(ctx)
	return actor.ID
}
