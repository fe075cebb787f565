package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/viaticos/backend/internal/domain/shared"
)

// RepositoryResolver resolves actors from the user store
type RepositoryResolver struct {
	users UserRepository
}

// NewRepositoryResolver creates a resolver backed by the user repository
func NewRepositoryResolver(users UserRepository) *RepositoryResolver {
	return &RepositoryResolver{users: users}
}

// Resolve loads the user and checks the role. A missing user and a role
// mismatch both report ACTOR_NOT_FOUND.
func (r *RepositoryResolver) Resolve(ctx context.Context, userID uuid.UUID, allowed ...Role) (Actor, error) {
	if userID == uuid.Nil {
		return Actor{}, shared.NewDomainError(shared.CodeActorNotFound, "Actor id is required")
	}
	user, err := r.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Actor{}, shared.NewDomainError(shared.CodeActorNotFound, "Actor not found")
		}
		return Actor{}, fmt.Errorf("resolve actor: %w", err)
	}
	if !user.HasAnyRole(allowed...) {
		return Actor{}, shared.NewDomainError(shared.CodeActorNotFound,
			fmt.Sprintf("No actor with role %s", describeRoles(allowed)))
	}
	return ActorFrom(user), nil
}

func describeRoles(roles []Role) string {
	out := ""
	for i, r := range roles {
		if i > 0 {
			out += "|"
		}
		out += string(r)
	}
	return out
}
