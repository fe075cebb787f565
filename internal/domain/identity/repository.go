package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*User, error)

	// List returns all users, optionally narrowed to one role
	List(ctx context.Context, role *Role) ([]*User, error)
}

// ActorResolver resolves the explicit caller of an operation and checks
// that it holds one of the allowed roles.
type ActorResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID, allowed ...Role) (Actor, error)
}
