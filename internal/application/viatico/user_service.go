package viatico

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/viaticos/backend/internal/domain/audit"
	"github.com/viaticos/backend/internal/domain/identity"
	"github.com/viaticos/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CreateUserInput describes a new user
type CreateUserInput struct {
	Name  string
	Email string
	Role  identity.Role
}

// UserService manages the users that act on requests
type UserService struct {
	users    identity.UserRepository
	resolver identity.ActorResolver
	audit    *auditRecorder
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(users identity.UserRepository, resolver identity.ActorResolver, sink audit.Sink, logger *zap.Logger) *UserService {
	return &UserService{
		users:    users,
		resolver: resolver,
		audit:    newAuditRecorder(sink, logger),
		logger:   logger,
	}
}

// CreateUser registers a user; only administrators may do it
func (s *UserService) CreateUser(ctx context.Context, actorID uuid.UUID, in CreateUserInput) (*UserResponse, error) {
	actor, err := s.resolver.Resolve(ctx, actorID, identity.RoleAdmin)
	if err != nil {
		return nil, err
	}
	user, err := s.create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.audit.record(ctx, audit.NewEvent(audit.EntityUser, user.ID, audit.ActionCreateUser, map[string]any{
		"email": user.Email,
		"role":  string(user.Role),
	}, actor.UserID))
	resp := ToUserResponse(user)
	return &resp, nil
}

// EnsureUser returns the user with the given email, creating it when absent.
// It backs the bootstrap administrator of a fresh installation.
func (s *UserService) EnsureUser(ctx context.Context, in CreateUserInput) (*UserResponse, error) {
	user, err := identity.NewUser(in.Name, in.Email, in.Role)
	if err != nil {
		return nil, err
	}
	existing, err := s.users.FindByEmail(ctx, user.Email)
	if err == nil {
		resp := ToUserResponse(existing)
		return &resp, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("Bootstrap user created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))
	resp := ToUserResponse(user)
	return &resp, nil
}

// ListUsers returns users, optionally narrowed to one role
func (s *UserService) ListUsers(ctx context.Context, role *identity.Role) ([]UserResponse, error) {
	users, err := s.users.List(ctx, role)
	if err != nil {
		return nil, err
	}
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserResponse(u))
	}
	return out, nil
}

func (s *UserService) create(ctx context.Context, in CreateUserInput) (*identity.User, error) {
	user, err := identity.NewUser(in.Name, in.Email, in.Role)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.FindByEmail(ctx, user.Email); err == nil {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists,
			fmt.Sprintf("User with email %s already exists", user.Email))
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
