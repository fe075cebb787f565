package identity

import (
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/viaticos/backend/internal/domain/shared"
)

// Role is the functional role a user acts under
type Role string

const (
	RoleAdmin        Role = "ADMIN"       // Administration: standardizes, corrects and cancels requests
	RoleAreaChief    Role = "JEFE_AREA"   // Area supervisor: creates and signs requests
	RoleTreasury     Role = "TESORERIA"   // Treasury: pays or bounces requests
	RoleCollaborator Role = "COLABORADOR" // Field worker with read-only access
)

// AllRoles lists every known role
var AllRoles = []Role{RoleAdmin, RoleAreaChief, RoleTreasury, RoleCollaborator}

// IsValid reports whether the role is known
func (r Role) IsValid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// Label returns the display name of the role
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Administracion"
	case RoleAreaChief:
		return "Jefe de area"
	case RoleTreasury:
		return "Tesoreria"
	case RoleCollaborator:
		return "Colaborador"
	default:
		return string(r)
	}
}

// User is a person that can act on requests
type User struct {
	shared.BaseEntity
	Name  string
	Email string
	Role  Role
}

// NewUser creates a user after validating name, email and role
func NewUser(name, email string, role Role) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "User name cannot be empty")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invalid email format")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Unknown role: "+string(role))
	}
	return &User{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Email:      email,
		Role:       role,
	}, nil
}

// HasAnyRole reports whether the user holds one of the given roles.
// An empty list accepts any role.
func (u *User) HasAnyRole(roles ...Role) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// Actor is the resolved identity performing an operation
type Actor struct {
	UserID uuid.UUID
	Name   string
	Role   Role
}

// ActorFrom builds an actor from a user
func ActorFrom(u *User) Actor {
	return Actor{UserID: u.ID, Name: u.Name, Role: u.Role}
}
