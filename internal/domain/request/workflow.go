package request

import (
	"fmt"
	"slices"

	"github.com/viaticos/backend/internal/domain/identity"
	"github.com/viaticos/backend/internal/domain/shared"
)

// Action names a workflow operation. The value doubles as the audit action.
type Action string

const (
	ActionCreate            Action = "create_request"
	ActionSubmit            Action = "submit"
	ActionBeginReview       Action = "begin_review"
	ActionStandardize       Action = "admin_standardize"
	ActionBeginCorrection   Action = "begin_correction"
	ActionCreateCorrection  Action = "admin_create_correction"
	ActionSign              Action = "sign_request"
	ActionMarkPaid          Action = "mark_paid"
	ActionRequestCorrection Action = "request_correction"
	ActionCancel            Action = "cancel_request"
)

// Transition is one row of the workflow table
type Transition struct {
	From  []Status
	Roles []identity.Role
	To    Status
}

// Allows reports whether the transition can start from status
func (t Transition) Allows(from Status) bool {
	return slices.Contains(t.From, from)
}

var cancellableFrom = func() []Status {
	out := make([]Status, 0, len(AllStatuses))
	for _, s := range AllStatuses {
		if !s.IsTerminal() {
			out = append(out, s)
		}
	}
	return out
}()

var transitions = map[Action]Transition{
	ActionSubmit: {
		From:  []Status{StatusDraft},
		Roles: []identity.Role{identity.RoleAreaChief},
		To:    StatusSubmittedToAdmin,
	},
	ActionBeginReview: {
		From:  []Status{StatusSubmittedToAdmin},
		Roles: []identity.Role{identity.RoleAdmin},
		To:    StatusAdminReview,
	},
	ActionStandardize: {
		From:  []Status{StatusSubmittedToAdmin, StatusAdminReview},
		Roles: []identity.Role{identity.RoleAdmin},
		To:    StatusPendingSignature,
	},
	ActionBeginCorrection: {
		From:  []Status{StatusTreasuryReturned},
		Roles: []identity.Role{identity.RoleAdmin},
		To:    StatusAdminCorrection,
	},
	ActionCreateCorrection: {
		From:  []Status{StatusTreasuryReturned, StatusAdminCorrection},
		Roles: []identity.Role{identity.RoleAdmin},
		To:    StatusPendingSignature,
	},
	ActionSign: {
		From:  []Status{StatusPendingSignature},
		Roles: []identity.Role{identity.RoleAreaChief},
		To:    StatusReadyForPayment,
	},
	// PAID is accepted so treasury can correct payment details
	ActionMarkPaid: {
		From:  []Status{StatusReadyForPayment, StatusPaid},
		Roles: []identity.Role{identity.RoleTreasury},
		To:    StatusPaid,
	},
	ActionRequestCorrection: {
		From:  []Status{StatusReadyForPayment},
		Roles: []identity.Role{identity.RoleTreasury},
		To:    StatusTreasuryReturned,
	},
	ActionCancel: {
		From:  cancellableFrom,
		Roles: []identity.Role{identity.RoleAdmin},
		To:    StatusCancelled,
	},
}

// TransitionFor returns the workflow rule of an action
func TransitionFor(action Action) (Transition, bool) {
	t, ok := transitions[action]
	return t, ok
}

// RolesFor returns the roles allowed to perform an action
func RolesFor(action Action) []identity.Role {
	return transitions[action].Roles
}

// CreateRoles may open new requests
var CreateRoles = []identity.Role{identity.RoleAreaChief, identity.RoleAdmin}

// NextStatus validates an action from the given state and returns the target state
func NextStatus(action Action, from Status) (Status, error) {
	t, ok := transitions[action]
	if !ok {
		return "", shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Unknown action %s", action))
	}
	if !t.Allows(from) {
		return "", shared.NewDomainError(shared.CodePreconditionFailed,
			fmt.Sprintf("Cannot %s request in %s status", action, from))
	}
	return t.To, nil
}

// AvailableActions lists the actions a role may take from a state
func AvailableActions(from Status, role identity.Role) []Action {
	var out []Action
	for _, action := range []Action{
		ActionSubmit, ActionBeginReview, ActionStandardize, ActionBeginCorrection,
		ActionCreateCorrection, ActionSign, ActionMarkPaid, ActionRequestCorrection, ActionCancel,
	} {
		t := transitions[action]
		if t.Allows(from) && slices.Contains(t.Roles, role) {
			out = append(out, action)
		}
	}
	return out
}
