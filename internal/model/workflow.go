package model

// Workflow actions accepted by the state machine.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
	ActionProcess = "process"
	ActionDeliver = "deliver"
	ActionCancel  = "cancel"
)

// Authority roles. These are both the token types handed to external
// approvers and the capability level a portal session maps to.
const (
	RoleSupervisor = "SUPERVISOR"
	RoleKitchen    = "KITCHEN"
	RoleAdmin      = "ADMIN"
	// RoleRequester is granted ad hoc to the user who created a request,
	// only for withdrawing it. It is never issued as a token type.
	RoleRequester = "REQUESTER"
)

// Session role names stored on portal users.
const (
	SessionRoleAdmin   = "admin"
	SessionRoleGA      = "ga"
	SessionRoleKitchen = "kitchen"
	SessionRoleStaff   = "staff"
)

// stagePlans lists the pending stages each request type walks through, in
// order. MEAL carries the extra GA review; the other types go straight from
// supervisor approval to the kitchen queue. Product decision pending
// confirmation; changing a type's chain is a one-line edit here.
var stagePlans = map[string][]string{
	TypeMeal:       {StatusPendingSupervisor, StatusPendingGA, StatusPendingKitchen},
	TypeTransport:  {StatusPendingSupervisor, StatusPendingKitchen},
	TypeRoom:       {StatusPendingSupervisor, StatusPendingKitchen},
	TypeStationary: {StatusPendingSupervisor, StatusPendingKitchen},
}

// stageAuthority maps a stage to the single authority role whose token (or
// equivalent session) may act on it.
var stageAuthority = map[string]string{
	StatusPendingSupervisor: RoleSupervisor,
	StatusPendingGA:         RoleAdmin,
	StatusPendingKitchen:    RoleKitchen,
	StatusInProgress:        RoleKitchen,
}

// allowedActions is the single authorization table keyed (status, action) ->
// permitted roles. Every call site consults this table instead of deriving
// role checks ad hoc.
var allowedActions = map[string]map[string][]string{
	StatusPendingSupervisor: {
		ActionApprove: {RoleSupervisor, RoleAdmin},
		ActionReject:  {RoleSupervisor, RoleAdmin},
		ActionCancel:  {RoleAdmin, RoleRequester},
	},
	StatusPendingGA: {
		ActionApprove: {RoleAdmin},
		ActionReject:  {RoleAdmin},
		ActionCancel:  {RoleAdmin, RoleRequester},
	},
	StatusPendingKitchen: {
		ActionApprove: {RoleKitchen, RoleAdmin},
		ActionProcess: {RoleKitchen, RoleAdmin},
		ActionReject:  {RoleKitchen, RoleAdmin},
		ActionCancel:  {RoleAdmin, RoleRequester},
	},
	StatusInProgress: {
		ActionProcess: {RoleKitchen, RoleAdmin}, // idempotent no-op
		ActionDeliver: {RoleKitchen, RoleAdmin},
	},
}

// StagePlanFor returns the ordered pending-stage chain for a request type.
// Unknown types fall back to the full MEAL chain.
func StagePlanFor(requestType string) []string {
	if plan, ok := stagePlans[requestType]; ok {
		return plan
	}
	return stagePlans[TypeMeal]
}

// RequiredRoleFor returns the authority role that may act while the request
// sits in the given status, or "" for terminal states.
func RequiredRoleFor(status string) string {
	return stageAuthority[status]
}

// AuthorityForSessionRole maps a portal session role to its workflow
// authority. Staff sessions carry no stage authority.
func AuthorityForSessionRole(sessionRole string) string {
	switch sessionRole {
	case SessionRoleAdmin, SessionRoleGA:
		return RoleAdmin
	case SessionRoleKitchen:
		return RoleKitchen
	default:
		return ""
	}
}

// IsTerminal reports whether no transition is legal out of the status.
func IsTerminal(status string) bool {
	switch status {
	case StatusCompleted, StatusCancelled,
		StatusRejectedSupervisor, StatusRejectedGA, StatusRejectedKitchen:
		return true
	}
	return false
}

// RoleMayAct consults the authorization table for (status, action, role).
func RoleMayAct(status, action, role string) bool {
	actions, ok := allowedActions[status]
	if !ok {
		return false
	}
	for _, r := range actions[action] {
		if r == role {
			return true
		}
	}
	return false
}

// NextStatus computes the successor status for an action applied to a
// request of the given type in the given status. It returns a
// TransitionError for any edge not in the workflow graph. Authorization is
// checked separately via RoleMayAct.
func NextStatus(requestType, status, action string) (string, error) {
	if IsTerminal(status) {
		return "", &TransitionError{Status: status, Action: action}
	}

	switch status {
	case StatusPendingSupervisor:
		switch action {
		case ActionApprove:
			plan := StagePlanFor(requestType)
			for i, stage := range plan {
				if stage == StatusPendingSupervisor && i+1 < len(plan) {
					return plan[i+1], nil
				}
			}
			return StatusPendingKitchen, nil
		case ActionReject:
			return StatusRejectedSupervisor, nil
		case ActionCancel:
			return StatusCancelled, nil
		}
	case StatusPendingGA:
		switch action {
		case ActionApprove:
			return StatusPendingKitchen, nil
		case ActionReject:
			return StatusRejectedGA, nil
		case ActionCancel:
			return StatusCancelled, nil
		}
	case StatusPendingKitchen:
		switch action {
		case ActionApprove, ActionProcess:
			return StatusInProgress, nil
		case ActionReject:
			return StatusRejectedKitchen, nil
		case ActionCancel:
			return StatusCancelled, nil
		}
	case StatusInProgress:
		switch action {
		case ActionProcess:
			return StatusInProgress, nil // kitchen page may repost; treat as no-op
		case ActionDeliver:
			return StatusCompleted, nil
		}
	}

	return "", &TransitionError{Status: status, Action: action}
}

// IsPendingStage reports whether the status is one of the PENDING_* stages
// that issues an approval token on entry.
func IsPendingStage(status string) bool {
	switch status {
	case StatusPendingSupervisor, StatusPendingGA, StatusPendingKitchen:
		return true
	}
	return false
}
