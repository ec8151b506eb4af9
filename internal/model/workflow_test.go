package model

import "testing"

func TestStagePlanMealIncludesGA(t *testing.T) {
	plan := StagePlanFor(TypeMeal)
	want := []string{StatusPendingSupervisor, StatusPendingGA, StatusPendingKitchen}
	if len(plan) != len(want) {
		t.Fatalf("expected %d stages, got %d", len(want), len(plan))
	}
	for i := range want {
		if plan[i] != want[i] {
			t.Errorf("stage %d: expected %s, got %s", i, want[i], plan[i])
		}
	}
}

func TestStagePlanTransportSkipsGA(t *testing.T) {
	for _, typ := range []string{TypeTransport, TypeRoom, TypeStationary} {
		plan := StagePlanFor(typ)
		for _, stage := range plan {
			if stage == StatusPendingGA {
				t.Errorf("%s plan must not include GA stage", typ)
			}
		}
	}
}

func TestNextStatusHappyPathMeal(t *testing.T) {
	steps := []struct {
		status string
		action string
		want   string
	}{
		{StatusPendingSupervisor, ActionApprove, StatusPendingGA},
		{StatusPendingGA, ActionApprove, StatusPendingKitchen},
		{StatusPendingKitchen, ActionProcess, StatusInProgress},
		{StatusInProgress, ActionDeliver, StatusCompleted},
	}
	for _, s := range steps {
		got, err := NextStatus(TypeMeal, s.status, s.action)
		if err != nil {
			t.Fatalf("%s + %s: unexpected error: %v", s.status, s.action, err)
		}
		if got != s.want {
			t.Errorf("%s + %s: expected %s, got %s", s.status, s.action, s.want, got)
		}
	}
}

func TestNextStatusTransportApprovalSkipsGA(t *testing.T) {
	got, err := NextStatus(TypeTransport, StatusPendingSupervisor, ActionApprove)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != StatusPendingKitchen {
		t.Errorf("expected %s, got %s", StatusPendingKitchen, got)
	}
}

func TestNextStatusRejections(t *testing.T) {
	cases := []struct {
		status string
		want   string
	}{
		{StatusPendingSupervisor, StatusRejectedSupervisor},
		{StatusPendingGA, StatusRejectedGA},
		{StatusPendingKitchen, StatusRejectedKitchen},
	}
	for _, c := range cases {
		got, err := NextStatus(TypeMeal, c.status, ActionReject)
		if err != nil {
			t.Fatalf("reject at %s: unexpected error: %v", c.status, err)
		}
		if got != c.want {
			t.Errorf("reject at %s: expected %s, got %s", c.status, c.want, got)
		}
	}
}

func TestNextStatusTerminalStatesAreFrozen(t *testing.T) {
	terminals := []string{
		StatusCompleted, StatusCancelled,
		StatusRejectedSupervisor, StatusRejectedGA, StatusRejectedKitchen,
	}
	actions := []string{ActionApprove, ActionReject, ActionProcess, ActionDeliver, ActionCancel}
	for _, status := range terminals {
		for _, action := range actions {
			if _, err := NextStatus(TypeMeal, status, action); err == nil {
				t.Errorf("expected error for %s in terminal %s", action, status)
			}
		}
	}
}

func TestNextStatusNoSkippingStages(t *testing.T) {
	// Deliver straight from a pending stage must be illegal.
	for _, status := range []string{StatusPendingSupervisor, StatusPendingGA, StatusPendingKitchen} {
		if _, err := NextStatus(TypeMeal, status, ActionDeliver); err == nil {
			t.Errorf("deliver from %s should be illegal", status)
		}
	}
	// Process before the kitchen queue must be illegal.
	for _, status := range []string{StatusPendingSupervisor, StatusPendingGA} {
		if _, err := NextStatus(TypeMeal, status, ActionProcess); err == nil {
			t.Errorf("process from %s should be illegal", status)
		}
	}
}

func TestNextStatusProcessIdempotentInProgress(t *testing.T) {
	got, err := NextStatus(TypeMeal, StatusInProgress, ActionProcess)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != StatusInProgress {
		t.Errorf("expected IN_PROGRESS no-op, got %s", got)
	}
}

func TestNextStatusCancelOnlyFromPending(t *testing.T) {
	for _, status := range []string{StatusPendingSupervisor, StatusPendingGA, StatusPendingKitchen} {
		got, err := NextStatus(TypeMeal, status, ActionCancel)
		if err != nil {
			t.Fatalf("cancel at %s: unexpected error: %v", status, err)
		}
		if got != StatusCancelled {
			t.Errorf("cancel at %s: expected CANCELLED, got %s", status, got)
		}
	}
	if _, err := NextStatus(TypeMeal, StatusInProgress, ActionCancel); err == nil {
		t.Error("cancel from IN_PROGRESS should be illegal")
	}
}

func TestRoleMayActAuthority(t *testing.T) {
	cases := []struct {
		status string
		action string
		role   string
		want   bool
	}{
		{StatusPendingSupervisor, ActionApprove, RoleSupervisor, true},
		{StatusPendingSupervisor, ActionApprove, RoleKitchen, false},
		{StatusPendingSupervisor, ActionApprove, RoleAdmin, true},
		{StatusPendingGA, ActionApprove, RoleSupervisor, false},
		{StatusPendingGA, ActionApprove, RoleAdmin, true},
		{StatusPendingKitchen, ActionProcess, RoleKitchen, true},
		{StatusPendingKitchen, ActionCancel, RoleKitchen, false},
		{StatusPendingSupervisor, ActionCancel, RoleRequester, true},
		{StatusInProgress, ActionCancel, RoleRequester, false},
		{StatusInProgress, ActionDeliver, RoleKitchen, true},
		{StatusInProgress, ActionDeliver, RoleSupervisor, false},
	}
	for _, c := range cases {
		if got := RoleMayAct(c.status, c.action, c.role); got != c.want {
			t.Errorf("RoleMayAct(%s, %s, %s) = %v, want %v", c.status, c.action, c.role, got, c.want)
		}
	}
}

func TestAuthorityForSessionRole(t *testing.T) {
	if got := AuthorityForSessionRole(SessionRoleAdmin); got != RoleAdmin {
		t.Errorf("admin session: expected %s, got %s", RoleAdmin, got)
	}
	if got := AuthorityForSessionRole(SessionRoleGA); got != RoleAdmin {
		t.Errorf("ga session: expected %s, got %s", RoleAdmin, got)
	}
	if got := AuthorityForSessionRole(SessionRoleKitchen); got != RoleKitchen {
		t.Errorf("kitchen session: expected %s, got %s", RoleKitchen, got)
	}
	if got := AuthorityForSessionRole(SessionRoleStaff); got != "" {
		t.Errorf("staff session: expected no authority, got %s", got)
	}
}

func TestRequiredRoleForStages(t *testing.T) {
	cases := map[string]string{
		StatusPendingSupervisor: RoleSupervisor,
		StatusPendingGA:         RoleAdmin,
		StatusPendingKitchen:    RoleKitchen,
		StatusInProgress:        RoleKitchen,
		StatusCompleted:         "",
	}
	for status, want := range cases {
		if got := RequiredRoleFor(status); got != want {
			t.Errorf("RequiredRoleFor(%s) = %q, want %q", status, got, want)
		}
	}
}
