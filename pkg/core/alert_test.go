package core

import "testing"

// TestNormalizeAlertState covers P1: for every raw state, normalized_state is
// exactly one of {firing, resolved, unknown} and ends_at_kind pairs as specified.
func TestNormalizeAlertState(t *testing.T) {
	tests := []struct {
		raw       string
		wantState NormalizedState
		wantKind  EndsAtKind
	}{
		{"active", StateFiring, EndsAtExpiresAt},
		{"suppressed", StateFiring, EndsAtExpiresAt},
		{"unprocessed", StateFiring, EndsAtExpiresAt},
		{"ACTIVE", StateFiring, EndsAtExpiresAt},
		{"inactive", StateResolved, EndsAtResolvedAt},
		{"resolved", StateResolved, EndsAtResolvedAt},
		{"", StateUnknown, EndsAtUnknown},
		{"weird", StateUnknown, EndsAtUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			gotState, gotKind := NormalizeAlertState(tt.raw)
			if gotState != tt.wantState || gotKind != tt.wantKind {
				t.Errorf("NormalizeAlertState(%q) = (%v, %v), want (%v, %v)", tt.raw, gotState, gotKind, tt.wantState, tt.wantKind)
			}
		})
	}
}

// TestNormalizeAlertState_S2 is the literal seed scenario S2.
func TestNormalizeAlertState_S2(t *testing.T) {
	state, kind := NormalizeAlertState("active")
	if state != StateFiring || kind != EndsAtExpiresAt {
		t.Errorf("got (%v, %v), want (firing, expires_at)", state, kind)
	}
}

func TestAlertInstance_ParseStartsAt(t *testing.T) {
	a := &AlertInstance{StartsAt: "2025-01-01T00:00:00Z"}
	ts, ok := a.ParseStartsAt()
	if !ok {
		t.Fatal("expected ok=true")
	}
	if ts.Year() != 2025 {
		t.Errorf("unexpected parsed year: %v", ts)
	}

	empty := &AlertInstance{}
	if _, ok := empty.ParseStartsAt(); ok {
		t.Error("expected ok=false for empty StartsAt")
	}

	bad := &AlertInstance{StartsAt: "not-a-time"}
	if _, ok := bad.ParseStartsAt(); ok {
		t.Error("expected ok=false for unparseable StartsAt")
	}
}
