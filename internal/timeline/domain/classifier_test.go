package domain

import (
	"testing"
	"time"
)

var now = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func ptr(t time.Time) *time.Time { return &t }

func TestClassify_CompletedAtDominates(t *testing.T) {
	// A recorded completion wins regardless of name or target date.
	past := now.AddDate(0, 0, -30)
	future := now.AddDate(0, 0, 30)

	for _, name := range CanonicalOrder {
		for _, target := range []*time.Time{nil, ptr(past), ptr(future)} {
			got := Classify(name, target, ptr(past), now)
			if got != StatusCompleted {
				t.Fatalf("Classify(%q) with completedAt set: got %s, want %s", name, got, StatusCompleted)
			}
		}
	}
}

func TestClassify_NoTargetIsPending(t *testing.T) {
	got := Classify(MilestoneInspectionDue, nil, nil, now)
	if got != StatusPending {
		t.Fatalf("got %s, want %s", got, StatusPending)
	}
}

func TestClassify_ElapseBehavior(t *testing.T) {
	past := now.AddDate(0, 0, -1)

	cases := []struct {
		name string
		want MilestoneStatus
	}{
		{MilestoneContractSigned, StatusCompleted},
		{MilestoneCoolingOffExpiry, StatusCompleted},
		{MilestoneFinanceApprovalDue, StatusOverdue},
		{MilestoneInspectionDue, StatusOverdue},
		{MilestoneSettlement, StatusOverdue},
		// Unknown names elapse conservatively.
		{"Building Insurance", StatusOverdue},
	}

	for _, tc := range cases {
		got := Classify(tc.name, ptr(past), nil, now)
		if got != tc.want {
			t.Errorf("Classify(%q, elapsed): got %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestClassify_FutureTargetIsUpcoming(t *testing.T) {
	future := now.AddDate(0, 0, 7)
	for _, name := range CanonicalOrder {
		got := Classify(name, ptr(future), nil, now)
		if got != StatusUpcoming {
			t.Errorf("Classify(%q, future): got %s, want %s", name, got, StatusUpcoming)
		}
	}
}

func TestClassify_TargetExactlyNowHasElapsed(t *testing.T) {
	if got := Classify(MilestoneSettlement, ptr(now), nil, now); got != StatusOverdue {
		t.Fatalf("settlement due exactly now: got %s, want %s", got, StatusOverdue)
	}
	if got := Classify(MilestoneCoolingOffExpiry, ptr(now), nil, now); got != StatusCompleted {
		t.Fatalf("cooling-off expiring exactly now: got %s, want %s", got, StatusCompleted)
	}
}

func TestClassify_Totality(t *testing.T) {
	// Every (target, completed) shape yields exactly one valid status.
	valid := map[MilestoneStatus]bool{
		StatusCompleted: true,
		StatusUpcoming:  true,
		StatusPending:   true,
		StatusOverdue:   true,
	}

	targets := []*time.Time{nil, ptr(now.AddDate(0, 0, -5)), ptr(now.AddDate(0, 0, 5))}
	completions := []*time.Time{nil, ptr(now.AddDate(0, 0, -2))}

	for _, name := range append(CanonicalOrder, "Anything Else") {
		for _, target := range targets {
			for _, completed := range completions {
				got := Classify(name, target, completed, now)
				if !valid[got] {
					t.Fatalf("Classify(%q) returned invalid status %q", name, got)
				}
			}
		}
	}
}

func TestIsCritical(t *testing.T) {
	critical := map[string]bool{
		MilestoneContractSigned:     false,
		MilestoneCoolingOffExpiry:   true,
		MilestoneFinanceApprovalDue: true,
		MilestoneInspectionDue:      false,
		MilestoneSettlement:         true,
	}
	for name, want := range critical {
		if got := IsCritical(name); got != want {
			t.Errorf("IsCritical(%q): got %v, want %v", name, got, want)
		}
	}
}
