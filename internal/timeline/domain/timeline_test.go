package domain

import (
	"testing"
	"time"
)

func sampleTimeline(now time.Time) []Milestone {
	return []Milestone{
		{Name: MilestoneContractSigned, TargetDate: ptr(now.AddDate(0, 0, -10)), CompletedAt: ptr(now.AddDate(0, 0, -10))},
		{Name: MilestoneCoolingOffExpiry, TargetDate: ptr(now.AddDate(0, 0, -5))},
		{Name: MilestoneFinanceApprovalDue, TargetDate: ptr(now.AddDate(0, 0, -1)), Critical: true},
		{Name: MilestoneInspectionDue, TargetDate: ptr(now.AddDate(0, 0, 4))},
		{Name: MilestoneSettlement, TargetDate: ptr(now.AddDate(0, 0, 32)), Critical: true},
	}
}

func TestDerive_PreservesOrderAndClassifies(t *testing.T) {
	views := Derive(sampleTimeline(now), now)

	want := []MilestoneStatus{
		StatusCompleted, // explicitly completed
		StatusCompleted, // cooling-off elapsed
		StatusOverdue,   // finance approval missed
		StatusUpcoming,
		StatusUpcoming,
	}
	if len(views) != len(want) {
		t.Fatalf("got %d views, want %d", len(views), len(want))
	}
	for i, w := range want {
		if views[i].Status != w {
			t.Errorf("view %d (%s): got %s, want %s", i, views[i].Name, views[i].Status, w)
		}
	}
}

func TestNext_FirstUpcomingOrPending(t *testing.T) {
	views := Derive(sampleTimeline(now), now)

	next := Next(views)
	if next == nil {
		t.Fatal("expected a next milestone")
	}
	if next.Name != MilestoneInspectionDue {
		t.Fatalf("got %q, want %q", next.Name, MilestoneInspectionDue)
	}
}

func TestNext_NilWhenNothingRemains(t *testing.T) {
	done := []Milestone{
		{Name: MilestoneContractSigned, CompletedAt: ptr(now)},
		{Name: MilestoneSettlement, CompletedAt: ptr(now)},
	}
	if next := Next(Derive(done, now)); next != nil {
		t.Fatalf("expected nil, got %q", next.Name)
	}
}

func TestOverdue(t *testing.T) {
	overdue := Overdue(Derive(sampleTimeline(now), now))
	if len(overdue) != 1 {
		t.Fatalf("got %d overdue, want 1", len(overdue))
	}
	if overdue[0].Name != MilestoneFinanceApprovalDue {
		t.Fatalf("got %q, want %q", overdue[0].Name, MilestoneFinanceApprovalDue)
	}
}

func TestProgress(t *testing.T) {
	views := Derive(sampleTimeline(now), now)
	if got := Progress(views); got != 0.4 {
		t.Fatalf("got %v, want 0.4", got)
	}
	if got := Progress(nil); got != 0 {
		t.Fatalf("empty timeline: got %v, want 0", got)
	}
}
