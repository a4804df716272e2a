package domain

import "testing"

func TestRecommendAction_TierTable(t *testing.T) {
	cases := []struct {
		risk      RiskLevel
		repairPct float64
		want      Action
	}{
		{RiskLow, 0, ActionProceed},
		{RiskLow, 0.5, ActionProceed},
		{RiskLow, 0.6, ActionNegotiate},
		{RiskMedium, 0, ActionNegotiate},
		{RiskLow, 2.0, ActionNegotiate},
		{RiskLow, 2.1, ActionRequestRepairs},
		{RiskHigh, 0, ActionRequestRepairs},
		{RiskHigh, 5.0, ActionRequestRepairs},
		{RiskLow, 5.1, ActionWithdraw},
		{RiskCritical, 0, ActionWithdraw},
		{RiskCritical, 10, ActionWithdraw},
		// Either input alone escalates the tier.
		{RiskMedium, 6, ActionWithdraw},
		{RiskHigh, 0.1, ActionRequestRepairs},
	}

	for _, tc := range cases {
		got := RecommendAction(tc.risk, tc.repairPct)
		if got != tc.want {
			t.Errorf("RecommendAction(%s, %.1f%%): got %s, want %s", tc.risk, tc.repairPct, got, tc.want)
		}
	}
}

func TestOutcomeFor(t *testing.T) {
	cases := []struct {
		decision   Decision
		wantStatus string
	}{
		{DecisionProceed, OutcomeCompleted},
		{DecisionNegotiate, OutcomeNegotiating},
		{DecisionWithdraw, OutcomeWithdrawn},
	}

	for _, tc := range cases {
		outcome, ok := OutcomeFor(tc.decision)
		if !ok {
			t.Fatalf("OutcomeFor(%s): unexpected miss", tc.decision)
		}
		if outcome.Status != tc.wantStatus {
			t.Errorf("OutcomeFor(%s): got status %q, want %q", tc.decision, outcome.Status, tc.wantStatus)
		}
		if len(outcome.NextSteps) == 0 {
			t.Errorf("OutcomeFor(%s): expected next steps", tc.decision)
		}
	}

	if _, ok := OutcomeFor("think_about_it"); ok {
		t.Fatal("expected miss for unknown decision")
	}
}

func TestOutcomeFor_Reproducible(t *testing.T) {
	first, _ := OutcomeFor(DecisionNegotiate)
	second, _ := OutcomeFor(DecisionNegotiate)
	if first.Status != second.Status || len(first.NextSteps) != len(second.NextSteps) {
		t.Fatal("identical decisions produced different outcomes")
	}
}

func TestRecipientsFor(t *testing.T) {
	cases := []struct {
		status string
		want   int
	}{
		{OutcomeCompleted, 3},
		{OutcomeNegotiating, 2},
		{OutcomeWithdrawn, 2},
		{"unknown", 0},
	}

	for _, tc := range cases {
		if got := RecipientsFor(tc.status); len(got) != tc.want {
			t.Errorf("RecipientsFor(%q): got %d recipients, want %d", tc.status, len(got), tc.want)
		}
	}
}
