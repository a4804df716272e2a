package service

import (
	"testing"
	"time"

	"settlement_backend/internal/transactions/repository"
	"settlement_backend/internal/transactions/transport"
	timelinedomain "settlement_backend/internal/timeline/domain"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from transport.TransactionStatus
		to   transport.TransactionStatus
		want bool
	}{
		{transport.TransactionStatusActive, transport.TransactionStatusNegotiating, true},
		{transport.TransactionStatusActive, transport.TransactionStatusWithdrawn, true},
		{transport.TransactionStatusActive, transport.TransactionStatusSettled, true},
		{transport.TransactionStatusActive, transport.TransactionStatusCancelled, true},
		{transport.TransactionStatusNegotiating, transport.TransactionStatusActive, true},
		{transport.TransactionStatusNegotiating, transport.TransactionStatusSettled, true},
		{transport.TransactionStatusWithdrawn, transport.TransactionStatusCancelled, true},
		{transport.TransactionStatusWithdrawn, transport.TransactionStatusActive, false},
		{transport.TransactionStatusWithdrawn, transport.TransactionStatusSettled, false},
		{transport.TransactionStatusSettled, transport.TransactionStatusActive, false},
		{transport.TransactionStatusSettled, transport.TransactionStatusCancelled, false},
		{transport.TransactionStatusCancelled, transport.TransactionStatusActive, false},
	}

	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s): got %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestSeedMilestones_WithFinanceClause(t *testing.T) {
	contractDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	coolingOff := contractDate.AddDate(0, 0, 5)
	financeDue := contractDate.AddDate(0, 0, 21)
	settlement := contractDate.AddDate(0, 0, 42)

	txn := &repository.Transaction{
		ContractDate:       contractDate,
		CoolingOffExpiry:   coolingOff,
		FinanceClause:      true,
		FinanceApprovalDue: &financeDue,
		SettlementDate:     &settlement,
	}

	milestones := seedMilestones(txn, 14)
	if len(milestones) != len(timelinedomain.CanonicalOrder) {
		t.Fatalf("got %d milestones, want %d", len(milestones), len(timelinedomain.CanonicalOrder))
	}

	byName := make(map[string]repository.Milestone, len(milestones))
	for i, ms := range milestones {
		if ms.Name != timelinedomain.CanonicalOrder[i] {
			t.Errorf("position %d: got %q, want %q", i, ms.Name, timelinedomain.CanonicalOrder[i])
		}
		byName[ms.Name] = ms
	}

	signed := byName[timelinedomain.MilestoneContractSigned]
	if signed.CompletedAt == nil || !signed.CompletedAt.Equal(contractDate) {
		t.Error("contract signed should complete at the contract date")
	}
	finance := byName[timelinedomain.MilestoneFinanceApprovalDue]
	if finance.TargetDate == nil || !finance.TargetDate.Equal(financeDue) {
		t.Error("finance approval should target the approval due date")
	}
	if finance.CompletedAt != nil {
		t.Error("finance approval should be outstanding")
	}
	inspection := byName[timelinedomain.MilestoneInspectionDue]
	if inspection.TargetDate == nil || !inspection.TargetDate.Equal(contractDate.AddDate(0, 0, 14)) {
		t.Error("inspection due should default to contract date plus the configured offset")
	}
	if inspection.CompletedAt != nil {
		t.Error("inspection due should start incomplete")
	}
}

func TestSeedMilestones_NoInspectionDueDefault(t *testing.T) {
	contractDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	txn := &repository.Transaction{
		ContractDate:     contractDate,
		CoolingOffExpiry: contractDate.AddDate(0, 0, 5),
	}

	for _, ms := range seedMilestones(txn, 0) {
		if ms.Name == timelinedomain.MilestoneInspectionDue && ms.TargetDate != nil {
			t.Fatal("inspection due should stay unscheduled without a configured offset")
		}
	}
}

func TestSeedMilestones_WithoutFinanceClause(t *testing.T) {
	contractDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	txn := &repository.Transaction{
		ContractDate:     contractDate,
		CoolingOffExpiry: contractDate.AddDate(0, 0, 5),
	}

	milestones := seedMilestones(txn, 14)
	for _, ms := range milestones {
		if ms.Name != timelinedomain.MilestoneFinanceApprovalDue {
			continue
		}
		if ms.CompletedAt == nil || !ms.CompletedAt.Equal(contractDate) {
			t.Fatal("a cash purchase should complete finance approval immediately")
		}
		if ms.TargetDate != nil {
			t.Fatal("a cash purchase finance milestone should carry no target")
		}
	}
}

func TestTerminalStatusesAllowNoExit(t *testing.T) {
	all := []transport.TransactionStatus{
		transport.TransactionStatusActive,
		transport.TransactionStatusNegotiating,
		transport.TransactionStatusWithdrawn,
		transport.TransactionStatusSettled,
		transport.TransactionStatusCancelled,
	}

	for _, from := range all {
		if !from.IsTerminal() {
			continue
		}
		for _, to := range all {
			if from == to {
				continue
			}
			if CanTransition(from, to) {
				t.Errorf("terminal status %s must not transition to %s", from, to)
			}
		}
	}
}
