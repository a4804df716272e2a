package domain

import (
	"reflect"
	"strings"
	"testing"
)

func cents(v int64) *int64 { return &v }

func TestScore_EndToEndScenarios(t *testing.T) {
	tests := []struct {
		name       string
		results    []ResultInput
		priceCents int64
		wantRisk   RiskLevel
		wantAction Action
		wantPctLo  float64
		wantPctHi  float64
	}{
		{
			name: "minor issues on a house trigger negotiation despite a small repair bill",
			results: []ResultInput{
				{InspectionType: "building_pest", OverallRating: "minor_issues", EstimatedRepairCents: cents(250_000)},
			},
			priceCents: 120_000_000,
			wantRisk:   RiskMedium,
			wantAction: ActionNegotiate,
			wantPctLo:  0.2,
			wantPctHi:  0.21,
		},
		{
			name: "failed building inspection on an apartment forces withdrawal regardless of cost",
			results: []ResultInput{
				{InspectionType: "building_pest", OverallRating: "fail"},
				{InspectionType: "strata", OverallRating: "pass"},
			},
			priceCents: 50_000_000,
			wantRisk:   RiskCritical,
			wantAction: ActionWithdraw,
		},
		{
			name: "clean townhouse proceeds",
			results: []ResultInput{
				{InspectionType: "building_pest", OverallRating: "pass"},
				{InspectionType: "flood_risk", OverallRating: "pass"},
			},
			priceCents: 80_000_000,
			wantRisk:   RiskLow,
			wantAction: ActionProceed,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Score(tc.results, tc.priceCents)
			if got.OverallRisk != tc.wantRisk {
				t.Errorf("risk: got %s, want %s", got.OverallRisk, tc.wantRisk)
			}
			if got.RecommendedAction != tc.wantAction {
				t.Errorf("action: got %s, want %s", got.RecommendedAction, tc.wantAction)
			}
			if got.RepairCostPercentage < tc.wantPctLo || got.RepairCostPercentage > tc.wantPctHi {
				t.Errorf("repair percentage: got %f, want within [%f, %f]", got.RepairCostPercentage, tc.wantPctLo, tc.wantPctHi)
			}
		})
	}
}

func TestScore_ZeroInspections(t *testing.T) {
	got := Score(nil, 75_000_000)

	if got.OverallRisk != RiskLow {
		t.Errorf("overall risk: got %s, want %s", got.OverallRisk, RiskLow)
	}
	if len(got.RiskFactors) != 0 {
		t.Errorf("risk factors: got %v, want none", got.RiskFactors)
	}
	if got.EstimatedImpactCents != 0 {
		t.Errorf("impact: got %d, want 0", got.EstimatedImpactCents)
	}
	if got.RecommendedAction != ActionProceed {
		t.Errorf("action: got %s, want %s", got.RecommendedAction, ActionProceed)
	}
}

func TestScore_OverallRiskIsMaximumNotAverage(t *testing.T) {
	results := []ResultInput{
		{InspectionType: "building_pest", OverallRating: "pass"},
		{InspectionType: "strata", OverallRating: "pass"},
		{InspectionType: "flood_risk", OverallRating: "fail"},
	}

	got := Score(results, 75_000_000)
	if got.OverallRisk != RiskCritical {
		t.Fatalf("got %s, want %s", got.OverallRisk, RiskCritical)
	}
}

func TestScore_FactorsConcatenateInResultOrder(t *testing.T) {
	results := []ResultInput{
		{InspectionType: "building_pest", OverallRating: "major_issues", CriticalIssues: []string{"active termites", "roof damage"}},
		{InspectionType: "strata", OverallRating: "minor_issues", CriticalIssues: []string{"sinking fund shortfall"}},
	}

	got := Score(results, 75_000_000)
	want := []string{"active termites", "roof damage", "sinking fund shortfall"}
	if !reflect.DeepEqual(got.RiskFactors, want) {
		t.Fatalf("got %v, want %v", got.RiskFactors, want)
	}
}

func TestScore_RepairCostFactorAboveOnePercent(t *testing.T) {
	// 2,000,000 of 75,000,000 is about 2.7%.
	results := []ResultInput{
		{InspectionType: "building_pest", OverallRating: "major_issues", EstimatedRepairCents: cents(2_000_000)},
	}

	got := Score(results, 75_000_000)

	if got.EstimatedImpactCents != 2_000_000 {
		t.Fatalf("impact: got %d, want 2000000", got.EstimatedImpactCents)
	}
	found := false
	for _, factor := range got.RiskFactors {
		if strings.Contains(factor, "% of purchase price") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected repair-cost factor, got %v", got.RiskFactors)
	}
}

func TestScore_NoRepairCostFactorAtOrBelowOnePercent(t *testing.T) {
	// Exactly 1%: no synthesized factor.
	results := []ResultInput{
		{InspectionType: "building_pest", OverallRating: "pass", EstimatedRepairCents: cents(750_000)},
	}

	got := Score(results, 75_000_000)
	if len(got.RiskFactors) != 0 {
		t.Fatalf("expected no factors at 1%%, got %v", got.RiskFactors)
	}
}

func TestScore_SumsRepairCostsAcrossResults(t *testing.T) {
	results := []ResultInput{
		{InspectionType: "building_pest", OverallRating: "minor_issues", EstimatedRepairCents: cents(300_000)},
		{InspectionType: "strata", OverallRating: "pass"},
		{InspectionType: "flood_risk", OverallRating: "minor_issues", EstimatedRepairCents: cents(200_000)},
	}

	got := Score(results, 75_000_000)
	if got.EstimatedImpactCents != 500_000 {
		t.Fatalf("got %d, want 500000", got.EstimatedImpactCents)
	}
}

func TestScore_MonotoneInSeverity(t *testing.T) {
	// Adding a worse result never lowers the overall risk.
	base := []ResultInput{{InspectionType: "building_pest", OverallRating: "minor_issues"}}
	ratings := []string{"pass", "minor_issues", "major_issues", "fail"}

	prev := Score(base, 75_000_000).OverallRisk
	for _, rating := range ratings {
		extended := append(append([]ResultInput{}, base...), ResultInput{InspectionType: "strata", OverallRating: rating})
		got := Score(extended, 75_000_000).OverallRisk
		if got.Rank() < prev.Rank() {
			t.Fatalf("adding %q lowered risk from %s to %s", rating, prev, got)
		}
	}
}

func TestScore_Idempotent(t *testing.T) {
	results := []ResultInput{
		{InspectionType: "building_pest", OverallRating: "major_issues", CriticalIssues: []string{"subsidence"}, EstimatedRepairCents: cents(4_000_000)},
	}

	first := Score(results, 75_000_000)
	second := Score(results, 75_000_000)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same inputs scored differently: %+v vs %+v", first, second)
	}
}

func TestRiskLevelOrdering(t *testing.T) {
	ordered := []RiskLevel{RiskLow, RiskMedium, RiskHigh, RiskCritical}
	for i := 1; i < len(ordered); i++ {
		if ordered[i].Rank() <= ordered[i-1].Rank() {
			t.Fatalf("%s should rank above %s", ordered[i], ordered[i-1])
		}
	}
	if RiskLow.Max(RiskHigh) != RiskHigh {
		t.Fatal("Max(low, high) should be high")
	}
}
