// Package domain contains the pure due-diligence logic: risk scoring and
// the decision policy. Both the scorer and the policy consume the single
// ordered risk enumeration defined here, so severity ordering can never
// drift between them.
package domain

import "fmt"

// RiskLevel is the ordered risk enumeration: low < medium < high < critical.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// riskRank gives each level its ordinal position. The zero value for an
// unknown level is below low, so malformed input can never raise severity.
var riskRank = map[RiskLevel]int{
	RiskLow:      1,
	RiskMedium:   2,
	RiskHigh:     3,
	RiskCritical: 4,
}

// Rank returns the level's ordinal position in the severity order.
func (r RiskLevel) Rank() int {
	return riskRank[r]
}

// Max returns the more severe of two risk levels.
func (r RiskLevel) Max(other RiskLevel) RiskLevel {
	if other.Rank() > r.Rank() {
		return other
	}
	return r
}

// ratingToRisk maps an inspection's overall rating to a risk level.
var ratingToRisk = map[string]RiskLevel{
	"pass":         RiskLow,
	"minor_issues": RiskMedium,
	"major_issues": RiskHigh,
	"fail":         RiskCritical,
}

// RiskForRating returns the risk level an overall rating contributes.
func RiskForRating(rating string) RiskLevel {
	if level, ok := ratingToRisk[rating]; ok {
		return level
	}
	return RiskLow
}

// ResultInput is the scorer's view of one inspection result.
type ResultInput struct {
	InspectionType       string
	OverallRating        string
	CriticalIssues       []string
	EstimatedRepairCents *int64
}

// Assessment is the aggregated risk picture for one due-diligence cycle.
// Derived entirely from the result set and the purchase price; recomputed
// from scratch whenever results change, never mutated in place.
type Assessment struct {
	OverallRisk          RiskLevel `json:"overallRisk"`
	RiskFactors          []string  `json:"riskFactors"`
	RecommendedAction    Action    `json:"recommendedAction"`
	EstimatedImpactCents int64     `json:"estimatedImpactCents"`
	RepairCostPercentage float64   `json:"repairCostPercentage"`
}

// Score aggregates a set of inspection results into a risk assessment.
//
// Risk factors are the concatenation of every result's critical issues in
// per-result order. The overall risk is the maximum severity across results;
// there is no averaging. When total repair cost exceeds 1% of the purchase
// price an additional textual risk factor states the percentage, so
// consumers must not assume every factor is a literal inspection issue.
//
// Zero inspections score low risk with no factors and zero impact.
func Score(results []ResultInput, purchasePriceCents int64) Assessment {
	overall := RiskLow
	riskFactors := make([]string, 0)
	var totalRepairCents int64

	for _, result := range results {
		riskFactors = append(riskFactors, result.CriticalIssues...)
		if result.EstimatedRepairCents != nil {
			totalRepairCents += *result.EstimatedRepairCents
		}
		overall = overall.Max(RiskForRating(result.OverallRating))
	}

	var repairPct float64
	if purchasePriceCents > 0 {
		repairPct = float64(totalRepairCents) / float64(purchasePriceCents) * 100
	}
	if repairPct > 1 {
		riskFactors = append(riskFactors,
			fmt.Sprintf("Estimated repair costs are %.1f%% of purchase price", repairPct))
	}

	return Assessment{
		OverallRisk:          overall,
		RiskFactors:          riskFactors,
		RecommendedAction:    RecommendAction(overall, repairPct),
		EstimatedImpactCents: totalRepairCents,
		RepairCostPercentage: repairPct,
	}
}
