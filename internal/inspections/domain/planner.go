// Package domain contains the pure inspection planning rules.
package domain

import (
	"fmt"

	"settlement_backend/platform/apperr"
)

// InspectionType is the closed set of inspection kinds the system books.
type InspectionType string

const (
	InspectionBuildingPest InspectionType = "building_pest"
	InspectionStrata       InspectionType = "strata"
	InspectionFloodRisk    InspectionType = "flood_risk"
)

// AllInspectionTypes lists the closed set in a stable order.
var AllInspectionTypes = []InspectionType{
	InspectionBuildingPest,
	InspectionStrata,
	InspectionFloodRisk,
}

// ParseInspectionType validates a raw string against the closed set.
// Anything outside it indicates a planner/result mismatch bug, surfaced as a
// bad request and never retried.
func ParseInspectionType(raw string) (InspectionType, error) {
	switch InspectionType(raw) {
	case InspectionBuildingPest, InspectionStrata, InspectionFloodRisk:
		return InspectionType(raw), nil
	}
	return "", apperr.BadRequest(fmt.Sprintf("unknown inspection type %q", raw))
}

// Spec is a planned inspection requirement: what to book, its nominal cost,
// and the default scheduling offset from now. The offset is a planning
// default, not a guarantee.
type Spec struct {
	Type             InspectionType
	NominalCostCents int64
	OffsetDays       int
}

// Nominal costs and scheduling defaults per inspection type.
var specTable = map[InspectionType]Spec{
	InspectionBuildingPest: {Type: InspectionBuildingPest, NominalCostCents: 55000, OffsetDays: 5},
	InspectionStrata:       {Type: InspectionStrata, NominalCostCents: 30000, OffsetDays: 7},
	InspectionFloodRisk:    {Type: InspectionFloodRisk, NominalCostCents: 15000, OffsetDays: 10},
}

// Plan returns the required inspection specs for a property profile:
// building_pest always, strata for strata-titled properties, flood_risk for
// houses. Deterministic and order-stable.
func Plan(propertyType string, isStrata bool) []Spec {
	specs := []Spec{specTable[InspectionBuildingPest]}
	if isStrata {
		specs = append(specs, specTable[InspectionStrata])
	}
	if propertyType == "house" {
		specs = append(specs, specTable[InspectionFloodRisk])
	}
	return specs
}
