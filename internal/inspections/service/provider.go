package service

import (
	"context"
	"fmt"

	"settlement_backend/internal/inspections/domain"
)

// ProviderMatcher resolves a concrete provider for a required inspection
// type. The real implementation calls an external provider-matching service;
// the engine only ever sees the opaque provider id.
type ProviderMatcher interface {
	MatchProvider(ctx context.Context, inspectionType domain.InspectionType) (string, error)
}

// StaticMatcher is a ProviderMatcher backed by a fixed assignment table.
// Stands in until a real provider-matching integration exists.
type StaticMatcher struct {
	providers map[domain.InspectionType]string
}

// NewStaticMatcher creates a matcher with default provider assignments.
func NewStaticMatcher() *StaticMatcher {
	return &StaticMatcher{
		providers: map[domain.InspectionType]string{
			domain.InspectionBuildingPest: "provider-bp-001",
			domain.InspectionStrata:       "provider-st-001",
			domain.InspectionFloodRisk:    "provider-fr-001",
		},
	}
}

// MatchProvider returns the assigned provider id for an inspection type.
func (m *StaticMatcher) MatchProvider(_ context.Context, inspectionType domain.InspectionType) (string, error) {
	provider, ok := m.providers[inspectionType]
	if !ok {
		return "", fmt.Errorf("no provider for inspection type %q", inspectionType)
	}
	return provider, nil
}
