package domain

import (
	"reflect"
	"testing"
)

func TestPlan_RuleTable(t *testing.T) {
	cases := []struct {
		propertyType string
		isStrata     bool
		want         []InspectionType
	}{
		{"house", false, []InspectionType{InspectionBuildingPest, InspectionFloodRisk}},
		{"house", true, []InspectionType{InspectionBuildingPest, InspectionStrata, InspectionFloodRisk}},
		{"apartment", false, []InspectionType{InspectionBuildingPest}},
		{"apartment", true, []InspectionType{InspectionBuildingPest, InspectionStrata}},
		{"townhouse", false, []InspectionType{InspectionBuildingPest}},
		{"townhouse", true, []InspectionType{InspectionBuildingPest, InspectionStrata}},
	}

	for _, tc := range cases {
		specs := Plan(tc.propertyType, tc.isStrata)

		got := make([]InspectionType, 0, len(specs))
		for _, s := range specs {
			got = append(got, s.Type)
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Plan(%q, strata=%v): got %v, want %v", tc.propertyType, tc.isStrata, got, tc.want)
		}
	}
}

func TestPlan_Deterministic(t *testing.T) {
	first := Plan("apartment", true)
	second := Plan("apartment", true)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs produced different plans: %v vs %v", first, second)
	}
}

func TestPlan_AlwaysIncludesBuildingPest(t *testing.T) {
	for _, propertyType := range []string{"house", "apartment", "townhouse"} {
		for _, strata := range []bool{false, true} {
			specs := Plan(propertyType, strata)
			if len(specs) == 0 || specs[0].Type != InspectionBuildingPest {
				t.Errorf("Plan(%q, strata=%v) missing leading building_pest: %v", propertyType, strata, specs)
			}
		}
	}
}

func TestParseInspectionType(t *testing.T) {
	for _, known := range AllInspectionTypes {
		got, err := ParseInspectionType(string(known))
		if err != nil {
			t.Fatalf("ParseInspectionType(%q): unexpected error %v", known, err)
		}
		if got != known {
			t.Fatalf("ParseInspectionType(%q): got %q", known, got)
		}
	}

	if _, err := ParseInspectionType("asbestos"); err == nil {
		t.Fatal("expected error for unknown inspection type")
	}
}
