package ams_test

import (
	"reflect"
	"testing"

	"spool/internal/ams"
	"spool/internal/threemf"
)

func requirement(filamentType, color string) threemf.FilamentRequirement {
	return threemf.FilamentRequirement{Type: filamentType, Color: color}
}

func TestMatchEmptyRequirements(t *testing.T) {
	results := ams.Match(nil, []ams.Slot{{UnitID: 0, SlotID: 0, FilamentType: "PLA"}})
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}

func TestMatchExact(t *testing.T) {
	slots := []ams.Slot{
		{UnitID: 0, SlotID: 0, FilamentType: "PLA", Color: "#FF0000"},
		{UnitID: 0, SlotID: 1, FilamentType: "PETG", Color: "#00FF00"},
	}
	requirements := []threemf.FilamentRequirement{
		requirement("PLA", "#FF0000"),
		requirement("PETG", "#00FF00"),
	}

	results := ams.Match(requirements, slots)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for i, result := range results {
		if result.Quality != ams.QualityExact {
			t.Fatalf("result %d: expected exact, got %s", i, result.Quality)
		}
		if result.SlotID != i {
			t.Fatalf("result %d: expected slot %d, got %d", i, i, result.SlotID)
		}
	}

	// Exact confidence must beat any type-only result.
	typeOnly := ams.Match([]threemf.FilamentRequirement{requirement("PLA", "#0000FF")}, slots)
	if results[0].Confidence <= typeOnly[0].Confidence {
		t.Fatalf("exact confidence %f should exceed type-only %f",
			results[0].Confidence, typeOnly[0].Confidence)
	}
}

func TestMatchCaseInsensitiveTypeAndColor(t *testing.T) {
	slots := []ams.Slot{{UnitID: 1, SlotID: 2, FilamentType: "pla", Color: "ff0000"}}
	results := ams.Match([]threemf.FilamentRequirement{requirement("PLA", "#FF0000")}, slots)
	if results[0].Quality != ams.QualityExact {
		t.Fatalf("expected exact for case/hashes variation, got %s", results[0].Quality)
	}
}

func TestMatchNamedColor(t *testing.T) {
	slots := []ams.Slot{{UnitID: 0, SlotID: 3, FilamentType: "PLA", Color: "Red"}}
	results := ams.Match([]threemf.FilamentRequirement{requirement("PLA", "#FF0000")}, slots)
	if results[0].Quality != ams.QualityExact {
		t.Fatalf("expected named color to match hex, got %s", results[0].Quality)
	}
}

func TestMatchTypeOnly(t *testing.T) {
	slots := []ams.Slot{
		{UnitID: 0, SlotID: 0, FilamentType: "PLA", Color: "#000000"},
		{UnitID: 0, SlotID: 1, FilamentType: "PLA", Color: "#FFFFFF"},
	}
	results := ams.Match([]threemf.FilamentRequirement{requirement("PLA", "#FF0000")}, slots)
	result := results[0]
	if result.Quality != ams.QualityTypeOnly {
		t.Fatalf("expected type_only, got %s", result.Quality)
	}
	// Ties break on snapshot iteration order.
	if result.SlotID != 0 {
		t.Fatalf("expected first slot to win the tie, got %d", result.SlotID)
	}
}

func TestMatchFallback(t *testing.T) {
	slots := []ams.Slot{{UnitID: 0, SlotID: 0, FilamentType: "ABS", Color: "#123456"}}
	results := ams.Match([]threemf.FilamentRequirement{requirement("PLA", "#FF0000")}, slots)
	if results[0].Quality != ams.QualityFallback {
		t.Fatalf("expected fallback, got %s", results[0].Quality)
	}
	if results[0].UnitID != 0 || results[0].SlotID != 0 {
		t.Fatalf("fallback should pick the first slot, got %+v", results[0])
	}
}

func TestMatchNoSlots(t *testing.T) {
	requirements := []threemf.FilamentRequirement{
		requirement("PLA", "#FF0000"),
		requirement("PETG", "#00FF00"),
	}
	results := ams.Match(requirements, nil)
	if len(results) != 2 {
		t.Fatalf("unmatched requirements must still be recorded, got %d results", len(results))
	}
	for i, result := range results {
		if result.Quality != ams.QualityNone || result.Confidence != 0 {
			t.Fatalf("result %d: expected none/0, got %s/%f", i, result.Quality, result.Confidence)
		}
		if result.UnitID != -1 || result.SlotID != -1 {
			t.Fatalf("result %d: expected no slot, got %+v", i, result)
		}
	}
}

func TestMatchAllowsDuplicateSlotSuggestions(t *testing.T) {
	slots := []ams.Slot{{UnitID: 0, SlotID: 0, FilamentType: "PLA", Color: "#FF0000"}}
	requirements := []threemf.FilamentRequirement{
		requirement("PLA", "#FF0000"),
		requirement("PLA", "#FF0000"),
	}
	results := ams.Match(requirements, slots)
	if results[0].SlotID != results[1].SlotID {
		t.Fatal("both requirements should be free to use the same physical slot")
	}
}

func TestMappingsSkipUnmatched(t *testing.T) {
	results := []ams.MatchResult{
		{RequirementIndex: 0, UnitID: 0, SlotID: 1, Quality: ams.QualityExact, Confidence: 0.95},
		{RequirementIndex: 1, UnitID: -1, SlotID: -1, Quality: ams.QualityNone},
	}
	mappings := ams.Mappings(results)
	want := []ams.Mapping{{FilamentIndex: 0, UnitID: 0, SlotID: 1}}
	if !reflect.DeepEqual(mappings, want) {
		t.Fatalf("unexpected mappings: %+v", mappings)
	}
}

func TestMissingIndices(t *testing.T) {
	mappings := []ams.Mapping{
		{FilamentIndex: 0, UnitID: 0, SlotID: 0},
		{FilamentIndex: 2, UnitID: 0, SlotID: 1},
	}
	missing := ams.MissingIndices(4, mappings)
	if !reflect.DeepEqual(missing, []int{1, 3}) {
		t.Fatalf("expected [1 3], got %v", missing)
	}
	if got := ams.MissingIndices(0, nil); got != nil {
		t.Fatalf("zero requirements should report nothing missing, got %v", got)
	}
}
