package stage

import (
	"testing"

	"spool/internal/ams"
)

func TestParseMappings_Valid(t *testing.T) {
	raw := `[{"filament_index":0,"ams_unit_id":0,"ams_slot_id":2}]`
	mappings, err := ParseMappings(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mappings) != 1 {
		t.Fatalf("expected one mapping, got %d", len(mappings))
	}
	if mappings[0].SlotID != 2 {
		t.Fatalf("unexpected slot: %d", mappings[0].SlotID)
	}
}

func TestParseMappings_Empty(t *testing.T) {
	mappings, err := ParseMappings("")
	if err != nil {
		t.Fatalf("unexpected error for empty input: %v", err)
	}
	if mappings != nil {
		t.Fatalf("expected nil mappings for empty input, got %#v", mappings)
	}
}

func TestParseMappings_Invalid(t *testing.T) {
	if _, err := ParseMappings("{invalid json"); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestEncodeMappingsRoundTrip(t *testing.T) {
	encoded, err := EncodeMappings([]ams.Mapping{{FilamentIndex: 1, UnitID: 0, SlotID: 3}})
	if err != nil {
		t.Fatalf("EncodeMappings: %v", err)
	}
	decoded, err := ParseMappings(encoded)
	if err != nil {
		t.Fatalf("ParseMappings: %v", err)
	}
	if len(decoded) != 1 || decoded[0].FilamentIndex != 1 || decoded[0].SlotID != 3 {
		t.Fatalf("unexpected decoded mappings: %#v", decoded)
	}
}

func TestParseRequirements_Invalid(t *testing.T) {
	if _, err := ParseRequirements("[{"); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}
