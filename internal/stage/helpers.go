package stage

import (
	"encoding/json"
	"strings"

	"spool/internal/ams"
	"spool/internal/services"
	"spool/internal/threemf"
)

// ParseMappings decodes the persisted slot mapping for an item.
// On failure it returns a services.ErrValidation suitable for stage Execute methods.
func ParseMappings(raw string) ([]ams.Mapping, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var mappings []ams.Mapping
	if err := json.Unmarshal([]byte(raw), &mappings); err != nil {
		return nil, services.Wrap(
			services.ErrValidation, "stage", "parse slot mappings",
			"Slot mapping missing or invalid; rerun matching", err)
	}
	return mappings, nil
}

// ParseRequirements decodes the persisted filament requirements for an item.
func ParseRequirements(raw string) ([]threemf.FilamentRequirement, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var requirements []threemf.FilamentRequirement
	if err := json.Unmarshal([]byte(raw), &requirements); err != nil {
		return nil, services.Wrap(
			services.ErrValidation, "stage", "parse filament requirements",
			"Filament requirements missing or invalid; re-run extraction", err)
	}
	return requirements, nil
}

// EncodeMappings serializes slot mappings for queue persistence.
func EncodeMappings(mappings []ams.Mapping) (string, error) {
	data, err := json.Marshal(mappings)
	if err != nil {
		return "", services.Wrap(
			services.ErrValidation, "stage", "encode slot mappings",
			"Could not serialize slot mappings", err)
	}
	return string(data), nil
}

// EncodeRequirements serializes filament requirements for queue persistence.
func EncodeRequirements(requirements []threemf.FilamentRequirement) (string, error) {
	data, err := json.Marshal(requirements)
	if err != nil {
		return "", services.Wrap(
			services.ErrValidation, "stage", "encode filament requirements",
			"Could not serialize filament requirements", err)
	}
	return string(data), nil
}
