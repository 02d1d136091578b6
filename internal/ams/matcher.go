package ams

import (
	"sort"
	"strings"

	"spool/internal/threemf"
)

// Quality classifies how well a loaded slot satisfies a filament requirement.
type Quality string

const (
	QualityExact    Quality = "exact"
	QualityTypeOnly Quality = "type_only"
	QualityFallback Quality = "fallback"
	QualityNone     Quality = "none"
)

const (
	confidenceExact    = 0.95
	confidenceTypeOnly = 0.6
	confidenceFallback = 0.25
)

// MatchResult records the suggested slot for one requirement index. For
// QualityNone the unit and slot IDs are -1.
type MatchResult struct {
	RequirementIndex int     `json:"requirement_index"`
	UnitID           int     `json:"ams_unit_id"`
	SlotID           int     `json:"ams_slot_id"`
	Quality          Quality `json:"match_quality"`
	Confidence       float64 `json:"confidence"`
}

// Match assigns each filament requirement to the best available slot.
//
// Each requirement is matched independently, in requirement order, with ties
// broken by the snapshot's iteration order. The same physical slot may be
// suggested for two different requirement indices; a single AMS slot can feed
// more than one virtual filament index, so no mutual-exclusion constraint is
// applied. Unmatched requirements are returned with QualityNone rather than
// dropped. Match never fails: empty requirements yield an empty result.
func Match(requirements []threemf.FilamentRequirement, slots []Slot) []MatchResult {
	results := make([]MatchResult, 0, len(requirements))
	for index, requirement := range requirements {
		results = append(results, matchOne(index, requirement, slots))
	}
	return results
}

func matchOne(index int, requirement threemf.FilamentRequirement, slots []Slot) MatchResult {
	result := MatchResult{RequirementIndex: index, UnitID: -1, SlotID: -1, Quality: QualityNone}
	if len(slots) == 0 {
		return result
	}

	typeOnly := -1
	for i, slot := range slots {
		if !strings.EqualFold(strings.TrimSpace(slot.FilamentType), strings.TrimSpace(requirement.Type)) {
			continue
		}
		if ColorsMatch(slot.Color, requirement.Color) {
			result.UnitID = slot.UnitID
			result.SlotID = slot.SlotID
			result.Quality = QualityExact
			result.Confidence = confidenceExact
			return result
		}
		if typeOnly < 0 {
			typeOnly = i
		}
	}

	if typeOnly >= 0 {
		slot := slots[typeOnly]
		result.UnitID = slot.UnitID
		result.SlotID = slot.SlotID
		result.Quality = QualityTypeOnly
		result.Confidence = confidenceTypeOnly
		return result
	}

	slot := slots[0]
	result.UnitID = slot.UnitID
	result.SlotID = slot.SlotID
	result.Quality = QualityFallback
	result.Confidence = confidenceFallback
	return result
}

// Mappings converts match results into mapping entries, skipping unmatched
// requirement indices.
func Mappings(results []MatchResult) []Mapping {
	mappings := make([]Mapping, 0, len(results))
	for _, result := range results {
		if result.Quality == QualityNone {
			continue
		}
		mappings = append(mappings, Mapping{
			FilamentIndex: result.RequirementIndex,
			UnitID:        result.UnitID,
			SlotID:        result.SlotID,
		})
	}
	return mappings
}

// MissingIndices reports which of the required filament indices [0, required)
// have no mapping entry. The result is sorted ascending.
func MissingIndices(required int, mappings []Mapping) []int {
	if required <= 0 {
		return nil
	}
	present := make(map[int]struct{}, len(mappings))
	for _, mapping := range mappings {
		present[mapping.FilamentIndex] = struct{}{}
	}
	var missing []int
	for index := 0; index < required; index++ {
		if _, ok := present[index]; !ok {
			missing = append(missing, index)
		}
	}
	sort.Ints(missing)
	return missing
}
