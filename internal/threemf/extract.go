package threemf

import (
	"sort"
	"strings"
)

// ExtractRequirements produces the per-plate requirement sequences and plate
// statistics for a parsed container.
//
// Requirement order within a plate follows the model's filament-index order.
// Plates that reference multiple independent parts still yield one coherent
// sequence per plate. A container with no material metadata produces empty
// filament sequences, which is a valid result.
func ExtractRequirements(container *Container) ([]PlateRequirements, []PlateInfo) {
	if container == nil {
		return nil, nil
	}

	requirements := make([]PlateRequirements, 0, len(container.Plates))
	infos := make([]PlateInfo, 0, len(container.Plates))

	for _, plate := range container.Plates {
		plateReqs := PlateRequirements{
			PlateIndex: plate.Index,
			Filaments:  make([]FilamentRequirement, 0, len(plate.Filaments)),
		}
		for _, filament := range plate.Filaments {
			plateReqs.Filaments = append(plateReqs.Filaments, FilamentRequirement{
				Type:  filament.Type,
				Color: filament.Color,
			})
		}
		plateReqs.HasMulticolor = countDistinct(plateReqs.Filaments) > 1
		requirements = append(requirements, plateReqs)

		infos = append(infos, PlateInfo{
			Index:             plate.Index,
			ObjectCount:       plate.Objects,
			PredictionSeconds: plate.PredictionSeconds,
			WeightGrams:       plate.WeightGrams,
			HasSupport:        plate.HasSupport,
		})
	}

	return requirements, infos
}

// ModelRequirements merges the plate filament declarations into the single
// model-wide ordered list used for matching and mapping validation. Filament
// IDs are project-wide in sliced containers, so a filament shared by several
// plates appears once, at the position its ID dictates.
func ModelRequirements(container *Container) []FilamentRequirement {
	if container == nil {
		return nil
	}
	byID := make(map[int]FilamentRequirement)
	var ids []int
	for _, plate := range container.Plates {
		for _, filament := range plate.Filaments {
			if _, ok := byID[filament.ID]; ok {
				continue
			}
			byID[filament.ID] = FilamentRequirement{Type: filament.Type, Color: filament.Color}
			ids = append(ids, filament.ID)
		}
	}
	sort.Ints(ids)
	flat := make([]FilamentRequirement, 0, len(ids))
	for _, id := range ids {
		flat = append(flat, byID[id])
	}
	return flat
}

func countDistinct(filaments []FilamentRequirement) int {
	seen := make(map[string]struct{}, len(filaments))
	for _, filament := range filaments {
		key := strings.ToLower(strings.TrimSpace(filament.Type)) + "|" +
			strings.ToLower(strings.TrimSpace(filament.Color))
		seen[key] = struct{}{}
	}
	return len(seen)
}
