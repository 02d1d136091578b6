package threemf

// FilamentRequirement is one material a plate needs, in the model's internal
// filament-index order. That order is the join key between requirements and
// slot mappings, so it must stay stable across extractions.
type FilamentRequirement struct {
	Type  string `json:"type"`
	Color string `json:"color"`
}

// PlateRequirements is the ordered requirement sequence for one plate.
type PlateRequirements struct {
	PlateIndex    int                   `json:"plate_index"`
	Filaments     []FilamentRequirement `json:"filaments"`
	HasMulticolor bool                  `json:"has_multicolor"`
}

// PlateInfo carries per-plate statistics from the container's slice metadata.
// Prediction and weight are nil when the container does not embed estimates.
type PlateInfo struct {
	Index             int      `json:"index"`
	ObjectCount       int      `json:"object_count"`
	PredictionSeconds *float64 `json:"prediction_seconds,omitempty"`
	WeightGrams       *float64 `json:"weight_grams,omitempty"`
	HasSupport        bool     `json:"has_support"`
}

// PlateFilament is a filament declaration inside a plate's slice metadata.
type PlateFilament struct {
	ID        int
	Type      string
	Color     string
	UsedGrams float64
}

// Plate is one independent build arrangement within a container.
type Plate struct {
	Index             int
	Objects           int
	PredictionSeconds *float64
	WeightGrams       *float64
	HasSupport        bool
	Filaments         []PlateFilament
}

// Container is the parsed form of a 3MF file.
type Container struct {
	SourcePath string
	Plates     []Plate
}
