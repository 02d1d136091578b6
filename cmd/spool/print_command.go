package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"spool/internal/ams"
	"spool/internal/job"
	"spool/internal/logging"
)

func newPrintCommand(ctx *commandContext) *cobra.Command {
	var plateIndex int
	var buildPlate string
	var title string
	var mapFlags []string

	cmd := &cobra.Command{
		Use:   "print <url>",
		Short: "Download, slice, upload, and print a model in one shot",
		Long: `Runs the full pipeline for a single model URL without going through the
queue. Use --map to assign filament requirement indices to AMS slots
explicitly, for example --map 0=0:2 assigns requirement 0 to unit 0 slot 2.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sourceURL := strings.TrimSpace(args[0])
			if err := validateSourceURL(sourceURL); err != nil {
				return err
			}

			mappings, err := parseMappingFlags(mapFlags)
			if err != nil {
				return err
			}

			var platePtr *int
			if cmd.Flags().Changed("plate") {
				if plateIndex < 1 {
					return fmt.Errorf("plate index must be 1 or greater, got %d", plateIndex)
				}
				platePtr = &plateIndex
			}

			cfg, err := ctx.configValue()
			if err != nil {
				return err
			}

			runner, err := job.NewRunner(cfg, logging.NewNop())
			if err != nil {
				return err
			}

			result := runner.Run(cmd.Context(), job.Request{
				SourceURL:  sourceURL,
				Title:      strings.TrimSpace(title),
				Mappings:   mappings,
				BuildPlate: strings.TrimSpace(buildPlate),
				PlateIndex: platePtr,
			})

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(result.Steps))
			for _, step := range result.Steps {
				outcome := "ok"
				if !step.Success {
					outcome = "failed"
				}
				rows = append(rows, []string{string(step.Name), outcome, step.Details})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Step", "Outcome", "Details"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))

			if !result.Success {
				return fmt.Errorf("print job failed: %s", result.Message)
			}
			fmt.Fprintf(out, "Print started (request %s)\n", result.RequestID)
			return nil
		},
	}

	cmd.Flags().IntVar(&plateIndex, "plate", 0, "Slice only the given plate index (1-based)")
	cmd.Flags().StringVar(&buildPlate, "build-plate", "", "Override the build plate type passed to the slicer")
	cmd.Flags().StringVar(&title, "title", "", "Display title used in logs and notifications")
	cmd.Flags().StringArrayVar(&mapFlags, "map", nil, "Filament mapping as index=unit:slot (repeatable)")
	return cmd
}

// parseMappingFlags turns repeated index=unit:slot flags into mappings.
// Duplicate requirement indices are rejected so one requirement cannot be
// assigned to two slots.
func parseMappingFlags(flags []string) ([]ams.Mapping, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	seen := make(map[int]struct{}, len(flags))
	mappings := make([]ams.Mapping, 0, len(flags))
	for _, raw := range flags {
		spec := strings.TrimSpace(raw)
		indexPart, slotPart, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, fmt.Errorf("invalid mapping %q; expected index=unit:slot", raw)
		}
		unitPart, slotIDPart, ok := strings.Cut(slotPart, ":")
		if !ok {
			return nil, fmt.Errorf("invalid mapping %q; expected index=unit:slot", raw)
		}
		index, err := strconv.Atoi(strings.TrimSpace(indexPart))
		if err != nil || index < 0 {
			return nil, fmt.Errorf("invalid requirement index in mapping %q", raw)
		}
		unit, err := strconv.Atoi(strings.TrimSpace(unitPart))
		if err != nil || unit < 0 {
			return nil, fmt.Errorf("invalid AMS unit in mapping %q", raw)
		}
		slot, err := strconv.Atoi(strings.TrimSpace(slotIDPart))
		if err != nil || slot < 0 {
			return nil, fmt.Errorf("invalid AMS slot in mapping %q", raw)
		}
		if _, dup := seen[index]; dup {
			return nil, fmt.Errorf("requirement index %d mapped more than once", index)
		}
		seen[index] = struct{}{}
		mappings = append(mappings, ams.Mapping{FilamentIndex: index, UnitID: unit, SlotID: slot})
	}
	return mappings, nil
}
