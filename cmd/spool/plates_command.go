package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"spool/internal/threemf"
)

func newPlatesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "plates <model.3mf>",
		Short: "Inspect the plates and filament requirements of a 3MF file",
		Args:  cobra.ExactArgs(1),
		Annotations: map[string]string{
			"skipConfigLoad": "true",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			modelPath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			container, err := threemf.Parse(modelPath)
			if err != nil {
				return fmt.Errorf("parse %s: %w", filepath.Base(modelPath), err)
			}

			requirements, infos := threemf.ExtractRequirements(container)
			out := cmd.OutOrStdout()

			if len(infos) == 0 {
				fmt.Fprintln(out, "No plates found in this model.")
				return nil
			}

			plateRows := make([][]string, 0, len(infos))
			for i, info := range infos {
				filaments := "-"
				if i < len(requirements) {
					filaments = formatFilamentList(requirements[i].Filaments)
				}
				plateRows = append(plateRows, []string{
					strconv.Itoa(info.Index),
					strconv.Itoa(info.ObjectCount),
					formatPrediction(info.PredictionSeconds),
					formatWeight(info.WeightGrams),
					yesNo(info.HasSupport),
					filaments,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Plate", "Objects", "Est. Time", "Weight", "Support", "Filaments"},
				plateRows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignLeft, alignLeft},
			))

			model := threemf.ModelRequirements(container)
			if len(model) == 0 {
				fmt.Fprintln(out, "No filament requirements declared; the model will slice with printer defaults.")
				return nil
			}

			reqRows := make([][]string, 0, len(model))
			for i, req := range model {
				reqRows = append(reqRows, []string{strconv.Itoa(i), req.Type, req.Color})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Index", "Type", "Color"},
				reqRows,
				[]columnAlignment{alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func formatFilamentList(filaments []threemf.FilamentRequirement) string {
	if len(filaments) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(filaments))
	for _, filament := range filaments {
		parts = append(parts, fmt.Sprintf("%s %s", filament.Type, filament.Color))
	}
	return strings.Join(parts, ", ")
}

func formatPrediction(seconds *float64) string {
	if seconds == nil || *seconds <= 0 {
		return "-"
	}
	return time.Duration(*seconds * float64(time.Second)).Round(time.Minute).String()
}

func formatWeight(grams *float64) string {
	if grams == nil || *grams <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.1fg", *grams)
}
