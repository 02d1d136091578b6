package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"spool/internal/ams"
	"spool/internal/printer"
	"spool/internal/threemf"
)

func newMatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "match <model.3mf>",
		Short: "Preview how a model's filaments map onto loaded AMS slots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.configValue()
			if err != nil {
				return err
			}

			modelPath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			container, err := threemf.Parse(modelPath)
			if err != nil {
				return fmt.Errorf("parse %s: %w", filepath.Base(modelPath), err)
			}
			requirements := threemf.ModelRequirements(container)

			out := cmd.OutOrStdout()
			if len(requirements) == 0 {
				fmt.Fprintln(out, "Model declares no filament requirements; nothing to match.")
				return nil
			}

			transport, err := printer.NewHTTPTransport(cfg.Printer)
			if err != nil {
				return err
			}
			slots, err := transport.LoadedFilaments(cmd.Context())
			if err != nil {
				return fmt.Errorf("query loaded filaments: %w", err)
			}

			results := ams.Match(requirements, slots)
			rows := make([][]string, 0, len(results))
			unmatched := 0
			for _, result := range results {
				req := requirements[result.RequirementIndex]
				slot := "-"
				if result.Quality != ams.QualityNone {
					slot = fmt.Sprintf("%d:%d", result.UnitID, result.SlotID)
				} else {
					unmatched++
				}
				rows = append(rows, []string{
					strconv.Itoa(result.RequirementIndex),
					req.Type,
					req.Color,
					slot,
					string(result.Quality),
					fmt.Sprintf("%.2f", result.Confidence),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Index", "Type", "Color", "Slot", "Quality", "Confidence"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))

			if unmatched > 0 {
				fmt.Fprintf(out, "%d requirement(s) have no matching loaded filament; the job would stop for review.\n", unmatched)
				return nil
			}
			fmt.Fprintln(out, "All requirements matched; the job would slice with this mapping.")
			return nil
		},
	}
}
