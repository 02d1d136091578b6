package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"spool/internal/config"
	"spool/internal/notifications"
	"spool/internal/queue"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var plateIndex int
	var buildPlate string

	cmd := &cobra.Command{
		Use:   "submit <url>",
		Short: "Queue a model URL for download, slicing, and printing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sourceURL := strings.TrimSpace(args[0])
			if err := validateSourceURL(sourceURL); err != nil {
				return err
			}

			var platePtr *int
			if cmd.Flags().Changed("plate") {
				if plateIndex < 1 {
					return fmt.Errorf("plate index must be 1 or greater, got %d", plateIndex)
				}
				platePtr = &plateIndex
			}

			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				item, err := store.NewJob(cmd.Context(), sourceURL, platePtr, strings.TrimSpace(buildPlate))
				if err != nil {
					return err
				}

				notifier := notifications.NewService(cfg)
				if err := notifier.Publish(cmd.Context(), notifications.EventJobQueued, notifications.Payload{
					"title": item.DisplayTitle(),
				}); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Warning: notification failed: %v\n", err)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Queued job #%d (%s)\n", item.ID, item.DisplayTitle())
				if platePtr != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "  Plate: %d\n", *platePtr)
				}
				if trimmed := strings.TrimSpace(buildPlate); trimmed != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "  Build plate: %s\n", trimmed)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&plateIndex, "plate", 0, "Slice only the given plate index (1-based)")
	cmd.Flags().StringVar(&buildPlate, "build-plate", "", "Override the build plate type passed to the slicer")
	return cmd
}

func validateSourceURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("source URL is required")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	switch parsed.Scheme {
	case "http", "https":
	default:
		return fmt.Errorf("unsupported URL scheme %q; only http and https are accepted", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL %q has no host", raw)
	}
	return nil
}
