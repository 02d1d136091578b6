package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"spool/internal/config"
	"spool/internal/deps"
	"spool/internal/queue"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon, queue, and dependency status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				for _, line := range renderSectionHeader("Daemon", colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, daemonStatusLine(cfg, colorize))
				fmt.Fprintln(out, renderStatusLine("Log Directory", statusInfo, cfg.Paths.LogDir, colorize))
				fmt.Fprintln(out, renderStatusLine("Staging Directory", statusInfo, cfg.Paths.StagingDir, colorize))
				fmt.Fprintln(out)

				for _, line := range renderSectionHeader("Queue", colorize) {
					fmt.Fprintln(out, line)
				}
				health, err := store.Health(cmd.Context())
				if err != nil {
					fmt.Fprintln(out, renderStatusLine("Queue", statusError, err.Error(), colorize))
				} else {
					fmt.Fprintln(out, queueStatusLine(health, colorize))
				}
				fmt.Fprintln(out)

				for _, line := range renderSectionHeader("Printer", colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, printerStatusLine(cfg, colorize))
				fmt.Fprintln(out, notificationsStatusLine(cfg, colorize))
				fmt.Fprintln(out)

				for _, line := range renderSectionHeader("Dependencies", colorize) {
					fmt.Fprintln(out, line)
				}
				for _, status := range deps.CheckBinaries(deps.FromConfig(cfg)) {
					fmt.Fprintln(out, dependencyStatusLine(status, colorize))
				}
				return nil
			})
		},
	}
}

func daemonStatusLine(cfg *config.Config, colorize bool) string {
	pidPath := filepath.Join(cfg.Paths.LogDir, "spool.pid")
	data, err := os.ReadFile(pidPath)
	if err != nil {
		return renderStatusLine("Daemon", statusWarn, "Not running (start with 'spool daemon')", colorize)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return renderStatusLine("Daemon", statusWarn, "Stale PID file", colorize)
	}
	process, err := os.FindProcess(pid)
	if err != nil || process.Signal(syscall.Signal(0)) != nil {
		return renderStatusLine("Daemon", statusWarn, fmt.Sprintf("Stale PID file (pid %d not running)", pid), colorize)
	}
	return renderStatusLine("Daemon", statusOK, fmt.Sprintf("Running (pid %d)", pid), colorize)
}

func queueStatusLine(health queue.HealthSummary, colorize bool) string {
	detail := fmt.Sprintf("%d total (%d pending, %d processing, %d failed, %d review, %d completed)",
		health.Total, health.Pending, health.Processing, health.Failed, health.Review, health.Completed)
	kind := statusOK
	if health.Failed > 0 || health.Review > 0 {
		kind = statusWarn
	}
	return renderStatusLine("Queue", kind, detail, colorize)
}

func printerStatusLine(cfg *config.Config, colorize bool) string {
	baseURL := strings.TrimSpace(cfg.Printer.BaseURL)
	if baseURL == "" {
		return renderStatusLine("Printer", statusWarn, "Missing base URL", colorize)
	}
	if strings.TrimSpace(cfg.Printer.APIKey) == "" {
		return renderStatusLine("Printer", statusWarn, fmt.Sprintf("%s (no API key)", baseURL), colorize)
	}
	return renderStatusLine("Printer", statusOK, baseURL, colorize)
}

func notificationsStatusLine(cfg *config.Config, colorize bool) string {
	if strings.TrimSpace(cfg.Notifications.NtfyTopic) == "" {
		return renderStatusLine("Notifications", statusInfo, "Disabled (no ntfy topic)", colorize)
	}
	return renderStatusLine("Notifications", statusOK, "ntfy configured", colorize)
}

func dependencyStatusLine(status deps.Status, colorize bool) string {
	if status.Available {
		return renderStatusLine(status.Name, statusOK, status.Command, colorize)
	}
	kind := statusError
	if status.Optional {
		kind = statusWarn
	}
	return renderStatusLine(status.Name, kind, status.Detail, colorize)
}
