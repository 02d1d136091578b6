package uploading

import (
	"context"
	"fmt"
	"os"
	"strings"

	"log/slog"

	"spool/internal/config"
	"spool/internal/logging"
	"spool/internal/printer"
	"spool/internal/queue"
	"spool/internal/services"
	"spool/internal/stage"
)

// Handler uploads sliced gcode to the printer.
type Handler struct {
	store     *queue.Store
	cfg       *config.Config
	logger    *slog.Logger
	transport printer.Transport
}

// NewHandler constructs the upload handler with the HTTP printer transport.
func NewHandler(cfg *config.Config, store *queue.Store, logger *slog.Logger) (*Handler, error) {
	transport, err := printer.NewHTTPTransport(cfg.Printer)
	if err != nil {
		return nil, fmt.Errorf("build printer transport: %w", err)
	}
	return NewHandlerWithDependencies(cfg, store, logger, transport), nil
}

// NewHandlerWithDependencies allows injecting the transport (used in tests).
func NewHandlerWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, transport printer.Transport) *Handler {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "uploader"))
	}
	return &Handler{store: store, cfg: cfg, logger: stageLogger, transport: transport}
}

func (h *Handler) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, h.logger)
	if item.ProgressStage == "" {
		item.ProgressStage = "Uploading"
	}
	item.ProgressMessage = "Starting upload"
	item.ProgressPercent = 0
	item.ErrorMessage = ""
	logger.Info("starting upload preparation",
		logging.String("gcode_file", item.GcodeFile),
	)
	return nil
}

func (h *Handler) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, h.logger)

	if strings.TrimSpace(item.GcodeFile) == "" {
		return services.Wrap(
			services.ErrValidation,
			"uploading",
			"locate gcode",
			"No sliced gcode recorded for this job",
			fmt.Errorf("gcode file missing for submission %s", item.SubmissionID),
		)
	}
	if _, err := os.Stat(item.GcodeFile); err != nil {
		return services.Wrap(
			services.ErrValidation,
			"uploading",
			"locate gcode",
			"Sliced gcode is missing from staging; retry the job to slice it again",
			err,
		)
	}

	item.SetProgress("Uploading", "Transferring gcode to printer", 20)
	logger.Info("uploading gcode",
		logging.String("gcode_file", item.GcodeFile),
	)

	remoteName, err := h.transport.Upload(ctx, item.GcodeFile)
	if err != nil {
		return services.Wrap(
			services.ErrTransfer,
			"uploading",
			"upload gcode",
			"Gcode upload failed; check printer connectivity and storage",
			err,
		)
	}

	item.RemoteName = remoteName
	item.SetProgressComplete("Uploaded", "Gcode uploaded")
	logger.Info("upload completed",
		logging.String("remote_name", remoteName),
	)
	return nil
}

// HealthCheck verifies the printer transport is configured.
func (h *Handler) HealthCheck(ctx context.Context) stage.Health {
	const name = "uploader"
	if h.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(h.cfg.Printer.BaseURL) == "" {
		return stage.Unhealthy(name, "printer base URL not configured")
	}
	if h.transport == nil {
		return stage.Unhealthy(name, "printer transport unavailable")
	}
	return stage.Healthy(name)
}
