package printing

import (
	"context"
	"fmt"
	"strings"

	"log/slog"

	"spool/internal/config"
	"spool/internal/logging"
	"spool/internal/notifications"
	"spool/internal/printer"
	"spool/internal/queue"
	"spool/internal/services"
	"spool/internal/stage"
)

// Handler starts uploaded gcode on the printer.
type Handler struct {
	store     *queue.Store
	cfg       *config.Config
	logger    *slog.Logger
	transport printer.Transport
	notifier  notifications.Service
}

// NewHandler constructs the print handler with the HTTP printer transport.
func NewHandler(cfg *config.Config, store *queue.Store, logger *slog.Logger) (*Handler, error) {
	transport, err := printer.NewHTTPTransport(cfg.Printer)
	if err != nil {
		return nil, fmt.Errorf("build printer transport: %w", err)
	}
	return NewHandlerWithDependencies(cfg, store, logger, transport, notifications.NewService(cfg)), nil
}

// NewHandlerWithDependencies allows injecting the collaborators (used in tests).
func NewHandlerWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, transport printer.Transport, notifier notifications.Service) *Handler {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "printer"))
	}
	return &Handler{store: store, cfg: cfg, logger: stageLogger, transport: transport, notifier: notifier}
}

func (h *Handler) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, h.logger)
	if item.ProgressStage == "" {
		item.ProgressStage = "Printing"
	}
	item.ProgressMessage = "Starting print"
	item.ProgressPercent = 0
	item.ErrorMessage = ""
	logger.Info("starting print preparation",
		logging.String("remote_name", item.RemoteName),
	)
	return nil
}

func (h *Handler) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, h.logger)

	if strings.TrimSpace(item.RemoteName) == "" {
		return services.Wrap(
			services.ErrValidation,
			"printing",
			"locate uploaded gcode",
			"No uploaded gcode recorded for this job",
			fmt.Errorf("remote name missing for submission %s", item.SubmissionID),
		)
	}

	item.SetProgress("Printing", "Requesting print start", 50)
	logger.Info("starting print",
		logging.String("remote_name", item.RemoteName),
	)

	if err := h.transport.StartPrint(ctx, item.RemoteName); err != nil {
		return services.Wrap(
			services.ErrPrint,
			"printing",
			"start print",
			"Print start failed; check the printer state and remote file",
			err,
		)
	}

	item.SetProgressComplete("Printing", "Print started")
	logger.Info("print started",
		logging.String("remote_name", item.RemoteName),
	)

	if h.notifier != nil {
		if err := h.notifier.Publish(ctx, notifications.EventPrintStarted, notifications.Payload{
			"title": item.DisplayTitle(),
		}); err != nil {
			logger.Warn("print start notification failed", logging.Error(err))
		}
	}
	return nil
}

// HealthCheck verifies the printer transport is configured.
func (h *Handler) HealthCheck(ctx context.Context) stage.Health {
	const name = "printer"
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
