package downloading

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"log/slog"

	"spool/internal/config"
	"spool/internal/download"
	"spool/internal/logging"
	"spool/internal/queue"
	"spool/internal/services"
	"spool/internal/stage"
	"spool/internal/threemf"
)

// Handler downloads queued models and records their requirements.
type Handler struct {
	store   *queue.Store
	cfg     *config.Config
	logger  *slog.Logger
	fetcher download.Fetcher
}

// NewHandler constructs the download handler using the HTTP fetcher.
func NewHandler(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Handler {
	fetcher := download.NewHTTPFetcher(cfg.Download.RequestTimeout, cfg.Download.MaxSizeMiB)
	return NewHandlerWithDependencies(cfg, store, logger, fetcher)
}

// NewHandlerWithDependencies allows injecting the fetcher (used in tests).
func NewHandlerWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, fetcher download.Fetcher) *Handler {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "downloader"))
	}
	return &Handler{store: store, cfg: cfg, logger: stageLogger, fetcher: fetcher}
}

func (h *Handler) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, h.logger)
	if item.ProgressStage == "" {
		item.ProgressStage = "Downloading"
	}
	item.ProgressMessage = "Starting download"
	item.ProgressPercent = 0
	item.ErrorMessage = ""
	logger.Info("starting download preparation",
		logging.String("source_url", strings.TrimSpace(item.SourceURL)),
	)
	return nil
}

func (h *Handler) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, h.logger)

	destDir := filepath.Join(h.cfg.Paths.StagingDir, "jobs", item.SubmissionID, "model")
	logger.Info("fetching model",
		logging.String("source_url", item.SourceURL),
		logging.String("destination_dir", destDir),
	)

	path, err := h.fetcher.Fetch(ctx, item.SourceURL, destDir)
	if err != nil {
		return services.Wrap(
			services.ErrDownload,
			"downloading",
			"fetch model",
			"Model download failed; check the URL and network connectivity",
			err,
		)
	}
	item.ModelFile = path
	item.SetProgress("Downloading", "Analyzing model", 80)

	container, err := threemf.Parse(path)
	if err != nil {
		return services.Wrap(
			services.ErrParse,
			"downloading",
			"parse model container",
			"Model container could not be parsed; the file may be corrupt or unsliced",
			err,
		)
	}

	requirements := threemf.ModelRequirements(container)
	encoded, err := stage.EncodeRequirements(requirements)
	if err != nil {
		return err
	}
	item.RequirementsJSON = encoded

	if item.ModelTitle == "" {
		base := filepath.Base(path)
		item.ModelTitle = strings.TrimSuffix(base, filepath.Ext(base))
	}

	item.SetProgressComplete("Downloaded", "Model downloaded")
	logger.Info("download completed",
		logging.String("model_file", path),
		logging.Int("filament_requirements", len(requirements)),
		logging.Int("plates", len(container.Plates)),
	)
	return nil
}

// HealthCheck verifies download dependencies.
func (h *Handler) HealthCheck(ctx context.Context) stage.Health {
	const name = "downloader"
	if h.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(h.cfg.Paths.StagingDir) == "" {
		return stage.Unhealthy(name, "staging directory not configured")
	}
	if h.fetcher == nil {
		return stage.Unhealthy(name, "fetcher unavailable")
	}
	if h.cfg.Download.MaxSizeMiB < 0 {
		return stage.Unhealthy(name, fmt.Sprintf("invalid download size cap %d", h.cfg.Download.MaxSizeMiB))
	}
	return stage.Healthy(name)
}
