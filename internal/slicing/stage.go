package slicing

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"log/slog"

	"spool/internal/ams"
	"spool/internal/config"
	"spool/internal/logging"
	"spool/internal/notifications"
	"spool/internal/printer"
	"spool/internal/queue"
	"spool/internal/services"
	"spool/internal/slicer"
	"spool/internal/stage"
	"spool/internal/threemf"
)

// Handler slices downloaded models into gcode ready for upload.
type Handler struct {
	store     *queue.Store
	cfg       *config.Config
	logger    *slog.Logger
	client    slicer.Client
	transport printer.Transport
	notifier  notifications.Service
}

// NewHandler constructs the slicing handler with the CLI slicer client and
// the HTTP printer transport.
func NewHandler(cfg *config.Config, store *queue.Store, logger *slog.Logger) (*Handler, error) {
	client, err := slicer.New(cfg.SlicerBinary(), cfg.Slicer.Timeout)
	if err != nil {
		return nil, fmt.Errorf("build slicer client: %w", err)
	}
	transport, err := printer.NewHTTPTransport(cfg.Printer)
	if err != nil {
		return nil, fmt.Errorf("build printer transport: %w", err)
	}
	return NewHandlerWithDependencies(cfg, store, logger, client, transport, notifications.NewService(cfg)), nil
}

// NewHandlerWithDependencies allows injecting the collaborators (used in tests).
func NewHandlerWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, client slicer.Client, transport printer.Transport, notifier notifications.Service) *Handler {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "slicer"))
	}
	return &Handler{
		store:     store,
		cfg:       cfg,
		logger:    stageLogger,
		client:    client,
		transport: transport,
		notifier:  notifier,
	}
}

func (h *Handler) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, h.logger)
	if item.ProgressStage == "" {
		item.ProgressStage = "Slicing"
	}
	item.ProgressMessage = "Preparing slicer"
	item.ProgressPercent = 0
	item.ErrorMessage = ""
	logger.Info("starting slice preparation",
		logging.String("model_file", item.ModelFile),
	)
	return nil
}

func (h *Handler) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, h.logger)

	if strings.TrimSpace(item.ModelFile) == "" {
		return services.Wrap(
			services.ErrValidation,
			"slicing",
			"locate model",
			"No downloaded model recorded for this job",
			fmt.Errorf("model file missing for submission %s", item.SubmissionID),
		)
	}
	if _, err := os.Stat(item.ModelFile); err != nil {
		return services.Wrap(
			services.ErrValidation,
			"slicing",
			"locate model",
			"Downloaded model is missing from staging; retry the job to download it again",
			err,
		)
	}

	requirements, err := stage.ParseRequirements(item.RequirementsJSON)
	if err != nil {
		return err
	}
	mappings, err := stage.ParseMappings(item.MappingJSON)
	if err != nil {
		return err
	}

	if len(mappings) == 0 && len(requirements) > 0 {
		item.SetProgress("Slicing", "Matching filaments against loaded spools", 10)
		mappings, err = h.resolveMappings(ctx, item, requirements)
		if err != nil {
			return err
		}
	}

	if missing := ams.MissingIndices(len(requirements), mappings); len(missing) > 0 {
		return services.Wrap(
			services.ErrValidation,
			"slicing",
			"match filaments",
			fmt.Sprintf("No loaded filament satisfies requirement indices %v; load matching spools or submit an explicit mapping", missing),
			fmt.Errorf("unmatched filament indices %v", missing),
		)
	}

	buildPlate := strings.TrimSpace(item.BuildPlate)
	if buildPlate == "" {
		buildPlate = h.cfg.Slicer.DefaultBuildPlate
	}
	outputDir := filepath.Join(h.cfg.Paths.StagingDir, "jobs", item.SubmissionID, "gcode")

	item.SetProgress("Slicing", "Running slicer", 30)
	logger.Info("slicing model",
		logging.String("model_file", item.ModelFile),
		logging.String("build_plate", buildPlate),
		logging.Int("mappings", len(mappings)),
	)

	gcodePath, err := h.client.Slice(ctx, slicer.Request{
		ModelPath:  item.ModelFile,
		OutputDir:  outputDir,
		BuildPlate: buildPlate,
		PlateIndex: item.PlateIndex,
		Mappings:   mappings,
	})
	if err != nil {
		return services.Wrap(
			services.ErrSlice,
			"slicing",
			"run slicer",
			"Slicing failed; inspect the slicer output excerpt for details",
			err,
		)
	}

	item.GcodeFile = gcodePath
	item.SetProgressComplete("Sliced", "Model sliced")
	logger.Info("slice completed",
		logging.String("gcode_file", gcodePath),
	)

	if h.notifier != nil {
		if err := h.notifier.Publish(ctx, notifications.EventSliceCompleted, notifications.Payload{
			"title": item.DisplayTitle(),
		}); err != nil {
			logger.Warn("slice notification failed", logging.Error(err))
		}
	}
	return nil
}

// resolveMappings snapshots the printer's loaded filaments and freezes the
// best assignment for this job. The frozen mapping is persisted on the item
// so later retries reuse it instead of re-matching against drifted hardware.
func (h *Handler) resolveMappings(ctx context.Context, item *queue.Item, requirements []threemf.FilamentRequirement) ([]ams.Mapping, error) {
	if h.transport == nil {
		return nil, services.Wrap(
			services.ErrConfiguration,
			"slicing",
			"match filaments",
			"Printer transport unavailable; configure the printer connection",
			fmt.Errorf("nil transport"),
		)
	}
	slots, err := h.transport.LoadedFilaments(ctx)
	if err != nil {
		return nil, services.Wrap(
			services.ErrTransient,
			"slicing",
			"query loaded filaments",
			"Could not read the printer's filament slots; check printer connectivity",
			err,
		)
	}

	results := ams.Match(requirements, slots)
	mappings := ams.Mappings(results)
	encoded, err := stage.EncodeMappings(mappings)
	if err != nil {
		return nil, err
	}
	item.MappingJSON = encoded
	return mappings, nil
}

// HealthCheck verifies the slicer binary is installed and reachable.
func (h *Handler) HealthCheck(ctx context.Context) stage.Health {
	const name = "slicer"
	if h.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	binary := h.cfg.SlicerBinary()
	if _, err := exec.LookPath(binary); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("slicer binary %q not found in PATH", binary))
	}
	if h.transport == nil {
		return stage.Unhealthy(name, "printer transport unavailable")
	}
	return stage.Healthy(name)
}
