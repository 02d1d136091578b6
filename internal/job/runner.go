package job

import (
	"context"
	"fmt"
	"path/filepath"

	"log/slog"

	"github.com/google/uuid"

	"spool/internal/ams"
	"spool/internal/config"
	"spool/internal/download"
	"spool/internal/logging"
	"spool/internal/printer"
	"spool/internal/services"
	"spool/internal/slicer"
	"spool/internal/threemf"
)

// Request describes one print job. Requirements are the model's filament
// requirements captured at submission time; Mappings is the frozen slot
// assignment. PlateIndex nil prints every plate.
type Request struct {
	SourceURL    string
	Title        string
	Requirements []threemf.FilamentRequirement
	Mappings     []ams.Mapping
	BuildPlate   string
	PlateIndex   *int
}

// Runner executes print jobs using injected collaborators.
type Runner struct {
	fetcher    download.Fetcher
	slicer     slicer.Client
	transport  printer.Transport
	logger     *slog.Logger
	stagingDir string
}

// NewRunner constructs a runner with default collaborators from configuration.
func NewRunner(cfg *config.Config, logger *slog.Logger) (*Runner, error) {
	client, err := slicer.New(cfg.SlicerBinary(), cfg.Slicer.Timeout)
	if err != nil {
		return nil, fmt.Errorf("build slicer client: %w", err)
	}
	transport, err := printer.NewHTTPTransport(cfg.Printer)
	if err != nil {
		return nil, fmt.Errorf("build printer transport: %w", err)
	}
	fetcher := download.NewHTTPFetcher(cfg.Download.RequestTimeout, cfg.Download.MaxSizeMiB)
	return NewRunnerWithDependencies(cfg, logger, fetcher, client, transport), nil
}

// NewRunnerWithDependencies allows injecting all collaborators (used in tests).
func NewRunnerWithDependencies(cfg *config.Config, logger *slog.Logger, fetcher download.Fetcher, client slicer.Client, transport printer.Transport) *Runner {
	runnerLogger := logger
	if runnerLogger != nil {
		runnerLogger = runnerLogger.With(logging.String("component", "job-runner"))
	}
	return &Runner{
		fetcher:    fetcher,
		slicer:     client,
		transport:  transport,
		logger:     runnerLogger,
		stagingDir: cfg.Paths.StagingDir,
	}
}

// Run executes the pipeline for one request. The returned Result records only
// the steps that ran; execution stops at the first failure.
func (r *Runner) Run(ctx context.Context, req Request) Result {
	requestID := uuid.NewString()
	ctx = services.WithRequestID(ctx, requestID)
	logger := logging.WithContext(ctx, r.logger)

	result := Result{RequestID: requestID}

	if missing := ams.MissingIndices(len(req.Requirements), req.Mappings); len(missing) > 0 {
		result.Message = fmt.Sprintf("incomplete filament mapping; missing indices: %v", missing)
		logger.Warn("job rejected before start", logging.String("reason", result.Message))
		return result
	}

	workDir := filepath.Join(r.stagingDir, "jobs", requestID)
	startAttrs := []logging.Attr{
		logging.String("source_url", req.SourceURL),
		logging.String("work_dir", workDir),
	}
	if req.Title != "" {
		startAttrs = append(startAttrs, logging.String("model_title", req.Title))
	}
	logger.Info("starting print job", logging.Args(startAttrs...)...)

	modelPath, step := r.runDownload(ctx, req, workDir)
	result.Steps = append(result.Steps, step)
	if !step.Success {
		return finish(logger, result, step)
	}

	gcodePath, step := r.runSlice(ctx, req, modelPath, workDir)
	result.Steps = append(result.Steps, step)
	if !step.Success {
		return finish(logger, result, step)
	}

	remoteName, step := r.runUpload(ctx, gcodePath)
	result.Steps = append(result.Steps, step)
	if !step.Success {
		return finish(logger, result, step)
	}

	step = r.runPrint(ctx, remoteName)
	result.Steps = append(result.Steps, step)
	if !step.Success {
		return finish(logger, result, step)
	}

	result.Success = true
	result.Message = "print job completed successfully"
	logger.Info("print job completed", logging.String("remote_name", remoteName))
	return result
}

func finish(logger *slog.Logger, result Result, failed Step) Result {
	result.Success = false
	result.Message = failed.Message
	logger.Error("print job failed",
		logging.String("step", string(failed.Name)),
		logging.String("details", failed.Details),
	)
	return result
}

func (r *Runner) runDownload(ctx context.Context, req Request, workDir string) (string, Step) {
	path, err := r.fetcher.Fetch(ctx, req.SourceURL, filepath.Join(workDir, "model"))
	if err != nil {
		wrapped := services.Wrap(services.ErrDownload, "download", "fetch model",
			"Model download failed; check the URL and network connectivity", err)
		return "", failedStep(StepDownload, "model download failed", wrapped)
	}
	return path, Step{
		Name:    StepDownload,
		Success: true,
		Message: "model downloaded",
		Details: path,
	}
}

func (r *Runner) runSlice(ctx context.Context, req Request, modelPath, workDir string) (string, Step) {
	gcode, err := r.slicer.Slice(ctx, slicer.Request{
		ModelPath:  modelPath,
		OutputDir:  filepath.Join(workDir, "gcode"),
		BuildPlate: req.BuildPlate,
		PlateIndex: req.PlateIndex,
		Mappings:   req.Mappings,
	})
	if err != nil {
		wrapped := services.Wrap(services.ErrSlice, "slice", "run slicer",
			"Slicing failed; check the slicer installation and model validity", err)
		return "", failedStep(StepSlice, "slicing failed", wrapped)
	}
	return gcode, Step{
		Name:    StepSlice,
		Success: true,
		Message: "model sliced",
		Details: gcode,
	}
}

func (r *Runner) runUpload(ctx context.Context, gcodePath string) (string, Step) {
	remote, err := r.transport.Upload(ctx, gcodePath)
	if err != nil {
		wrapped := services.Wrap(services.ErrTransfer, "upload", "upload gcode",
			"Upload to printer failed; check printer connectivity", err)
		return "", failedStep(StepUpload, "gcode upload failed", wrapped)
	}
	return remote, Step{
		Name:    StepUpload,
		Success: true,
		Message: "gcode uploaded",
		Details: remote,
	}
}

func (r *Runner) runPrint(ctx context.Context, remoteName string) Step {
	if err := r.transport.StartPrint(ctx, remoteName); err != nil {
		wrapped := services.Wrap(services.ErrPrint, "print", "start print",
			"Print start rejected; check printer state", err)
		return failedStep(StepPrint, "print start failed", wrapped)
	}
	return Step{
		Name:    StepPrint,
		Success: true,
		Message: "print started",
		Details: "print started",
	}
}

func failedStep(name StepName, message string, err error) Step {
	details := message
	if err != nil {
		details = err.Error()
	}
	return Step{Name: name, Success: false, Message: message, Details: details}
}
