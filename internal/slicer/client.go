package slicer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"spool/internal/ams"
)

// Request carries everything one slicing run needs. Mappings are frozen by
// the caller before slicing; PlateIndex nil means slice every plate.
type Request struct {
	ModelPath  string
	OutputDir  string
	BuildPlate string
	PlateIndex *int
	Mappings   []ams.Mapping
}

// Client defines the behaviour required by the slicing stage.
type Client interface {
	Slice(ctx context.Context, req Request) (string, error)
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onOutput func(string)) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *CLI) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// CLI wraps the external slicer binary.
type CLI struct {
	binary  string
	timeout time.Duration
	exec    Executor
}

// New constructs a slicer client.
func New(binary string, timeoutSeconds int, opts ...Option) (*CLI, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("slicer binary required")
	}
	client := &CLI{
		binary:  binary,
		timeout: time.Duration(timeoutSeconds) * time.Second,
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// excerptLines bounds how much slicer output is retained for diagnostics.
const excerptLines = 40

// ExecError carries the tail of the slicer's combined output alongside the
// underlying failure so callers can surface actionable diagnostics.
type ExecError struct {
	Excerpt []string
	Err     error
}

func (e *ExecError) Error() string {
	if len(e.Excerpt) == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v\nslicer output:\n%s", e.Err, strings.Join(e.Excerpt, "\n"))
}

func (e *ExecError) Unwrap() error { return e.Err }

// Slice executes the slicer and returns the produced gcode path.
func (c *CLI) Slice(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.ModelPath) == "" {
		return "", errors.New("model path required")
	}
	if strings.TrimSpace(req.OutputDir) == "" {
		return "", errors.New("output directory required")
	}
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := buildArgs(req)

	var excerpt []string
	collect := func(line string) {
		excerpt = append(excerpt, line)
		if len(excerpt) > excerptLines {
			excerpt = excerpt[len(excerpt)-excerptLines:]
		}
	}

	if err := c.exec.Run(runCtx, c.binary, args, collect); err != nil {
		return "", &ExecError{Excerpt: excerpt, Err: fmt.Errorf("slicer run: %w", err)}
	}

	gcode, err := locateGcode(req.OutputDir)
	if err != nil {
		return "", &ExecError{Excerpt: excerpt, Err: err}
	}
	return gcode, nil
}

func buildArgs(req Request) []string {
	plate := "0"
	if req.PlateIndex != nil {
		plate = strconv.Itoa(*req.PlateIndex)
	}
	args := []string{"--slice", plate, "--export-gcode"}
	if plateType := strings.TrimSpace(req.BuildPlate); plateType != "" {
		args = append(args, "--curr-bed-type", plateType)
	}
	if len(req.Mappings) > 0 {
		args = append(args, "--filament-slots", encodeMappings(req.Mappings))
	}
	args = append(args, "--outputdir", req.OutputDir, req.ModelPath)
	return args
}

// encodeMappings renders mappings as index=unit:slot pairs in filament order.
func encodeMappings(mappings []ams.Mapping) string {
	parts := make([]string, 0, len(mappings))
	for _, m := range mappings {
		parts = append(parts, fmt.Sprintf("%d=%d:%d", m.FilamentIndex, m.UnitID, m.SlotID))
	}
	return strings.Join(parts, ",")
}

func locateGcode(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("inspect slicer outputs: %w", err)
	}

	var (
		best     string
		bestTime time.Time
	)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.ToLower(entry.Name())
		if !strings.HasSuffix(name, ".gcode") && !strings.HasSuffix(name, ".gcode.3mf") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if best == "" || info.ModTime().After(bestTime) {
			best = filepath.Join(dir, entry.Name())
			bestTime = info.ModTime()
		}
	}
	if best == "" {
		return "", errors.New("slicer produced no gcode output")
	}
	return best, nil
}
