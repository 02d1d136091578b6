package slicer_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"spool/internal/ams"
	"spool/internal/slicer"
)

type fakeExecutor struct {
	binary string
	args   []string
	run    func(ctx context.Context, args []string, onOutput func(string)) error
}

func (f *fakeExecutor) Run(ctx context.Context, binary string, args []string, onOutput func(string)) error {
	f.binary = binary
	f.args = args
	if f.run != nil {
		return f.run(ctx, args, onOutput)
	}
	return nil
}

func TestNewRequiresBinary(t *testing.T) {
	if _, err := slicer.New("   ", 60); err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestSliceBuildsArgumentsAndLocatesGcode(t *testing.T) {
	outputDir := t.TempDir()
	exec := &fakeExecutor{
		run: func(ctx context.Context, args []string, onOutput func(string)) error {
			onOutput("slicing plate 2")
			return os.WriteFile(filepath.Join(outputDir, "plate_2.gcode"), []byte("G28\n"), 0o644)
		},
	}
	client, err := slicer.New("orca-slicer", 60, slicer.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	plate := 2
	gcode, err := client.Slice(context.Background(), slicer.Request{
		ModelPath:  "/models/benchy.3mf",
		OutputDir:  outputDir,
		BuildPlate: "textured_pei",
		PlateIndex: &plate,
		Mappings:   []ams.Mapping{{FilamentIndex: 0, UnitID: 0, SlotID: 2}},
	})
	if err != nil {
		t.Fatalf("Slice: %v", err)
	}
	if filepath.Base(gcode) != "plate_2.gcode" {
		t.Fatalf("unexpected gcode path: %s", gcode)
	}
	if exec.binary != "orca-slicer" {
		t.Fatalf("unexpected binary: %s", exec.binary)
	}

	joined := strings.Join(exec.args, " ")
	for _, fragment := range []string{
		"--slice 2",
		"--curr-bed-type textured_pei",
		"--filament-slots 0=0:2",
		"--outputdir " + outputDir,
		"/models/benchy.3mf",
	} {
		if !strings.Contains(joined, fragment) {
			t.Fatalf("expected args to contain %q, got %q", fragment, joined)
		}
	}
}

func TestSliceAllPlatesPassesZero(t *testing.T) {
	outputDir := t.TempDir()
	exec := &fakeExecutor{
		run: func(ctx context.Context, args []string, onOutput func(string)) error {
			return os.WriteFile(filepath.Join(outputDir, "model.gcode"), []byte("G28\n"), 0o644)
		},
	}
	client, err := slicer.New("orca-slicer", 60, slicer.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := client.Slice(context.Background(), slicer.Request{
		ModelPath: "/models/benchy.3mf",
		OutputDir: outputDir,
	}); err != nil {
		t.Fatalf("Slice: %v", err)
	}
	if !strings.Contains(strings.Join(exec.args, " "), "--slice 0") {
		t.Fatalf("expected all-plate selection, got %v", exec.args)
	}
}

func TestSliceFailureCarriesOutputExcerpt(t *testing.T) {
	exec := &fakeExecutor{
		run: func(ctx context.Context, args []string, onOutput func(string)) error {
			onOutput("loading model")
			onOutput("error: vase mode incompatible with supports")
			return errors.New("exit status 1")
		},
	}
	client, err := slicer.New("orca-slicer", 60, slicer.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = client.Slice(context.Background(), slicer.Request{
		ModelPath: "/models/vase.3mf",
		OutputDir: t.TempDir(),
	})
	if err == nil {
		t.Fatal("expected slicing failure")
	}

	var execErr *slicer.ExecError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected ExecError, got %T", err)
	}
	if len(execErr.Excerpt) != 2 {
		t.Fatalf("expected two excerpt lines, got %d", len(execErr.Excerpt))
	}
	if !strings.Contains(err.Error(), "vase mode incompatible") {
		t.Fatalf("expected excerpt in error text, got %v", err)
	}
}

func TestSliceFailsWhenNoGcodeProduced(t *testing.T) {
	client, err := slicer.New("orca-slicer", 60, slicer.WithExecutor(&fakeExecutor{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = client.Slice(context.Background(), slicer.Request{
		ModelPath: "/models/benchy.3mf",
		OutputDir: t.TempDir(),
	})
	if err == nil {
		t.Fatal("expected error when slicer produces no output")
	}
	if !strings.Contains(err.Error(), "no gcode output") {
		t.Fatalf("unexpected error: %v", err)
	}
}
