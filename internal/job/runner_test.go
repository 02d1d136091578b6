package job_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"spool/internal/ams"
	"spool/internal/job"
	"spool/internal/logging"
	"spool/internal/slicer"
	"spool/internal/testsupport"
	"spool/internal/threemf"
)

type fakeFetcher struct {
	path  string
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(ctx context.Context, sourceURL, destDir string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if f.path != "" {
		return f.path, nil
	}
	return destDir + "/model.3mf", nil
}

type fakeSlicer struct {
	gcode   string
	err     error
	calls   int
	lastReq slicer.Request
}

func (f *fakeSlicer) Slice(ctx context.Context, req slicer.Request) (string, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return "", f.err
	}
	if f.gcode != "" {
		return f.gcode, nil
	}
	return req.OutputDir + "/model.gcode", nil
}

type fakeTransport struct {
	uploadErr   error
	printErr    error
	uploadCalls int
	printCalls  int
	remoteName  string
}

func (f *fakeTransport) Upload(ctx context.Context, gcodePath string) (string, error) {
	f.uploadCalls++
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	if f.remoteName != "" {
		return f.remoteName, nil
	}
	return "cache/model.gcode", nil
}

func (f *fakeTransport) StartPrint(ctx context.Context, remoteName string) error {
	f.printCalls++
	return f.printErr
}

func (f *fakeTransport) LoadedFilaments(ctx context.Context) ([]ams.Slot, error) {
	return nil, nil
}

func newRunner(t *testing.T, fetcher *fakeFetcher, client *fakeSlicer, transport *fakeTransport) *job.Runner {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	return job.NewRunnerWithDependencies(cfg, logging.NewNop(), fetcher, client, transport)
}

func TestRunCompletesAllStepsInOrder(t *testing.T) {
	fetcher := &fakeFetcher{}
	client := &fakeSlicer{}
	transport := &fakeTransport{}
	runner := newRunner(t, fetcher, client, transport)

	result := runner.Run(context.Background(), job.Request{
		SourceURL: "https://models.example.com/benchy.3mf",
		Requirements: []threemf.FilamentRequirement{
			{Type: "PLA", Color: "#FF0000"},
		},
		Mappings: []ams.Mapping{
			{FilamentIndex: 0, UnitID: 0, SlotID: 1},
		},
		BuildPlate: "textured_pei",
	})

	if !result.Success {
		t.Fatalf("expected success, got %#v", result)
	}
	if result.Message != "print job completed successfully" {
		t.Fatalf("unexpected message: %q", result.Message)
	}
	if result.RequestID == "" {
		t.Fatal("expected request ID to be assigned")
	}
	expected := []job.StepName{job.StepDownload, job.StepSlice, job.StepUpload, job.StepPrint}
	if len(result.Steps) != len(expected) {
		t.Fatalf("expected %d steps, got %d", len(expected), len(result.Steps))
	}
	for i, name := range expected {
		if result.Steps[i].Name != name || !result.Steps[i].Success {
			t.Fatalf("step %d: expected successful %s, got %#v", i, name, result.Steps[i])
		}
	}
	if result.FailedStep() != nil {
		t.Fatal("expected no failed step")
	}
}

func TestRunRejectsIncompleteMappingBeforeAnyStep(t *testing.T) {
	fetcher := &fakeFetcher{}
	client := &fakeSlicer{}
	transport := &fakeTransport{}
	runner := newRunner(t, fetcher, client, transport)

	result := runner.Run(context.Background(), job.Request{
		SourceURL: "https://models.example.com/two-color.3mf",
		Requirements: []threemf.FilamentRequirement{
			{Type: "PLA", Color: "#FF0000"},
			{Type: "PETG", Color: "#00FF00"},
		},
		Mappings: []ams.Mapping{
			{FilamentIndex: 0, UnitID: 0, SlotID: 0},
		},
	})

	if result.Success {
		t.Fatal("expected validation failure")
	}
	if !strings.Contains(result.Message, "missing indices: [1]") {
		t.Fatalf("expected missing index in message, got %q", result.Message)
	}
	if len(result.Steps) != 0 {
		t.Fatalf("expected no steps recorded, got %d", len(result.Steps))
	}
	if fetcher.calls != 0 || client.calls != 0 || transport.uploadCalls != 0 || transport.printCalls != 0 {
		t.Fatal("expected no collaborator invoked after validation failure")
	}
}

func TestRunZeroRequirementsSkipsValidation(t *testing.T) {
	fetcher := &fakeFetcher{}
	client := &fakeSlicer{}
	transport := &fakeTransport{}
	runner := newRunner(t, fetcher, client, transport)

	result := runner.Run(context.Background(), job.Request{
		SourceURL: "https://models.example.com/mono.3mf",
	})

	if !result.Success {
		t.Fatalf("expected success for zero-requirement model, got %#v", result)
	}
	if client.calls != 1 {
		t.Fatalf("expected slicer invoked once, got %d", client.calls)
	}
}

func TestRunDownloadFailureStopsImmediately(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("context deadline exceeded")}
	client := &fakeSlicer{}
	transport := &fakeTransport{}
	runner := newRunner(t, fetcher, client, transport)

	result := runner.Run(context.Background(), job.Request{
		SourceURL: "https://models.example.com/slow.3mf",
	})

	if result.Success {
		t.Fatal("expected failure")
	}
	if len(result.Steps) != 1 {
		t.Fatalf("expected exactly one step, got %d", len(result.Steps))
	}
	step := result.Steps[0]
	if step.Name != job.StepDownload || step.Success {
		t.Fatalf("expected failed download step, got %#v", step)
	}
	if !strings.Contains(step.Details, "context deadline exceeded") {
		t.Fatalf("expected underlying error in details, got %q", step.Details)
	}
	if result.Message != step.Message {
		t.Fatalf("expected result message to mirror step message, got %q vs %q", result.Message, step.Message)
	}
	if client.calls != 0 || transport.uploadCalls != 0 || transport.printCalls != 0 {
		t.Fatal("expected no later collaborator invoked after download failure")
	}
}

func TestRunSliceFailureSkipsUploadAndPrint(t *testing.T) {
	fetcher := &fakeFetcher{}
	client := &fakeSlicer{err: &slicer.ExecError{
		Excerpt: []string{"error: unsupported geometry"},
		Err:     errors.New("exit status 1"),
	}}
	transport := &fakeTransport{}
	runner := newRunner(t, fetcher, client, transport)

	result := runner.Run(context.Background(), job.Request{
		SourceURL: "https://models.example.com/broken.3mf",
	})

	if result.Success {
		t.Fatal("expected failure")
	}
	if len(result.Steps) != 2 {
		t.Fatalf("expected two steps, got %d", len(result.Steps))
	}
	if result.Steps[1].Name != job.StepSlice || result.Steps[1].Success {
		t.Fatalf("expected failed slice step, got %#v", result.Steps[1])
	}
	if !strings.Contains(result.Steps[1].Details, "unsupported geometry") {
		t.Fatalf("expected slicer excerpt in details, got %q", result.Steps[1].Details)
	}
	if transport.uploadCalls != 0 || transport.printCalls != 0 {
		t.Fatal("expected upload and print skipped after slice failure")
	}
}

func TestRunUploadFailureSkipsPrint(t *testing.T) {
	fetcher := &fakeFetcher{}
	client := &fakeSlicer{}
	transport := &fakeTransport{uploadErr: errors.New("connection refused")}
	runner := newRunner(t, fetcher, client, transport)

	result := runner.Run(context.Background(), job.Request{
		SourceURL: "https://models.example.com/benchy.3mf",
	})

	if result.Success {
		t.Fatal("expected failure")
	}
	if len(result.Steps) != 3 {
		t.Fatalf("expected three steps, got %d", len(result.Steps))
	}
	if result.Steps[2].Name != job.StepUpload || result.Steps[2].Success {
		t.Fatalf("expected failed upload step, got %#v", result.Steps[2])
	}
	if transport.printCalls != 0 {
		t.Fatal("expected print skipped after upload failure")
	}
	failed := result.FailedStep()
	if failed == nil || failed.Name != job.StepUpload {
		t.Fatalf("expected FailedStep to report upload, got %#v", failed)
	}
}

func TestRunPassesFrozenMappingToSlicer(t *testing.T) {
	fetcher := &fakeFetcher{}
	client := &fakeSlicer{}
	transport := &fakeTransport{}
	runner := newRunner(t, fetcher, client, transport)

	plate := 3
	mappings := []ams.Mapping{
		{FilamentIndex: 0, UnitID: 0, SlotID: 1},
		{FilamentIndex: 1, UnitID: 1, SlotID: 0},
	}
	result := runner.Run(context.Background(), job.Request{
		SourceURL: "https://models.example.com/two-color.3mf",
		Requirements: []threemf.FilamentRequirement{
			{Type: "PLA", Color: "#FF0000"},
			{Type: "PETG", Color: "#00FF00"},
		},
		Mappings:   mappings,
		BuildPlate: "smooth_pei",
		PlateIndex: &plate,
	})

	if !result.Success {
		t.Fatalf("expected success, got %#v", result)
	}
	if client.lastReq.BuildPlate != "smooth_pei" {
		t.Fatalf("expected build plate forwarded, got %q", client.lastReq.BuildPlate)
	}
	if client.lastReq.PlateIndex == nil || *client.lastReq.PlateIndex != 3 {
		t.Fatalf("expected plate index forwarded, got %v", client.lastReq.PlateIndex)
	}
	if len(client.lastReq.Mappings) != 2 || client.lastReq.Mappings[1].UnitID != 1 {
		t.Fatalf("expected frozen mappings forwarded, got %#v", client.lastReq.Mappings)
	}
}
