package printing_test

import (
	"context"
	"errors"
	"testing"

	"spool/internal/ams"
	"spool/internal/logging"
	"spool/internal/notifications"
	"spool/internal/printing"
	"spool/internal/queue"
	"spool/internal/services"
	"spool/internal/testsupport"
)

type fakeTransport struct {
	starts []string
	err    error
}

func (f *fakeTransport) Upload(ctx context.Context, gcodePath string) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeTransport) StartPrint(ctx context.Context, remoteName string) error {
	f.starts = append(f.starts, remoteName)
	return f.err
}

func (f *fakeTransport) LoadedFilaments(ctx context.Context) ([]ams.Slot, error) {
	return nil, errors.New("not implemented")
}

type stubNotifier struct {
	events []notifications.Event
}

func (s *stubNotifier) Publish(ctx context.Context, event notifications.Event, payload notifications.Payload) error {
	s.events = append(s.events, event)
	return nil
}

func TestPrintStageStartsUploadedJob(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	item := testsupport.NewJob(t, store, "https://example.com/models/benchy.3mf")
	item.Status = queue.StatusPrinting
	item.RemoteName = "plate_1_0042.gcode"
	if err := store.Update(context.Background(), item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	transport := &fakeTransport{}
	notifier := &stubNotifier{}
	handler := printing.NewHandlerWithDependencies(cfg, store, logging.NewNop(), transport, notifier)

	if err := handler.Prepare(context.Background(), item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if len(transport.starts) != 1 || transport.starts[0] != "plate_1_0042.gcode" {
		t.Fatalf("unexpected print starts: %v", transport.starts)
	}
	if item.ProgressMessage != "Print started" {
		t.Fatalf("unexpected progress message: %q", item.ProgressMessage)
	}
	if len(notifier.events) != 1 || notifier.events[0] != notifications.EventPrintStarted {
		t.Fatalf("expected print start notification, got %v", notifier.events)
	}
}

func TestPrintStageWrapsStartFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	item := testsupport.NewJob(t, store, "https://example.com/models/benchy.3mf")
	item.RemoteName = "plate_1.gcode"

	transport := &fakeTransport{err: errors.New("printer busy")}
	handler := printing.NewHandlerWithDependencies(cfg, store, logging.NewNop(), transport, &stubNotifier{})

	err := handler.Execute(context.Background(), item)
	if err == nil {
		t.Fatal("expected print start failure")
	}
	if !errors.Is(err, services.ErrPrint) {
		t.Fatalf("expected print marker, got %v", err)
	}
	if got := queue.FailureStatus(err); got != queue.StatusFailed {
		t.Fatalf("expected retryable failure, got %s", got)
	}
}

func TestPrintStageRequiresRemoteName(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	item := testsupport.NewJob(t, store, "https://example.com/models/benchy.3mf")
	transport := &fakeTransport{}
	handler := printing.NewHandlerWithDependencies(cfg, store, logging.NewNop(), transport, &stubNotifier{})

	err := handler.Execute(context.Background(), item)
	if err == nil {
		t.Fatal("expected missing remote name failure")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
	if len(transport.starts) != 0 {
		t.Fatal("expected no print start attempts")
	}
}

func TestPrintStageHealthCheck(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	handler := printing.NewHandlerWithDependencies(cfg, store, logging.NewNop(), &fakeTransport{}, &stubNotifier{})
	if health := handler.HealthCheck(context.Background()); !health.Ready {
		t.Fatalf("expected healthy print stage, got %+v", health)
	}

	cfg.Printer.BaseURL = " "
	if health := handler.HealthCheck(context.Background()); health.Ready {
		t.Fatal("expected unhealthy print stage without printer URL")
	}
}
