package services_test

import (
	"errors"
	"strings"
	"testing"

	"spool/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrSlice, "slicing", "run slicer", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrSlice) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"slicing", "run slicer", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestDetailsExtraction(t *testing.T) {
	base := errors.New("connection refused")
	err := services.Wrap(services.ErrTransfer, "upload", "send gcode", "printer unreachable", base)
	details := services.Details(err)
	if details.Kind != "transfer" {
		t.Fatalf("expected transfer kind, got %q", details.Kind)
	}
	if details.Stage != "upload" || details.Operation != "send gcode" {
		t.Fatalf("unexpected details: %+v", details)
	}
	if details.Cause != base {
		t.Fatalf("expected cause to be preserved, got %v", details.Cause)
	}
}

func TestDetailsPlainError(t *testing.T) {
	details := services.Details(errors.New("plain"))
	if details.Kind != "transient" || details.Message != "plain" {
		t.Fatalf("unexpected details for plain error: %+v", details)
	}
}

func TestWrapNilMarkerDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "download", "fetch", "no marker", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}
