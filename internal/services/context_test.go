package services_test

import (
	"context"
	"testing"

	"spool/internal/services"
)

func TestContextAnnotations(t *testing.T) {
	ctx := services.WithItemID(context.Background(), 7)
	ctx = services.WithStage(ctx, "download")
	ctx = services.WithRequestID(ctx, "req-1")

	if id, ok := services.ItemIDFromContext(ctx); !ok || id != 7 {
		t.Fatalf("expected item id 7, got %d (%v)", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "download" {
		t.Fatalf("expected stage download, got %q (%v)", stage, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-1" {
		t.Fatalf("expected request id req-1, got %q (%v)", rid, ok)
	}
}

func TestContextMissingValues(t *testing.T) {
	if _, ok := services.ItemIDFromContext(context.Background()); ok {
		t.Fatal("expected missing item id")
	}
	if _, ok := services.StageFromContext(context.Background()); ok {
		t.Fatal("expected missing stage")
	}
}
