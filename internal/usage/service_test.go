package usage

import (
	"context"
	"errors"
	"testing"
)

func TestConsumeTracksUsage(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	u, err := svc.Get(ctx, "analyst-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u.Plan != "Analis" || u.Limit != 50 || u.Used != 0 {
		t.Fatalf("unexpected defaults: %+v", u)
	}

	u, err = svc.Consume(ctx, "analyst-1", 3)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if u.Used != 3 {
		t.Fatalf("expected used 3, got %d", u.Used)
	}
}

func TestConsumeStopsAtLimit(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	if _, err := svc.Consume(ctx, "analyst-1", 50); err != nil {
		t.Fatalf("consume to limit: %v", err)
	}
	if _, err := svc.Consume(ctx, "analyst-1", 1); !errors.Is(err, ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}

	ok, _, err := svc.CanConsume(ctx, "analyst-1", 1)
	if err != nil {
		t.Fatalf("can consume: %v", err)
	}
	if ok {
		t.Fatalf("expected CanConsume false at limit")
	}
}

func TestResetClearsUsage(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	if _, err := svc.Consume(ctx, "analyst-1", 10); err != nil {
		t.Fatalf("consume: %v", err)
	}
	u, err := svc.Reset(ctx, "analyst-1")
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if u.Used != 0 {
		t.Fatalf("expected used 0 after reset, got %d", u.Used)
	}
}
