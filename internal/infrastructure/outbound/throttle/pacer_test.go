package throttle_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sophialabs/apiprobe/internal/infrastructure/outbound/throttle"
)

func TestHostPacer_BurstPassesImmediately(t *testing.T) {
	p := throttle.NewHostPacer(time.Minute)
	defer p.Stop()
	ctx := context.Background()

	start := time.Now()
	for i := range 3 {
		if err := p.Wait(ctx, "api.test", 1, 3); err != nil {
			t.Fatalf("call %d: unexpected error: %v", i+1, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("expected burst to pass without waiting, took %v", elapsed)
	}
}

func TestHostPacer_WaitsOverBurst(t *testing.T) {
	p := throttle.NewHostPacer(time.Minute)
	defer p.Stop()
	ctx := context.Background()

	start := time.Now()
	for range 2 {
		if err := p.Wait(ctx, "api.test", 20, 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("expected second call to be paced, took %v", elapsed)
	}
}

func TestHostPacer_ContextCancelled(t *testing.T) {
	p := throttle.NewHostPacer(time.Minute)
	defer p.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	if err := p.Wait(ctx, "api.test", 0.001, 1); err != nil {
		t.Fatalf("first call should pass: %v", err)
	}
	cancel()

	err := p.Wait(ctx, "api.test", 0.001, 1)
	if err == nil {
		t.Fatal("expected error after cancellation")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestHostPacer_ZeroRateDisablesPacing(t *testing.T) {
	p := throttle.NewHostPacer(time.Minute)
	defer p.Stop()

	for range 10 {
		if err := p.Wait(context.Background(), "api.test", 0, 0); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if p.Len() != 0 {
		t.Errorf("expected no buckets when pacing is disabled, got %d", p.Len())
	}
}

func TestHostPacer_PerKeyIsolation(t *testing.T) {
	p := throttle.NewHostPacer(time.Minute)
	defer p.Stop()
	ctx := context.Background()

	_ = p.Wait(ctx, "a.test", 1, 1)
	_ = p.Wait(ctx, "b.test", 1, 1)

	if p.Len() != 2 {
		t.Errorf("expected 2 buckets, got %d", p.Len())
	}
}

func TestHostPacer_Evict(t *testing.T) {
	p := throttle.NewHostPacer(10 * time.Millisecond)
	defer p.Stop()

	_ = p.Wait(context.Background(), "a.test", 100, 1)
	time.Sleep(30 * time.Millisecond)
	p.Evict()

	if p.Len() != 0 {
		t.Errorf("expected stale bucket to be evicted, got %d", p.Len())
	}
}

func TestHostPacer_StopTwice(t *testing.T) {
	p := throttle.NewHostPacer(time.Minute)
	p.Stop()
	p.Stop()
}

func TestHostPacer_Concurrent(t *testing.T) {
	p := throttle.NewHostPacer(time.Minute)
	defer p.Stop()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.Wait(context.Background(), "api.test", 1000, 20)
		}()
	}
	wg.Wait()

	if p.Len() != 1 {
		t.Errorf("expected 1 bucket, got %d", p.Len())
	}
}
