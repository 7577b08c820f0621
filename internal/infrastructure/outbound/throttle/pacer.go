package throttle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/sophialabs/apiprobe/internal/infrastructure/ports"
)

var _ ports.Throttle = (*HostPacer)(nil)

type pacerEntry struct {
	limiter  *rate.Limiter
	rate     float64
	burst    int
	lastUsed time.Time
}

// HostPacer keeps one token bucket per key (normally the upstream host) and
// makes callers wait for a token instead of rejecting them.
type HostPacer struct {
	mu       sync.Mutex
	limiters map[string]*pacerEntry
	ttl      time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

// NewHostPacer creates a pacer that forgets buckets idle for longer than ttl.
// Call Stop to terminate the eviction goroutine.
func NewHostPacer(ttl time.Duration) *HostPacer {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	p := &HostPacer{
		limiters: make(map[string]*pacerEntry),
		ttl:      ttl,
		stop:     make(chan struct{}),
	}
	go p.evictLoop()
	return p
}

// Stop terminates the background eviction goroutine. Safe to call twice.
func (p *HostPacer) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
}

func (p *HostPacer) evictLoop() {
	ticker := time.NewTicker(p.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.Evict()
		case <-p.stop:
			return
		}
	}
}

// Wait blocks until the bucket for key has a token or ctx is done.
// A non-positive rate disables pacing.
func (p *HostPacer) Wait(ctx context.Context, key string, r float64, burst int) error {
	if r <= 0 {
		return ctx.Err()
	}
	if burst < 1 {
		burst = 1
	}

	limiter := p.limiterFor(key, r, burst)
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("pacing %s: %w", key, err)
	}
	return nil
}

func (p *HostPacer) limiterFor(key string, r float64, burst int) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.limiters[key]
	if !ok {
		entry = &pacerEntry{
			limiter: rate.NewLimiter(rate.Limit(r), burst),
			rate:    r,
			burst:   burst,
		}
		p.limiters[key] = entry
	} else if entry.rate != r || entry.burst != burst {
		// Settings changed between batches.
		entry.limiter.SetLimit(rate.Limit(r))
		entry.limiter.SetBurst(burst)
		entry.rate = r
		entry.burst = burst
	}

	entry.lastUsed = time.Now()
	return entry.limiter
}

// Evict removes buckets idle for longer than the TTL.
func (p *HostPacer) Evict() {
	p.mu.Lock()
	defer p.mu.Unlock()

	cutoff := time.Now().Add(-p.ttl)
	for key, entry := range p.limiters {
		if entry.lastUsed.Before(cutoff) {
			delete(p.limiters, key)
		}
	}
}

// Len returns the number of live buckets.
func (p *HostPacer) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.limiters)
}
