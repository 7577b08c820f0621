package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sophialabs/apiprobe/internal/domain/datalist"
	"github.com/sophialabs/apiprobe/internal/domain/requestconfig"
	"github.com/sophialabs/apiprobe/internal/infrastructure/ports"
)

var _ ports.Logger = (*NoopLogger)(nil)

// NoopLogger discards all log output.
type NoopLogger struct{}

func (l *NoopLogger) Info(string, ...any)  {}
func (l *NoopLogger) Warn(string, ...any)  {}
func (l *NoopLogger) Error(string, ...any) {}
func (l *NoopLogger) Debug(string, ...any) {}

var _ ports.Clock = (*FixedClock)(nil)

// FixedClock returns T and never sleeps. Step, when set, advances T on every Now call.
type FixedClock struct {
	mu   sync.Mutex
	T    time.Time
	Step time.Duration
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.T
	c.T = c.T.Add(c.Step)
	return now
}

var _ ports.Throttle = (*StubThrottle)(nil)

// StubThrottle records the keys it was asked to pace and returns Err.
type StubThrottle struct {
	mu   sync.Mutex
	Keys []string
	Err  error
}

func (s *StubThrottle) Wait(ctx context.Context, key string, _ float64, _ int) error {
	s.mu.Lock()
	s.Keys = append(s.Keys, key)
	s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	return ctx.Err()
}

var _ ports.Upstream = (*StubUpstream)(nil)

// StubUpstream answers every call with Handler (or Response/Err) and records requests.
type StubUpstream struct {
	mu       sync.Mutex
	Requests []ports.UpstreamRequest
	Response *ports.UpstreamResponse
	Err      error
	Handler  func(ports.UpstreamRequest) (*ports.UpstreamResponse, error)
}

func (s *StubUpstream) Do(_ context.Context, req ports.UpstreamRequest) (*ports.UpstreamResponse, error) {
	s.mu.Lock()
	s.Requests = append(s.Requests, req)
	s.mu.Unlock()
	if s.Handler != nil {
		return s.Handler(req)
	}
	return s.Response, s.Err
}

// Calls returns a copy of the recorded requests.
func (s *StubUpstream) Calls() []ports.UpstreamRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.UpstreamRequest(nil), s.Requests...)
}

var _ requestconfig.Repository = (*MemConfigRepository)(nil)

// MemConfigRepository is an in-memory requestconfig.Repository.
type MemConfigRepository struct {
	mu      sync.Mutex
	nextID  int64
	configs map[int64]*requestconfig.RequestConfig
	tick    int64
}

// NewMemConfigRepository returns an empty repository.
func NewMemConfigRepository() *MemConfigRepository {
	return &MemConfigRepository{configs: make(map[int64]*requestconfig.RequestConfig)}
}

func (r *MemConfigRepository) stamp() time.Time {
	r.tick++
	return time.Unix(r.tick, 0).UTC()
}

func (r *MemConfigRepository) nameTaken(name string, except int64) bool {
	for id, c := range r.configs {
		if c.Name == name && id != except {
			return true
		}
	}
	return false
}

func (r *MemConfigRepository) CreateDraft(_ context.Context, name string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.nameTaken(name, 0) {
		return 0, requestconfig.ErrDuplicateName
	}
	r.nextID++
	now := r.stamp()
	r.configs[r.nextID] = &requestconfig.RequestConfig{
		ID: r.nextID, Name: name, Method: requestconfig.DefaultMethod, CreatedAt: now, UpdatedAt: now,
	}
	return r.nextID, nil
}

func (r *MemConfigRepository) List(context.Context) ([]*requestconfig.RequestConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*requestconfig.RequestConfig, 0, len(r.configs))
	for _, c := range r.configs {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *MemConfigRepository) Get(_ context.Context, id int64) (*requestconfig.RequestConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.configs[id]
	if !ok {
		return nil, requestconfig.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *MemConfigRepository) Update(_ context.Context, id int64, p requestconfig.Patch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.configs[id]
	if !ok {
		return requestconfig.ErrNotFound
	}
	if p.Name != nil && r.nameTaken(*p.Name, id) {
		return requestconfig.ErrDuplicateName
	}
	p.Apply(c)
	c.Variables = requestconfig.StripDatalistValues(c.Variables)
	c.UpdatedAt = r.stamp()
	return nil
}

func (r *MemConfigRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.configs[id]; !ok {
		return requestconfig.ErrNotFound
	}
	delete(r.configs, id)
	return nil
}

func (r *MemConfigRepository) Upsert(_ context.Context, cfg *requestconfig.RequestConfig) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *cfg
	cp.Variables = requestconfig.StripDatalistValues(cp.Variables)
	cp.UpdatedAt = r.stamp()
	for id, c := range r.configs {
		if c.Name == cfg.Name {
			cp.ID, cp.CreatedAt = id, c.CreatedAt
			r.configs[id] = &cp
			return id, nil
		}
	}
	r.nextID++
	cp.ID, cp.CreatedAt = r.nextID, cp.UpdatedAt
	r.configs[r.nextID] = &cp
	return r.nextID, nil
}

var _ datalist.Repository = (*MemDatalistRepository)(nil)

// MemDatalistRepository is an in-memory datalist.Repository.
type MemDatalistRepository struct {
	mu      sync.Mutex
	nextID  int64
	lists   map[int64]*datalist.Datalist
	entries map[int64][]string
}

// NewMemDatalistRepository returns an empty repository.
func NewMemDatalistRepository() *MemDatalistRepository {
	return &MemDatalistRepository{
		lists:   make(map[int64]*datalist.Datalist),
		entries: make(map[int64][]string),
	}
}

func (r *MemDatalistRepository) Create(_ context.Context, name string, values []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, dl := range r.lists {
		if dl.Name == name {
			return 0, datalist.ErrDuplicateName
		}
	}
	r.nextID++
	r.lists[r.nextID] = &datalist.Datalist{ID: r.nextID, Name: name, CreatedAt: time.Unix(r.nextID, 0).UTC()}
	r.entries[r.nextID] = append([]string{}, values...)
	return r.nextID, nil
}

func (r *MemDatalistRepository) List(context.Context) ([]*datalist.Datalist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*datalist.Datalist, 0, len(r.lists))
	for _, dl := range r.lists {
		cp := *dl
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *MemDatalistRepository) Entries(_ context.Context, id int64) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lists[id]; !ok {
		return nil, datalist.ErrNotFound
	}
	return append([]string{}, r.entries[id]...), nil
}

func (r *MemDatalistRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lists[id]; !ok {
		return datalist.ErrNotFound
	}
	delete(r.lists, id)
	delete(r.entries, id)
	return nil
}
