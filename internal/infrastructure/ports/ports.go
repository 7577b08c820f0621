package ports

import (
	"context"
	"errors"
	"time"
)

// ErrResponseTooLarge is returned by an Upstream whose response body exceeds its read limit.
var ErrResponseTooLarge = errors.New("response body exceeds the size limit")

// Clock provides the current time. Stored timestamps and history entries read it.
type Clock interface {
	Now() time.Time
}

// Logger provides structured logging.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Debug(msg string, args ...any)
}

// UpstreamRequest is one outbound call to the API under test.
type UpstreamRequest struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// UpstreamResponse is the raw answer of the API under test.
type UpstreamResponse struct {
	Status   int
	Body     []byte
	Duration time.Duration
}

// Upstream performs outbound HTTP calls.
type Upstream interface {
	// Do returns an error only for transport failures and oversized bodies
	// (ErrResponseTooLarge); any HTTP status is a response.
	Do(ctx context.Context, req UpstreamRequest) (*UpstreamResponse, error)
}

// Throttle paces outbound calls.
type Throttle interface {
	// Wait blocks until a call identified by key may proceed.
	// rate is tokens per second, burst is the max burst size.
	Wait(ctx context.Context, key string, rate float64, burst int) error
}

// PromptInput is what a prompt template can reference.
type PromptInput struct {
	// Vars holds the selected value of every prompt variable.
	Vars map[string]string
	// Fields are the other body fields, queryable with jsonPath.
	Fields map[string]any
}

// PromptRenderer renders a prompt template. An empty engine selects the default.
type PromptRenderer interface {
	Render(engine, source string, in PromptInput) (string, error)
}
