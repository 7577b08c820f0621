package usecases

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/sophialabs/apiprobe/internal/domain/extract"
	"github.com/sophialabs/apiprobe/internal/domain/jsonvalue"
	"github.com/sophialabs/apiprobe/internal/domain/trace"
	"github.com/sophialabs/apiprobe/internal/infrastructure/ports"
	"github.com/sophialabs/apiprobe/internal/infrastructure/services"
)

// ErrMissingRoute indicates a test request without a route.
var ErrMissingRoute = errors.New("route is required")

// UpstreamError wraps a transport failure of the outbound call.
type UpstreamError struct {
	URL string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("calling %s: %v", e.URL, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// TestAPIRequest describes one outbound test call.
type TestAPIRequest struct {
	Route   string
	Method  string
	Headers map[string]string
	// Body is the JSON document to send. Nil sends no body.
	Body   []byte
	Field  string
	Schema []string
	// ConfigID links the call to a saved config in the run history. Zero for ad-hoc calls.
	ConfigID int64
}

// TestAPIResult is the extracted outcome of a test call.
type TestAPIResult struct {
	HistoryID      string
	URL            string
	UpstreamStatus int
	Value          jsonvalue.Value
	Found          bool
}

// TestAPIUseCase proxies a request to the API under test and runs the
// extraction engine over the response.
type TestAPIUseCase struct {
	upstream ports.Upstream
	clock    ports.Clock
	logger   ports.Logger
	history  *trace.RingBuffer
}

// NewTestAPIUseCase creates a new use case.
func NewTestAPIUseCase(
	upstream ports.Upstream,
	clock ports.Clock,
	logger ports.Logger,
	history *trace.RingBuffer,
) *TestAPIUseCase {
	return &TestAPIUseCase{
		upstream: upstream,
		clock:    clock,
		logger:   logger,
		history:  history,
	}
}

// Execute performs the outbound call and extracts the configured field.
// Transport failures are returned as *UpstreamError, engine failures as *extract.Error.
func (uc *TestAPIUseCase) Execute(ctx context.Context, req TestAPIRequest) (*TestAPIResult, error) {
	if strings.TrimSpace(req.Route) == "" {
		return nil, ErrMissingRoute
	}

	outbound := ports.UpstreamRequest{
		Method:  http.MethodGet,
		URL:     services.NormalizeURL(req.Route),
		Headers: services.MergeHeaders(req.Headers),
	}
	if m := strings.ToUpper(strings.TrimSpace(req.Method)); m != "" {
		outbound.Method = m
		if m != http.MethodGet && req.Body != nil {
			outbound.Body = req.Body
		}
	}

	entry := trace.Entry{
		ID:        uuid.NewString(),
		Timestamp: uc.clock.Now(),
		ConfigID:  req.ConfigID,
		Method:    outbound.Method,
		URL:       outbound.URL,
		Field:     req.Field,
	}

	uc.logger.Debug("calling upstream", "method", outbound.Method, "url", outbound.URL)

	resp, err := uc.upstream.Do(ctx, outbound)
	if err != nil {
		entry.Error = err.Error()
		uc.history.Add(entry)
		uc.logger.Warn("upstream call failed", "url", outbound.URL, "error", err)
		return nil, &UpstreamError{URL: outbound.URL, Err: err}
	}

	entry.Status = resp.Status
	entry.DurationMs = resp.Duration.Milliseconds()

	root, err := jsonvalue.Parse(resp.Body)
	if err != nil {
		root = jsonvalue.Object{"raw": jsonvalue.String(resp.Body)}
	}

	extracted, err := extract.Extract(root, req.Field, req.Schema)
	if err != nil {
		entry.Error = err.Error()
		uc.history.Add(entry)
		uc.logger.Debug("extraction failed", "url", outbound.URL, "field", req.Field, "error", err)
		return nil, err
	}

	entry.Found = extracted.Found
	uc.history.Add(entry)

	uc.logger.Debug("upstream call completed",
		"url", outbound.URL, "status", resp.Status, "found", extracted.Found,
		"kind", jsonvalue.KindOf(extracted.Value).String(), "duration", resp.Duration)

	return &TestAPIResult{
		HistoryID:      entry.ID,
		URL:            outbound.URL,
		UpstreamStatus: resp.Status,
		Value:          extracted.Value,
		Found:          extracted.Found,
	}, nil
}
