package usecases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sophialabs/apiprobe/internal/domain/extract"
	"github.com/sophialabs/apiprobe/internal/domain/jsonvalue"
	"github.com/sophialabs/apiprobe/internal/domain/trace"
	"github.com/sophialabs/apiprobe/internal/infrastructure/ports"
	"github.com/sophialabs/apiprobe/internal/infrastructure/usecases"
	"github.com/sophialabs/apiprobe/internal/testutil"
)

func newTestAPI(up *testutil.StubUpstream) (*usecases.TestAPIUseCase, *trace.RingBuffer) {
	history := trace.NewRingBuffer(10)
	clk := &testutil.FixedClock{T: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	return usecases.NewTestAPIUseCase(up, clk, &testutil.NoopLogger{}, history), history
}

func respond(status int, body string) *testutil.StubUpstream {
	return &testutil.StubUpstream{Response: &ports.UpstreamResponse{Status: status, Body: []byte(body), Duration: 12 * time.Millisecond}}
}

func TestTestAPI_ExtractsField(t *testing.T) {
	up := respond(200, `{"user":{"items":[1,2,3]}}`)
	uc, history := newTestAPI(up)

	res, err := uc.Execute(context.Background(), usecases.TestAPIRequest{
		Route: "api.test/users",
		Field: "user.items[1]",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Value != jsonvalue.Number("2") {
		t.Errorf("expected 2, got %#v", res.Value)
	}
	if !res.Found {
		t.Error("expected Found")
	}

	calls := up.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 upstream call, got %d", len(calls))
	}
	if calls[0].URL != "https://api.test/users" {
		t.Errorf("unexpected URL %q", calls[0].URL)
	}
	if calls[0].Method != "GET" {
		t.Errorf("expected GET default, got %q", calls[0].Method)
	}
	if calls[0].Headers["Content-Type"] != "application/json" {
		t.Errorf("expected JSON content type, got %v", calls[0].Headers)
	}

	entries := history.Last(1)
	if len(entries) != 1 || entries[0].ID != res.HistoryID {
		t.Fatalf("expected history entry %s, got %+v", res.HistoryID, entries)
	}
	if entries[0].Status != 200 || entries[0].DurationMs != 12 || !entries[0].Found {
		t.Errorf("unexpected history entry %+v", entries[0])
	}
}

func TestTestAPI_BodyRules(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		body     []byte
		wantBody bool
		wantVerb string
	}{
		{"no method never sends body", "", []byte(`{"a":1}`), false, "GET"},
		{"GET never sends body", "GET", []byte(`{"a":1}`), false, "GET"},
		{"POST with body", "post", []byte(`{"a":1}`), true, "POST"},
		{"POST without body", "POST", nil, false, "POST"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := respond(200, `{}`)
			uc, _ := newTestAPI(up)

			_, err := uc.Execute(context.Background(), usecases.TestAPIRequest{
				Route: "https://api.test", Method: tt.method, Body: tt.body,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			call := up.Calls()[0]
			if call.Method != tt.wantVerb {
				t.Errorf("expected %s, got %s", tt.wantVerb, call.Method)
			}
			if (call.Body != nil) != tt.wantBody {
				t.Errorf("expected body sent=%v, got %q", tt.wantBody, call.Body)
			}
		})
	}
}

func TestTestAPI_CallerHeadersWin(t *testing.T) {
	up := respond(200, `{}`)
	uc, _ := newTestAPI(up)

	_, err := uc.Execute(context.Background(), usecases.TestAPIRequest{
		Route:   "api.test",
		Headers: map[string]string{"Content-Type": "text/plain", "X-Key": "k"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h := up.Calls()[0].Headers
	if h["Content-Type"] != "text/plain" || h["X-Key"] != "k" {
		t.Errorf("unexpected headers %v", h)
	}
}

func TestTestAPI_NonJSONBodyIsWrapped(t *testing.T) {
	uc, _ := newTestAPI(respond(502, "Bad Gateway"))

	res, err := uc.Execute(context.Background(), usecases.TestAPIRequest{Route: "api.test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := jsonvalue.Object{"raw": jsonvalue.String("Bad Gateway")}
	obj, ok := res.Value.(jsonvalue.Object)
	if !ok || obj["raw"] != want["raw"] {
		t.Errorf("expected raw wrapper, got %#v", res.Value)
	}
	if res.UpstreamStatus != 502 {
		t.Errorf("expected upstream status 502, got %d", res.UpstreamStatus)
	}
}

func TestTestAPI_FieldNotFound(t *testing.T) {
	uc, history := newTestAPI(respond(200, `{"a":{"b":[1,2]}}`))

	res, err := uc.Execute(context.Background(), usecases.TestAPIRequest{Route: "api.test", Field: "a.b[5]"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Found || res.Value != nil {
		t.Errorf("expected absent value, got %#v", res)
	}
	if history.Last(1)[0].Found {
		t.Error("expected history to record not found")
	}
}

func TestTestAPI_EngineErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		field  string
		schema []string
		want   string
	}{
		{"field not json", `{"payload":"not json"}`, "payload", nil, "Field value is not valid JSON."},
		{"matched not json", `{"payload":"{oops}"}`, "payload", nil, "Matched field value is not valid JSON."},
		{"schema non-string", `{"id":42,"name":"x"}`, "", []string{"id", "name"}, "Schema validation failed: missing or non-string field 'id'."},
		{"schema on scalar", `{"n":1}`, "n", []string{"id"}, "Response is not an object for schema validation."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, history := newTestAPI(respond(200, tt.body))

			_, err := uc.Execute(context.Background(), usecases.TestAPIRequest{
				Route: "api.test", Field: tt.field, Schema: tt.schema,
			})
			var engineErr *extract.Error
			if !errors.As(err, &engineErr) {
				t.Fatalf("expected *extract.Error, got %v", err)
			}
			if err.Error() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, err.Error())
			}
			if history.Last(1)[0].Error != tt.want {
				t.Errorf("expected history error %q, got %q", tt.want, history.Last(1)[0].Error)
			}
		})
	}
}

func TestTestAPI_TransportFailure(t *testing.T) {
	up := &testutil.StubUpstream{Err: errors.New("connection refused")}
	uc, history := newTestAPI(up)

	_, err := uc.Execute(context.Background(), usecases.TestAPIRequest{Route: "api.test"})
	var upErr *usecases.UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected *UpstreamError, got %v", err)
	}
	if upErr.Err.Error() != "connection refused" {
		t.Errorf("unexpected cause %v", upErr.Err)
	}
	if !history.Last(1)[0].Failed() {
		t.Error("expected failed history entry")
	}
}

func TestTestAPI_OversizedResponse(t *testing.T) {
	up := &testutil.StubUpstream{Err: ports.ErrResponseTooLarge}
	uc, history := newTestAPI(up)

	_, err := uc.Execute(context.Background(), usecases.TestAPIRequest{Route: "api.test", Field: "data"})
	var upErr *usecases.UpstreamError
	if !errors.As(err, &upErr) || !errors.Is(err, ports.ErrResponseTooLarge) {
		t.Fatalf("expected *UpstreamError wrapping ErrResponseTooLarge, got %v", err)
	}
	if entry := history.Last(1)[0]; entry.Error != ports.ErrResponseTooLarge.Error() {
		t.Errorf("expected history to record the size error, got %q", entry.Error)
	}
}

func TestTestAPI_MissingRoute(t *testing.T) {
	up := respond(200, `{}`)
	uc, _ := newTestAPI(up)

	_, err := uc.Execute(context.Background(), usecases.TestAPIRequest{Route: "  "})
	if !errors.Is(err, usecases.ErrMissingRoute) {
		t.Fatalf("expected ErrMissingRoute, got %v", err)
	}
	if len(up.Calls()) != 0 {
		t.Error("expected no upstream call")
	}
}
