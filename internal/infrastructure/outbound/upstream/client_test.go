package upstream_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sophialabs/apiprobe/internal/infrastructure/outbound/upstream"
	"github.com/sophialabs/apiprobe/internal/infrastructure/ports"
)

func TestClient_Do(t *testing.T) {
	var gotMethod, gotHeader, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotHeader = r.Header.Get("X-Token")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := upstream.New(time.Second)
	resp, err := c.Do(context.Background(), ports.UpstreamRequest{
		Method:  http.MethodPost,
		URL:     srv.URL,
		Headers: map[string]string{"X-Token": "t1"},
		Body:    []byte(`{"q":1}`),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Status != http.StatusCreated {
		t.Errorf("expected 201, got %d", resp.Status)
	}
	if string(resp.Body) != `{"ok":true}` {
		t.Errorf("unexpected body: %s", resp.Body)
	}
	if gotMethod != http.MethodPost {
		t.Errorf("expected POST, got %s", gotMethod)
	}
	if gotHeader != "t1" {
		t.Errorf("expected header t1, got %q", gotHeader)
	}
	if gotBody != `{"q":1}` {
		t.Errorf("unexpected upstream body: %s", gotBody)
	}
}

func TestClient_Do_ErrorStatusIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	resp, err := upstream.New(time.Second).Do(context.Background(), ports.UpstreamRequest{
		Method: http.MethodGet,
		URL:    srv.URL,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", resp.Status)
	}
}

func TestClient_Do_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := upstream.New(time.Second).Do(context.Background(), ports.UpstreamRequest{
		Method: http.MethodGet,
		URL:    url,
	})
	if err == nil {
		t.Fatal("expected transport error")
	}
}

func TestClient_Do_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := upstream.New(20*time.Millisecond).Do(context.Background(), ports.UpstreamRequest{
		Method: http.MethodGet,
		URL:    srv.URL,
	})
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestClient_Do_InvalidURL(t *testing.T) {
	_, err := upstream.New(time.Second).Do(context.Background(), ports.UpstreamRequest{
		Method: "GET",
		URL:    "://bad",
	})
	if err == nil {
		t.Fatal("expected error for invalid URL")
	}
}

func jsonBodyOfSize(n int) []byte {
	// A JSON string literal: two quotes around n-2 letters.
	return append(append([]byte{'"'}, bytes.Repeat([]byte("x"), n-2)...), '"')
}

func TestClient_Do_BodyAtLimit(t *testing.T) {
	body := jsonBodyOfSize(upstream.MaxResponseSize)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	resp, err := upstream.New(5*time.Second).Do(context.Background(), ports.UpstreamRequest{
		Method: http.MethodGet,
		URL:    srv.URL,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Body) != upstream.MaxResponseSize {
		t.Errorf("expected %d bytes, got %d", upstream.MaxResponseSize, len(resp.Body))
	}
}

func TestClient_Do_BodyTooLarge(t *testing.T) {
	body := jsonBodyOfSize(upstream.MaxResponseSize + 1<<20)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	resp, err := upstream.New(5*time.Second).Do(context.Background(), ports.UpstreamRequest{
		Method: http.MethodGet,
		URL:    srv.URL,
	})
	if !errors.Is(err, ports.ErrResponseTooLarge) {
		t.Fatalf("expected ErrResponseTooLarge, got %v", err)
	}
	if resp != nil {
		t.Errorf("expected no truncated response, got %d bytes", len(resp.Body))
	}
}
