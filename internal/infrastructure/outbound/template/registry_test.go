package template

import (
	"testing"
	"time"

	"github.com/sophialabs/apiprobe/internal/infrastructure/ports"
	"github.com/sophialabs/apiprobe/internal/testutil"
)

func newTestRegistry(t *testing.T, engine string) *Registry {
	t.Helper()
	r, err := NewRegistry(engine, &testutil.FixedClock{T: time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return r
}

func TestRegistry_DefaultsToJinja2(t *testing.T) {
	r := newTestRegistry(t, "")
	if r.DefaultEngine() != "jinja2" {
		t.Errorf("expected jinja2, got %q", r.DefaultEngine())
	}

	got, err := r.Render("", `Find {{ city }} at {{ now }}`, ports.PromptInput{
		Vars: map[string]string{"city": "Lyon"},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "Find Lyon at 2026-05-06T07:08:09Z" {
		t.Errorf("unexpected result %q", got)
	}
}

func TestRegistry_KnownEngines(t *testing.T) {
	r := newTestRegistry(t, "expr")

	tests := []struct {
		engine string
		source string
	}{
		{"expr", `Hello ${var('name')}`},
		{"jinja2", `Hello {{ name }}`},
		{"", `Hello ${var('name')}`},
	}
	for _, tt := range tests {
		t.Run(tt.engine, func(t *testing.T) {
			got, err := r.Render(tt.engine, tt.source, ports.PromptInput{
				Vars: map[string]string{"name": "World"},
			})
			if err != nil {
				t.Fatalf("Render failed for engine %q: %v", tt.engine, err)
			}
			if got != "Hello World" {
				t.Errorf("expected 'Hello World', got %q", got)
			}
		})
	}
}

func TestRegistry_PlaceholdersWorkInBothEngines(t *testing.T) {
	r := newTestRegistry(t, "")
	in := ports.PromptInput{Vars: map[string]string{"user.id": "42"}}

	for _, engine := range r.Engines() {
		got, err := r.Render(engine, `id={{ user.id }}`, in)
		if err != nil {
			t.Fatalf("%s: %v", engine, err)
		}
		if got != "id=42" {
			t.Errorf("%s: expected id=42, got %q", engine, got)
		}
	}
}

func TestRegistry_UnknownEngine(t *testing.T) {
	r := newTestRegistry(t, "")
	if _, err := r.Compile("unknown", "test", "body"); err == nil {
		t.Error("expected error for unknown engine")
	}
	if _, err := NewRegistry("mustache", &testutil.FixedClock{}); err == nil {
		t.Error("expected error for unknown default engine")
	}
}

func TestRewriteForJinja2(t *testing.T) {
	out, aliases := rewriteForJinja2(`{{ a.b }} {{ ok }} {{a.b}} {{ c-d }}`)
	if out != `{{ pv_0 }} {{ ok }} {{ pv_0 }} {{ pv_1 }}` {
		t.Errorf("unexpected rewrite %q", out)
	}
	if aliases["pv_0"] != "a.b" || aliases["pv_1"] != "c-d" {
		t.Errorf("unexpected aliases %v", aliases)
	}
}

func TestRewriteForExpr(t *testing.T) {
	got := rewriteForExpr(`x {{ a.b }} y`)
	if got != `x ${ var("a.b") } y` {
		t.Errorf("unexpected rewrite %q", got)
	}
}
