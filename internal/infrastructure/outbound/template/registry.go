package template

import (
	"fmt"
	"sort"
	"time"

	"github.com/sophialabs/apiprobe/internal/infrastructure/ports"
)

var _ ports.PromptRenderer = (*Registry)(nil)

// EngineCompiler compiles a prompt source string into a Renderer.
type EngineCompiler interface {
	Compile(name, source string) (Renderer, error)
}

// Registry maps engine names to their compilers.
type Registry struct {
	engines       map[string]EngineCompiler
	defaultEngine string
	clock         ports.Clock
}

// NewRegistry creates a registry with the built-in engines (expr, jinja2).
// An empty defaultEngine selects jinja2, whose syntax matches {{ name }} placeholders.
func NewRegistry(defaultEngine string, clock ports.Clock) (*Registry, error) {
	r := &Registry{
		engines: map[string]EngineCompiler{
			"expr":   &ExprCompiler{},
			"jinja2": &Jinja2Compiler{},
		},
		defaultEngine: defaultEngine,
		clock:         clock,
	}
	if r.defaultEngine == "" {
		r.defaultEngine = "jinja2"
	}
	if _, ok := r.engines[r.defaultEngine]; !ok {
		return nil, fmt.Errorf("unknown default template engine: %q (supported: %v)", defaultEngine, r.Engines())
	}
	return r, nil
}

// Engines lists the registered engine names.
func (r *Registry) Engines() []string {
	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultEngine returns the engine used when none is named.
func (r *Registry) DefaultEngine() string {
	return r.defaultEngine
}

// Compile resolves the engine by name and compiles the source.
func (r *Registry) Compile(engine, name, source string) (Renderer, error) {
	if engine == "" {
		engine = r.defaultEngine
	}
	ec, ok := r.engines[engine]
	if !ok {
		return nil, fmt.Errorf("unknown template engine: %q (supported: %v)", engine, r.Engines())
	}
	return ec.Compile(name, source)
}

// Render compiles source and renders it once.
func (r *Registry) Render(engine, source string, in ports.PromptInput) (string, error) {
	renderer, err := r.Compile(engine, "prompt", source)
	if err != nil {
		return "", err
	}
	return renderer.Render(r.Context(in))
}

// Context builds a RenderContext stamped with the current time.
func (r *Registry) Context(in ports.PromptInput) RenderContext {
	return RenderContext{
		Vars:   in.Vars,
		Fields: in.Fields,
		Now:    r.clock.Now().UTC().Format(time.RFC3339),
	}
}
