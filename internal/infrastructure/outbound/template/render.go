package template

// RenderContext is what a compiled prompt template is rendered against.
type RenderContext struct {
	Vars   map[string]string
	Fields map[string]any
	// Now is the render time in RFC3339.
	Now string
}

// Renderer renders one compiled prompt.
type Renderer interface {
	Render(ctx RenderContext) (string, error)
}

// staticRenderer returns a fixed prompt (used when no dynamic segments are found).
type staticRenderer struct {
	text string
}

func (r *staticRenderer) Render(RenderContext) (string, error) {
	return r.text, nil
}
