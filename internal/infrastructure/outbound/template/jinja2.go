package template

import (
	"fmt"

	"github.com/flosch/pongo2/v6"
)

// Jinja2Compiler compiles prompts using Pongo2 (Django/Jinja2-style).
// Variable values are inserted unescaped.
type Jinja2Compiler struct{}

// Compile parses the source as a Pongo2 template.
func (c *Jinja2Compiler) Compile(name, source string) (Renderer, error) {
	rewritten, aliases := rewriteForJinja2(source)
	tpl, err := pongo2.FromString(rewritten)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jinja2 template %q: %w", name, err)
	}
	return &jinja2Renderer{tpl: tpl, aliases: aliases}, nil
}

type jinja2Renderer struct {
	tpl     *pongo2.Template
	aliases map[string]string
}

func (r *jinja2Renderer) Render(ctx RenderContext) (string, error) {
	pongoCtx := pongo2.Context{
		"vars":   ctx.Vars,
		"fields": ctx.Fields,
		"now":    ctx.Now,

		// Helper functions.
		"var":  func(name string) *pongo2.Value { return pongo2.AsSafeValue(ctx.Vars[name]) },
		"uuid": generateUUID,
		"randomInt": func(min, max int) int {
			if min >= max {
				return min
			}
			return min + randIntN(max-min+1)
		},
		"seq": func(start, end int) []int {
			return seqInts(start, end)
		},
		"toJSON": func(v any) *pongo2.Value {
			return pongo2.AsSafeValue(toJSONString(v))
		},
		"jsonPath": func(expression string) *pongo2.Value {
			return pongo2.AsSafeValue(extractJSONPath(ctx.Fields, expression))
		},
		"nowFormat": func(layout string) string {
			return formatNow(ctx.Now, layout)
		},
	}

	for name, value := range ctx.Vars {
		if identifierPattern.MatchString(name) {
			pongoCtx[name] = pongo2.AsSafeValue(value)
		}
	}
	for alias, name := range r.aliases {
		pongoCtx[alias] = pongo2.AsSafeValue(ctx.Vars[name])
	}

	result, err := r.tpl.Execute(pongoCtx)
	if err != nil {
		return "", fmt.Errorf("jinja2 template render failed: %w", err)
	}
	return result, nil
}
