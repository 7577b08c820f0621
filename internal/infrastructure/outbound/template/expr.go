package template

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ExprCompiler compiles prompts using the Expr language with ${ } interpolation.
// {{ name }} placeholders are accepted too and read the variable of that name.
type ExprCompiler struct{}

// Compile parses the source for ${ } delimiters and compiles each expression.
func (c *ExprCompiler) Compile(name, source string) (Renderer, error) {
	segments, err := parseExprSegments(rewriteForExpr(source))
	if err != nil {
		return nil, fmt.Errorf("failed to parse expr template %q: %w", name, err)
	}

	hasDynamic := false
	for _, seg := range segments {
		if seg.program != nil {
			hasDynamic = true
			break
		}
	}
	if !hasDynamic {
		return &staticRenderer{text: source}, nil
	}

	return &exprRenderer{segments: segments}, nil
}

type exprSegment struct {
	static  string
	program *vm.Program
}

func parseExprSegments(source string) ([]exprSegment, error) {
	var segments []exprSegment
	remaining := source
	offset := 0

	for {
		idx := strings.Index(remaining, "${")
		if idx < 0 {
			if remaining != "" {
				segments = append(segments, exprSegment{static: remaining})
			}
			break
		}

		if idx > 0 {
			segments = append(segments, exprSegment{static: remaining[:idx]})
		}

		rest := remaining[idx+2:]
		closeIdx := findClosingBrace(rest)
		if closeIdx < 0 {
			return nil, fmt.Errorf("unclosed ${ at position %d", offset+idx)
		}

		expression := strings.TrimSpace(rest[:closeIdx])
		if expression == "" {
			return nil, fmt.Errorf("empty expression at position %d", offset+idx)
		}
		program, err := expr.Compile(expression, expr.Env(exprEnv{}))
		if err != nil {
			return nil, fmt.Errorf("failed to compile expression %q: %w", expression, err)
		}
		segments = append(segments, exprSegment{program: program})

		consumed := idx + 2 + closeIdx + 1
		offset += consumed
		remaining = remaining[consumed:]
	}

	return segments, nil
}

// findClosingBrace finds the matching } accounting for nested braces and quoted strings.
func findClosingBrace(s string) int {
	depth := 0
	inString := false
	var quote byte
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			if ch == '\\' && i+1 < len(s) {
				i++
				continue
			}
			if ch == quote {
				inString = false
			}
			continue
		}
		switch ch {
		case '\'', '"', '`':
			inString = true
			quote = ch
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}

// exprEnv defines the environment available to Expr expressions.
type exprEnv struct {
	Var       func(string) string  `expr:"var"`
	Vars      map[string]string    `expr:"vars"`
	Fields    map[string]any       `expr:"fields"`
	Now       func() string        `expr:"now"`
	NowFormat func(string) string  `expr:"nowFormat"`
	UUID      func() string        `expr:"uuid"`
	RandomInt func(int, int) int   `expr:"randomInt"`
	Seq       func(int, int) []int `expr:"seq"`
	ToJSON    func(any) string     `expr:"toJSON"`
	JsonPath  func(string) string  `expr:"jsonPath"`
}

type exprRenderer struct {
	segments []exprSegment
}

func (r *exprRenderer) Render(ctx RenderContext) (string, error) {
	env := buildExprEnv(ctx)

	var buf strings.Builder
	for _, seg := range r.segments {
		if seg.program == nil {
			buf.WriteString(seg.static)
			continue
		}
		result, err := expr.Run(seg.program, env)
		if err != nil {
			return "", fmt.Errorf("expression evaluation failed: %w", err)
		}
		fmt.Fprintf(&buf, "%v", result)
	}
	return buf.String(), nil
}
