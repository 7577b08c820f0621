package template

import (
	"fmt"
	"regexp"

	"github.com/sophialabs/apiprobe/internal/domain/requestconfig"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// rewriteForJinja2 replaces placeholders whose names are not valid template
// identifiers (user.name, first-name) with generated aliases. It returns the
// rewritten source and the alias -> variable name mapping.
func rewriteForJinja2(source string) (string, map[string]string) {
	aliases := make(map[string]string)
	byName := make(map[string]string)

	out := requestconfig.PlaceholderPattern.ReplaceAllStringFunc(source, func(m string) string {
		name := requestconfig.PlaceholderPattern.FindStringSubmatch(m)[1]
		if identifierPattern.MatchString(name) {
			return m
		}
		alias, ok := byName[name]
		if !ok {
			alias = fmt.Sprintf("pv_%d", len(byName))
			byName[name] = alias
			aliases[alias] = name
		}
		return "{{ " + alias + " }}"
	})
	return out, aliases
}

// rewriteForExpr turns {{ name }} placeholders into ${ var("name") } so that
// both placeholder styles can be mixed in one prompt.
func rewriteForExpr(source string) string {
	return requestconfig.PlaceholderPattern.ReplaceAllStringFunc(source, func(m string) string {
		name := requestconfig.PlaceholderPattern.FindStringSubmatch(m)[1]
		return `${ var("` + name + `") }`
	})
}
