package requestconfig

import "regexp"

// PlaceholderPattern matches a prompt variable reference such as {{ city }}.
var PlaceholderPattern = regexp.MustCompile(`\{\{\s*([\w.-]+)\s*\}\}`)

// DetectVariables returns the distinct variable names referenced by prompt,
// in order of first appearance.
func DetectVariables(prompt string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range PlaceholderPattern.FindAllStringSubmatch(prompt, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}
