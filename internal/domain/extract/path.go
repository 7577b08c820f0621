// Package extract pulls a nested field out of a decoded JSON response, re-parses
// JSON embedded in string fields and checks the result against a flat schema.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sophialabs/apiprobe/internal/domain/jsonvalue"
)

var (
	stepPattern  = regexp.MustCompile(`([\w-]+)((?:\[\d+\])*)`)
	indexPattern = regexp.MustCompile(`\[(\d+)\]`)
)

// Step is one key lookup followed by zero or more array indices.
type Step struct {
	Key     string
	Indices []int
}

// Path is a parsed field path such as "a.b[2].c".
type Path []Step

// ParsePath splits raw on '.' and scans each segment for key[index]... tokens.
// Segments with no token contribute nothing.
func ParsePath(raw string) (Path, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyPath
	}
	return parseSteps(raw), nil
}

func parseSteps(raw string) Path {
	var path Path
	for _, segment := range strings.Split(raw, ".") {
		for _, m := range stepPattern.FindAllStringSubmatch(segment, -1) {
			step := Step{Key: m[1]}
			for _, im := range indexPattern.FindAllStringSubmatch(m[2], -1) {
				idx, err := strconv.Atoi(im[1])
				if err != nil {
					// Overflowing indices can never be in range.
					idx = -1
				}
				step.Indices = append(step.Indices, idx)
			}
			path = append(path, step)
		}
	}
	return path
}

// Resolve walks root along p. The boolean is false when a key is missing,
// an index is out of range, or traversal reaches the wrong container type.
func (p Path) Resolve(root jsonvalue.Value) (jsonvalue.Value, bool) {
	data := root
	for _, step := range p {
		next, ok := jsonvalue.Lookup(data, step.Key)
		if !ok {
			return nil, false
		}
		data = next
		for _, idx := range step.Indices {
			next, ok := jsonvalue.Index(data, idx)
			if !ok {
				return nil, false
			}
			data = next
		}
	}
	return data, true
}
