// Package filesystem loads request-config collections from YAML files and
// watches them for changes.
package filesystem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	includeTag      = "!include"
	maxIncludeDepth = 10
)

var errEscapesRoot = errors.New("path escapes collection root")

// IncludeResolver replaces !include tagged nodes with the referenced file.
// YAML files are spliced in as nodes; any other file becomes a string scalar,
// which is how long prompt templates are kept out of the collection file.
type IncludeResolver struct {
	rootDir string
}

// NewIncludeResolver creates a resolver bound to rootDir for @root references.
func NewIncludeResolver(rootDir string) *IncludeResolver {
	return &IncludeResolver{rootDir: rootDir}
}

// ResolveIncludes resolves every !include below node in place. Relative
// references are taken from currentDir.
func (r *IncludeResolver) ResolveIncludes(node *yaml.Node, currentDir string) error {
	return r.walk(node, currentDir, 0)
}

func (r *IncludeResolver) walk(node *yaml.Node, currentDir string, depth int) error {
	if depth > maxIncludeDepth {
		return fmt.Errorf("%s depth exceeds maximum of %d", includeTag, maxIncludeDepth)
	}
	if node == nil {
		return nil
	}

	if node.Tag == includeTag {
		return r.include(node, currentDir, depth)
	}

	for _, child := range node.Content {
		if err := r.walk(child, currentDir, depth); err != nil {
			return err
		}
	}
	return nil
}

func (r *IncludeResolver) include(node *yaml.Node, currentDir string, depth int) error {
	ref := strings.TrimSpace(node.Value)
	if ref == "" {
		return fmt.Errorf("%s tag has empty value", includeTag)
	}

	target, err := r.resolvePath(ref, currentDir)
	if err != nil {
		return fmt.Errorf("failed to resolve %s %q: %w", includeTag, ref, err)
	}
	if err := r.checkWithinRoot(target); err != nil {
		return fmt.Errorf("%s %q is not allowed: %w", includeTag, ref, err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		return fmt.Errorf("failed to read included file %q: %w", ref, err)
	}

	if !isYAMLFile(target) {
		node.Tag = "!!str"
		node.Kind = yaml.ScalarNode
		node.Style = yaml.LiteralStyle
		node.Content = nil
		node.Value = string(data)
		return nil
	}

	var included yaml.Node
	if err := yaml.Unmarshal(data, &included); err != nil {
		return fmt.Errorf("failed to parse included YAML %q: %w", ref, err)
	}
	if err := r.walk(&included, filepath.Dir(target), depth+1); err != nil {
		return err
	}
	if included.Kind == yaml.DocumentNode && len(included.Content) > 0 {
		*node = *included.Content[0]
	} else {
		// An empty file includes as null.
		*node = yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
	return nil
}

func (r *IncludeResolver) resolvePath(ref, currentDir string) (string, error) {
	switch {
	case strings.HasPrefix(ref, "@root/"):
		return filepath.Join(r.rootDir, strings.TrimPrefix(ref, "@root/")), nil
	case strings.HasPrefix(ref, "@here/"):
		return filepath.Join(currentDir, strings.TrimPrefix(ref, "@here/")), nil
	case filepath.IsAbs(ref):
		return "", errors.New("absolute paths are not allowed")
	default:
		return filepath.Join(currentDir, ref), nil
	}
}

// checkWithinRoot rejects targets that leave the root, following symlinks
// where they exist.
func (r *IncludeResolver) checkWithinRoot(target string) error {
	resolved, err := filepath.EvalSymlinks(target)
	if err != nil {
		resolved = target
		if dir, dirErr := filepath.EvalSymlinks(filepath.Dir(target)); dirErr == nil {
			resolved = filepath.Join(dir, filepath.Base(target))
		}
	}
	root, err := filepath.EvalSymlinks(r.rootDir)
	if err != nil {
		root = r.rootDir
	}

	rel, err := filepath.Rel(root, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return errEscapesRoot
	}
	return nil
}
