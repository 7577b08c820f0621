package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sophialabs/apiprobe/internal/domain/requestconfig"
	"github.com/sophialabs/apiprobe/internal/infrastructure/services"
)

// CollectionRepository loads request configs from YAML files in a directory tree.
type CollectionRepository struct {
	rootDir  string
	resolver *IncludeResolver
}

// NewCollectionRepository creates a repository rooted at rootDir.
func NewCollectionRepository(rootDir string) (*CollectionRepository, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root directory: %w", err)
	}
	return &CollectionRepository{
		rootDir:  absRoot,
		resolver: NewIncludeResolver(absRoot),
	}, nil
}

// RootDir returns the absolute collection directory.
func (r *CollectionRepository) RootDir() string {
	return r.rootDir
}

// LoadAll walks the root directory for .yaml files and returns parsed configs
// in walk order. Files included by others are loaded on their own too when
// they live in the tree, so keep fragments under a "_partials" directory.
func (r *CollectionRepository) LoadAll(ctx context.Context) ([]*requestconfig.RequestConfig, error) {
	var configs []*requestconfig.RequestConfig

	err := filepath.WalkDir(r.rootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if path != r.rootDir && isSkippedDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !isYAMLFile(path) {
			return nil
		}

		loaded, err := r.loadFile(path)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		configs = append(configs, loaded...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk collections directory: %w", err)
	}

	return configs, nil
}

func (r *CollectionRepository) loadFile(path string) ([]*requestconfig.RequestConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var rootNode yaml.Node
	if err := yaml.Unmarshal(data, &rootNode); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if rootNode.Kind == 0 {
		// Empty file.
		return nil, nil
	}

	if err := r.resolver.ResolveIncludes(&rootNode, filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("failed to resolve includes: %w", err)
	}

	if rootNode.Kind != yaml.DocumentNode || len(rootNode.Content) == 0 {
		return nil, fmt.Errorf("unexpected YAML structure in %s", path)
	}

	content := rootNode.Content[0]
	if content.Kind != yaml.SequenceNode {
		cfg, err := decodeConfigNode(content)
		if err != nil {
			return nil, err
		}
		return []*requestconfig.RequestConfig{cfg}, nil
	}

	configs := make([]*requestconfig.RequestConfig, 0, len(content.Content))
	for i, item := range content.Content {
		cfg, err := decodeConfigNode(item)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *yamlSchema) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = services.ParseSchemaInput(node.Value)
		return nil
	case yaml.SequenceNode:
		var fields []string
		if err := node.Decode(&fields); err != nil {
			return err
		}
		*s = fields
		return nil
	default:
		return errors.New("schema must be a list or a comma-separated string")
	}
}

func decodeConfigNode(node *yaml.Node) (*requestconfig.RequestConfig, error) {
	var yc yamlConfig
	if err := node.Decode(&yc); err != nil {
		return nil, fmt.Errorf("failed to decode request config: %w", err)
	}
	return toRequestConfig(&yc)
}

func toRequestConfig(yc *yamlConfig) (*requestconfig.RequestConfig, error) {
	cfg := &requestconfig.RequestConfig{
		Name:    strings.TrimSpace(yc.Name),
		Route:   yc.Route,
		Method:  strings.ToUpper(yc.Method),
		Headers: yc.Headers,
		Prompt:  yc.Prompt,
		Field:   yc.Field,
		Schema:  []string(yc.Schema),
	}
	if cfg.Method == "" {
		cfg.Method = requestconfig.DefaultMethod
	}

	if len(yc.Fields) > 0 || len(yc.AdditionalFields) > 0 {
		cfg.AdditionalFields = services.AdditionalFields(yc.Fields)
		for k, v := range yc.AdditionalFields {
			cfg.AdditionalFields[k] = v
		}
	}

	if len(yc.Variables) > 0 {
		cfg.Variables = make(map[string]requestconfig.VariableSource, len(yc.Variables))
		for name, yv := range yc.Variables {
			src, err := toVariableSource(yv)
			if err != nil {
				return nil, fmt.Errorf("variable %q: %w", name, err)
			}
			cfg.Variables[name] = src
		}
	}
	return cfg, nil
}

func toVariableSource(yv yamlVariable) (requestconfig.VariableSource, error) {
	typ := yv.Type
	if typ == "" {
		typ = requestconfig.SourceManual
		if yv.Datalist != nil {
			typ = requestconfig.SourceDatalist
		}
	}

	switch typ {
	case requestconfig.SourceManual:
		return requestconfig.VariableSource{Type: typ, Values: yv.Values}, nil
	case requestconfig.SourceDatalist:
		if yv.Datalist == nil {
			return requestconfig.VariableSource{}, errors.New("datalist variable needs a datalist id")
		}
		return requestconfig.VariableSource{Type: typ, DatalistID: yv.Datalist}, nil
	default:
		return requestconfig.VariableSource{}, fmt.Errorf("unknown variable type %q", typ)
	}
}

func isSkippedDir(name string) bool {
	return strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")
}

func isYAMLFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
