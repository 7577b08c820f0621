package services

import (
	"context"
	"fmt"

	"github.com/sophialabs/apiprobe/internal/domain/requestconfig"
)

// EntryLoader loads the values of a datalist.
type EntryLoader interface {
	Entries(ctx context.Context, id int64) ([]string, error)
}

// VariableValues returns the candidate values of one variable source,
// reading datalist entries through loader.
func VariableValues(ctx context.Context, src requestconfig.VariableSource, loader EntryLoader) ([]string, error) {
	if !src.FromDatalist() {
		return src.Values, nil
	}
	if src.DatalistID == nil {
		return nil, nil
	}
	values, err := loader.Entries(ctx, *src.DatalistID)
	if err != nil {
		return nil, fmt.Errorf("loading datalist %d: %w", *src.DatalistID, err)
	}
	return values, nil
}

// ResolveVariables picks a value for every variable referenced by prompt.
// selections maps a variable to the index of the chosen value (default 0).
// Unknown variables and out-of-range selections resolve to "".
func ResolveVariables(
	ctx context.Context,
	prompt string,
	sources map[string]requestconfig.VariableSource,
	selections map[string]int,
	loader EntryLoader,
) (map[string]string, error) {
	names := requestconfig.DetectVariables(prompt)
	resolved := make(map[string]string, len(names))

	for _, name := range names {
		resolved[name] = ""
		src, ok := sources[name]
		if !ok {
			continue
		}
		values, err := VariableValues(ctx, src, loader)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", name, err)
		}
		idx := selections[name]
		if idx >= 0 && idx < len(values) {
			resolved[name] = values[idx]
		}
	}
	return resolved, nil
}
