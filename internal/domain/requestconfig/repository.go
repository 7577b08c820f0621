package requestconfig

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates a request config was not found.
	ErrNotFound = errors.New("request config not found")
	// ErrDuplicateName indicates another config already uses the name.
	ErrDuplicateName = errors.New("request config name already exists")
)

// Repository is the port for persisting request configs.
type Repository interface {
	// CreateDraft stores a config holding only a name and returns its id.
	CreateDraft(ctx context.Context, name string) (int64, error)

	// List returns all configs, most recently updated first.
	List(ctx context.Context) ([]*RequestConfig, error)

	// Get returns ErrNotFound if no config with the id exists.
	Get(ctx context.Context, id int64) (*RequestConfig, error)

	// Update applies p and bumps updated_at.
	Update(ctx context.Context, id int64, p Patch) error

	Delete(ctx context.Context, id int64) error

	// Upsert inserts cfg or replaces the config with the same name.
	Upsert(ctx context.Context, cfg *RequestConfig) (int64, error)
}
