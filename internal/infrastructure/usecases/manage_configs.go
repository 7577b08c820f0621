package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sophialabs/apiprobe/internal/domain/requestconfig"
	"github.com/sophialabs/apiprobe/internal/infrastructure/ports"
)

// ErrInvalidRequest indicates a request the API cannot act on.
var ErrInvalidRequest = errors.New("Invalid request")

// ManageConfigsUseCase handles request config CRUD.
type ManageConfigsUseCase struct {
	repo   requestconfig.Repository
	logger ports.Logger
}

// NewManageConfigsUseCase creates a new use case.
func NewManageConfigsUseCase(repo requestconfig.Repository, logger ports.Logger) *ManageConfigsUseCase {
	return &ManageConfigsUseCase{
		repo:   repo,
		logger: logger,
	}
}

// CreateDraft stores a config holding only a name.
func (uc *ManageConfigsUseCase) CreateDraft(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, ErrInvalidRequest
	}
	id, err := uc.repo.CreateDraft(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("failed to create draft %q: %w", name, err)
	}
	uc.logger.Info("request config created", "id", id, "name", name)
	return id, nil
}

// List returns all configs, most recently updated first.
func (uc *ManageConfigsUseCase) List(ctx context.Context) ([]*requestconfig.RequestConfig, error) {
	configs, err := uc.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list request configs: %w", err)
	}
	return configs, nil
}

// Get returns one config.
func (uc *ManageConfigsUseCase) Get(ctx context.Context, id int64) (*requestconfig.RequestConfig, error) {
	cfg, err := uc.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find request config %d: %w", id, err)
	}
	return cfg, nil
}

// Update applies a partial update. An empty patch is rejected.
func (uc *ManageConfigsUseCase) Update(ctx context.Context, id int64, p requestconfig.Patch) error {
	if p.Empty() {
		return ErrInvalidRequest
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return ErrInvalidRequest
	}
	if err := uc.repo.Update(ctx, id, p); err != nil {
		return fmt.Errorf("failed to update request config %d: %w", id, err)
	}
	uc.logger.Info("request config updated", "id", id)
	return nil
}

// Delete removes a config.
func (uc *ManageConfigsUseCase) Delete(ctx context.Context, id int64) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete request config %d: %w", id, err)
	}
	uc.logger.Info("request config deleted", "id", id)
	return nil
}
