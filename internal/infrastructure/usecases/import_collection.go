package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/sophialabs/apiprobe/internal/domain/requestconfig"
	"github.com/sophialabs/apiprobe/internal/infrastructure/ports"
)

// CollectionSource loads request configs defined outside the database.
type CollectionSource interface {
	LoadAll(ctx context.Context) ([]*requestconfig.RequestConfig, error)
}

// ImportCollectionUseCase upserts every config of a collection by name.
type ImportCollectionUseCase struct {
	source CollectionSource
	repo   requestconfig.Repository
	logger ports.Logger
}

// NewImportCollectionUseCase creates a new use case.
func NewImportCollectionUseCase(source CollectionSource, repo requestconfig.Repository, logger ports.Logger) *ImportCollectionUseCase {
	return &ImportCollectionUseCase{
		source: source,
		repo:   repo,
		logger: logger,
	}
}

// Execute loads the collection and upserts it. Every entry needs a unique
// name. Upsert failures are logged and skipped; the imported count is returned.
func (uc *ImportCollectionUseCase) Execute(ctx context.Context) (int, error) {
	configs, err := uc.source.LoadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load collection: %w", err)
	}

	uc.logger.Info("loaded collection", "count", len(configs))

	seen := make(map[string]bool, len(configs))
	for _, cfg := range configs {
		if strings.TrimSpace(cfg.Name) == "" {
			return 0, fmt.Errorf("collection entry with route %q has no name", cfg.Route)
		}
		if seen[cfg.Name] {
			return 0, fmt.Errorf("duplicate request config name in collection: %q", cfg.Name)
		}
		seen[cfg.Name] = true
	}

	imported := 0
	for _, cfg := range configs {
		id, err := uc.repo.Upsert(ctx, cfg)
		if err != nil {
			uc.logger.Warn("failed to import request config", "name", cfg.Name, "error", err)
			continue
		}
		imported++
		uc.logger.Debug("imported request config", "name", cfg.Name, "id", id)
	}

	if imported < len(configs) {
		uc.logger.Warn("some request configs failed to import", "failed", len(configs)-imported)
	}
	uc.logger.Info("collection imported", "imported", imported)
	return imported, nil
}
