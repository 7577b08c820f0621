package usecases

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sophialabs/apiprobe/internal/domain/datalist"
	"github.com/sophialabs/apiprobe/internal/infrastructure/ports"
	"github.com/sophialabs/apiprobe/internal/infrastructure/services"
)

// ManageDatalistsUseCase handles datalist CRUD and CSV import.
type ManageDatalistsUseCase struct {
	repo   datalist.Repository
	logger ports.Logger
}

// NewManageDatalistsUseCase creates a new use case.
func NewManageDatalistsUseCase(repo datalist.Repository, logger ports.Logger) *ManageDatalistsUseCase {
	return &ManageDatalistsUseCase{
		repo:   repo,
		logger: logger,
	}
}

// Create stores a named list. values must be non-nil; an empty list is allowed.
func (uc *ManageDatalistsUseCase) Create(ctx context.Context, name string, values []string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" || values == nil {
		return 0, ErrInvalidRequest
	}
	id, err := uc.repo.Create(ctx, name, values)
	if err != nil {
		return 0, fmt.Errorf("failed to create datalist %q: %w", name, err)
	}
	uc.logger.Info("datalist created", "id", id, "name", name, "entries", len(values))
	return id, nil
}

// ImportCSV creates a datalist from one column of a CSV document.
func (uc *ManageDatalistsUseCase) ImportCSV(ctx context.Context, name, column string, r io.Reader) (int64, int, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(column) == "" {
		return 0, 0, ErrInvalidRequest
	}
	values, err := services.ColumnValues(r, strings.TrimSpace(column))
	if err != nil {
		return 0, 0, err
	}
	id, err := uc.Create(ctx, name, values)
	if err != nil {
		return 0, 0, err
	}
	return id, len(values), nil
}

// CSVColumns returns the header of a CSV document so a column can be picked
// before ImportCSV.
func (uc *ManageDatalistsUseCase) CSVColumns(r io.Reader) ([]string, error) {
	return services.CSVHeader(r)
}

// List returns all datalists, newest first.
func (uc *ManageDatalistsUseCase) List(ctx context.Context) ([]*datalist.Datalist, error) {
	lists, err := uc.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list datalists: %w", err)
	}
	return lists, nil
}

// Entries returns the values of one datalist.
func (uc *ManageDatalistsUseCase) Entries(ctx context.Context, id int64) ([]string, error) {
	values, err := uc.repo.Entries(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read datalist %d: %w", id, err)
	}
	return values, nil
}

// Delete removes a datalist and its entries.
func (uc *ManageDatalistsUseCase) Delete(ctx context.Context, id int64) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete datalist %d: %w", id, err)
	}
	uc.logger.Info("datalist deleted", "id", id)
	return nil
}
