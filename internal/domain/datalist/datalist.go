// Package datalist holds named, ordered lists of values used to feed prompt variables.
package datalist

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a datalist was not found.
	ErrNotFound = errors.New("datalist not found")
	// ErrDuplicateName indicates another datalist already uses the name.
	ErrDuplicateName = errors.New("datalist name already exists")
)

// Datalist is a named list of string values.
type Datalist struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository is the port for persisting datalists.
type Repository interface {
	// Create stores the list and its entries atomically.
	Create(ctx context.Context, name string, values []string) (int64, error)

	// List returns all datalists, newest first.
	List(ctx context.Context) ([]*Datalist, error)

	// Entries returns the values in insertion order, or ErrNotFound.
	Entries(ctx context.Context, id int64) ([]string, error)

	// Delete removes the list and its entries.
	Delete(ctx context.Context, id int64) error
}
