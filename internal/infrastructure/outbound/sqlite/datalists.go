package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sophialabs/apiprobe/internal/domain/datalist"
	"github.com/sophialabs/apiprobe/internal/infrastructure/ports"
)

var _ datalist.Repository = (*DatalistRepository)(nil)

// DatalistRepository implements datalist.Repository.
type DatalistRepository struct {
	db    *sql.DB
	clock ports.Clock
}

// NewDatalistRepository creates a repository on an open DB.
func NewDatalistRepository(db *DB, clock ports.Clock) *DatalistRepository {
	return &DatalistRepository{db: db.sql, clock: clock}
}

func (r *DatalistRepository) Create(ctx context.Context, name string, values []string) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning datalist insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO datalists (name, created_at) VALUES (?, ?)`,
		name, formatTime(r.clock.Now()))
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %s", datalist.ErrDuplicateName, name)
		}
		return 0, fmt.Errorf("inserting datalist %q: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO datalist_entries (datalist_id, value) VALUES (?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing entry insert: %w", err)
	}
	defer stmt.Close()

	for _, v := range values {
		if _, err := stmt.ExecContext(ctx, id, v); err != nil {
			return 0, fmt.Errorf("inserting entry of datalist %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing datalist %q: %w", name, err)
	}
	return id, nil
}

func (r *DatalistRepository) List(ctx context.Context) ([]*datalist.Datalist, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM datalists ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing datalists: %w", err)
	}
	defer rows.Close()

	var out []*datalist.Datalist
	for rows.Next() {
		var (
			dl        datalist.Datalist
			createdAt string
		)
		if err := rows.Scan(&dl.ID, &dl.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning datalist: %w", err)
		}
		dl.CreatedAt = parseTime(createdAt)
		out = append(out, &dl)
	}
	return out, rows.Err()
}

func (r *DatalistRepository) Entries(ctx context.Context, id int64) ([]string, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM datalists WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, datalist.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("looking up datalist %d: %w", id, err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT value FROM datalist_entries WHERE datalist_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("reading entries of datalist %d: %w", id, err)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func (r *DatalistRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM datalists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting datalist %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return datalist.ErrNotFound
	}
	return nil
}
