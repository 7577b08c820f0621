package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/sophialabs/apiprobe/internal/domain/requestconfig"
	"github.com/sophialabs/apiprobe/internal/infrastructure/ports"
)

var _ requestconfig.Repository = (*ConfigRepository)(nil)

const configColumns = `id, name, route, method, additional_fields, field, headers, prompt, variables, schema, created_at, updated_at`

// ConfigRepository implements requestconfig.Repository.
type ConfigRepository struct {
	db    *sql.DB
	clock ports.Clock
}

// NewConfigRepository creates a repository on an open DB.
func NewConfigRepository(db *DB, clock ports.Clock) *ConfigRepository {
	return &ConfigRepository{db: db.sql, clock: clock}
}

func (r *ConfigRepository) CreateDraft(ctx context.Context, name string) (int64, error) {
	now := formatTime(r.clock.Now())
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO request_configs (name, created_at, updated_at) VALUES (?, ?, ?)`,
		name, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %s", requestconfig.ErrDuplicateName, name)
		}
		return 0, fmt.Errorf("creating draft %q: %w", name, err)
	}
	return res.LastInsertId()
}

func (r *ConfigRepository) List(ctx context.Context) ([]*requestconfig.RequestConfig, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+configColumns+` FROM request_configs ORDER BY updated_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing request configs: %w", err)
	}
	defer rows.Close()

	var out []*requestconfig.RequestConfig
	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cfg)
	}
	return out, rows.Err()
}

func (r *ConfigRepository) Get(ctx context.Context, id int64) (*requestconfig.RequestConfig, error) {
	return getConfig(ctx, r.db, id)
}

func (r *ConfigRepository) Update(ctx context.Context, id int64, p requestconfig.Patch) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	cfg, err := getConfig(ctx, tx, id)
	if err != nil {
		return err
	}
	p.Apply(cfg)
	cfg.Variables = requestconfig.StripDatalistValues(cfg.Variables)

	if err := writeConfig(ctx, tx, cfg, formatTime(r.clock.Now())); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *ConfigRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM request_configs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting request config %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return requestconfig.ErrNotFound
	}
	return nil
}

func (r *ConfigRepository) Upsert(ctx context.Context, cfg *requestconfig.RequestConfig) (int64, error) {
	cols, err := encodeConfig(cfg)
	if err != nil {
		return 0, err
	}
	now := formatTime(r.clock.Now())

	var id int64
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO request_configs
			(name, route, method, additional_fields, field, headers, prompt, variables, schema, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			route = excluded.route,
			method = excluded.method,
			additional_fields = excluded.additional_fields,
			field = excluded.field,
			headers = excluded.headers,
			prompt = excluded.prompt,
			variables = excluded.variables,
			schema = excluded.schema,
			updated_at = excluded.updated_at
		RETURNING id`,
		cfg.Name, cfg.Route, methodOrDefault(cfg.Method), cols.additionalFields, cfg.Field,
		cols.headers, cols.prompt, cols.variables, cols.schema, now, now,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting request config %q: %w", cfg.Name, err)
	}
	return id, nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type scanner interface {
	Scan(dest ...any) error
}

func getConfig(ctx context.Context, q querier, id int64) (*requestconfig.RequestConfig, error) {
	row := q.QueryRowContext(ctx, `SELECT `+configColumns+` FROM request_configs WHERE id = ?`, id)
	cfg, err := scanConfig(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, requestconfig.ErrNotFound
	}
	return cfg, err
}

func writeConfig(ctx context.Context, q querier, cfg *requestconfig.RequestConfig, updatedAt string) error {
	cols, err := encodeConfig(cfg)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		UPDATE request_configs SET
			name = ?, route = ?, method = ?, additional_fields = ?, field = ?,
			headers = ?, prompt = ?, variables = ?, schema = ?, updated_at = ?
		WHERE id = ?`,
		cfg.Name, cfg.Route, methodOrDefault(cfg.Method), cols.additionalFields, cfg.Field,
		cols.headers, cols.prompt, cols.variables, cols.schema, updatedAt, cfg.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", requestconfig.ErrDuplicateName, cfg.Name)
		}
		return fmt.Errorf("updating request config %d: %w", cfg.ID, err)
	}
	return nil
}

// jsonColumns holds the JSON-encoded text columns of a config row.
type jsonColumns struct {
	additionalFields sql.NullString
	headers          sql.NullString
	prompt           sql.NullString
	variables        sql.NullString
	schema           sql.NullString
}

func encodeConfig(cfg *requestconfig.RequestConfig) (jsonColumns, error) {
	var (
		cols jsonColumns
		err  error
	)
	if cols.additionalFields, err = encodeColumn(cfg.AdditionalFields, cfg.AdditionalFields == nil); err != nil {
		return cols, fmt.Errorf("encoding additional fields: %w", err)
	}
	if cols.headers, err = encodeColumn(cfg.Headers, cfg.Headers == nil); err != nil {
		return cols, fmt.Errorf("encoding headers: %w", err)
	}
	if cols.prompt, err = encodeColumn(cfg.Prompt, cfg.Prompt == nil); err != nil {
		return cols, fmt.Errorf("encoding prompt: %w", err)
	}
	vars := requestconfig.StripDatalistValues(cfg.Variables)
	if cols.variables, err = encodeColumn(vars, vars == nil); err != nil {
		return cols, fmt.Errorf("encoding variables: %w", err)
	}
	if cols.schema, err = encodeColumn(cfg.Schema, cfg.Schema == nil); err != nil {
		return cols, fmt.Errorf("encoding schema: %w", err)
	}
	return cols, nil
}

func encodeColumn(v any, isNil bool) (sql.NullString, error) {
	if isNil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeColumn(col sql.NullString, dst any) error {
	if !col.Valid || col.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(col.String), dst)
}

func scanConfig(s scanner) (*requestconfig.RequestConfig, error) {
	var (
		cfg                  requestconfig.RequestConfig
		cols                 jsonColumns
		createdAt, updatedAt string
	)
	err := s.Scan(&cfg.ID, &cfg.Name, &cfg.Route, &cfg.Method, &cols.additionalFields, &cfg.Field,
		&cols.headers, &cols.prompt, &cols.variables, &cols.schema, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning request config: %w", err)
	}

	if err := decodeColumn(cols.additionalFields, &cfg.AdditionalFields); err != nil {
		return nil, fmt.Errorf("decoding additional fields of config %d: %w", cfg.ID, err)
	}
	if err := decodeColumn(cols.headers, &cfg.Headers); err != nil {
		return nil, fmt.Errorf("decoding headers of config %d: %w", cfg.ID, err)
	}
	if err := decodeColumn(cols.prompt, &cfg.Prompt); err != nil {
		return nil, fmt.Errorf("decoding prompt of config %d: %w", cfg.ID, err)
	}
	if err := decodeColumn(cols.variables, &cfg.Variables); err != nil {
		return nil, fmt.Errorf("decoding variables of config %d: %w", cfg.ID, err)
	}
	if err := decodeColumn(cols.schema, &cfg.Schema); err != nil {
		return nil, fmt.Errorf("decoding schema of config %d: %w", cfg.ID, err)
	}

	cfg.CreatedAt = parseTime(createdAt)
	cfg.UpdatedAt = parseTime(updatedAt)
	return &cfg, nil
}

func methodOrDefault(m string) string {
	m = strings.ToUpper(strings.TrimSpace(m))
	if m == "" {
		return requestconfig.DefaultMethod
	}
	return m
}
