package sysconfig

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brightmark-io/brightmark/internal/shared"
)

// Repository provides PostgreSQL backed persistence for settings and the
// raw table browser.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListSettings returns every setting ordered by key.
func (r *Repository) ListSettings(ctx context.Context) ([]Setting, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT key, value, COALESCE(description, ''), COALESCE(updated_by, 0), updated_at
		FROM system_settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.Description, &s.UpdatedBy, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSetting fetches one setting by key.
func (r *Repository) GetSetting(ctx context.Context, key string) (*Setting, error) {
	var s Setting
	err := r.pool.QueryRow(ctx, `
		SELECT key, value, COALESCE(description, ''), COALESCE(updated_by, 0), updated_at
		FROM system_settings WHERE key = $1`, key).
		Scan(&s.Key, &s.Value, &s.Description, &s.UpdatedBy, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// UpsertSetting stores one setting value and records the editor.
func (r *Repository) UpsertSetting(ctx context.Context, key, value string, editorID int64) (*Setting, error) {
	var s Setting
	err := r.pool.QueryRow(ctx, `
		INSERT INTO system_settings (key, value, updated_by, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_by = EXCLUDED.updated_by, updated_at = NOW()
		RETURNING key, value, COALESCE(description, ''), COALESCE(updated_by, 0), updated_at`,
		key, value, editorID).
		Scan(&s.Key, &s.Value, &s.Description, &s.UpdatedBy, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListTables returns the public tables with estimated row counts. Estimates
// come from pg_class so big tables do not trigger full scans.
func (r *Repository) ListTables(ctx context.Context) ([]TableSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.relname, GREATEST(c.reltuples::BIGINT, 0)
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = 'public' AND c.relkind = 'r'
		ORDER BY c.relname`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TableSummary
	for rows.Next() {
		var t TableSummary
		if err := rows.Scan(&t.Name, &t.RowCount); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// BrowseTable returns up to limit rows from one public table. The name is
// checked against the catalog before being interpolated; identifiers cannot
// be bound as parameters.
func (r *Repository) BrowseTable(ctx context.Context, table string, limit int) (*TableRows, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM pg_class c
			JOIN pg_namespace n ON n.oid = c.relnamespace
			WHERE n.nspname = 'public' AND c.relkind = 'r' AND c.relname = $1
		)`, table).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.ErrNotFound
	}

	rows, err := r.pool.Query(ctx, `SELECT * FROM `+pgx.Identifier{table}.Sanitize()+` LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	result := &TableRows{Table: table, Columns: columns, Rows: []map[string]any{}}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
