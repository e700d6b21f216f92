package prompts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brightmark-io/brightmark/internal/access"
	"github.com/brightmark-io/brightmark/internal/shared"
)

// Repository provides PostgreSQL backed persistence for prompts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const promptColumns = `id, module, name, body, COALESCE(updated_by, 0), created_at, updated_at`

// ListPrompts returns every prompt ordered by module and name.
func (r *Repository) ListPrompts(ctx context.Context) ([]Prompt, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+promptColumns+` FROM prompts ORDER BY module, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Prompt
	for rows.Next() {
		prompt, err := scanPrompt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *prompt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPrompt fetches one prompt by id.
func (r *Repository) GetPrompt(ctx context.Context, id int64) (*Prompt, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+promptColumns+` FROM prompts WHERE id = $1`, id)
	prompt, err := scanPrompt(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return prompt, nil
}

// UpdatePrompt replaces the prompt body and records the editor.
func (r *Repository) UpdatePrompt(ctx context.Context, id int64, body string, editorID int64) (*Prompt, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE prompts SET body = $2, updated_by = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING `+promptColumns, id, body, editorID)
	prompt, err := scanPrompt(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return prompt, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPrompt(row rowScanner) (*Prompt, error) {
	var prompt Prompt
	var module string
	if err := row.Scan(&prompt.ID, &module, &prompt.Name, &prompt.Body,
		&prompt.UpdatedBy, &prompt.CreatedAt, &prompt.UpdatedAt); err != nil {
		return nil, err
	}
	prompt.Module = access.ModuleKind(module)
	return &prompt, nil
}
