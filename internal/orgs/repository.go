package orgs

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brightmark-io/brightmark/internal/shared"
)

// Repository provides PostgreSQL backed persistence for organizations.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const orgColumns = `id, name, COALESCE(domain, ''), is_active, created_at, updated_at`

// CreateOrganizationInput carries fields for a new organization.
type CreateOrganizationInput struct {
	Name   string
	Domain string
}

// CreateOrganization inserts an organization with a generated id.
func (r *Repository) CreateOrganization(ctx context.Context, input CreateOrganizationInput) (*Organization, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO organizations (id, name, domain, is_active)
		VALUES ($1, $2, NULLIF($3, ''), TRUE)
		RETURNING `+orgColumns,
		uuid.NewString(), input.Name, input.Domain)
	org, err := scanOrganization(row)
	if err != nil {
		return nil, mapConstraint(err)
	}
	return org, nil
}

// GetOrganization fetches one organization by id.
func (r *Repository) GetOrganization(ctx context.Context, id string) (*Organization, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orgColumns+` FROM organizations WHERE id = $1`, id)
	org, err := scanOrganization(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return org, nil
}

// ListOrganizations returns every organization ordered by name.
func (r *Repository) ListOrganizations(ctx context.Context) ([]Organization, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orgColumns+` FROM organizations ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *org)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateOrganizationInput carries mutable organization fields.
type UpdateOrganizationInput struct {
	Name     string
	Domain   string
	IsActive bool
}

// UpdateOrganization updates one organization and returns the stored row.
func (r *Repository) UpdateOrganization(ctx context.Context, id string, input UpdateOrganizationInput) (*Organization, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE organizations SET name = $2, domain = NULLIF($3, ''), is_active = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING `+orgColumns,
		id, input.Name, input.Domain, input.IsActive)
	org, err := scanOrganization(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, mapConstraint(err)
	}
	return org, nil
}

// DeleteOrganization removes an organization. Member accounts keep their
// rows; the foreign key nulls their organization_id.
func (r *Repository) DeleteOrganization(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func mapConstraint(err error) error {
	if pgErr, ok := err.(*pgconn.PgError); ok {
		if pgErr.Code == "23505" {
			return shared.ErrConflict
		}
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrganization(row rowScanner) (*Organization, error) {
	var org Organization
	if err := row.Scan(&org.ID, &org.Name, &org.Domain, &org.IsActive, &org.CreatedAt, &org.UpdatedAt); err != nil {
		return nil, err
	}
	return &org, nil
}
