package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brightmark-io/brightmark/internal/access"
	"github.com/brightmark-io/brightmark/internal/shared"
)

// Repository provides PostgreSQL backed persistence for accounts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, email, name, role, assigned_modules, report_quota, COALESCE(organization_id, ''), is_active, created_at, updated_at`

// ListUsers returns all accounts ordered by id.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

// ListByOrganization returns accounts belonging to one organization.
func (r *Repository) ListByOrganization(ctx context.Context, orgID string) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE organization_id = $1 ORDER BY id`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

// GetUser fetches one account by id.
func (r *Repository) GetUser(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// CreateUserInput carries the fields for a new account.
type CreateUserInput struct {
	Email           string
	Name            string
	PasswordHash    string
	Role            access.Role
	AssignedModules []access.ModuleKind
	ReportQuota     int
	OrganizationID  string
}

// CreateUser inserts a new account and returns it.
func (r *Repository) CreateUser(ctx context.Context, input CreateUserInput) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, name, password_hash, role, assigned_modules, report_quota, organization_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), TRUE)
		RETURNING `+userColumns,
		input.Email, input.Name, input.PasswordHash, string(input.Role),
		modulesToStrings(input.AssignedModules), input.ReportQuota, input.OrganizationID)
	user, err := scanUser(row)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23505" {
			return nil, shared.ErrConflict
		}
		return nil, err
	}
	return user, nil
}

// UpdateUserInput carries the mutable account fields.
type UpdateUserInput struct {
	Name            string
	Role            access.Role
	AssignedModules []access.ModuleKind
	ReportQuota     int
	OrganizationID  string
	IsActive        bool
}

// UpdateUser updates an account and returns the stored row.
func (r *Repository) UpdateUser(ctx context.Context, id int64, input UpdateUserInput) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET name = $2, role = $3, assigned_modules = $4, report_quota = $5,
		    organization_id = NULLIF($6, ''), is_active = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns,
		id, input.Name, string(input.Role), modulesToStrings(input.AssignedModules),
		input.ReportQuota, input.OrganizationID, input.IsActive)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// DeleteUser removes an account. Returns shared.ErrNotFound when absent.
func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanUsers(rows pgx.Rows) ([]User, error) {
	var out []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var user User
	var role string
	var modules []string
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &role, &modules,
		&user.ReportQuota, &user.OrganizationID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, err
	}
	user.Role = access.Role(role)
	user.AssignedModules = stringsToModules(modules)
	return &user, nil
}

func modulesToStrings(modules []access.ModuleKind) []string {
	out := make([]string, len(modules))
	for i, m := range modules {
		out[i] = string(m)
	}
	return out
}

func stringsToModules(values []string) []access.ModuleKind {
	if len(values) == 0 {
		return nil
	}
	out := make([]access.ModuleKind, len(values))
	for i, v := range values {
		out[i] = access.ModuleKind(v)
	}
	return out
}
