package reports

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brightmark-io/brightmark/internal/access"
	"github.com/brightmark-io/brightmark/internal/shared"
)

// Repository provides PostgreSQL backed persistence for reports.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const reportColumns = `id, owner_id, COALESCE(organization_id, ''), module, title, summary, COALESCE(share_token, ''), created_at, updated_at`

// CreateReportInput carries fields for a new report.
type CreateReportInput struct {
	OwnerID        int64
	OrganizationID string
	Module         access.ModuleKind
	Title          string
	Summary        string
}

// CreateReport inserts a report and returns the stored row.
func (r *Repository) CreateReport(ctx context.Context, input CreateReportInput) (*Report, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO reports (owner_id, organization_id, module, title, summary)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5)
		RETURNING `+reportColumns,
		input.OwnerID, input.OrganizationID, string(input.Module), input.Title, input.Summary)
	return scanReport(row)
}

// GetReport fetches one report by id.
func (r *Repository) GetReport(ctx context.Context, id int64) (*Report, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id)
	report, err := scanReport(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return report, nil
}

// GetByShareToken fetches a report through its share token.
func (r *Repository) GetByShareToken(ctx context.Context, token string) (*Report, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+reportColumns+` FROM reports WHERE share_token = $1`, token)
	report, err := scanReport(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return report, nil
}

// ListByOwner returns reports owned by one account, newest first.
func (r *Repository) ListByOwner(ctx context.Context, ownerID int64) ([]Report, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+reportColumns+` FROM reports WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReports(rows)
}

// ListByOrganization returns reports visible to one organization.
func (r *Repository) ListByOrganization(ctx context.Context, orgID string) ([]Report, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+reportColumns+` FROM reports WHERE organization_id = $1 ORDER BY created_at DESC`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReports(rows)
}

// ListAll returns every report, newest first.
func (r *Repository) ListAll(ctx context.Context) ([]Report, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+reportColumns+` FROM reports ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReports(rows)
}

// UpdateReport updates the editable fields of a report.
func (r *Repository) UpdateReport(ctx context.Context, id int64, title, summary string) (*Report, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE reports SET title = $2, summary = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING `+reportColumns, id, title, summary)
	report, err := scanReport(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return report, nil
}

// SetShareToken stores the share token for a report.
func (r *Repository) SetShareToken(ctx context.Context, id int64, token string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE reports SET share_token = $2, updated_at = NOW() WHERE id = $1`, id, token)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountByOwner returns the live number of reports owned by an account.
// Feeds the demo quota check.
func (r *Repository) CountByOwner(ctx context.Context, ownerID int64) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM reports WHERE owner_id = $1`, ownerID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanReports(rows pgx.Rows) ([]Report, error) {
	var out []Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *report)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*Report, error) {
	var report Report
	var module string
	if err := row.Scan(&report.ID, &report.OwnerID, &report.OrganizationID, &module,
		&report.Title, &report.Summary, &report.ShareToken, &report.CreatedAt, &report.UpdatedAt); err != nil {
		return nil, err
	}
	report.Module = access.ModuleKind(module)
	return &report, nil
}
