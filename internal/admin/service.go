package admin

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/brightmark-io/brightmark/internal/access"
)

// Summary is the dashboard headline view.
type Summary struct {
	TotalUsers         int64 `json:"totalUsers"`
	ActiveUsers        int64 `json:"activeUsers"`
	TotalOrganizations int64 `json:"totalOrganizations"`
	TotalReports       int64 `json:"totalReports"`
	ReportsToday       int64 `json:"reportsToday"`
}

// Analytics is the deeper system analytics view.
type Analytics struct {
	ReportsByModule map[string]int64 `json:"reportsByModule"`
	UsersByRole     map[string]int64 `json:"usersByRole"`
	DemoAccounts    int64            `json:"demoAccounts"`
	DemoAtLimit     int64            `json:"demoAtLimit"`
}

// Service aggregates platform statistics for the admin surfaces.
type Service struct {
	pool *pgxpool.Pool
}

// NewService builds Service instance.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// Summary runs the headline counts concurrently.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	var out Summary
	g, ctx := errgroup.WithContext(ctx)
	g.Go(s.count(ctx, `SELECT COUNT(*) FROM users`, &out.TotalUsers))
	g.Go(s.count(ctx, `SELECT COUNT(*) FROM users WHERE is_active`, &out.ActiveUsers))
	g.Go(s.count(ctx, `SELECT COUNT(*) FROM organizations`, &out.TotalOrganizations))
	g.Go(s.count(ctx, `SELECT COUNT(*) FROM reports`, &out.TotalReports))
	g.Go(s.count(ctx, `SELECT COUNT(*) FROM reports WHERE created_at >= date_trunc('day', NOW())`, &out.ReportsToday))
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

// Analytics runs the grouped breakdowns concurrently.
func (s *Service) Analytics(ctx context.Context) (*Analytics, error) {
	out := Analytics{
		ReportsByModule: make(map[string]int64),
		UsersByRole:     make(map[string]int64),
	}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(s.grouped(ctx, `SELECT module, COUNT(*) FROM reports GROUP BY module`, out.ReportsByModule))
	g.Go(s.grouped(ctx, `SELECT role, COUNT(*) FROM users GROUP BY role`, out.UsersByRole))
	g.Go(s.count(ctx, `SELECT COUNT(*) FROM users WHERE role = 'demo'`, &out.DemoAccounts))
	g.Go(func() error {
		return s.pool.QueryRow(ctx, `
			SELECT COUNT(*) FROM users u
			WHERE u.role = 'demo'
			AND (SELECT COUNT(*) FROM reports r WHERE r.owner_id = u.id) >= $1`,
			access.DemoReportLimit).Scan(&out.DemoAtLimit)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) count(ctx context.Context, query string, dest *int64) func() error {
	return func() error {
		return s.pool.QueryRow(ctx, query).Scan(dest)
	}
}

func (s *Service) grouped(ctx context.Context, query string, dest map[string]int64) func() error {
	return func() error {
		rows, err := s.pool.Query(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var key string
			var count int64
			if err := rows.Scan(&key, &count); err != nil {
				return err
			}
			dest[key] = count
		}
		return rows.Err()
	}
}
