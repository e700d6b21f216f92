package reports

import (
	"context"

	"github.com/google/uuid"

	"github.com/brightmark-io/brightmark/internal/access"
)

// RepositoryPort defines data access methods for reports.
type RepositoryPort interface {
	CreateReport(ctx context.Context, input CreateReportInput) (*Report, error)
	GetReport(ctx context.Context, id int64) (*Report, error)
	GetByShareToken(ctx context.Context, token string) (*Report, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]Report, error)
	ListByOrganization(ctx context.Context, orgID string) ([]Report, error)
	ListAll(ctx context.Context) ([]Report, error)
	UpdateReport(ctx context.Context, id int64, title, summary string) (*Report, error)
	SetShareToken(ctx context.Context, id int64, token string) error
	CountByOwner(ctx context.Context, ownerID int64) (int, error)
}

// Service handles report business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Create inserts a report owned by the principal. Quota enforcement happens
// in the authorization layer before this is reached.
func (s *Service) Create(ctx context.Context, p *access.Principal, module access.ModuleKind, title, summary string) (*Report, error) {
	return s.repo.CreateReport(ctx, CreateReportInput{
		OwnerID:        p.ID,
		OrganizationID: p.OrganizationID,
		Module:         module,
		Title:          title,
		Summary:        summary,
	})
}

// Get fetches one report.
func (s *Service) Get(ctx context.Context, id int64) (*Report, error) {
	return s.repo.GetReport(ctx, id)
}

// GetShared fetches a report through its share token.
func (s *Service) GetShared(ctx context.Context, token string) (*Report, error) {
	return s.repo.GetByShareToken(ctx, token)
}

// ListVisible returns the widest report set the capability set allows:
// everything for view-all, the principal's organization for org viewers,
// otherwise the principal's own reports.
func (s *Service) ListVisible(ctx context.Context, p *access.Principal, caps access.CapabilitySet) ([]Report, error) {
	switch {
	case caps.CanViewAllReports:
		return s.repo.ListAll(ctx)
	case caps.CanViewOrgReports && p.OrganizationID != "":
		return s.repo.ListByOrganization(ctx, p.OrganizationID)
	default:
		return s.repo.ListByOwner(ctx, p.ID)
	}
}

// Update changes the editable fields of a report.
func (s *Service) Update(ctx context.Context, id int64, title, summary string) (*Report, error) {
	return s.repo.UpdateReport(ctx, id, title, summary)
}

// Share assigns a fresh share token and returns it.
func (s *Service) Share(ctx context.Context, id int64) (string, error) {
	token := uuid.NewString()
	if err := s.repo.SetShareToken(ctx, id, token); err != nil {
		return "", err
	}
	return token, nil
}

// CountByOwner exposes the live report count for quota checks.
func (s *Service) CountByOwner(ctx context.Context, ownerID int64) (int, error) {
	return s.repo.CountByOwner(ctx, ownerID)
}

// CheckContext builds the evaluation context for one stored report as seen
// by the principal.
func CheckContext(p *access.Principal, report *Report) *access.Context {
	c := &access.Context{}
	if report.OwnerID == p.ID {
		c.IsOwnReport = true
	}
	if report.OrganizationID != "" && report.OrganizationID == p.OrganizationID {
		c.IsOrgReport = true
	}
	if report.OrganizationID != "" && !c.IsOwnReport {
		c.OrganizationID = report.OrganizationID
	}
	return c
}
