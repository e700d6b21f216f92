package users

import (
	"context"

	"github.com/brightmark-io/brightmark/internal/access"
)

// RepositoryPort defines data access methods for accounts.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	ListByOrganization(ctx context.Context, orgID string) ([]User, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	CreateUser(ctx context.Context, input CreateUserInput) (*User, error)
	UpdateUser(ctx context.Context, id int64, input UpdateUserInput) (*User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// ReportCounter exposes the live report count for an account. Implemented by
// the reports repository; only demo principals need the number.
type ReportCounter interface {
	CountByOwner(ctx context.Context, ownerID int64) (int, error)
}

// Service handles account business logic and resolves principals for
// authorization checks.
type Service struct {
	repo    RepositoryPort
	reports ReportCounter
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, reports ReportCounter) *Service {
	return &Service{repo: repo, reports: reports}
}

// ListUsers returns all accounts.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// ListByOrganization returns accounts scoped to one organization.
func (s *Service) ListByOrganization(ctx context.Context, orgID string) ([]User, error) {
	return s.repo.ListByOrganization(ctx, orgID)
}

// GetUser fetches a single account.
func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetUser(ctx, id)
}

// CreateUser inserts a new account.
func (s *Service) CreateUser(ctx context.Context, input CreateUserInput) (*User, error) {
	return s.repo.CreateUser(ctx, input)
}

// UpdateUser updates an account.
func (s *Service) UpdateUser(ctx context.Context, id int64, input UpdateUserInput) (*User, error) {
	return s.repo.UpdateUser(ctx, id, input)
}

// DeleteUser removes an account.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	return s.repo.DeleteUser(ctx, id)
}

// Principal resolves an account into the minimal shape the access package
// consumes. The live report count is only fetched for demo accounts, the
// sole role with a bounded quota.
func (s *Service) Principal(ctx context.Context, userID int64) (*access.Principal, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := &access.Principal{
		ID:              user.ID,
		Role:            user.Role,
		AssignedModules: user.AssignedModules,
		ReportQuota:     user.ReportQuota,
		OrganizationID:  user.OrganizationID,
		IsActive:        user.IsActive,
	}
	if user.Role == access.RoleDemo && s.reports != nil {
		count, err := s.reports.CountByOwner(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		p.CurrentReportCount = count
	}
	return p, nil
}
