package orgs

import "context"

// RepositoryPort defines data access methods for organizations.
type RepositoryPort interface {
	CreateOrganization(ctx context.Context, input CreateOrganizationInput) (*Organization, error)
	GetOrganization(ctx context.Context, id string) (*Organization, error)
	ListOrganizations(ctx context.Context) ([]Organization, error)
	UpdateOrganization(ctx context.Context, id string, input UpdateOrganizationInput) (*Organization, error)
	DeleteOrganization(ctx context.Context, id string) error
}

// Service handles organization business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, input CreateOrganizationInput) (*Organization, error) {
	return s.repo.CreateOrganization(ctx, input)
}

func (s *Service) Get(ctx context.Context, id string) (*Organization, error) {
	return s.repo.GetOrganization(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Organization, error) {
	return s.repo.ListOrganizations(ctx)
}

func (s *Service) Update(ctx context.Context, id string, input UpdateOrganizationInput) (*Organization, error) {
	return s.repo.UpdateOrganization(ctx, id, input)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteOrganization(ctx, id)
}
