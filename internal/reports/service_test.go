package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/brightmark-io/brightmark/internal/access"
	"github.com/brightmark-io/brightmark/internal/shared"
)

type memoryRepo struct {
	reports map[int64]*Report
	nextID  int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{reports: make(map[int64]*Report)}
}

func (r *memoryRepo) CreateReport(ctx context.Context, input CreateReportInput) (*Report, error) {
	r.nextID++
	rep := &Report{
		ID:             r.nextID,
		OwnerID:        input.OwnerID,
		OrganizationID: input.OrganizationID,
		Module:         input.Module,
		Title:          input.Title,
		Summary:        input.Summary,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	r.reports[rep.ID] = rep
	return rep, nil
}

func (r *memoryRepo) GetReport(ctx context.Context, id int64) (*Report, error) {
	rep, ok := r.reports[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return rep, nil
}

func (r *memoryRepo) GetByShareToken(ctx context.Context, token string) (*Report, error) {
	for _, rep := range r.reports {
		if rep.ShareToken != "" && rep.ShareToken == token {
			return rep, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryRepo) ListByOwner(ctx context.Context, ownerID int64) ([]Report, error) {
	var out []Report
	for _, rep := range r.reports {
		if rep.OwnerID == ownerID {
			out = append(out, *rep)
		}
	}
	return out, nil
}

func (r *memoryRepo) ListByOrganization(ctx context.Context, orgID string) ([]Report, error) {
	var out []Report
	for _, rep := range r.reports {
		if rep.OrganizationID == orgID {
			out = append(out, *rep)
		}
	}
	return out, nil
}

func (r *memoryRepo) ListAll(ctx context.Context) ([]Report, error) {
	var out []Report
	for _, rep := range r.reports {
		out = append(out, *rep)
	}
	return out, nil
}

func (r *memoryRepo) UpdateReport(ctx context.Context, id int64, title, summary string) (*Report, error) {
	rep, ok := r.reports[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	rep.Title = title
	rep.Summary = summary
	rep.UpdatedAt = time.Now()
	return rep, nil
}

func (r *memoryRepo) SetShareToken(ctx context.Context, id int64, token string) error {
	rep, ok := r.reports[id]
	if !ok {
		return shared.ErrNotFound
	}
	rep.ShareToken = token
	return nil
}

func (r *memoryRepo) CountByOwner(ctx context.Context, ownerID int64) (int, error) {
	count := 0
	for _, rep := range r.reports {
		if rep.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

func seedReports(t *testing.T, repo *memoryRepo) {
	t.Helper()
	ctx := context.Background()
	_, err := repo.CreateReport(ctx, CreateReportInput{OwnerID: 1, OrganizationID: "org-A", Module: access.ModuleK12, Title: "A1"})
	require.NoError(t, err)
	_, err = repo.CreateReport(ctx, CreateReportInput{OwnerID: 2, OrganizationID: "org-A", Module: access.ModuleK12, Title: "A2"})
	require.NoError(t, err)
	_, err = repo.CreateReport(ctx, CreateReportInput{OwnerID: 3, OrganizationID: "org-B", Module: access.ModuleTutoring, Title: "B1"})
	require.NoError(t, err)
	_, err = repo.CreateReport(ctx, CreateReportInput{OwnerID: 4, Module: access.ModulePostSecondary, Title: "P1"})
	require.NoError(t, err)
}

func TestListVisibleScopes(t *testing.T) {
	repo := newMemoryRepo()
	seedReports(t, repo)
	service := NewService(repo)
	ctx := context.Background()

	admin := &access.Principal{ID: 9, Role: access.RoleAdmin, ReportQuota: access.UnlimitedQuota, IsActive: true}
	adminCaps := access.DerivePermissions(admin.Role, nil, admin.ReportQuota)
	all, err := service.ListVisible(ctx, admin, adminCaps)
	require.NoError(t, err)
	require.Len(t, all, 4)

	orgAdmin := &access.Principal{ID: 8, Role: access.RoleOrgAdmin, OrganizationID: "org-A", ReportQuota: access.UnlimitedQuota, IsActive: true}
	orgCaps := access.DerivePermissions(orgAdmin.Role, nil, orgAdmin.ReportQuota)
	orgList, err := service.ListVisible(ctx, orgAdmin, orgCaps)
	require.NoError(t, err)
	require.Len(t, orgList, 2)

	customer := &access.Principal{ID: 1, Role: access.RoleCustomer, OrganizationID: "org-A", ReportQuota: access.UnlimitedQuota, IsActive: true}
	custCaps := access.DerivePermissions(customer.Role, nil, customer.ReportQuota)
	own, err := service.ListVisible(ctx, customer, custCaps)
	require.NoError(t, err)
	require.Len(t, own, 1)
	require.Equal(t, "A1", own[0].Title)
}

func TestShareIssuesRetrievableToken(t *testing.T) {
	repo := newMemoryRepo()
	seedReports(t, repo)
	service := NewService(repo)
	ctx := context.Background()

	token, err := service.Share(ctx, 1)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	found, err := service.GetShared(ctx, token)
	require.NoError(t, err)
	require.Equal(t, int64(1), found.ID)

	_, err = service.GetShared(ctx, "bogus")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCheckContextOwnershipBeatsOrg(t *testing.T) {
	p := &access.Principal{ID: 1, OrganizationID: "org-A", IsActive: true}
	rep := &Report{ID: 10, OwnerID: 1, OrganizationID: "org-A"}
	c := CheckContext(p, rep)
	require.True(t, c.IsOwnReport)
	require.True(t, c.IsOrgReport)
	require.Empty(t, c.OrganizationID, "own reports carry no foreign-org marker")
}

func TestCheckContextForeignOrg(t *testing.T) {
	p := &access.Principal{ID: 1, OrganizationID: "org-A", IsActive: true}
	rep := &Report{ID: 11, OwnerID: 2, OrganizationID: "org-B"}
	c := CheckContext(p, rep)
	require.False(t, c.IsOwnReport)
	require.False(t, c.IsOrgReport)
	require.Equal(t, "org-B", c.OrganizationID)
}

func TestCreateBindsOwnerAndOrganization(t *testing.T) {
	repo := newMemoryRepo()
	service := NewService(repo)
	p := &access.Principal{ID: 5, Role: access.RoleCustomer, OrganizationID: "org-C", IsActive: true}

	rep, err := service.Create(context.Background(), p, access.ModuleK12, "Title", "Summary")
	require.NoError(t, err)
	require.Equal(t, int64(5), rep.OwnerID)
	require.Equal(t, "org-C", rep.OrganizationID)

	count, err := service.CountByOwner(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}
