package users

import (
	"context"
	"testing"
	"time"

	"github.com/brightmark-io/brightmark/internal/access"
	"github.com/brightmark-io/brightmark/internal/shared"
)

type memoryRepo struct {
	users  map[int64]*User
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[int64]*User)}
}

func (r *memoryRepo) ListUsers(ctx context.Context) ([]User, error) {
	var out []User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *memoryRepo) ListByOrganization(ctx context.Context, orgID string) ([]User, error) {
	var out []User
	for _, u := range r.users {
		if u.OrganizationID == orgID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *memoryRepo) GetUser(ctx context.Context, id int64) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func (r *memoryRepo) CreateUser(ctx context.Context, input CreateUserInput) (*User, error) {
	r.nextID++
	u := &User{
		ID:              r.nextID,
		Email:           input.Email,
		Name:            input.Name,
		Role:            input.Role,
		AssignedModules: input.AssignedModules,
		ReportQuota:     input.ReportQuota,
		OrganizationID:  input.OrganizationID,
		IsActive:        true,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	r.users[u.ID] = u
	return u, nil
}

func (r *memoryRepo) UpdateUser(ctx context.Context, id int64, input UpdateUserInput) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	u.Name = input.Name
	u.Role = input.Role
	u.AssignedModules = input.AssignedModules
	u.ReportQuota = input.ReportQuota
	u.OrganizationID = input.OrganizationID
	u.IsActive = input.IsActive
	u.UpdatedAt = time.Now()
	return u, nil
}

func (r *memoryRepo) DeleteUser(ctx context.Context, id int64) error {
	if _, ok := r.users[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type stubCounter struct {
	count int
	calls int
}

func (s *stubCounter) CountByOwner(ctx context.Context, ownerID int64) (int, error) {
	s.calls++
	return s.count, nil
}

func TestPrincipalResolvesDemoReportCount(t *testing.T) {
	repo := newMemoryRepo()
	counter := &stubCounter{count: 3}
	service := NewService(repo, counter)

	created, err := repo.CreateUser(context.Background(), CreateUserInput{
		Email:           "demo@test.local",
		Name:            "Demo",
		Role:            access.RoleDemo,
		AssignedModules: []access.ModuleKind{access.ModulePostSecondary},
		ReportQuota:     access.UnlimitedQuota,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	p, err := service.Principal(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("principal: %v", err)
	}
	if p.CurrentReportCount != 3 {
		t.Fatalf("expected live count 3, got %d", p.CurrentReportCount)
	}
	if counter.calls != 1 {
		t.Fatalf("expected one counter call, got %d", counter.calls)
	}
	if p.Role != access.RoleDemo || !p.IsActive {
		t.Fatalf("unexpected principal: %+v", p)
	}
}

func TestPrincipalSkipsCountForUnboundedRoles(t *testing.T) {
	repo := newMemoryRepo()
	counter := &stubCounter{count: 42}
	service := NewService(repo, counter)

	created, err := repo.CreateUser(context.Background(), CreateUserInput{
		Email:       "cust@test.local",
		Name:        "Customer",
		Role:        access.RoleCustomer,
		ReportQuota: access.UnlimitedQuota,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	p, err := service.Principal(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("principal: %v", err)
	}
	if counter.calls != 0 {
		t.Fatalf("counter should not be consulted for customer accounts")
	}
	if p.CurrentReportCount != 0 {
		t.Fatalf("expected zero count, got %d", p.CurrentReportCount)
	}
}

func TestPrincipalUnknownUser(t *testing.T) {
	service := NewService(newMemoryRepo(), &stubCounter{})
	if _, err := service.Principal(context.Background(), 99); err == nil {
		t.Fatalf("expected error for unknown user")
	}
}
