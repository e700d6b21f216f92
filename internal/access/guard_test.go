package access

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func demoPrincipal(count int) *Principal {
	return &Principal{
		ID:                 1,
		Role:               RoleDemo,
		AssignedModules:    []ModuleKind{ModulePostSecondary},
		ReportQuota:        5,
		CurrentReportCount: count,
		IsActive:           true,
	}
}

func TestGuardDemoQuotaBoundary(t *testing.T) {
	guard := NewGuard(nil)

	decision, err := guard.Check(demoPrincipal(4), ResourceReports, ActionCreate, &Context{CurrentReportCount: 4})
	require.NoError(t, err)
	require.True(t, decision.Allowed)

	decision, err = guard.Check(demoPrincipal(5), ResourceReports, ActionCreate, &Context{CurrentReportCount: 5})
	require.NoError(t, err)
	require.False(t, decision.Allowed)
	require.NotNil(t, decision.Denial)
	require.Equal(t, CodeDemoLimitExceeded, decision.Denial.Code)
	require.NotNil(t, decision.Denial.CurrentCount)
	require.Equal(t, 5, *decision.Denial.CurrentCount)
	require.NotNil(t, decision.Denial.MaxReports)
	require.Equal(t, 5, *decision.Denial.MaxReports)
	require.Equal(t, DefaultUpgradePath, decision.Denial.UpgradeURL)
}

func TestGuardModuleDenialDetails(t *testing.T) {
	guard := NewGuard(nil)
	p := &Principal{
		ID:              2,
		Role:            RoleOrgAdmin,
		AssignedModules: []ModuleKind{ModuleK12},
		ReportQuota:     UnlimitedQuota,
		OrganizationID:  "org-A",
		IsActive:        true,
	}
	decision, err := guard.Check(p, ResourceModules, ActionView, &Context{ModuleType: ModuleTutoring})
	require.NoError(t, err)
	require.False(t, decision.Allowed)
	require.Equal(t, CodeModuleAccessDenied, decision.Denial.Code)
	require.Equal(t, ModuleTutoring, decision.Denial.RequestedModule)
	require.Equal(t, []ModuleKind{ModuleK12}, decision.Denial.AssignedModules)
}

func TestGuardModuleDenialBeatsDemoQuota(t *testing.T) {
	// A demo user at its limit asking for an unassigned module gets the
	// module denial, not the quota denial.
	guard := NewGuard(nil)
	p := demoPrincipal(5)
	decision, err := guard.Check(p, ResourceModules, ActionView, &Context{
		ModuleType:         ModuleK12,
		CurrentReportCount: 5,
	})
	require.NoError(t, err)
	require.False(t, decision.Allowed)
	require.Equal(t, CodeModuleAccessDenied, decision.Denial.Code)
}

func TestGuardOrganizationDenial(t *testing.T) {
	guard := NewGuard(nil)
	p := &Principal{
		ID:             3,
		Role:           RoleCustomer,
		ReportQuota:    UnlimitedQuota,
		OrganizationID: "org-A",
		IsActive:       true,
	}
	decision, err := guard.Check(p, ResourceReports, ActionView, &Context{
		IsOrgReport:    true,
		OrganizationID: "org-B",
	})
	require.NoError(t, err)
	require.False(t, decision.Allowed)
	require.Equal(t, CodeOrganizationAccessDenied, decision.Denial.Code)
	require.Equal(t, "org-B", decision.Denial.RequestedOrganization)
	require.Equal(t, "org-A", decision.Denial.UserOrganization)
}

func TestGuardGenericDenial(t *testing.T) {
	guard := NewGuard(nil)
	p := &Principal{ID: 4, Role: RoleCustomer, ReportQuota: UnlimitedQuota, IsActive: true}
	decision, err := guard.Check(p, ResourceAdmin, ActionView, nil)
	require.NoError(t, err)
	require.False(t, decision.Allowed)
	require.Equal(t, CodeInsufficientPermissions, decision.Denial.Code)
	require.NotEmpty(t, decision.Denial.Message)
}

func TestGuardAdminPromptEditDenied(t *testing.T) {
	// Admin can view prompts through the config capability but cannot edit.
	guard := NewGuard(nil)
	p := &Principal{ID: 5, Role: RoleAdmin, ReportQuota: UnlimitedQuota, IsActive: true}
	decision, err := guard.Check(p, ResourcePrompts, ActionEdit, nil)
	require.NoError(t, err)
	require.False(t, decision.Allowed)
	require.Equal(t, CodeInsufficientPermissions, decision.Denial.Code)
}

func TestGuardRejectsMissingOrInactivePrincipal(t *testing.T) {
	guard := NewGuard(nil)

	_, err := guard.Check(nil, ResourceReports, ActionView, nil)
	require.ErrorIs(t, err, ErrUnauthenticated)

	inactive := &Principal{ID: 6, Role: RoleDeveloper, ReportQuota: UnlimitedQuota, IsActive: false}
	_, err = guard.Check(inactive, ResourceReports, ActionView, &Context{IsOwnReport: true})
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestGuardDeveloperSmoke(t *testing.T) {
	guard := NewGuard(nil)
	p := &Principal{ID: 7, Role: RoleDeveloper, ReportQuota: UnlimitedQuota, IsActive: true}
	checks := []struct {
		resource Resource
		action   Action
	}{
		{ResourceModules, ActionSwitch},
		{ResourceReports, ActionCreate},
		{ResourceAdmin, ActionManage},
		{ResourceUsers, ActionManage},
		{ResourceOrganizations, ActionDelete},
		{ResourceSystemConfig, ActionUpdate},
		{ResourcePrompts, ActionUpdate},
		{ResourceDatabase, ActionEdit},
	}
	for _, tc := range checks {
		decision, err := guard.Check(p, tc.resource, tc.action, nil)
		require.NoError(t, err, "%s/%s", tc.resource, tc.action)
		require.True(t, decision.Allowed, "%s/%s", tc.resource, tc.action)
	}
}

func TestGuardUnknownResourceDenies(t *testing.T) {
	guard := NewGuard(nil)
	p := &Principal{ID: 8, Role: RoleDeveloper, ReportQuota: UnlimitedQuota, IsActive: true}
	decision, err := guard.Check(p, Resource("billing"), ActionView, nil)
	require.NoError(t, err)
	require.False(t, decision.Allowed)
	require.Equal(t, CodeInsufficientPermissions, decision.Denial.Code)
}
