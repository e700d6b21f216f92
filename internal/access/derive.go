package access

const (
	// UnlimitedQuota is the sentinel quota value meaning "no report limit".
	UnlimitedQuota = -1
	// DemoReportLimit is the hard ceiling for demo accounts. It is a policy
	// constant and deliberately ignores the stored quota.
	DemoReportLimit = 5
)

// DerivePermissions resolves a role, module assignment and report quota into
// a complete capability set. It is pure and never fails: an unrecognized
// role keeps the restrictive baseline.
func DerivePermissions(role Role, assignedModules []ModuleKind, reportQuota int) CapabilitySet {
	caps := CapabilitySet{
		CanCreateReports:  true,
		CanViewOwnReports: true,
		CanEditOwnReports: true,
		CanShareReports:   true,
		ModuleAccess:      cloneModules(assignedModules),
	}
	if reportQuota != UnlimitedQuota {
		limit := reportQuota
		caps.ReportLimit = &limit
	}

	switch role {
	case RoleDeveloper:
		caps.CanSwitchModules = true
		caps.ModuleAccess = AllModules()
		caps.CanAccessAdminDashboard = true
		caps.CanViewSystemAnalytics = true
		caps.CanViewAllReports = true
		caps.CanEditPrompts = true
		caps.CanEditSystemConfig = true
		caps.CanViewDatabaseTables = true
		caps.CanEditDatabaseTables = true
		caps.CanManageUsers = true
		caps.CanManageOrganizations = true
		caps.CanViewOrgUsers = true
		caps.CanEditOrgUsers = true
		caps.CanViewOrgReports = true
		caps.CanEditOrgReports = true
		caps.ReportLimit = nil
	case RoleAdmin:
		caps.CanSwitchModules = true
		caps.ModuleAccess = AllModules()
		caps.CanAccessAdminDashboard = true
		caps.CanViewSystemAnalytics = true
		caps.CanViewAllReports = true
		caps.CanManageUsers = true
		caps.CanManageOrganizations = true
		caps.CanViewOrgUsers = true
		caps.CanEditOrgUsers = true
		caps.CanViewOrgReports = true
		caps.CanEditOrgReports = true
		caps.ReportLimit = nil
	case RoleOrgAdmin:
		// Org admins manage users within their own organization only; the
		// org scope itself is enforced at evaluation time via Context.
		caps.CanManageUsers = true
		caps.CanViewOrgUsers = true
		caps.CanEditOrgUsers = true
		caps.CanViewOrgReports = true
		caps.CanEditOrgReports = true
		caps.ReportLimit = nil
	case RoleCustomer:
		caps.ReportLimit = nil
	case RoleDemo:
		limit := DemoReportLimit
		caps.ReportLimit = &limit
		caps.IsDemoUser = true
		caps.CanUpgrade = true
	}

	return caps
}

func cloneModules(modules []ModuleKind) []ModuleKind {
	if len(modules) == 0 {
		return nil
	}
	out := make([]ModuleKind, len(modules))
	copy(out, modules)
	return out
}
