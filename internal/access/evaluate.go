package access

// Evaluate applies the per-resource rules to a capability set and reports
// whether the action is permitted. A nil Context is treated as empty.
// Resource/action pairs without a rule always deny.
func Evaluate(caps CapabilitySet, resource Resource, action Action, c *Context) bool {
	if c == nil {
		c = &Context{}
	}
	switch resource {
	case ResourceModules:
		return evaluateModules(caps, action, c)
	case ResourceReports:
		return evaluateReports(caps, action, c)
	case ResourceAdmin:
		return evaluateAdmin(caps, action)
	case ResourceUsers:
		return evaluateUsers(caps, action, c)
	case ResourceOrganizations:
		return evaluateOrganizations(caps, action)
	case ResourceSystemConfig:
		return evaluateSystemConfig(caps, action)
	case ResourcePrompts:
		return evaluatePrompts(caps, action)
	case ResourceDatabase:
		return evaluateDatabase(caps, action)
	}
	return false
}

func evaluateModules(caps CapabilitySet, action Action, c *Context) bool {
	switch action {
	case ActionSwitch:
		return caps.CanSwitchModules
	case ActionView, ActionRead:
		// Module-scoped routes name the module; the switcher UI only asks
		// whether any module is assigned.
		if c.ModuleType != "" {
			return caps.HasModule(c.ModuleType)
		}
		return len(caps.ModuleAccess) > 0
	}
	return false
}

func evaluateReports(caps CapabilitySet, action Action, c *Context) bool {
	switch action {
	case ActionCreate:
		if caps.IsDemoUser && caps.ReportLimit != nil {
			return c.CurrentReportCount < *caps.ReportLimit
		}
		return caps.CanCreateReports
	case ActionView, ActionRead:
		// Ownership outranks organization scope; first matching context wins.
		switch {
		case c.IsOwnReport:
			return caps.CanViewOwnReports
		case c.IsOrgReport:
			return caps.CanViewOrgReports
		default:
			return caps.CanViewAllReports
		}
	case ActionUpdate, ActionEdit:
		switch {
		case c.IsOwnReport:
			return caps.CanEditOwnReports
		case c.IsOrgReport:
			return caps.CanEditOrgReports
		default:
			// Contextless edits fall back to the view-all flag. Observed
			// policy, pending product confirmation; do not change silently.
			return caps.CanViewAllReports
		}
	case ActionShare:
		return caps.CanShareReports
	}
	return false
}

func evaluateAdmin(caps CapabilitySet, action Action) bool {
	switch action {
	case ActionView, ActionRead:
		return caps.CanAccessAdminDashboard
	case ActionManage:
		// Analytics capability gates admin manage actions; there is no
		// separate manage flag.
		return caps.CanViewSystemAnalytics
	}
	return false
}

func evaluateUsers(caps CapabilitySet, action Action, c *Context) bool {
	switch action {
	case ActionView:
		if c.IsOrgUser {
			return caps.CanViewOrgUsers
		}
		return caps.CanManageUsers
	case ActionManage, ActionCreate, ActionUpdate, ActionDelete:
		if c.IsOrgUser {
			return caps.CanEditOrgUsers
		}
		return caps.CanManageUsers
	}
	return false
}

func evaluateOrganizations(caps CapabilitySet, action Action) bool {
	switch action {
	case ActionView, ActionRead, ActionManage, ActionCreate, ActionUpdate, ActionDelete:
		return caps.CanManageOrganizations
	}
	return false
}

func evaluateSystemConfig(caps CapabilitySet, action Action) bool {
	switch action {
	case ActionView, ActionRead:
		// Either capability unlocks read access.
		return caps.CanEditSystemConfig || caps.CanViewDatabaseTables
	case ActionEdit, ActionUpdate:
		return caps.CanEditSystemConfig
	}
	return false
}

func evaluatePrompts(caps CapabilitySet, action Action) bool {
	switch action {
	case ActionView, ActionRead:
		return caps.CanEditPrompts || caps.CanEditSystemConfig
	case ActionEdit, ActionUpdate:
		return caps.CanEditPrompts
	}
	return false
}

func evaluateDatabase(caps CapabilitySet, action Action) bool {
	switch action {
	case ActionView, ActionRead:
		return caps.CanViewDatabaseTables
	case ActionEdit, ActionUpdate, ActionCreate, ActionDelete:
		return caps.CanEditDatabaseTables
	}
	return false
}
