package access

// Role is the closed set of account roles. Roles are assigned by the user
// management layer and are immutable for the lifetime of a session.
type Role string

const (
	RoleDeveloper Role = "developer"
	RoleAdmin     Role = "admin"
	RoleOrgAdmin  Role = "org_admin"
	RoleCustomer  Role = "customer"
	RoleDemo      Role = "demo"
)

// ModuleKind identifies a product module.
type ModuleKind string

const (
	ModuleK12           ModuleKind = "k12"
	ModulePostSecondary ModuleKind = "post_secondary"
	ModuleTutoring      ModuleKind = "tutoring"
)

// AllModules returns the full module set.
func AllModules() []ModuleKind {
	return []ModuleKind{ModuleK12, ModulePostSecondary, ModuleTutoring}
}

// ValidModule reports whether m names a known module.
func ValidModule(m ModuleKind) bool {
	switch m {
	case ModuleK12, ModulePostSecondary, ModuleTutoring:
		return true
	}
	return false
}

// Principal is the minimal shape of an authenticated account required for
// authorization checks. It is supplied by the auth layer and never mutated
// or persisted here.
type Principal struct {
	ID                 int64
	Role               Role
	AssignedModules    []ModuleKind
	ReportQuota        int // UnlimitedQuota means no quota
	CurrentReportCount int
	OrganizationID     string // empty when the account has no organization
	IsActive           bool
}

// CapabilitySet is the fully resolved set of flags for one role, module
// assignment and quota combination. Derived per request and discarded.
type CapabilitySet struct {
	CanSwitchModules bool         `json:"canSwitchModules"`
	ModuleAccess     []ModuleKind `json:"moduleAccess"`

	CanAccessAdminDashboard bool `json:"canAccessAdminDashboard"`
	CanViewSystemAnalytics  bool `json:"canViewSystemAnalytics"`

	CanCreateReports  bool `json:"canCreateReports"`
	CanViewOwnReports bool `json:"canViewOwnReports"`
	CanEditOwnReports bool `json:"canEditOwnReports"`
	CanViewOrgReports bool `json:"canViewOrgReports"`
	CanEditOrgReports bool `json:"canEditOrgReports"`
	CanViewAllReports bool `json:"canViewAllReports"`
	CanShareReports   bool `json:"canShareReports"`

	CanEditPrompts        bool `json:"canEditPrompts"`
	CanEditSystemConfig   bool `json:"canEditSystemConfig"`
	CanViewDatabaseTables bool `json:"canViewDatabaseTables"`
	CanEditDatabaseTables bool `json:"canEditDatabaseTables"`

	CanManageUsers         bool `json:"canManageUsers"`
	CanManageOrganizations bool `json:"canManageOrganizations"`
	CanViewOrgUsers        bool `json:"canViewOrgUsers"`
	CanEditOrgUsers        bool `json:"canEditOrgUsers"`

	ReportLimit *int `json:"reportLimit,omitempty"` // nil means unlimited
	IsDemoUser  bool `json:"isDemoUser"`
	CanUpgrade  bool `json:"canUpgrade"`
}

// HasModule reports whether the capability set grants access to module m.
func (c CapabilitySet) HasModule(m ModuleKind) bool {
	for _, have := range c.ModuleAccess {
		if have == m {
			return true
		}
	}
	return false
}

// Resource is the closed set of protected resource kinds.
type Resource string

const (
	ResourceModules       Resource = "modules"
	ResourceReports       Resource = "reports"
	ResourceAdmin         Resource = "admin"
	ResourceUsers         Resource = "users"
	ResourceOrganizations Resource = "organizations"
	ResourceSystemConfig  Resource = "system_config"
	ResourcePrompts       Resource = "prompts"
	ResourceDatabase      Resource = "database"
)

// Action is the closed set of operations on a resource. Pairs not handled
// by a resource rule always deny.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionSwitch Action = "switch"
	ActionManage Action = "manage"
	ActionView   Action = "view"
	ActionEdit   Action = "edit"
	ActionShare  Action = "share"
)

// Context carries per-call situational data for a single check. Zero values
// mean "not supplied": empty ModuleType and OrganizationID, false booleans,
// zero CurrentReportCount.
type Context struct {
	ModuleType         ModuleKind
	IsOwnReport        bool
	IsOrgReport        bool
	IsOrgUser          bool
	OrganizationID     string
	CurrentReportCount int
}

// DenialCode identifies why a check was denied.
type DenialCode string

const (
	CodeInsufficientPermissions  DenialCode = "INSUFFICIENT_PERMISSIONS"
	CodeModuleAccessDenied       DenialCode = "MODULE_ACCESS_DENIED"
	CodeDemoLimitExceeded        DenialCode = "DEMO_LIMIT_EXCEEDED"
	CodeOrganizationAccessDenied DenialCode = "ORGANIZATION_ACCESS_DENIED"
)

// Denial is the typed payload returned with a denied decision. Optional
// fields are populated per code and serialized straight into the HTTP 403
// body by the transport layer.
type Denial struct {
	Code    DenialCode `json:"code"`
	Message string     `json:"error"`

	RequestedModule ModuleKind   `json:"requestedModule,omitempty"`
	AssignedModules []ModuleKind `json:"assignedModules,omitempty"`

	CurrentCount *int   `json:"currentCount,omitempty"`
	MaxReports   *int   `json:"maxReports,omitempty"`
	UpgradeURL   string `json:"upgradeUrl,omitempty"`

	RequestedOrganization string `json:"requestedOrganization,omitempty"`
	UserOrganization      string `json:"userOrganization,omitempty"`
}

// Decision is the outcome of a single authorization check.
type Decision struct {
	Allowed bool
	Denial  *Denial // set iff !Allowed
}
