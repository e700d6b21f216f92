package access

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrUnauthenticated indicates the check ran without a usable principal
// (absent or deactivated account). The transport layer maps it to 401.
var ErrUnauthenticated = errors.New("access: unauthenticated")

// DefaultUpgradePath is surfaced with demo-limit denials so the client can
// point at the upgrade flow.
const DefaultUpgradePath = "/upgrade"

// Guard performs authorization checks against a live principal. It is
// stateless; one instance per process is enough, but constructing per call
// is equally valid.
type Guard struct {
	logger      *slog.Logger
	upgradePath string
}

// NewGuard constructs a Guard. logger may be nil.
func NewGuard(logger *slog.Logger) *Guard {
	return &Guard{logger: logger, upgradePath: DefaultUpgradePath}
}

// Capabilities derives the capability set for a principal.
func (g *Guard) Capabilities(p *Principal) CapabilitySet {
	return DerivePermissions(p.Role, p.AssignedModules, p.ReportQuota)
}

// Check gates a single (resource, action, context) request. A nil or
// inactive principal is rejected before any evaluation. A panic inside
// evaluation is recovered and returned as an error, never as an allow or a
// plain deny.
func (g *Guard) Check(p *Principal, resource Resource, action Action, c *Context) (decision Decision, err error) {
	if p == nil || !p.IsActive {
		return Decision{}, ErrUnauthenticated
	}
	defer func() {
		if r := recover(); r != nil {
			if g.logger != nil {
				g.logger.Error("access check failed",
					slog.String("resource", string(resource)),
					slog.String("action", string(action)),
					slog.Any("panic", r))
			}
			decision = Decision{}
			err = fmt.Errorf("access: check %s/%s failed: %v", resource, action, r)
		}
	}()

	caps := g.Capabilities(p)
	if Evaluate(caps, resource, action, c) {
		return Decision{Allowed: true}, nil
	}
	return Decision{Denial: g.denialFor(p, caps, resource, action, c)}, nil
}

// CheckOrganization verifies the principal may act within the named
// organization. Accounts with global organization management bypass the
// membership test.
func (g *Guard) CheckOrganization(p *Principal, organizationID string) (Decision, error) {
	if p == nil || !p.IsActive {
		return Decision{}, ErrUnauthenticated
	}
	caps := g.Capabilities(p)
	if organizationID == "" || caps.CanManageOrganizations || p.OrganizationID == organizationID {
		return Decision{Allowed: true}, nil
	}
	return Decision{Denial: g.denialFor(p, caps, "", "", &Context{OrganizationID: organizationID})}, nil
}

// denialFor selects the richest applicable denial shape. Order matters: a
// module-scoped request reports the module mismatch even when the caller is
// also over its demo quota.
func (g *Guard) denialFor(p *Principal, caps CapabilitySet, resource Resource, action Action, c *Context) *Denial {
	if c == nil {
		c = &Context{}
	}
	switch {
	case resource == ResourceModules && c.ModuleType != "":
		return &Denial{
			Code:            CodeModuleAccessDenied,
			Message:         fmt.Sprintf("you do not have access to the %s module", c.ModuleType),
			RequestedModule: c.ModuleType,
			AssignedModules: caps.ModuleAccess,
		}
	case resource == ResourceReports && action == ActionCreate && p.Role == RoleDemo:
		current := c.CurrentReportCount
		max := DemoReportLimit
		return &Denial{
			Code:         CodeDemoLimitExceeded,
			Message:      fmt.Sprintf("demo accounts are limited to %d reports", max),
			CurrentCount: &current,
			MaxReports:   &max,
			UpgradeURL:   g.upgradePath,
		}
	case c.OrganizationID != "" && c.OrganizationID != p.OrganizationID:
		return &Denial{
			Code:                  CodeOrganizationAccessDenied,
			Message:               "you do not have access to this organization",
			RequestedOrganization: c.OrganizationID,
			UserOrganization:      p.OrganizationID,
		}
	default:
		return &Denial{
			Code:    CodeInsufficientPermissions,
			Message: "you do not have permission to perform this action",
		}
	}
}
