package users

import (
	"time"

	"github.com/brightmark-io/brightmark/internal/access"
)

// User represents a platform account. Role, module assignment and quota are
// the authorization inputs; everything else is profile data.
type User struct {
	ID              int64
	Email           string
	Name            string
	Role            access.Role
	AssignedModules []access.ModuleKind
	ReportQuota     int
	OrganizationID  string // empty when the account has no organization
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
