package reports

import (
	"time"

	"github.com/brightmark-io/brightmark/internal/access"
)

// Report is a generated assessment report owned by one account and,
// optionally, visible to the owner's organization.
type Report struct {
	ID             int64
	OwnerID        int64
	OrganizationID string // empty for personal reports
	Module         access.ModuleKind
	Title          string
	Summary        string
	ShareToken     string // empty until shared
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
