package prompts

import (
	"time"

	"github.com/brightmark-io/brightmark/internal/access"
)

// Prompt is a generation template used when producing reports for one
// module. Keyed by (module, name).
type Prompt struct {
	ID        int64
	Module    access.ModuleKind
	Name      string
	Body      string
	UpdatedBy int64 // account id of the last editor
	CreatedAt time.Time
	UpdatedAt time.Time
}
