package orgs

import "time"

// Organization groups accounts and reports under a shared scope.
type Organization struct {
	ID        string // uuid
	Name      string
	Domain    string // email domain used for invite matching, optional
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
