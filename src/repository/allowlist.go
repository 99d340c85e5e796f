package repository

import "photoserv/src/app"

// AllowList is the fixed set of administrator identities, built once at
// boot and immutable afterwards. Injected into the authorization gate so
// tests can substitute their own.
type AllowList struct {
	emails map[string]struct{}
}

// NewAllowList normalizes the configured identifiers (lower-case,
// trimmed) into a membership set. Empty entries are dropped.
func NewAllowList(emails []string) *AllowList {
	set := make(map[string]struct{}, len(emails))
	for _, email := range emails {
		normalized := app.NormalizeEmail(email)
		if normalized == "" {
			continue
		}
		set[normalized] = struct{}{}
	}
	return &AllowList{emails: set}
}

// Contains reports membership, case-insensitively.
func (a *AllowList) Contains(email string) bool {
	_, ok := a.emails[app.NormalizeEmail(email)]
	return ok
}

// Size returns the number of allow-listed identities. Logged at boot so
// an empty list is visible.
func (a *AllowList) Size() int {
	return len(a.emails)
}
