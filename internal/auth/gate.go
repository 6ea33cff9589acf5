// Package auth provides access tokens and the administrator gate.
package auth

import "strings"

// Gate holds the fixed administrator allow-list. It is built once from
// deployment configuration; admins cannot be added or removed at
// runtime.
type Gate struct {
	allowed map[string]struct{}
}

func NewGate(adminEmails []string) *Gate {
	allowed := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			allowed[email] = struct{}{}
		}
	}
	return &Gate{allowed: allowed}
}

// IsAdmin reports whether the email is on the allow-list. Matching is
// case-insensitive; callers must never echo the list back on denial.
func (g *Gate) IsAdmin(email string) bool {
	_, ok := g.allowed[strings.ToLower(strings.TrimSpace(email))]
	return ok
}
