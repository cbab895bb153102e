// Package guard decides whether a session may reach a protected view. It
// is a pure predicate over session state: no store of its own, no I/O.
package guard

import "admin-dashboard/internal/models"

// CanAccess reports whether sess may access a view. Admin-only views
// additionally require the authenticated user to be an admin.
func CanAccess(sess models.Session, requiresAdmin bool) bool {
	if !sess.IsAuthenticated {
		return false
	}
	if requiresAdmin {
		return sess.User != nil && sess.User.IsAdmin
	}
	return true
}
