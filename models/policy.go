// fotohub/models/policy.go
package models

import "database/sql"

// Actor is the per-request snapshot of the caller's identity. It is resolved
// fresh from the session token and the users table on every request, so role
// changes take effect on the next request. It must never outlive the request.
type Actor struct {
	ID            int64
	Username      string
	Authenticated bool
	Superuser     bool
	Moderator     bool
}

// Anonymous is the actor for unauthenticated requests.
var Anonymous = Actor{}

// IsStaff reports whether the actor holds moderation rights.
func (a Actor) IsStaff() bool {
	return a.Superuser || a.Moderator
}

// CanView decides image visibility. Public images are visible to everyone,
// including anonymous callers. Private images are visible only to the owner,
// superusers, and moderators.
func CanView(a Actor, img *Image) bool {
	if !img.IsPrivate {
		return true
	}
	if !a.Authenticated {
		return false
	}
	if img.UserID.Valid && img.UserID.Int64 == a.ID {
		return true
	}
	return a.IsStaff()
}

// CanModify decides edit/delete rights over owned content (images, albums).
// Owners, superusers and moderators may mutate; a null owner means guest
// content that only staff can touch.
func CanModify(a Actor, ownerID sql.NullInt64) bool {
	if !a.Authenticated {
		return false
	}
	if ownerID.Valid && ownerID.Int64 == a.ID {
		return true
	}
	return a.IsStaff()
}
