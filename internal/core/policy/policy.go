// Package policy decides whether an identity may act on a user record.
//
// Every function here is pure: callers gather whatever facts a decision needs
// (such as the current admin count) and pass them in. Nothing in this package
// touches storage or mutates state.
package policy

import (
	"slices"

	"github.com/gabrielmilitaosantos/acquisitions/internal/core/domain"
)

// Decision is the outcome of a policy check. A denial always carries a
// Reason and a human-readable Message.
type Decision struct {
	Allowed bool
	Reason  domain.Reason
	Message string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason domain.Reason, message string) Decision {
	return Decision{Reason: reason, Message: message}
}

// Err converts a denial into a *domain.ForbiddenError. It returns nil for an
// allowed decision.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &domain.ForbiddenError{Reason: d.Reason, Message: d.Message}
}

// CanView allows any authenticated identity to read any user.
func CanView(_ domain.Identity, _ int64) bool {
	return true
}

// CanListAll allows only admins to list every user.
func CanListAll(id domain.Identity) bool {
	return id.IsAdmin()
}

// ListAll is CanListAll expressed as a Decision.
func ListAll(id domain.Identity) Decision {
	if !CanListAll(id) {
		return deny(domain.ReasonNotAdmin, "Insufficient permissions")
	}
	return allow()
}

// CanUpdate checks ownership first, then whether a non-admin is trying to
// touch the role field.
func CanUpdate(id domain.Identity, targetID int64, fields []string) Decision {
	if !id.IsAdmin() && id.ID != targetID {
		return deny(domain.ReasonNotSelf, "You can only update your own information")
	}
	if !id.IsAdmin() && slices.Contains(fields, domain.FieldRole) {
		return deny(domain.ReasonRoleChange, "Only administrators can change user roles")
	}
	return allow()
}

// CanDelete checks ownership, then refuses to let the last admin delete
// their own account. adminCount is only consulted for an admin deleting
// themself.
func CanDelete(id domain.Identity, targetID int64, adminCount int) Decision {
	if !id.IsAdmin() && id.ID != targetID {
		return deny(domain.ReasonNotSelf, "You can only delete your own account")
	}
	if id.IsAdmin() && id.ID == targetID && adminCount <= 1 {
		return deny(domain.ReasonLastAdmin, "Cannot delete the last admin account")
	}
	return allow()
}

// CanDemote refuses to let the last admin drop their own admin role. It is
// only enforced when the last-admin demotion guard is switched on.
func CanDemote(id domain.Identity, targetID int64, changes domain.UserChanges, adminCount int) Decision {
	if id.IsAdmin() && id.ID == targetID && changes.Demotes() && adminCount <= 1 {
		return deny(domain.ReasonLastAdmin, "Cannot remove the admin role from the last admin account")
	}
	return allow()
}

// NeedsAdminCount reports whether CanDelete will consult the admin count for
// this identity and target.
func NeedsAdminCount(id domain.Identity, targetID int64) bool {
	return id.IsAdmin() && id.ID == targetID
}
