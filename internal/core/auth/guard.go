package auth

import (
	"github.com/recordhub/records-api/internal/core/domain"
)

// Guard is a named authorization predicate evaluated against the principal
// and an optional resource. Check returns nil to allow.
type Guard struct {
	Name  string
	Check func(principal *domain.Account, resource domain.Owned) error
}

var (
	// RequireAdmin allows admins only.
	RequireAdmin = Guard{
		Name: "admin",
		Check: func(p *domain.Account, _ domain.Owned) error {
			if !p.IsAdmin {
				return domain.Errorf(domain.ErrForbidden, "admin privileges required")
			}
			return nil
		},
	}

	// RequireOwner allows the owner of the resource only.
	RequireOwner = Guard{
		Name: "owner",
		Check: func(p *domain.Account, r domain.Owned) error {
			if r == nil || r.Owner() != p.ID {
				return domain.Errorf(domain.ErrForbidden, "you don't have permission to modify this record")
			}
			return nil
		},
	}

	// RequireActive rejects deactivated principals.
	RequireActive = Guard{
		Name: "active",
		Check: func(p *domain.Account, _ domain.Owned) error {
			if !p.IsActive {
				return domain.ErrAccountDeleted
			}
			return nil
		},
	}
)

// RequireSelf allows the principal to act on its own account only.
func RequireSelf(targetID int64) Guard {
	return Guard{
		Name: "self",
		Check: func(p *domain.Account, _ domain.Owned) error {
			if p.ID != targetID {
				return domain.Errorf(domain.ErrForbidden, "you can update only your own profile")
			}
			return nil
		},
	}
}

// Authorize runs guards in order and returns the first failure. A nil
// principal is unauthenticated.
func Authorize(principal *domain.Account, resource domain.Owned, guards ...Guard) error {
	if principal == nil {
		return domain.Errorf(domain.ErrUnauthenticated, "authentication required")
	}
	for _, g := range guards {
		if err := g.Check(principal, resource); err != nil {
			return err
		}
	}
	return nil
}

// CheckRoleChange validates that admin may set target's admin flag to
// makeAdmin. Admins cannot change their own status, inactive accounts cannot
// be changed, and redundant toggles are rejected.
func CheckRoleChange(admin, target *domain.Account, makeAdmin bool) error {
	if err := Authorize(admin, nil, RequireAdmin); err != nil {
		return err
	}
	if target.ID == admin.ID {
		return domain.Errorf(domain.ErrForbidden, "admins cannot change their own admin status")
	}
	if !target.IsActive {
		return domain.Errorf(domain.ErrBadRequest, "user %s is deleted", target.Name)
	}
	if target.IsAdmin == makeAdmin {
		if makeAdmin {
			return domain.Errorf(domain.ErrBadRequest, "user %s is already an admin", target.Name)
		}
		return domain.Errorf(domain.ErrBadRequest, "user %s is not an admin", target.Name)
	}
	return nil
}
