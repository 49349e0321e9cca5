// Package policy is the single place role rules are evaluated.
package policy

import (
	"fmt"

	"github.com/geocoder89/valehub/internal/domain"
	"github.com/geocoder89/valehub/internal/domain/user"
)

type Action string

const (
	ListUsers   Action = "users:list"
	CreateUser  Action = "users:create"
	UpdateUser  Action = "users:update"
	DeleteUser  Action = "users:delete"
	ListVouch   Action = "vouchers:list"
	ReadVouch   Action = "vouchers:read"
	CreateVouch Action = "vouchers:create"
	UpdateVouch Action = "vouchers:update"
	DeleteVouch Action = "vouchers:delete"
	ToggleVouch Action = "vouchers:toggle"
	ListYears   Action = "years:list"
)

type Actor struct {
	UserID string
	Role   user.Role
}

func ActorOf(u user.User) Actor {
	return Actor{UserID: u.ID, Role: u.Role}
}

// Target identifies whose record an action touches. An empty OwnerID means
// "all records", which only admins may ask for.
type Target struct {
	OwnerID string
}

// Own is the target for an actor reading their own records.
func Own(a Actor) Target {
	return Target{OwnerID: a.UserID}
}

// employee actions that are allowed on the actor's own records
var employeeOwn = map[Action]bool{
	ListVouch: true,
	ReadVouch: true,
}

// Authorize returns nil when actor may perform action on target, and an
// error wrapping domain.ErrUnauthorized otherwise.
func Authorize(actor Actor, action Action, target Target) error {
	if actor.UserID == "" {
		return deny(action)
	}

	switch actor.Role {
	case user.RoleAdmin:
		return nil
	case user.RoleEmployee:
		if action == ListYears {
			return nil
		}
		if employeeOwn[action] && target.OwnerID != "" && target.OwnerID == actor.UserID {
			return nil
		}
	}

	return deny(action)
}

func deny(action Action) error {
	return fmt.Errorf("%s: %w", action, domain.ErrUnauthorized)
}

// GuardRemoval rejects deleting the primary admin or the last admin.
func GuardRemoval(primaryAdminID string) user.Guard {
	return func(target user.User, adminCount int) error {
		if primaryAdminID != "" && target.ID == primaryAdminID {
			return user.ErrPrimaryAdmin
		}
		if target.IsAdmin() && adminCount <= 1 {
			return user.ErrLastAdmin
		}
		return nil
	}
}

// GuardRoleChange rejects demoting the primary admin or the last admin.
func GuardRoleChange(primaryAdminID string, newRole user.Role) user.Guard {
	return func(target user.User, adminCount int) error {
		if !target.IsAdmin() || newRole == user.RoleAdmin {
			return nil
		}
		if primaryAdminID != "" && target.ID == primaryAdminID {
			return user.ErrPrimaryAdmin
		}
		if adminCount <= 1 {
			return user.ErrLastAdmin
		}
		return nil
	}
}
