package session

import (
	"slices"
	"time"
)

// Role is the coarse access level of an identity.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Identity is the authenticated user of the current session.
type Identity struct {
	Username    string    `json:"username"`
	Role        Role      `json:"role"`
	Permissions []string  `json:"permissions"`
	LoggedInAt  time.Time `json:"logged_in_at"`
}

// HasPermission reports whether the identity is granted name.
// Admins are granted everything; members only what is in their set.
func (i *Identity) HasPermission(name string) bool {
	if i == nil {
		return false
	}
	if i.Role == RoleAdmin {
		return true
	}
	return slices.Contains(i.Permissions, name)
}

func (i *Identity) clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	c.Permissions = slices.Clone(i.Permissions)
	return &c
}

// credential is one row of the mock login table.
type credential struct {
	password    string
	role        Role
	permissions func() []string
}

// credentials is the fixed login table. Authentication is a local mock;
// there is no server-side check.
var credentials = map[string]credential{
	"admin":  {password: "admin", role: RoleAdmin, permissions: AdminPermissions},
	"member": {password: "member", role: RoleMember, permissions: MemberPermissions},
}
