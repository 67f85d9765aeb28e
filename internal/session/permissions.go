package session

import "itdash/internal/model"

// Actions a permission can grant on a resource.
const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionEdit   = "edit"
	ActionDelete = "delete"
)

// Permissions that are not tied to a catalog resource.
const (
	PermViewDashboard = "view:dashboard"
	PermViewCalendar  = "view:calendar"
)

// Permission returns the permission name for action on resource, e.g. "edit:tasks".
func Permission(action, resource string) string {
	return action + ":" + resource
}

// AdminPermissions returns every known permission. Admins pass every check
// regardless; the list is stored so the identity record is self-describing.
func AdminPermissions() []string {
	perms := []string{PermViewDashboard, PermViewCalendar}
	for _, r := range model.Catalog {
		for _, action := range []string{ActionView, ActionCreate, ActionEdit, ActionDelete} {
			perms = append(perms, Permission(action, r.Name))
		}
	}
	return perms
}

// MemberPermissions is the fixed permission set granted to the member role.
func MemberPermissions() []string {
	return []string{
		PermViewDashboard,
		PermViewCalendar,
		"view:projects",
		"view:tasks",
		"create:tasks",
		"edit:tasks",
		"view:members",
		"view:teams",
		"view:events",
		"view:announcements",
		"view:time-entries",
		"create:time-entries",
		"edit:time-entries",
		"view:expenses",
		"create:expenses",
		"view:tickets",
		"create:tickets",
		"view:documents",
		"view:trainings",
		"view:leave-requests",
		"create:leave-requests",
	}
}
