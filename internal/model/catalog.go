package model

import "strconv"

// Resource describes one backend collection the dashboard manages.
type Resource struct {
	Name  string // command and permission name, e.g. "tasks"
	Label string // singular display label, e.g. "Task"
	Path  string // endpoint path relative to the base URL
}

// Catalog lists every collection, in the order they appear in the dashboard menu.
var Catalog = []Resource{
	{Name: "projects", Label: "Project", Path: "projects"},
	{Name: "tasks", Label: "Task", Path: "tasks"},
	{Name: "members", Label: "Member", Path: "members"},
	{Name: "clients", Label: "Client", Path: "clients"},
	{Name: "teams", Label: "Team", Path: "teams"},
	{Name: "expenses", Label: "Expense", Path: "expenses"},
	{Name: "time-entries", Label: "Time entry", Path: "time-entries"},
	{Name: "events", Label: "Event", Path: "events"},
	{Name: "tickets", Label: "Ticket", Path: "tickets"},
	{Name: "documents", Label: "Document", Path: "documents"},
	{Name: "trainings", Label: "Training", Path: "trainings"},
	{Name: "announcements", Label: "Announcement", Path: "announcements"},
	{Name: "leave-requests", Label: "Leave request", Path: "leave-requests"},
}

// Lookup returns the catalog entry with the given name.
func Lookup(name string) (Resource, bool) {
	for _, r := range Catalog {
		if r.Name == name {
			return r, true
		}
	}
	return Resource{}, false
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
