package dash

// NotificationKind classifies a user-facing notification.
type NotificationKind string

const (
	NotifySuccess     NotificationKind = "success"
	NotifyError       NotificationKind = "error"
	NotifyDestructive NotificationKind = "destructive"
	NotifyValidation  NotificationKind = "validation"
)

// Notification is a transient message shown to the user, the equivalent of
// a toast in the web dashboard.
type Notification struct {
	Kind    NotificationKind
	Title   string
	Message string
}

// Notifier displays notifications.
type Notifier interface {
	Notify(n Notification)
}

// NopNotifier drops every notification.
type NopNotifier struct{}

func (NopNotifier) Notify(Notification) {}
