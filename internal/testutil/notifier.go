package testutil

import (
	"sync"

	"itdash/internal/dash"
)

// RecordingNotifier keeps every notification it receives. Safe for concurrent use.
type RecordingNotifier struct {
	mu   sync.Mutex
	sent []dash.Notification
}

func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

func (n *RecordingNotifier) Notify(note dash.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, note)
}

// All returns a copy of every notification in the order received.
func (n *RecordingNotifier) All() []dash.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]dash.Notification(nil), n.sent...)
}

// Last returns the most recent notification. ok is false when none were sent.
func (n *RecordingNotifier) Last() (note dash.Notification, ok bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return dash.Notification{}, false
	}
	return n.sent[len(n.sent)-1], true
}

// Kinds returns the kind of every notification in order.
func (n *RecordingNotifier) Kinds() []dash.NotificationKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	kinds := make([]dash.NotificationKind, len(n.sent))
	for i, note := range n.sent {
		kinds[i] = note.Kind
	}
	return kinds
}
