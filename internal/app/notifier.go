package app

import (
	"fmt"
	"io"
	"strings"

	"itdash/internal/dash"
)

// ConsoleNotifier prints notifications as short status lines, the terminal
// counterpart of the dashboard's toasts.
type ConsoleNotifier struct {
	w io.Writer
}

func NewConsoleNotifier(w io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{w: w}
}

func (n *ConsoleNotifier) Notify(note dash.Notification) {
	fmt.Fprintf(n.w, "[%s] %s\n", note.Kind, note.Title)
	if note.Message == "" {
		return
	}
	for _, line := range strings.Split(note.Message, "\n") {
		fmt.Fprintf(n.w, "    %s\n", line)
	}
}
