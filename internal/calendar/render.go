package calendar

import (
	"fmt"
	"io"
	"strings"
	"time"

	"itdash/internal/model"
)

// Render writes the grid for month with a '*' next to days that have
// events, followed by the list of the month's events.
func Render(w io.Writer, year int, month time.Month, weekStart time.Weekday, events []model.Event) error {
	var b strings.Builder

	title := fmt.Sprintf("%s %d", month, year)
	fmt.Fprintf(&b, "%*s\n", (7*4+len(title))/2, title)

	for d := range 7 {
		day := time.Weekday((int(weekStart) + d) % 7)
		fmt.Fprintf(&b, " %-3s", day.String()[:2])
	}
	b.WriteString("\n")

	for _, week := range MonthGrid(year, month, weekStart) {
		for _, day := range week {
			if !day.InMonth {
				b.WriteString("    ")
				continue
			}
			marker := " "
			if len(EventsOn(events, day.Date)) > 0 {
				marker = "*"
			}
			fmt.Fprintf(&b, " %2d%s", day.Date.Day(), marker)
		}
		b.WriteString("\n")
	}

	inMonth := EventsInMonth(events, year, month)
	if len(inMonth) > 0 {
		b.WriteString("\n")
	}
	for _, e := range inMonth {
		line := e.Date
		if e.Time != "" {
			line += " " + e.Time
		}
		line += "  " + e.Title
		if e.Location != "" {
			line += " (" + e.Location + ")"
		}
		b.WriteString(line + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
