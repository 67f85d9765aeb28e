package app

import "time"

// Operation tracks one CLI command for the log. Each run gets a RunID that
// prefixes every log line it writes.
type Operation struct {
	Name       string
	Parameters string
	RunID      string
	StartedAt  time.Time
	Status     string // "success" or "error"
}

// NewOperation creates an operation that has just started.
func NewOperation(name, parameters string, startedAt time.Time) *Operation {
	return &Operation{
		Name:       name,
		Parameters: parameters,
		RunID:      startedAt.UTC().Format("20060102T150405Z"),
		StartedAt:  startedAt,
		Status:     "success",
	}
}

// Finish records the command's outcome.
func (op *Operation) Finish(err error) {
	if err != nil {
		op.Status = "error"
	}
}
