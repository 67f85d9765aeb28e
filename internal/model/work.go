package model

import "strconv"

// Task is a unit of work assigned to a member.
type Task struct {
	ID          int64  `json:"id,omitempty"`
	Title       string `json:"title" validate:"notblank"`
	Description string `json:"description" validate:"notblank"`
	AssignedTo  string `json:"assignedto" validate:"notblank"`
	DueDate     string `json:"duedate" validate:"notblank"`
	Priority    string `json:"priority" validate:"notblank"`
	Status      string `json:"status" validate:"notblank"`
}

func (t Task) RecordID() int64 { return t.ID }

func (t Task) SearchFields() []string {
	return []string{t.Title, t.Description, t.AssignedTo}
}

func (Task) Header() []string {
	return []string{"ID", "TITLE", "ASSIGNED TO", "DUE", "PRIORITY", "STATUS"}
}

func (t Task) Row() []string {
	return []string{formatID(t.ID), t.Title, t.AssignedTo, t.DueDate, t.Priority, t.Status}
}

// Project groups tasks delivered for a client.
type Project struct {
	ID          int64   `json:"id,omitempty"`
	Name        string  `json:"name" validate:"notblank"`
	Description string  `json:"description" validate:"notblank"`
	Client      string  `json:"client" validate:"notblank"`
	StartDate   string  `json:"start_date" validate:"notblank"`
	EndDate     string  `json:"end_date" validate:"notblank"`
	Status      string  `json:"status" validate:"notblank"`
	Budget      float64 `json:"budget" validate:"gte=0"`
}

func (p Project) RecordID() int64 { return p.ID }

func (p Project) SearchFields() []string {
	return []string{p.Name, p.Client, p.Status}
}

func (Project) Header() []string {
	return []string{"ID", "NAME", "CLIENT", "START", "END", "STATUS", "BUDGET"}
}

func (p Project) Row() []string {
	return []string{formatID(p.ID), p.Name, p.Client, p.StartDate, p.EndDate, p.Status, formatNumber(p.Budget)}
}

// TimeEntry records hours a member spent on a project task.
type TimeEntry struct {
	ID      int64   `json:"id,omitempty"`
	Member  string  `json:"member" validate:"notblank"`
	Project string  `json:"project" validate:"notblank"`
	Task    string  `json:"task" validate:"notblank"`
	Date    string  `json:"date" validate:"notblank"`
	Hours   float64 `json:"hours" validate:"gte=0"`
}

func (e TimeEntry) RecordID() int64 { return e.ID }

func (e TimeEntry) SearchFields() []string {
	return []string{e.Member, e.Project, e.Task}
}

func (TimeEntry) Header() []string {
	return []string{"ID", "MEMBER", "PROJECT", "TASK", "DATE", "HOURS"}
}

func (e TimeEntry) Row() []string {
	return []string{formatID(e.ID), e.Member, e.Project, e.Task, e.Date, formatNumber(e.Hours)}
}

// Expense is a cost submitted for reimbursement.
type Expense struct {
	ID          int64   `json:"id,omitempty"`
	Description string  `json:"description" validate:"notblank"`
	Category    string  `json:"category" validate:"notblank"`
	Amount      float64 `json:"amount" validate:"gte=0"`
	Date        string  `json:"date" validate:"notblank"`
	SubmittedBy string  `json:"submitted_by" validate:"notblank"`
}

func (e Expense) RecordID() int64 { return e.ID }

func (e Expense) SearchFields() []string {
	return []string{e.Description, e.Category, e.SubmittedBy}
}

func (Expense) Header() []string {
	return []string{"ID", "DESCRIPTION", "CATEGORY", "AMOUNT", "DATE", "SUBMITTED BY"}
}

func (e Expense) Row() []string {
	return []string{formatID(e.ID), e.Description, e.Category, formatNumber(e.Amount), e.Date, e.SubmittedBy}
}

// Ticket is a support request raised with the IT team.
type Ticket struct {
	ID          int64  `json:"id,omitempty"`
	Subject     string `json:"subject" validate:"notblank"`
	Description string `json:"description" validate:"notblank"`
	Requester   string `json:"requester" validate:"notblank"`
	Priority    string `json:"priority" validate:"notblank"`
	Status      string `json:"status" validate:"notblank"`
}

func (t Ticket) RecordID() int64 { return t.ID }

func (t Ticket) SearchFields() []string {
	return []string{t.Subject, t.Requester, t.Status}
}

func (Ticket) Header() []string {
	return []string{"ID", "SUBJECT", "REQUESTER", "PRIORITY", "STATUS"}
}

func (t Ticket) Row() []string {
	return []string{formatID(t.ID), t.Subject, t.Requester, t.Priority, t.Status}
}

// Training is a scheduled course.
type Training struct {
	ID          int64  `json:"id,omitempty"`
	Title       string `json:"title" validate:"notblank"`
	Instructor  string `json:"instructor" validate:"notblank"`
	Date        string `json:"date" validate:"notblank"`
	Duration    int    `json:"duration" validate:"gte=0"` // minutes
	Description string `json:"description"`
}

func (t Training) RecordID() int64 { return t.ID }

func (t Training) SearchFields() []string {
	return []string{t.Title, t.Instructor}
}

func (Training) Header() []string {
	return []string{"ID", "TITLE", "INSTRUCTOR", "DATE", "MINUTES"}
}

func (t Training) Row() []string {
	return []string{formatID(t.ID), t.Title, t.Instructor, t.Date, strconv.Itoa(t.Duration)}
}
