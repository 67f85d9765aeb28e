package model

import "strconv"

// Member is a person on the IT staff.
type Member struct {
	ID         int64  `json:"id,omitempty"`
	Name       string `json:"name" validate:"notblank"`
	Email      string `json:"email" validate:"notblank"`
	Role       string `json:"role" validate:"notblank"`
	Department string `json:"department" validate:"notblank"`
	Phone      string `json:"phone"`
}

func (m Member) RecordID() int64 { return m.ID }

func (m Member) SearchFields() []string {
	return []string{m.Name, m.Email, m.Role, m.Department}
}

func (Member) Header() []string {
	return []string{"ID", "NAME", "EMAIL", "ROLE", "DEPARTMENT"}
}

func (m Member) Row() []string {
	return []string{formatID(m.ID), m.Name, m.Email, m.Role, m.Department}
}

// Client is a customer organisation.
type Client struct {
	ID      int64  `json:"id,omitempty"`
	Name    string `json:"name" validate:"notblank"`
	Email   string `json:"email" validate:"notblank"`
	Phone   string `json:"phone" validate:"notblank"`
	Company string `json:"company" validate:"notblank"`
	Address string `json:"address" validate:"notblank"`
}

func (c Client) RecordID() int64 { return c.ID }

func (c Client) SearchFields() []string {
	return []string{c.Name, c.Email, c.Company}
}

func (Client) Header() []string {
	return []string{"ID", "NAME", "EMAIL", "PHONE", "COMPANY"}
}

func (c Client) Row() []string {
	return []string{formatID(c.ID), c.Name, c.Email, c.Phone, c.Company}
}

// Team is a named group of members.
type Team struct {
	ID          int64  `json:"id,omitempty"`
	Name        string `json:"name" validate:"notblank"`
	Lead        string `json:"lead" validate:"notblank"`
	Description string `json:"description"`
	Size        int    `json:"size" validate:"gte=0"`
}

func (t Team) RecordID() int64 { return t.ID }

func (t Team) SearchFields() []string {
	return []string{t.Name, t.Lead}
}

func (Team) Header() []string {
	return []string{"ID", "NAME", "LEAD", "SIZE"}
}

func (t Team) Row() []string {
	return []string{formatID(t.ID), t.Name, t.Lead, strconv.Itoa(t.Size)}
}

// LeaveRequest is a member's request for time off.
type LeaveRequest struct {
	ID        int64  `json:"id,omitempty"`
	Employee  string `json:"employee" validate:"notblank"`
	LeaveType string `json:"leave_type" validate:"notblank"`
	StartDate string `json:"start_date" validate:"notblank"`
	EndDate   string `json:"end_date" validate:"notblank"`
	Reason    string `json:"reason" validate:"notblank"`
	Status    string `json:"status" validate:"notblank"`
}

func (l LeaveRequest) RecordID() int64 { return l.ID }

func (l LeaveRequest) SearchFields() []string {
	return []string{l.Employee, l.LeaveType, l.Status}
}

func (LeaveRequest) Header() []string {
	return []string{"ID", "EMPLOYEE", "TYPE", "START", "END", "STATUS"}
}

func (l LeaveRequest) Row() []string {
	return []string{formatID(l.ID), l.Employee, l.LeaveType, l.StartDate, l.EndDate, l.Status}
}
