package model

// Event is a calendar entry. Date is an ISO date (2006-01-02).
type Event struct {
	ID          int64  `json:"id,omitempty"`
	Title       string `json:"title" validate:"notblank"`
	Date        string `json:"date" validate:"notblank"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

func (e Event) RecordID() int64 { return e.ID }

func (e Event) SearchFields() []string {
	return []string{e.Title, e.Location, e.Description}
}

func (Event) Header() []string {
	return []string{"ID", "TITLE", "DATE", "TIME", "LOCATION"}
}

func (e Event) Row() []string {
	return []string{formatID(e.ID), e.Title, e.Date, e.Time, e.Location}
}

// Announcement is a message broadcast to all staff.
type Announcement struct {
	ID      int64  `json:"id,omitempty"`
	Title   string `json:"title" validate:"notblank"`
	Content string `json:"content" validate:"notblank"`
	Author  string `json:"author" validate:"notblank"`
	Date    string `json:"date" validate:"notblank"`
}

func (a Announcement) RecordID() int64 { return a.ID }

func (a Announcement) SearchFields() []string {
	return []string{a.Title, a.Content, a.Author}
}

func (Announcement) Header() []string {
	return []string{"ID", "TITLE", "AUTHOR", "DATE"}
}

func (a Announcement) Row() []string {
	return []string{formatID(a.ID), a.Title, a.Author, a.Date}
}

// Document is a link to a shared file.
type Document struct {
	ID       int64  `json:"id,omitempty"`
	Title    string `json:"title" validate:"notblank"`
	Category string `json:"category" validate:"notblank"`
	URL      string `json:"url" validate:"notblank"`
	Owner    string `json:"owner" validate:"notblank"`
}

func (d Document) RecordID() int64 { return d.ID }

func (d Document) SearchFields() []string {
	return []string{d.Title, d.Category, d.Owner}
}

func (Document) Header() []string {
	return []string{"ID", "TITLE", "CATEGORY", "OWNER", "URL"}
}

func (d Document) Row() []string {
	return []string{formatID(d.ID), d.Title, d.Category, d.Owner, d.URL}
}
