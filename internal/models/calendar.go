package models

// Recurrence repeats an event every Interval units of Frequency.
type Recurrence struct {
	Frequency string `json:"frequency"`
	Interval  int    `json:"interval"`
}

// CalendarEvent is an entry on the institution calendar. Dates are
// YYYY-MM-DD and times HH:MM as exchanged with the backend.
type CalendarEvent struct {
	ID          string      `json:"_id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Type        EventType   `json:"type"`
	StartDate   string      `json:"startDate"`
	EndDate     string      `json:"endDate"`
	StartTime   string      `json:"startTime,omitempty"`
	EndTime     string      `json:"endTime,omitempty"`
	AllDay      bool        `json:"allDay"`
	Location    string      `json:"location,omitempty"`
	Recurrence  *Recurrence `json:"recurrence,omitempty"`
	Institution Ref         `json:"institution"`
}
