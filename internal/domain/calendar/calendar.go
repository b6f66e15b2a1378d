package calendar

import (
	"context"
	"time"

	"github.com/IoTMirror/GoogleWebService/internal/pagination"
)

type Calendar struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title"`
}

// Event is a normalized calendar event. Start and End hold either an all-day date
// (2006-01-02) or an RFC 3339 timestamp.
type Event struct {
	Title        string    `json:"title"`
	Start        string    `json:"start"`
	End          string    `json:"end"`
	Location     string    `json:"location,omitempty"`
	Creator      string    `json:"creator,omitempty"`
	Organizer    string    `json:"organizer,omitempty"`
	CalendarInfo *Calendar `json:"calendar_info,omitempty"`
}

type EventQuery struct {
	CalendarID string
	TimeMin    time.Time
	PageSize   int64
}

// API lists calendars and upcoming event instances, one page per call.
type API interface {
	ListCalendars(ctx context.Context, cursor string) (pagination.Page[Calendar], error)
	ListEvents(ctx context.Context, query EventQuery, cursor string) (pagination.Page[Event], error)
}
