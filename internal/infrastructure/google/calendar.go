package google

import (
	"context"
	"time"

	calendarapi "google.golang.org/api/calendar/v3"

	calendar_domain "github.com/IoTMirror/GoogleWebService/internal/domain/calendar"
	"github.com/IoTMirror/GoogleWebService/internal/pagination"
)

const calendarListPageSize = 100

type calendarAPI struct {
	svc *calendarapi.Service
}

var _ calendar_domain.API = (*calendarAPI)(nil)

func NewCalendarAPI(svc *calendarapi.Service) calendar_domain.API {
	return &calendarAPI{svc: svc}
}

func (a *calendarAPI) ListCalendars(ctx context.Context, cursor string) (pagination.Page[calendar_domain.Calendar], error) {
	call := a.svc.CalendarList.List().MaxResults(calendarListPageSize).Context(ctx)
	if cursor != "" {
		call = call.PageToken(cursor)
	}
	resp, err := call.Do()
	if err != nil {
		return pagination.Page[calendar_domain.Calendar]{}, Classify(err)
	}

	cals := make([]calendar_domain.Calendar, 0, len(resp.Items))
	for _, c := range resp.Items {
		title := c.SummaryOverride
		if title == "" {
			title = c.Summary
		}
		cals = append(cals, calendar_domain.Calendar{ID: c.Id, Title: title})
	}
	return pagination.Page[calendar_domain.Calendar]{Items: cals, NextCursor: resp.NextPageToken}, nil
}

// ListEvents returns one page of single (expanded) events ordered by start time.
func (a *calendarAPI) ListEvents(ctx context.Context, q calendar_domain.EventQuery, cursor string) (pagination.Page[calendar_domain.Event], error) {
	call := a.svc.Events.List(q.CalendarID).
		TimeMin(q.TimeMin.UTC().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxAttendees(1).
		Context(ctx)
	if q.PageSize > 0 {
		call = call.MaxResults(q.PageSize)
	}
	if cursor != "" {
		call = call.PageToken(cursor)
	}
	resp, err := call.Do()
	if err != nil {
		return pagination.Page[calendar_domain.Event]{}, Classify(err)
	}

	events := make([]calendar_domain.Event, 0, len(resp.Items))
	for _, e := range resp.Items {
		ev := calendar_domain.Event{
			Title:    e.Summary,
			Start:    eventTime(e.Start),
			End:      eventTime(e.End),
			Location: e.Location,
		}
		if e.Creator != nil {
			ev.Creator = displayName(e.Creator.DisplayName, e.Creator.Email)
		}
		if e.Organizer != nil {
			ev.Organizer = displayName(e.Organizer.DisplayName, e.Organizer.Email)
		}
		events = append(events, ev)
	}
	return pagination.Page[calendar_domain.Event]{Items: events, NextCursor: resp.NextPageToken}, nil
}

// eventTime prefers the all-day date over the timed dateTime.
func eventTime(t *calendarapi.EventDateTime) string {
	if t == nil {
		return ""
	}
	if t.Date != "" {
		return t.Date
	}
	return t.DateTime
}

func displayName(name, email string) string {
	if name != "" {
		return name
	}
	return email
}
