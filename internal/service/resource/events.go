package resource

import (
	"context"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	calendar_domain "github.com/IoTMirror/GoogleWebService/internal/domain/calendar"
	"github.com/IoTMirror/GoogleWebService/internal/pagination"
)

const (
	dateLayout      = "2006-01-02"
	naiveTimeLayout = "2006-01-02T15:04:05"
)

type EventOptions struct {
	WithCalendarInfo bool
	WithCalendarIDs  bool
}

// FetchEvents returns up to maxEvents upcoming events across all calendars, earliest first.
// A maxEvents of zero or less means no cap.
func FetchEvents(ctx context.Context, api calendar_domain.API, now time.Time, maxEvents int, opts EventOptions) ([]calendar_domain.Event, error) {
	cals, err := pagination.Collect(ctx, api.ListCalendars, 0)
	if err != nil {
		return nil, err
	}

	perCalendar := make([][]calendar_domain.Event, len(cals))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, cal := range cals {
		query := calendar_domain.EventQuery{CalendarID: cal.ID, TimeMin: now, PageSize: int64(max(maxEvents, 0))}
		g.Go(func() error {
			events, err := pagination.Collect(gctx, func(ctx context.Context, cursor string) (pagination.Page[calendar_domain.Event], error) {
				return api.ListEvents(ctx, query, cursor)
			}, maxEvents)
			if err != nil {
				return err
			}
			perCalendar[i] = annotateEvents(events, cal, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return MergeEvents(perCalendar, maxEvents), nil
}

// MergeEvents concatenates per-calendar results, sorts them by start instant and
// keeps the first limit. Events with equal starts keep their calendar order.
func MergeEvents(perCalendar [][]calendar_domain.Event, limit int) []calendar_domain.Event {
	merged := make([]calendar_domain.Event, 0)
	for _, events := range perCalendar {
		merged = append(merged, events...)
	}

	slices.SortStableFunc(merged, func(a, b calendar_domain.Event) int {
		return compareStarts(a.Start, b.Start)
	})
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

func annotateEvents(events []calendar_domain.Event, cal calendar_domain.Calendar, opts EventOptions) []calendar_domain.Event {
	if !opts.WithCalendarInfo {
		return events
	}
	for i := range events {
		info := calendar_domain.Calendar{Title: cal.Title}
		if opts.WithCalendarIDs {
			info.ID = cal.ID
		}
		events[i].CalendarInfo = &info
	}
	return events
}

// compareStarts orders unparsable starts after every parsable one.
func compareStarts(a, b string) int {
	ta, okA := ParseEventTime(a)
	tb, okB := ParseEventTime(b)
	switch {
	case okA && okB:
		return ta.Compare(tb)
	case okA:
		return -1
	case okB:
		return 1
	default:
		return 0
	}
}

// ParseEventTime reads an all-day date as UTC midnight, an RFC 3339 timestamp with
// its offset, and a timestamp without offset as UTC.
func ParseEventTime(value string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation(naiveTimeLayout, value, time.UTC); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation(dateLayout, value, time.UTC); err == nil {
		return t, true
	}
	return time.Time{}, false
}
