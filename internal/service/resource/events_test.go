package resource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	calendar_domain "github.com/IoTMirror/GoogleWebService/internal/domain/calendar"
)

func titles(events []calendar_domain.Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Title)
	}
	return out
}

func TestMergeEvents_OrdersByInstantAcrossOffsets(t *testing.T) {
	merged := MergeEvents([][]calendar_domain.Event{
		{{Title: "utc ten", Start: "2024-05-01T10:00:00Z"}},
		{{Title: "berlin nine", Start: "2024-05-01T09:00:00+02:00"}},
	}, 10)

	assert.Equal(t, []string{"berlin nine", "utc ten"}, titles(merged))
}

func TestMergeEvents_DatesNaiveAndTruncation(t *testing.T) {
	merged := MergeEvents([][]calendar_domain.Event{
		{
			{Title: "naive", Start: "2024-05-01T12:00:00"},
			{Title: "all day", Start: "2024-05-01"},
			{Title: "garbage", Start: "someday"},
		},
		{
			{Title: "same start, second calendar", Start: "2024-05-01T00:00:00Z"},
			{Title: "late", Start: "2024-05-03T00:00:00Z"},
		},
	}, 4)

	assert.Equal(t, []string{"all day", "same start, second calendar", "naive", "late"}, titles(merged))
}

func TestMergeEvents_NoCap(t *testing.T) {
	merged := MergeEvents([][]calendar_domain.Event{{{Title: "a", Start: "2024-05-01"}}, {{Title: "b", Start: "2024-04-01"}}}, 0)
	assert.Equal(t, []string{"b", "a"}, titles(merged))
}

func TestParseEventTime(t *testing.T) {
	ts, ok := ParseEventTime("2024-05-01")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), ts)

	ts, ok = ParseEventTime("2024-05-01T10:30:00.250")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 30, 0, 250_000_000, time.UTC), ts)

	ts, ok = ParseEventTime("2024-05-01T10:00:00-05:00")
	require.True(t, ok)
	assert.True(t, ts.Equal(time.Date(2024, 5, 1, 15, 0, 0, 0, time.UTC)))

	_, ok = ParseEventTime("")
	assert.False(t, ok)
}

func TestFetchEvents(t *testing.T) {
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	api := &fakeCalendarAPI{
		cals: []calendar_domain.Calendar{{ID: "me", Title: "Me"}, {ID: "team", Title: "Team"}},
		events: map[string][]calendar_domain.Event{
			"me": {
				{Title: "m1", Start: "2024-05-01T09:00:00Z"},
				{Title: "m2", Start: "2024-05-02T09:00:00Z"},
				{Title: "m3", Start: "2024-05-03T09:00:00Z"},
			},
			"team": {
				{Title: "t1", Start: "2024-05-01T10:00:00+02:00"},
				{Title: "t2", Start: "2024-05-02"},
			},
		},
		pageSize: 2,
	}

	events, err := FetchEvents(context.Background(), api, now, 3, EventOptions{WithCalendarInfo: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"t1", "m1", "t2"}, titles(events))
	assert.Equal(t, &calendar_domain.Calendar{Title: "Team"}, events[0].CalendarInfo)
	for _, q := range api.queries {
		assert.Equal(t, now, q.TimeMin)
		assert.Equal(t, int64(3), q.PageSize)
	}
}

func TestFetchEvents_CalendarIDsInInfo(t *testing.T) {
	api := &fakeCalendarAPI{
		cals:     []calendar_domain.Calendar{{ID: "me", Title: "Me"}},
		events:   map[string][]calendar_domain.Event{"me": {{Title: "m1", Start: "2024-05-01"}}},
		pageSize: 10,
	}

	events, err := FetchEvents(context.Background(), api, time.Now(), 10, EventOptions{WithCalendarInfo: true, WithCalendarIDs: true})
	require.NoError(t, err)
	assert.Equal(t, &calendar_domain.Calendar{ID: "me", Title: "Me"}, events[0].CalendarInfo)
}

func TestFetchEvents_NoCalendars(t *testing.T) {
	events, err := FetchEvents(context.Background(), &fakeCalendarAPI{pageSize: 10}, time.Now(), 10, EventOptions{})
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}
