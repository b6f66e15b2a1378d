package resource

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	calendar_domain "github.com/IoTMirror/GoogleWebService/internal/domain/calendar"
	gmail_domain "github.com/IoTMirror/GoogleWebService/internal/domain/gmail"
	task_domain "github.com/IoTMirror/GoogleWebService/internal/domain/task"
	"github.com/IoTMirror/GoogleWebService/internal/pagination"
)

// paged serves items in pages of size, using the item offset as the cursor.
func paged[T any](items []T, size int, cursor string) (pagination.Page[T], error) {
	start := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil {
			return pagination.Page[T]{}, fmt.Errorf("bad cursor %q", cursor)
		}
		start = n
	}
	end := min(start+size, len(items))
	page := pagination.Page[T]{Items: append([]T(nil), items[start:end]...)}
	if end < len(items) {
		page.NextCursor = strconv.Itoa(end)
	}
	return page, nil
}

type fakeTaskAPI struct {
	lists    []task_domain.TaskList
	tasks    map[string][]task_domain.Task
	pageSize int
	failList string
}

func (f *fakeTaskAPI) ListTaskLists(_ context.Context, cursor string) (pagination.Page[task_domain.TaskList], error) {
	return paged(f.lists, f.pageSize, cursor)
}

func (f *fakeTaskAPI) ListTasks(_ context.Context, listID, cursor string) (pagination.Page[task_domain.Task], error) {
	if listID == f.failList {
		return pagination.Page[task_domain.Task]{}, fmt.Errorf("list %s unavailable", listID)
	}
	return paged(f.tasks[listID], f.pageSize, cursor)
}

type fakeCalendarAPI struct {
	cals     []calendar_domain.Calendar
	events   map[string][]calendar_domain.Event
	pageSize int

	mu      sync.Mutex
	queries []calendar_domain.EventQuery
}

func (f *fakeCalendarAPI) ListCalendars(_ context.Context, cursor string) (pagination.Page[calendar_domain.Calendar], error) {
	return paged(f.cals, f.pageSize, cursor)
}

func (f *fakeCalendarAPI) ListEvents(_ context.Context, q calendar_domain.EventQuery, cursor string) (pagination.Page[calendar_domain.Event], error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	return paged(f.events[q.CalendarID], f.pageSize, cursor)
}

type fakeGmail struct {
	refs     []gmail_domain.MessageRef
	headers  map[string][]gmail_domain.Header
	pageSize int

	mu       sync.Mutex
	cursors  []string
	metadata []string
}

func (f *fakeGmail) ListUnreadInbox(_ context.Context, cursor string, _ int64) (pagination.Page[gmail_domain.MessageRef], error) {
	f.mu.Lock()
	f.cursors = append(f.cursors, cursor)
	f.mu.Unlock()
	return paged(f.refs, f.pageSize, cursor)
}

func (f *fakeGmail) GetMetadata(_ context.Context, id string, _ []string) ([]gmail_domain.Header, error) {
	f.mu.Lock()
	f.metadata = append(f.metadata, id)
	f.mu.Unlock()
	h, ok := f.headers[id]
	if !ok {
		return nil, fmt.Errorf("message %s not found", id)
	}
	return h, nil
}
