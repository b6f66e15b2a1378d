package task

import (
	"context"
	"time"

	"github.com/IoTMirror/GoogleWebService/internal/pagination"
)

type TaskList struct {
	Title string `json:"title"`
	ID    string `json:"id,omitempty"`
}

type Task struct {
	Title        string    `json:"title"`
	Due          string    `json:"due,omitempty"`
	ID           string    `json:"id,omitempty"`
	TaskListInfo *TaskList `json:"tasklist_info,omitempty"`
}

// Timed reports whether the task carries a due date.
func (t Task) Timed() bool {
	return t.Due != ""
}

// DueTime parses Due. Untimed or unparsable tasks yield the zero time.
func (t Task) DueTime() time.Time {
	if t.Due == "" {
		return time.Time{}
	}
	due, err := time.Parse(time.RFC3339, t.Due)
	if err != nil {
		return time.Time{}
	}
	return due
}

// API lists task lists and the non-completed tasks of a list, one page per call.
type API interface {
	ListTaskLists(ctx context.Context, cursor string) (pagination.Page[TaskList], error)
	ListTasks(ctx context.Context, taskListID, cursor string) (pagination.Page[Task], error)
}
