package google

import (
	"context"

	tasksapi "google.golang.org/api/tasks/v1"

	task_domain "github.com/IoTMirror/GoogleWebService/internal/domain/task"
	"github.com/IoTMirror/GoogleWebService/internal/pagination"
)

const tasksPageSize = 100

type taskAPI struct {
	svc *tasksapi.Service
}

var _ task_domain.API = (*taskAPI)(nil)

func NewTaskAPI(svc *tasksapi.Service) task_domain.API {
	return &taskAPI{svc: svc}
}

func (a *taskAPI) ListTaskLists(ctx context.Context, cursor string) (pagination.Page[task_domain.TaskList], error) {
	call := a.svc.Tasklists.List().MaxResults(tasksPageSize).Context(ctx)
	if cursor != "" {
		call = call.PageToken(cursor)
	}
	resp, err := call.Do()
	if err != nil {
		return pagination.Page[task_domain.TaskList]{}, Classify(err)
	}

	lists := make([]task_domain.TaskList, 0, len(resp.Items))
	for _, l := range resp.Items {
		lists = append(lists, task_domain.TaskList{ID: l.Id, Title: l.Title})
	}
	return pagination.Page[task_domain.TaskList]{Items: lists, NextCursor: resp.NextPageToken}, nil
}

// ListTasks returns one page of the list's incomplete tasks.
func (a *taskAPI) ListTasks(ctx context.Context, taskListID, cursor string) (pagination.Page[task_domain.Task], error) {
	call := a.svc.Tasks.List(taskListID).ShowCompleted(false).MaxResults(tasksPageSize).Context(ctx)
	if cursor != "" {
		call = call.PageToken(cursor)
	}
	resp, err := call.Do()
	if err != nil {
		return pagination.Page[task_domain.Task]{}, Classify(err)
	}

	tasks := make([]task_domain.Task, 0, len(resp.Items))
	for _, t := range resp.Items {
		tasks = append(tasks, task_domain.Task{ID: t.Id, Title: t.Title, Due: t.Due})
	}
	return pagination.Page[task_domain.Task]{Items: tasks, NextCursor: resp.NextPageToken}, nil
}
