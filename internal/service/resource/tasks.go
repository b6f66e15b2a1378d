// Package resource aggregates a user's tasks, upcoming events and unread mail from
// the per-user Google APIs.
package resource

import (
	"context"

	"golang.org/x/sync/errgroup"

	task_domain "github.com/IoTMirror/GoogleWebService/internal/domain/task"
	"github.com/IoTMirror/GoogleWebService/internal/pagination"
)

// fetchConcurrency bounds the per-container requests in flight for one aggregation.
const fetchConcurrency = 4

type TaskOptions struct {
	WithTaskIDs  bool
	WithListInfo bool
	// WithListIDs keeps the list id inside the list info annotation.
	WithListIDs bool
}

// FetchTasks returns every incomplete task of every task list, grouped by list in
// the order the lists were returned.
func FetchTasks(ctx context.Context, api task_domain.API, opts TaskOptions) ([]task_domain.Task, error) {
	lists, err := pagination.Collect(ctx, api.ListTaskLists, 0)
	if err != nil {
		return nil, err
	}

	perList := make([][]task_domain.Task, len(lists))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, list := range lists {
		g.Go(func() error {
			tasks, err := pagination.Collect(gctx, func(ctx context.Context, cursor string) (pagination.Page[task_domain.Task], error) {
				return api.ListTasks(ctx, list.ID, cursor)
			}, 0)
			if err != nil {
				return err
			}
			perList[i] = annotateTasks(tasks, list, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []task_domain.Task
	for _, tasks := range perList {
		all = append(all, tasks...)
	}
	return all, nil
}

func annotateTasks(tasks []task_domain.Task, list task_domain.TaskList, opts TaskOptions) []task_domain.Task {
	for i := range tasks {
		if !opts.WithTaskIDs {
			tasks[i].ID = ""
		}
		if opts.WithListInfo {
			info := task_domain.TaskList{Title: list.Title}
			if opts.WithListIDs {
				info.ID = list.ID
			}
			tasks[i].TaskListInfo = &info
		}
	}
	return tasks
}
