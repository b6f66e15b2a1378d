package resource

import (
	"math/rand/v2"
	"slices"

	task_domain "github.com/IoTMirror/GoogleWebService/internal/domain/task"
)

// TaskSelection is the quota-bounded subset of a user's tasks.
type TaskSelection struct {
	Timed   []task_domain.Task `json:"timed"`
	Untimed []task_domain.Task `json:"untimed"`
}

// Shuffler reorders untimed tasks in place before they are cut to size.
type Shuffler func(tasks []task_domain.Task)

func RandomShuffle(tasks []task_domain.Task) {
	rand.Shuffle(len(tasks), func(i, j int) {
		tasks[i], tasks[j] = tasks[j], tasks[i]
	})
}

// SelectTasks picks at most quota tasks. Timed tasks get at least half the quota,
// more when there are too few untimed ones to fill the rest:
//
//	timed   = min(max(quota/2, quota-untimedCount), timedCount)
//	untimed = min(quota-timed, untimedCount)
//
// Timed tasks are the earliest due; untimed ones are a shuffled sample.
func SelectTasks(tasks []task_domain.Task, quota int, shuffle Shuffler) TaskSelection {
	timed := make([]task_domain.Task, 0, len(tasks))
	untimed := make([]task_domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Timed() {
			timed = append(timed, t)
		} else {
			untimed = append(untimed, t)
		}
	}

	if quota <= 0 {
		return TaskSelection{Timed: []task_domain.Task{}, Untimed: []task_domain.Task{}}
	}

	slices.SortStableFunc(timed, func(a, b task_domain.Task) int {
		return a.DueTime().Compare(b.DueTime())
	})
	if shuffle != nil {
		shuffle(untimed)
	}

	timedCount := min(max(quota/2, quota-len(untimed)), len(timed))
	untimedCount := min(quota-timedCount, len(untimed))

	return TaskSelection{
		Timed:   timed[:timedCount],
		Untimed: untimed[:untimedCount],
	}
}
