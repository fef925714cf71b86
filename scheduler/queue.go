package scheduler

import "time"

// queueItem is a pending timer entry. The task record itself lives in the
// scheduler's map; a popped item whose record is gone was cancelled and is
// silently dropped.
type queueItem struct {
	taskID string
	runAt  time.Time
}

// taskQueue is a min-heap over run times, so the scheduler loop always sleeps
// until the earliest pending task.
type taskQueue []queueItem

func (q taskQueue) Len() int            { return len(q) }
func (q taskQueue) Less(i, j int) bool  { return q[i].runAt.Before(q[j].runAt) }
func (q taskQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *taskQueue) Push(x any)         { *q = append(*q, x.(queueItem)) }
func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
