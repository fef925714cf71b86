package scheduler

import (
	"container/heap"
	"fmt"
	"log"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"automod-bot/model"
	"automod-bot/utils/database"

	"github.com/jmoiron/sqlx"
)

// allowedTaskTypes is the explicit allow-list of schedulable actions. Keeping
// it small bounds the blast radius of deferred bulk operations.
var allowedTaskTypes = map[string]bool{
	"send_message":        true,
	"bulk_add_roles":      true,
	"bulk_modify_members": true,
}

const defaultResultMaxLength = 200

// Scheduler manages deferred one-shot tasks. A single loop goroutine sleeps
// until the earliest pending run time; due tasks execute through the shared
// action invoker. Completed and failed are terminal and never retried.
type Scheduler struct {
	invoker model.Invoker
	logger  model.ChannelLogger
	db      *sqlx.DB

	mu      sync.Mutex
	tasks   map[string]*model.ScheduledTask
	queue   taskQueue
	counter atomic.Int64

	wake chan struct{}
	done chan struct{}
	wg   sync.WaitGroup

	maxPending      int
	resultMaxLength int
}

// New creates a stopped scheduler. db may be nil to disable the terminal-state
// audit trail; logger may be nil to disable channel logging.
func New(invoker model.Invoker, logger model.ChannelLogger, db *sqlx.DB, cfg model.SchedulerConfig) *Scheduler {
	resultMax := cfg.ResultMaxLength
	if resultMax <= 0 {
		resultMax = defaultResultMaxLength
	}
	return &Scheduler{
		invoker:         invoker,
		logger:          logger,
		db:              db,
		tasks:           make(map[string]*model.ScheduledTask),
		queue:           make(taskQueue, 0),
		wake:            make(chan struct{}, 1),
		done:            make(chan struct{}),
		maxPending:      cfg.MaxPending,
		resultMaxLength: resultMax,
	}
}

// Start launches the scheduler loop.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
}

// Stop terminates the scheduler loop and waits for in-flight executions.
func (s *Scheduler) Stop() {
	log.Println("Stopping task scheduler...")
	close(s.done)
	s.wg.Wait()
	log.Println("Task scheduler stopped.")
}

// Submit validates and records a new task and schedules its execution. A run
// time in the past executes immediately; the delay floor is zero, never
// negative.
func (s *Scheduler) Submit(taskType string, payload map[string]any, runAt time.Time) (string, error) {
	if !allowedTaskTypes[taskType] {
		return "", fmt.Errorf("%w: unsupported task_type %q", model.ErrValidation, taskType)
	}
	if runAt.IsZero() {
		return "", fmt.Errorf("%w: run_at is required", model.ErrValidation)
	}
	if payload == nil {
		payload = make(map[string]any)
	}

	s.mu.Lock()
	if s.maxPending > 0 {
		pending := 0
		for _, t := range s.tasks {
			if !t.Status.Terminal() {
				pending++
			}
		}
		if pending >= s.maxPending {
			s.mu.Unlock()
			return "", fmt.Errorf("%w: too many pending tasks", model.ErrValidation)
		}
	}

	task := &model.ScheduledTask{
		ID:        strconv.FormatInt(s.counter.Add(1), 10),
		Type:      taskType,
		Payload:   payload,
		RunAt:     runAt.UTC(),
		CreatedAt: time.Now().UTC(),
		Status:    model.TaskScheduled,
	}
	s.tasks[task.ID] = task
	heap.Push(&s.queue, queueItem{taskID: task.ID, runAt: task.RunAt})
	s.mu.Unlock()

	s.signal()
	log.Printf("Scheduled task %s (%s) for %s", task.ID, taskType, task.RunAt.Format(time.RFC3339))
	return task.ID, nil
}

// SubmitAfter schedules a task relative to now. Negative delays floor at zero.
func (s *Scheduler) SubmitAfter(taskType string, payload map[string]any, delay time.Duration) (string, error) {
	if delay < 0 {
		delay = 0
	}
	return s.Submit(taskType, payload, time.Now().UTC().Add(delay))
}

// Get returns a copy of the task record.
func (s *Scheduler) Get(id string) (model.ScheduledTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return model.ScheduledTask{}, fmt.Errorf("%w: task %s", model.ErrNotFound, id)
	}
	return *task, nil
}

// List returns all known task records ordered by id.
func (s *Scheduler) List() []model.ScheduledTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ScheduledTask, 0, len(s.tasks))
	for _, task := range s.tasks {
		out = append(out, *task)
	}
	sort.Slice(out, func(i, j int) bool {
		a, _ := strconv.ParseInt(out[i].ID, 10, 64)
		b, _ := strconv.ParseInt(out[j].ID, 10, 64)
		return a < b
	})
	return out
}

// Cancel removes a still-scheduled task. The timer entry stays in the queue;
// when it pops, the missing record makes it a no-op. Running and terminal
// tasks cannot be cancelled.
func (s *Scheduler) Cancel(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("%w: task %s", model.ErrNotFound, id)
	}
	if task.Status != model.TaskScheduled {
		return fmt.Errorf("%w: task %s is %s and cannot be cancelled", model.ErrValidation, id, task.Status)
	}
	delete(s.tasks, id)
	return nil
}

// PendingCount reports non-terminal tasks, for status displays.
func (s *Scheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.Status.Terminal() {
			n++
		}
	}
	return n
}

func (s *Scheduler) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		s.mu.Lock()
		var wait time.Duration
		hasNext := s.queue.Len() > 0
		if hasNext {
			wait = time.Until(s.queue[0].runAt)
			if wait < 0 {
				wait = 0
			}
		}
		s.mu.Unlock()

		if !hasNext {
			select {
			case <-s.wake:
				continue
			case <-s.done:
				return
			}
		}

		timer.Reset(wait)
		select {
		case <-timer.C:
			s.fireDue()
		case <-s.wake:
			// A task with an earlier run time may have arrived; recompute.
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		case <-s.done:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			return
		}
	}
}

// fireDue pops every queue entry whose run time has passed and executes the
// surviving task records.
func (s *Scheduler) fireDue() {
	now := time.Now()
	for {
		s.mu.Lock()
		if s.queue.Len() == 0 || s.queue[0].runAt.After(now) {
			s.mu.Unlock()
			return
		}
		item := heap.Pop(&s.queue).(queueItem)
		task, ok := s.tasks[item.taskID]
		if !ok || task.Status != model.TaskScheduled {
			// Cancelled before the timer fired, or a stale entry.
			s.mu.Unlock()
			continue
		}
		task.Status = model.TaskRunning
		s.mu.Unlock()

		s.wg.Add(1)
		go func(id string) {
			defer s.wg.Done()
			s.execute(id)
		}(item.taskID)
	}
}

func (s *Scheduler) execute(id string) {
	s.mu.Lock()
	task, ok := s.tasks[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	taskType := task.Type
	payload := task.Payload
	s.mu.Unlock()

	result, err := s.invoker.Invoke(taskType, payload)

	s.mu.Lock()
	task, ok = s.tasks[id]
	if !ok || task.Status.Terminal() {
		s.mu.Unlock()
		return
	}
	if err != nil {
		task.Status = model.TaskFailed
		task.Error = err.Error()
	} else {
		task.Status = model.TaskCompleted
		task.Result = truncate(result, s.resultMaxLength)
	}
	record := *task
	s.mu.Unlock()

	if err != nil {
		log.Printf("Scheduled task %s failed: %v", id, err)
		if s.logger != nil {
			s.logger.Log("ERROR", "Scheduler", "Task", fmt.Sprintf("task %s (%s) failed: %v", id, taskType, err))
		}
	} else {
		log.Printf("Scheduled task %s completed", id)
	}

	if s.db != nil {
		if dbErr := database.RecordTask(s.db, record); dbErr != nil {
			log.Printf("Error recording task %s: %v", id, dbErr)
		}
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
