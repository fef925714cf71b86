package scheduler

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"automod-bot/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	taskType string
	payload  map[string]any
}

type fakeInvoker struct {
	mu     sync.Mutex
	calls  []recordedCall
	result string
	err    error
}

func (f *fakeInvoker) Invoke(taskType string, payload map[string]any) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recordedCall{taskType: taskType, payload: payload})
	return f.result, f.err
}

func (f *fakeInvoker) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeInvoker) callOrder() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	order := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		order = append(order, c.payload["tag"].(string))
	}
	return order
}

func newTestScheduler(t *testing.T, invoker model.Invoker) *Scheduler {
	t.Helper()
	s := New(invoker, nil, nil, model.SchedulerConfig{})
	s.Start()
	t.Cleanup(s.Stop)
	return s
}

func waitForStatus(t *testing.T, s *Scheduler, id string, status model.TaskStatus) model.ScheduledTask {
	t.Helper()
	var task model.ScheduledTask
	require.Eventually(t, func() bool {
		var err error
		task, err = s.Get(id)
		return err == nil && task.Status == status
	}, 2*time.Second, 5*time.Millisecond)
	return task
}

func TestSubmitRejectsUnknownTaskType(t *testing.T) {
	invoker := &fakeInvoker{}
	s := newTestScheduler(t, invoker)

	_, err := s.Submit("ban_user", nil, time.Now())
	require.ErrorIs(t, err, model.ErrValidation)
	assert.Equal(t, 0, invoker.callCount())
}

func TestSubmitAssignsMonotonicIDs(t *testing.T) {
	s := newTestScheduler(t, &fakeInvoker{})

	id1, err := s.Submit("send_message", nil, time.Now().Add(time.Hour))
	require.NoError(t, err)
	id2, err := s.Submit("send_message", nil, time.Now().Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, "1", id1)
	assert.Equal(t, "2", id2)
}

func TestZeroDelayExecutesImmediately(t *testing.T) {
	invoker := &fakeInvoker{result: "done"}
	s := newTestScheduler(t, invoker)

	start := time.Now()
	id, err := s.SubmitAfter("send_message", map[string]any{"tag": "a"}, 0)
	require.NoError(t, err)

	task := waitForStatus(t, s, id, model.TaskCompleted)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, "done", task.Result)
	assert.Equal(t, 1, invoker.callCount())
}

func TestPastRunAtExecutesImmediately(t *testing.T) {
	invoker := &fakeInvoker{}
	s := newTestScheduler(t, invoker)

	id, err := s.Submit("send_message", map[string]any{"tag": "past"}, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	waitForStatus(t, s, id, model.TaskCompleted)
	assert.Equal(t, 1, invoker.callCount())
}

func TestEarlierTaskFiresFirst(t *testing.T) {
	invoker := &fakeInvoker{}
	s := newTestScheduler(t, invoker)

	// Submitted late-first; the queue must reorder by run time.
	idLate, err := s.Submit("send_message", map[string]any{"tag": "late"}, time.Now().Add(120*time.Millisecond))
	require.NoError(t, err)
	idEarly, err := s.Submit("send_message", map[string]any{"tag": "early"}, time.Now().Add(20*time.Millisecond))
	require.NoError(t, err)

	waitForStatus(t, s, idLate, model.TaskCompleted)
	waitForStatus(t, s, idEarly, model.TaskCompleted)
	assert.Equal(t, []string{"early", "late"}, invoker.callOrder())
}

func TestFailedTaskIsTerminal(t *testing.T) {
	invoker := &fakeInvoker{err: fmt.Errorf("boom")}
	s := newTestScheduler(t, invoker)

	id, err := s.SubmitAfter("bulk_add_roles", map[string]any{"tag": "f"}, 0)
	require.NoError(t, err)

	task := waitForStatus(t, s, id, model.TaskFailed)
	assert.Equal(t, "boom", task.Error)

	// No retry: the invoker saw the task exactly once.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, invoker.callCount())

	task, err = s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, model.TaskFailed, task.Status)
}

func TestCancelBeforeDueDropsTask(t *testing.T) {
	invoker := &fakeInvoker{}
	s := newTestScheduler(t, invoker)

	id, err := s.Submit("send_message", map[string]any{"tag": "c"}, time.Now().Add(60*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, s.Cancel(id))

	// Let the timer fire; the popped entry finds no record and is dropped.
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, 0, invoker.callCount())

	_, err = s.Get(id)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestCancelUnknownTask(t *testing.T) {
	s := newTestScheduler(t, &fakeInvoker{})
	require.ErrorIs(t, s.Cancel("404"), model.ErrNotFound)
}

func TestResultTruncation(t *testing.T) {
	long := make([]byte, 0, 500)
	for i := 0; i < 500; i++ {
		long = append(long, 'x')
	}
	invoker := &fakeInvoker{result: string(long)}
	s := newTestScheduler(t, invoker)

	id, err := s.SubmitAfter("send_message", nil, 0)
	require.NoError(t, err)

	task := waitForStatus(t, s, id, model.TaskCompleted)
	assert.Len(t, task.Result, 203) // 200 runes plus "..."
}

func TestListOrderedByID(t *testing.T) {
	s := newTestScheduler(t, &fakeInvoker{})

	for i := 0; i < 3; i++ {
		_, err := s.Submit("send_message", nil, time.Now().Add(time.Hour))
		require.NoError(t, err)
	}

	tasks := s.List()
	require.Len(t, tasks, 3)
	assert.Equal(t, "1", tasks[0].ID)
	assert.Equal(t, "2", tasks[1].ID)
	assert.Equal(t, "3", tasks[2].ID)
	assert.Equal(t, 3, s.PendingCount())
}

func TestMaxPendingLimit(t *testing.T) {
	s := New(&fakeInvoker{}, nil, nil, model.SchedulerConfig{MaxPending: 1})
	s.Start()
	t.Cleanup(s.Stop)

	_, err := s.Submit("send_message", nil, time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = s.Submit("send_message", nil, time.Now().Add(time.Hour))
	require.ErrorIs(t, err, model.ErrValidation)
}
