package agent

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/dshills/encstatus/internal/logging"
)

// Dispatcher runs functions on the host's UI goroutine at its next tick.
type Dispatcher interface {
	Post(fn func())
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(fn func())

// Post calls f(fn).
func (f DispatcherFunc) Post(fn func()) { f(fn) }

// Queue is a Dispatcher for hosts without a UI toolkit. Post may be called
// from any goroutine; queued functions run on the goroutine that calls
// Drain or Run.
type Queue struct {
	mu     sync.Mutex
	tasks  []func()
	wake   chan struct{}
	logger *logging.Logger
}

// NewQueue creates an empty queue.
func NewQueue(logger *logging.Logger) *Queue {
	return &Queue{
		wake:   make(chan struct{}, 1),
		logger: logging.OrDefault(logger).WithComponent("queue"),
	}
}

// Post queues fn for the next tick.
func (q *Queue) Post(fn func()) {
	if fn == nil {
		return
	}
	q.mu.Lock()
	q.tasks = append(q.tasks, fn)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Len returns the number of queued functions.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Drain runs the functions queued before the call and returns how many ran.
// Functions they post run on the following tick.
func (q *Queue) Drain() int {
	q.mu.Lock()
	tasks := q.tasks
	q.tasks = nil
	q.mu.Unlock()

	for _, fn := range tasks {
		q.run(fn)
	}
	return len(tasks)
}

func (q *Queue) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("panic in queued function: %v\n%s", r, debug.Stack())
		}
	}()
	fn()
}

// Run drains the queue whenever work is posted until ctx is done.
func (q *Queue) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.wake:
			for q.Drain() > 0 {
			}
		}
	}
}
