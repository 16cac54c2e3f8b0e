package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dshills/encstatus/internal/logging"
)

func TestQueue_Run(t *testing.T) {
	q := NewQueue(logging.Null)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- q.Run(ctx) }()

	ran := make(chan struct{})
	q.Post(func() { panic("boom") })
	q.Post(func() { close(ran) })

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("posted function did not run")
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestQueue_DrainNextTick(t *testing.T) {
	q := NewQueue(logging.Null)
	var order []int
	q.Post(func() {
		order = append(order, 1)
		q.Post(func() { order = append(order, 2) })
	})

	if n := q.Drain(); n != 1 {
		t.Errorf("first Drain() = %d, want 1", n)
	}
	if n := q.Drain(); n != 1 {
		t.Errorf("second Drain() = %d, want 1", n)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("order = %v, want [1 2]", order)
	}
	q.Post(nil)
	if q.Len() != 0 {
		t.Errorf("Len() = %d after Post(nil), want 0", q.Len())
	}
}

func TestDispatcherFunc(t *testing.T) {
	calls := 0
	var d Dispatcher = DispatcherFunc(func(fn func()) { fn() })
	d.Post(func() { calls++ })
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
