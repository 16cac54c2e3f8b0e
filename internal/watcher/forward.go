package watcher

import (
	"context"

	"github.com/dshills/encstatus/internal/agent"
)

// Forward posts fn(ev) to d for every event until ctx is done or the watcher
// is closed. It blocks; run it on its own goroutine.
func Forward(ctx context.Context, w *Watcher, d agent.Dispatcher, fn func(Event)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events():
			if !ok {
				return ErrWatcherClosed
			}
			d.Post(func() { fn(ev) })
		}
	}
}
