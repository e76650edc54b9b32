// Package watch latches accessibility content changes for one-shot polling.
package watch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mj1618/dump-hierarchy/internal/model"
	"github.com/mj1618/dump-hierarchy/internal/platform"
	"go.uber.org/zap"
)

// DefaultEventTimeout bounds each wait on the event source.
const DefaultEventTimeout = time.Second

// Watcher consumes accessibility events and remembers whether the screen
// content changed since the last Consume.
type Watcher struct {
	source  platform.EventSource
	timeout time.Duration
	log     *zap.Logger

	changed atomic.Bool

	mu        sync.Mutex
	last      *model.AccessibilityEvent
	listeners []func(model.AccessibilityEvent)
}

// New creates a Watcher reading from source.
func New(source platform.EventSource, timeout time.Duration, log *zap.Logger) *Watcher {
	if timeout <= 0 {
		timeout = DefaultEventTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{source: source, timeout: timeout, log: log.Named("watch")}
}

// OnChange registers fn to be called, on the watch goroutine, for every
// content-changed event. Register listeners before calling Run.
func (w *Watcher) OnChange(fn func(model.AccessibilityEvent)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, fn)
}

// Run waits for events until ctx is done or the source fails. Timeouts are
// not failures; the loop simply waits again.
func (w *Watcher) Run(ctx context.Context) error {
	w.log.Info("change watch started", zap.Duration("event_timeout", w.timeout))
	for {
		ev, err := w.source.WaitForEvent(ctx, w.timeout)
		switch {
		case err == nil:
			if ev.Type == model.EventWindowContentChanged {
				w.record(ev)
			}
		case errors.Is(err, platform.ErrEventTimeout):
		case ctx.Err() != nil:
			w.log.Info("change watch stopped")
			return nil
		default:
			w.log.Error("change watch failed", zap.Error(err))
			return err
		}
	}
}

func (w *Watcher) record(ev model.AccessibilityEvent) {
	w.mu.Lock()
	w.last = &ev
	w.changed.Store(true)
	listeners := w.listeners
	w.mu.Unlock()

	w.log.Debug("content changed",
		zap.String("event_id", ev.ID),
		zap.String("package", ev.Package),
		zap.String("class", ev.ClassName))
	for _, fn := range listeners {
		fn(ev)
	}
}

// Consume reports whether a change was seen since the previous call and
// clears the flag.
func (w *Watcher) Consume() bool {
	return w.changed.Swap(false)
}

// LastEvent returns the most recent content-changed event.
func (w *Watcher) LastEvent() (model.AccessibilityEvent, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.last == nil {
		return model.AccessibilityEvent{}, false
	}
	return *w.last, true
}
