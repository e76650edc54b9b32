package watch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mj1618/dump-hierarchy/internal/model"
	"github.com/mj1618/dump-hierarchy/internal/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// chanSource serves events from a channel; a value on fail ends the loop.
type chanSource struct {
	events chan model.AccessibilityEvent
	fail   chan error
}

func newChanSource() *chanSource {
	return &chanSource{events: make(chan model.AccessibilityEvent), fail: make(chan error, 1)}
}

func (s *chanSource) WaitForEvent(ctx context.Context, timeout time.Duration) (model.AccessibilityEvent, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case ev := <-s.events:
		return ev, nil
	case err := <-s.fail:
		return model.AccessibilityEvent{}, err
	case <-timer.C:
		return model.AccessibilityEvent{}, platform.ErrEventTimeout
	case <-ctx.Done():
		return model.AccessibilityEvent{}, ctx.Err()
	}
}

func startWatcher(t *testing.T, src platform.EventSource) (*Watcher, context.CancelFunc, <-chan error) {
	t.Helper()
	w := New(src, 5*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	return w, cancel, done
}

func TestWatcher_EdgeTriggered(t *testing.T) {
	defer goleak.VerifyNone(t)
	src := newChanSource()
	w, cancel, done := startWatcher(t, src)

	assert.False(t, w.Consume())

	src.events <- model.AccessibilityEvent{ID: "1", Type: model.EventWindowContentChanged, Package: "com.example"}
	require.Eventually(t, func() bool {
		_, ok := w.LastEvent()
		return ok
	}, time.Second, time.Millisecond)

	assert.True(t, w.Consume())
	assert.False(t, w.Consume())
	assert.False(t, w.Consume())

	// two changes before a consume still read as one
	src.events <- model.AccessibilityEvent{ID: "2", Type: model.EventWindowContentChanged}
	src.events <- model.AccessibilityEvent{ID: "3", Type: model.EventWindowContentChanged}
	require.Eventually(t, func() bool {
		ev, _ := w.LastEvent()
		return ev.ID == "3"
	}, time.Second, time.Millisecond)
	assert.True(t, w.Consume())
	assert.False(t, w.Consume())

	cancel()
	assert.NoError(t, <-done)
}

func TestWatcher_IgnoresOtherEventTypes(t *testing.T) {
	defer goleak.VerifyNone(t)
	src := newChanSource()
	w, cancel, done := startWatcher(t, src)

	src.events <- model.AccessibilityEvent{ID: "1", Type: model.EventViewClicked}
	src.events <- model.AccessibilityEvent{ID: "2", Type: model.EventWindowStateChanged}
	// the unbuffered send above returns once the loop has taken the event,
	// so one more round trip guarantees both were processed
	src.events <- model.AccessibilityEvent{ID: "3", Type: model.EventViewTextChanged}

	assert.False(t, w.Consume())
	_, ok := w.LastEvent()
	assert.False(t, ok)

	cancel()
	assert.NoError(t, <-done)
}

func TestWatcher_SurvivesTimeoutsAndStopsOnFailure(t *testing.T) {
	defer goleak.VerifyNone(t)
	src := newChanSource()
	w, cancel, done := startWatcher(t, src)
	defer cancel()

	time.Sleep(30 * time.Millisecond) // several timeouts
	src.events <- model.AccessibilityEvent{ID: "1", Type: model.EventWindowContentChanged}
	require.Eventually(t, func() bool {
		_, ok := w.LastEvent()
		return ok
	}, time.Second, time.Millisecond)

	boom := errors.New("event source disconnected")
	src.fail <- boom
	select {
	case err := <-done:
		assert.ErrorIs(t, err, boom)
	case <-time.After(time.Second):
		t.Fatal("watch loop did not stop on source failure")
	}
	assert.True(t, w.Consume(), "flag survives the loop ending")
}

func TestWatcher_OnChange(t *testing.T) {
	defer goleak.VerifyNone(t)
	src := newChanSource()
	w := New(src, 5*time.Millisecond, nil)
	var calls atomic.Int32
	w.OnChange(func(model.AccessibilityEvent) { calls.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	src.events <- model.AccessibilityEvent{Type: model.EventWindowContentChanged}
	src.events <- model.AccessibilityEvent{Type: model.EventViewClicked}
	src.events <- model.AccessibilityEvent{Type: model.EventWindowContentChanged}
	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
