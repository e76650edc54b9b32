package input

import (
	"sync"
	"testing"
	"time"

	"github.com/mj1618/dump-hierarchy/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordingInjector struct {
	mu     sync.Mutex
	events []model.PointerEvent
	reject map[model.PointerAction]bool
}

func (r *recordingInjector) InjectPointer(ev model.PointerEvent) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return !r.reject[ev.Action]
}

func (r *recordingInjector) actions() []model.PointerAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.PointerAction, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Action
	}
	return out
}

func newTestSequencer() (*Sequencer, *recordingInjector, *FakeClock) {
	inj := &recordingInjector{}
	clock := NewFakeClock(10 * time.Second)
	synth := NewSynthesizer(inj, clock, nil)
	return NewSequencer(synth, DefaultDelays), inj, clock
}

func TestClick_DownThenUpWithSharedDownTime(t *testing.T) {
	seq, inj, clock := newTestSequencer()

	require.True(t, seq.Click(100, 200))
	require.Equal(t, []model.PointerAction{model.ActionDown, model.ActionUp}, inj.actions())

	down, up := inj.events[0], inj.events[1]
	assert.Equal(t, down.EventTime, down.DownTime)
	assert.Equal(t, down.EventTime, up.DownTime)
	assert.Equal(t, 50*time.Millisecond, up.EventTime-down.EventTime)
	for _, ev := range inj.events {
		p := ev.Primary()
		assert.Equal(t, 100.0, p.X)
		assert.Equal(t, 200.0, p.Y)
		assert.Equal(t, 1.0, p.Pressure)
		assert.Equal(t, 1.0, p.Size)
	}
	assert.Equal(t, []time.Duration{50 * time.Millisecond}, clock.Sleeps())
}

func TestClick_InjectionFailure(t *testing.T) {
	seq, inj, _ := newTestSequencer()
	inj.reject = map[model.PointerAction]bool{model.ActionUp: true}

	assert.False(t, seq.Click(1, 2))
	assert.Len(t, inj.events, 2, "up is still attempted after a failure")
}

func TestSwipe_MovesInOrderWithEvenSpacing(t *testing.T) {
	seq, inj, clock := newTestSequencer()
	steps := []Point{{X: 100, Y: 900}, {X: 100, Y: 600}, {X: 100, Y: 300}}

	ok, err := seq.Swipe(Point{X: 100, Y: 1200}, steps, 300*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)

	require.Equal(t, []model.PointerAction{
		model.ActionDown, model.ActionMove, model.ActionMove, model.ActionMove, model.ActionUp,
	}, inj.actions())

	down := inj.events[0]
	assert.Equal(t, 1200.0, down.Primary().Y)
	for i, step := range steps {
		move := inj.events[i+1]
		assert.Equal(t, float64(step.Y), move.Primary().Y, "move %d", i)
		assert.Equal(t, down.DownTime, move.DownTime)
		assert.Equal(t, time.Duration(i)*100*time.Millisecond, move.EventTime-down.EventTime)
	}
	up := inj.events[4]
	assert.Equal(t, 300.0, up.Primary().Y)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 100 * time.Millisecond, 100 * time.Millisecond}, clock.Sleeps())
}

func TestSwipe_NoSteps(t *testing.T) {
	seq, inj, _ := newTestSequencer()
	_, err := seq.Swipe(Point{X: 1, Y: 1}, nil, time.Second)
	assert.Error(t, err)
	assert.Empty(t, inj.events)
}

func TestGesture_MoveAfterUp(t *testing.T) {
	inj := &recordingInjector{}
	synth := NewSynthesizer(inj, NewFakeClock(0), nil)

	g, ok := synth.Down(5, 5)
	require.True(t, ok)
	assert.True(t, g.Active())

	ok, err := g.Up(5, 5)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, g.Active())

	_, err = g.Move(6, 6)
	assert.ErrorIs(t, err, ErrNoActiveGesture)
	_, err = g.Up(6, 6)
	assert.ErrorIs(t, err, ErrNoActiveGesture)
	assert.Len(t, inj.events, 2)
}

func TestMultiPointer_EventSequence(t *testing.T) {
	seq, inj, clock := newTestSequencer()
	a := []Point{{X: 500, Y: 500}, {X: 400, Y: 400}, {X: 300, Y: 300}, {X: 200, Y: 200}}
	b := []Point{{X: 600, Y: 600}, {X: 700, Y: 700}}

	ok, err := seq.MultiPointer(a, b)
	require.NoError(t, err)
	require.True(t, ok)

	require.Equal(t, []model.PointerAction{
		model.ActionDown,
		model.ActionPointerDown,
		model.ActionMove,
		model.ActionMove,
		model.ActionPointerUp,
		model.ActionUp,
	}, inj.actions())

	ev := inj.events
	assert.Len(t, ev[0].Pointers, 1)
	assert.Len(t, ev[1].Pointers, 2)
	assert.Equal(t, 1, ev[1].ActionIndex)

	// second move: track a at step 2, track b holds its last point
	assert.Equal(t, 300.0, ev[3].Pointers[0].X)
	assert.Equal(t, 700.0, ev[3].Pointers[1].X)
	assert.Equal(t, 1, ev[3].Pointers[1].ID)

	// lifts happen at each track's final point
	assert.Equal(t, 200.0, ev[4].Pointers[0].X)
	assert.Equal(t, 700.0, ev[4].Pointers[1].X)
	assert.Len(t, ev[5].Pointers, 1)
	assert.Equal(t, 200.0, ev[5].Pointers[0].X)

	for _, e := range ev {
		assert.Equal(t, ev[0].DownTime, e.DownTime)
	}
	assert.Equal(t, []time.Duration{5 * time.Millisecond, 5 * time.Millisecond}, clock.Sleeps())
}

func TestMultiPointer_ANDsEveryInjection(t *testing.T) {
	seq, inj, _ := newTestSequencer()
	inj.reject = map[model.PointerAction]bool{model.ActionPointerUp: true}

	ok, err := seq.MultiPointer([]Point{{X: 1, Y: 1}}, []Point{{X: 2, Y: 2}})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, model.ActionUp, inj.actions()[len(inj.events)-1], "final up still injected")
}

func TestMultiPointer_Validation(t *testing.T) {
	seq, inj, _ := newTestSequencer()

	_, err := seq.MultiPointer([]Point{{X: 1, Y: 1}})
	assert.Error(t, err)

	_, err = seq.MultiPointer([]Point{{X: 1, Y: 1}}, nil)
	assert.Error(t, err)
	assert.Empty(t, inj.events)
}

func TestTracker_Sessions(t *testing.T) {
	seq, inj, clock := newTestSequencer()
	tr := NewTracker(seq)

	_, err := tr.Move("", 1, 1)
	assert.ErrorIs(t, err, ErrNoActiveGesture)
	_, err = tr.Up("a", 1, 1)
	assert.ErrorIs(t, err, ErrNoActiveGesture)

	require.True(t, tr.Down("a", 10, 10))
	clock.Advance(time.Second)
	require.True(t, tr.Down("b", 20, 20))
	assert.True(t, tr.Active("a"))
	assert.True(t, tr.Active("b"))

	ok, err := tr.Up("a", 10, 10)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, tr.Active("a"))

	ok, err = tr.Move("b", 25, 25)
	require.NoError(t, err)
	assert.True(t, ok)

	aDown, bDown, aUp, bMove := inj.events[0], inj.events[1], inj.events[2], inj.events[3]
	assert.Equal(t, aDown.EventTime, aUp.DownTime)
	assert.Equal(t, bDown.EventTime, bMove.DownTime)
	assert.NotEqual(t, aUp.DownTime, bMove.DownTime)
}

func TestTracker_DefaultSession(t *testing.T) {
	seq, _, _ := newTestSequencer()
	tr := NewTracker(seq)

	require.True(t, tr.Down("", 1, 1))
	assert.True(t, tr.Active(DefaultSession))
	_, err := tr.Up(DefaultSession, 1, 1)
	require.NoError(t, err)
	assert.False(t, tr.Active(""))
}

func TestTracker_DownOnActiveSessionLogsReplacement(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	synth := NewSynthesizer(&recordingInjector{}, NewFakeClock(time.Second), zap.New(core))
	tr := NewTracker(NewSequencer(synth, DefaultDelays))

	require.True(t, tr.Down("a", 1, 1))
	assert.Zero(t, logs.FilterMessage("replacing active gesture without lifting it").Len())

	require.True(t, tr.Down("a", 5, 5))
	entries := logs.FilterMessage("replacing active gesture without lifting it").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].ContextMap()["session"])
	assert.True(t, tr.Active("a"))
}
