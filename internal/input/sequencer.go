package input

import (
	"fmt"
	"sync"
	"time"

	"github.com/mj1618/dump-hierarchy/internal/model"
	"go.uber.org/zap"
)

// Point is a screen coordinate in device pixels.
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Delays are the fixed pauses inside compound gestures.
type Delays struct {
	// Click is the pause between down and up of a click.
	Click time.Duration
	// MultiPointer is the pause after every move of a multi-pointer gesture.
	MultiPointer time.Duration
}

// DefaultDelays are the standard gesture pauses.
var DefaultDelays = Delays{Click: 50 * time.Millisecond, MultiPointer: 5 * time.Millisecond}

// Sequencer composes synthesizer calls into gestures. The input channel is
// a single logical resource, so every gesture, including the single steps
// driven through a Tracker, runs under one lock.
type Sequencer struct {
	mu     sync.Mutex
	synth  *Synthesizer
	delays Delays
}

// NewSequencer creates a Sequencer over synth.
func NewSequencer(synth *Synthesizer, delays Delays) *Sequencer {
	return &Sequencer{synth: synth, delays: delays}
}

// Click taps (x, y). It reports true only when both down and up were injected.
func (q *Sequencer) Click(x, y int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	g, downOK := q.synth.Down(float64(x), float64(y))
	q.synth.clock.Sleep(q.delays.Click)
	upOK, _ := g.Up(float64(x), float64(y))
	return downOK && upOK
}

// Swipe presses at start, moves through steps in order pausing
// duration/len(steps) after each move, and lifts at the last step.
func (q *Sequencer) Swipe(start Point, steps []Point, duration time.Duration) (bool, error) {
	if len(steps) == 0 {
		return false, fmt.Errorf("swipe needs at least one step")
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	interval := duration / time.Duration(len(steps))
	g, ok := q.synth.Down(float64(start.X), float64(start.Y))
	for _, p := range steps {
		moved, err := g.Move(float64(p.X), float64(p.Y))
		if err != nil {
			return false, err
		}
		ok = ok && moved
		q.synth.clock.Sleep(interval)
	}
	last := steps[len(steps)-1]
	up, err := g.Up(float64(last.X), float64(last.Y))
	if err != nil {
		return false, err
	}
	return ok && up, nil
}

// MultiPointer plays two or more pointer tracks at once. Every track starts
// with a down, tracks advance together one point per move, shorter tracks
// hold their last point, and secondary pointers lift before the primary.
func (q *Sequencer) MultiPointer(tracks ...[]Point) (bool, error) {
	if len(tracks) < 2 {
		return false, fmt.Errorf("multi-pointer gesture needs at least 2 pointers, got %d", len(tracks))
	}
	maxSteps := 0
	for i, t := range tracks {
		if len(t) == 0 {
			return false, fmt.Errorf("pointer %d has no coordinates", i)
		}
		maxSteps = max(maxSteps, len(t))
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	clock := q.synth.clock
	coords := make([]model.PointerCoords, len(tracks))
	for i, t := range tracks {
		coords[i] = pointerAt(i, t, 0)
	}
	downTime := clock.Now()
	emit := func(action model.PointerAction, index, count int) bool {
		pointers := make([]model.PointerCoords, count)
		copy(pointers, coords[:count])
		return q.synth.submit(model.PointerEvent{
			Action:      action,
			ActionIndex: index,
			Pointers:    pointers,
			DownTime:    downTime,
			EventTime:   clock.Now(),
		})
	}

	ok := emit(model.ActionDown, 0, 1)
	for i := 1; i < len(tracks); i++ {
		ok = emit(model.ActionPointerDown, i, i+1) && ok
	}
	for step := 1; step < maxSteps-1; step++ {
		for i, t := range tracks {
			coords[i] = pointerAt(i, t, step)
		}
		ok = emit(model.ActionMove, 0, len(tracks)) && ok
		clock.Sleep(q.delays.MultiPointer)
	}
	for i, t := range tracks {
		coords[i] = pointerAt(i, t, len(t)-1)
	}
	for i := 1; i < len(tracks); i++ {
		ok = emit(model.ActionPointerUp, i, i+1) && ok
	}
	ok = emit(model.ActionUp, 0, 1) && ok

	q.synth.log.Debug("multi-pointer gesture",
		zap.Int("pointers", len(tracks)),
		zap.Int("steps", maxSteps),
		zap.Bool("ok", ok))
	return ok, nil
}

func pointerAt(id int, track []Point, step int) model.PointerCoords {
	p := track[min(step, len(track)-1)]
	return model.PointerCoords{ID: id, X: float64(p.X), Y: float64(p.Y), Pressure: 1, Size: 1}
}
