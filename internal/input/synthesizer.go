// Package input synthesizes pointer events and composes them into gestures.
package input

import (
	"errors"
	"sync"
	"time"

	"github.com/mj1618/dump-hierarchy/internal/model"
	"github.com/mj1618/dump-hierarchy/internal/platform"
	"go.uber.org/zap"
)

// ErrNoActiveGesture is returned by Move and Up once the gesture has ended.
var ErrNoActiveGesture = errors.New("no active gesture: touch down first")

// Synthesizer builds single-pointer events and submits them to an Injector.
type Synthesizer struct {
	injector platform.Injector
	clock    Clock
	log      *zap.Logger
}

// NewSynthesizer creates a Synthesizer. A nil clock selects SystemClock and
// a nil logger disables logging.
func NewSynthesizer(injector platform.Injector, clock Clock, log *zap.Logger) *Synthesizer {
	if clock == nil {
		clock = SystemClock()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Synthesizer{injector: injector, clock: clock, log: log.Named("input")}
}

// Clock returns the clock used for timestamps.
func (s *Synthesizer) Clock() Clock { return s.clock }

// Gesture is one in-progress single-pointer gesture. It is created by Down
// and ended by Up; its down time is stamped on every event it produces.
type Gesture struct {
	s        *Synthesizer
	mu       sync.Mutex
	downTime time.Duration
	active   bool
}

// Down starts a gesture at (x, y). The gesture is returned even when the
// injection fails so the caller can still lift the pointer.
func (s *Synthesizer) Down(x, y float64) (*Gesture, bool) {
	now := s.clock.Now()
	g := &Gesture{s: s, downTime: now, active: true}
	ok := s.inject(model.ActionDown, now, now, x, y)
	return g, ok
}

// Move moves the pointer to (x, y).
func (g *Gesture) Move(x, y float64) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.active {
		return false, ErrNoActiveGesture
	}
	return g.s.inject(model.ActionMove, g.downTime, g.s.clock.Now(), x, y), nil
}

// Up lifts the pointer at (x, y) and ends the gesture.
func (g *Gesture) Up(x, y float64) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.active {
		return false, ErrNoActiveGesture
	}
	g.active = false
	return g.s.inject(model.ActionUp, g.downTime, g.s.clock.Now(), x, y), nil
}

// Active reports whether the gesture has not been lifted yet.
func (g *Gesture) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

// DownTime returns the timestamp of the gesture's down event.
func (g *Gesture) DownTime() time.Duration { return g.downTime }

func (s *Synthesizer) inject(action model.PointerAction, downTime, eventTime time.Duration, x, y float64) bool {
	return s.submit(model.PointerEvent{
		Action:    action,
		Pointers:  []model.PointerCoords{{ID: 0, X: x, Y: y, Pressure: 1, Size: 1}},
		DownTime:  downTime,
		EventTime: eventTime,
	})
}

func (s *Synthesizer) submit(ev model.PointerEvent) bool {
	ok := s.injector.InjectPointer(ev)
	p := ev.Primary()
	s.log.Debug("inject pointer event",
		zap.Stringer("action", ev.Action),
		zap.Int("pointers", len(ev.Pointers)),
		zap.Float64("x", p.X),
		zap.Float64("y", p.Y),
		zap.Duration("down_time", ev.DownTime),
		zap.Duration("event_time", ev.EventTime),
		zap.Bool("ok", ok))
	return ok
}
