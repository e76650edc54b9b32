package input

import (
	"sync"

	"go.uber.org/zap"
)

// DefaultSession is the session used when a caller does not name one.
const DefaultSession = "default"

// Tracker keeps named gestures alive between separate touch requests so
// that down, move, and up can arrive over different connections.
type Tracker struct {
	seq      *Sequencer
	mu       sync.Mutex
	sessions map[string]*Gesture
}

// NewTracker creates a Tracker that injects through seq.
func NewTracker(seq *Sequencer) *Tracker {
	return &Tracker{seq: seq, sessions: make(map[string]*Gesture)}
}

// Down starts a gesture for session. A gesture still active on that session
// is replaced without being lifted.
func (t *Tracker) Down(session string, x, y int) bool {
	t.seq.mu.Lock()
	g, ok := t.seq.synth.Down(float64(x), float64(y))
	t.seq.mu.Unlock()

	key := sessionKey(session)
	t.mu.Lock()
	defer t.mu.Unlock()
	if prev, active := t.sessions[key]; active {
		t.seq.synth.log.Debug("replacing active gesture without lifting it",
			zap.String("session", key),
			zap.Duration("previous_down_time", prev.downTime),
			zap.Int("x", x),
			zap.Int("y", y))
	}
	t.sessions[key] = g
	return ok
}

// Move moves the session's pointer. It returns ErrNoActiveGesture when the
// session has no gesture in progress.
func (t *Tracker) Move(session string, x, y int) (bool, error) {
	g, err := t.lookup(session, false)
	if err != nil {
		return false, err
	}
	t.seq.mu.Lock()
	defer t.seq.mu.Unlock()
	return g.Move(float64(x), float64(y))
}

// Up lifts the session's pointer and forgets the session.
func (t *Tracker) Up(session string, x, y int) (bool, error) {
	g, err := t.lookup(session, true)
	if err != nil {
		return false, err
	}
	t.seq.mu.Lock()
	defer t.seq.mu.Unlock()
	return g.Up(float64(x), float64(y))
}

// Active reports whether session has a gesture in progress.
func (t *Tracker) Active(session string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.sessions[sessionKey(session)]
	return ok
}

func (t *Tracker) lookup(session string, remove bool) (*Gesture, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := sessionKey(session)
	g, ok := t.sessions[key]
	if !ok {
		return nil, ErrNoActiveGesture
	}
	if remove {
		delete(t.sessions, key)
	}
	return g, nil
}

func sessionKey(session string) string {
	if session == "" {
		return DefaultSession
	}
	return session
}
