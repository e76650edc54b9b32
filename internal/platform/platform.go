package platform

import (
	"context"
	"time"

	"github.com/mj1618/dump-hierarchy/internal/model"
)

// Predicate selects elements from the UI tree.
type Predicate interface {
	// Kind names the attribute the predicate tests, e.g. "text" or "clickable".
	Kind() string
	Match(attrs model.Attributes) bool
}

// UITree queries the on-screen UI hierarchy.
type UITree interface {
	// FindAll returns every element currently matching p. An empty result is
	// not an error.
	FindAll(p Predicate) ([]Element, error)

	// Dump returns a snapshot of every window root. Compressed dumps omit
	// structural containers that carry nothing selectable.
	Dump(compressed bool) ([]model.Node, error)

	// Rotation returns the current display rotation in quarter turns.
	Rotation() int
}

// WindowRootLister is implemented by trees that can enumerate raw window roots.
type WindowRootLister interface {
	WindowRoots() ([]model.Node, error)
}

// Element is a handle to one matched node. Handles go stale once the tree
// they were taken from is replaced; calls then return ErrStaleElement.
type Element interface {
	Attributes() (model.Attributes, error)
	SetText(text string) error
	Clear() error
}

// Injector delivers pointer events to the input pipeline.
type Injector interface {
	// InjectPointer submits one event and reports whether it was accepted.
	InjectPointer(ev model.PointerEvent) bool
}

// EventSource emits accessibility change notifications.
type EventSource interface {
	// WaitForEvent blocks for up to timeout. It returns ErrEventTimeout when
	// nothing arrives in time and ctx.Err() when ctx is done first.
	WaitForEvent(ctx context.Context, timeout time.Duration) (model.AccessibilityEvent, error)
}

// Screenshotter captures the screen.
type Screenshotter interface {
	// Capture returns a JPEG image of the current screen.
	Capture(opts ScreenshotOptions) ([]byte, error)
}
