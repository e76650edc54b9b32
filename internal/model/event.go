package model

import (
	"fmt"
	"time"
)

// PointerAction is the kind of a pointer event.
type PointerAction int

const (
	ActionDown PointerAction = iota
	ActionUp
	ActionMove
	// ActionPointerDown and ActionPointerUp add or remove a secondary pointer
	// while the primary pointer stays down.
	ActionPointerDown
	ActionPointerUp
)

func (a PointerAction) String() string {
	switch a {
	case ActionDown:
		return "down"
	case ActionUp:
		return "up"
	case ActionMove:
		return "move"
	case ActionPointerDown:
		return "pointer_down"
	case ActionPointerUp:
		return "pointer_up"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// PointerCoords is the position of one pointer within an event.
type PointerCoords struct {
	ID       int
	X, Y     float64
	Pressure float64
	Size     float64
}

// PointerEvent is one down/move/up sample submitted to the input channel.
//
// DownTime is fixed at the first down of a gesture and carried through every
// later event of that gesture; EventTime is the moment the event was built.
// Both are measured on the synthesizer's uptime clock.
type PointerEvent struct {
	Action PointerAction
	// ActionIndex selects the pointer that went down or up for
	// ActionPointerDown and ActionPointerUp.
	ActionIndex int
	Pointers    []PointerCoords
	DownTime    time.Duration
	EventTime   time.Duration
}

// Primary returns the coordinates of the first pointer.
func (e PointerEvent) Primary() PointerCoords {
	if len(e.Pointers) == 0 {
		return PointerCoords{}
	}
	return e.Pointers[0]
}

// EventType classifies accessibility change notifications.
type EventType string

const (
	EventWindowContentChanged EventType = "TYPE_WINDOW_CONTENT_CHANGED"
	EventWindowStateChanged   EventType = "TYPE_WINDOW_STATE_CHANGED"
	EventViewClicked          EventType = "TYPE_VIEW_CLICKED"
	EventViewTextChanged      EventType = "TYPE_VIEW_TEXT_CHANGED"
)

// AccessibilityEvent is a structured change notification from the platform.
type AccessibilityEvent struct {
	ID        string    `json:"id"         yaml:"id"`
	Type      EventType `json:"type"       yaml:"type"`
	Package   string    `json:"package"    yaml:"package"`
	ClassName string    `json:"class_name" yaml:"class_name"`
	Text      string    `json:"text"       yaml:"text"`
	EventTime time.Time `json:"event_time" yaml:"event_time"`
}
