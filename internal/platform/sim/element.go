package sim

import (
	"fmt"

	"github.com/mj1618/dump-hierarchy/internal/model"
	"github.com/mj1618/dump-hierarchy/internal/platform"
)

// element is bound to the screen generation it was found on.
type element struct {
	dev        *Device
	generation uint64
	path       string
}

func (e *element) Attributes() (model.Attributes, error) {
	e.dev.mu.Lock()
	defer e.dev.mu.Unlock()
	if e.generation != e.dev.generation {
		return model.Attributes{}, platform.ErrStaleElement
	}
	n, ok := model.Lookup(e.dev.roots, e.path)
	if !ok {
		return model.Attributes{}, platform.ErrStaleElement
	}
	return n.Attributes, nil
}

func (e *element) SetText(text string) error {
	e.dev.mu.Lock()
	defer e.dev.mu.Unlock()
	if e.generation != e.dev.generation {
		return platform.ErrStaleElement
	}
	return e.dev.setTextLocked(e.path, text)
}

func (e *element) Clear() error {
	return e.SetText("")
}

func errNotEditable(class string) error {
	return fmt.Errorf("element of class %q does not accept text", class)
}
