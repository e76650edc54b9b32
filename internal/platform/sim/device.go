// Package sim implements an in-process simulated device. Screens come from
// a YAML fixture; taps toggle checkable nodes, move focus, and follow goto
// links, and every visible change is reported as an accessibility event.
package sim

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mj1618/dump-hierarchy/internal/model"
	"github.com/mj1618/dump-hierarchy/internal/platform"
)

// tapSlop is the largest down-to-up travel still treated as a tap.
const tapSlop = 24

const eventBuffer = 64

// Device is a simulated device. It implements platform.UITree,
// platform.WindowRootLister, platform.Injector, platform.EventSource and
// platform.Screenshotter.
type Device struct {
	mu         sync.Mutex
	fixture    *Fixture
	screen     string
	roots      []model.Node
	behaviour  behaviour
	generation uint64
	downAt     *model.PointerCoords
	injected   []model.PointerEvent
	rejecting  bool

	events chan model.AccessibilityEvent
	now    func() time.Time
}

// New creates a device showing the fixture's start screen.
func New(f *Fixture) *Device {
	d := &Device{
		fixture: f,
		events:  make(chan model.AccessibilityEvent, eventBuffer),
		now:     time.Now,
	}
	d.showLocked(f.Start)
	return d
}

// Provider wraps the device in a platform.Provider.
func (d *Device) Provider() *platform.Provider {
	return &platform.Provider{
		Tree:          d,
		Injector:      d,
		Events:        d,
		Screenshotter: d,
	}
}

// Screen returns the name of the screen currently shown.
func (d *Device) Screen() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.screen
}

// Injected returns a copy of every pointer event accepted so far.
func (d *Device) Injected() []model.PointerEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]model.PointerEvent, len(d.injected))
	copy(out, d.injected)
	return out
}

// SetRejectInput makes InjectPointer refuse every event while on is true.
func (d *Device) SetRejectInput(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rejecting = on
}

func (d *Device) showLocked(screen string) {
	d.screen = screen
	d.roots, d.behaviour = build(d.fixture.Screens[screen])
	d.generation++
	d.downAt = nil
}

// FindAll implements platform.UITree.
func (d *Device) FindAll(p platform.Predicate) ([]platform.Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []platform.Element
	for _, n := range model.Flatten(d.roots) {
		if p.Match(n.Attributes) {
			out = append(out, &element{dev: d, generation: d.generation, path: n.Path})
		}
	}
	return out, nil
}

// Dump implements platform.UITree.
func (d *Device) Dump(compressed bool) ([]model.Node, error) {
	d.mu.Lock()
	roots := cloneNodes(d.roots)
	d.mu.Unlock()
	if compressed {
		return model.Compress(roots), nil
	}
	return roots, nil
}

// Rotation implements platform.UITree.
func (d *Device) Rotation() int { return d.fixture.Rotation }

// WindowRoots implements platform.WindowRootLister.
func (d *Device) WindowRoots() ([]model.Node, error) {
	return d.Dump(false)
}

// InjectPointer implements platform.Injector.
func (d *Device) InjectPointer(ev model.PointerEvent) bool {
	if len(ev.Pointers) == 0 {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.rejecting {
		return false
	}
	d.injected = append(d.injected, ev)

	p := ev.Primary()
	switch ev.Action {
	case model.ActionDown:
		d.downAt = &p
	case model.ActionUp:
		start := d.downAt
		d.downAt = nil
		if start == nil || abs(p.X-start.X) > tapSlop || abs(p.Y-start.Y) > tapSlop {
			return true
		}
		d.tapLocked(int(p.X), int(p.Y))
	}
	return true
}

// tapLocked applies a tap at (x, y) to the deepest enabled clickable node
// under the point.
func (d *Device) tapLocked(x, y int) {
	var hit *model.FlatNode
	flat := model.Flatten(d.roots)
	for i := range flat {
		n := &flat[i]
		if n.Bounds.Contains(x, y) && n.Enabled && (n.Clickable || n.Checkable || n.Focusable) {
			if hit == nil || n.Depth >= hit.Depth {
				hit = n
			}
		}
	}
	if hit == nil {
		return
	}
	d.emitLocked(model.EventViewClicked, *hit)

	if target, ok := d.behaviour.gotos[hit.Path]; ok {
		d.showLocked(target)
		if len(d.roots) > 0 {
			d.emitLocked(model.EventWindowStateChanged, model.FlatNode{Attributes: d.roots[0].Attributes})
			d.emitLocked(model.EventWindowContentChanged, model.FlatNode{Attributes: d.roots[0].Attributes})
		}
		return
	}

	before := model.Flatten(d.roots)
	if hit.Focusable {
		clearFocus(d.roots)
	}
	node, _ := model.Lookup(d.roots, hit.Path)
	if node.Checkable {
		node.Checked = !node.Checked
	}
	if node.Focusable {
		node.Focused = true
	}
	d.notifyChangesLocked(before)
}

func (d *Device) setTextLocked(path, text string) error {
	node, ok := model.Lookup(d.roots, path)
	if !ok {
		return platform.ErrStaleElement
	}
	if !strings.HasSuffix(node.Class, "EditText") {
		return errNotEditable(node.Class)
	}
	if limit := d.behaviour.limits[path]; limit > 0 && len([]rune(text)) > limit {
		text = string([]rune(text)[:limit])
	}
	if node.Text == text {
		return nil
	}
	before := model.Flatten(d.roots)
	node.Text = text
	d.emitLocked(model.EventViewTextChanged, model.FlatNode{Attributes: node.Attributes, Path: path})
	d.notifyChangesLocked(before)
	return nil
}

// notifyChangesLocked emits one content-changed event per changed node.
func (d *Device) notifyChangesLocked(before []model.FlatNode) {
	after := model.Flatten(d.roots)
	for _, c := range model.DiffNodes(before, after) {
		if c.Type != model.ChangeChanged {
			continue
		}
		for _, n := range after {
			if n.Path == c.Path {
				d.emitLocked(model.EventWindowContentChanged, n)
				break
			}
		}
	}
}

// emitLocked queues an event, dropping it when nobody is draining the queue.
func (d *Device) emitLocked(typ model.EventType, n model.FlatNode) {
	ev := model.AccessibilityEvent{
		ID:        uuid.NewString(),
		Type:      typ,
		Package:   n.Package,
		ClassName: n.Class,
		Text:      n.Text,
		EventTime: d.now(),
	}
	select {
	case d.events <- ev:
	default:
	}
}

// WaitForEvent implements platform.EventSource.
func (d *Device) WaitForEvent(ctx context.Context, timeout time.Duration) (model.AccessibilityEvent, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case ev := <-d.events:
		return ev, nil
	case <-timer.C:
		return model.AccessibilityEvent{}, platform.ErrEventTimeout
	case <-ctx.Done():
		return model.AccessibilityEvent{}, ctx.Err()
	}
}

func clearFocus(nodes []model.Node) {
	for i := range nodes {
		nodes[i].Focused = false
		clearFocus(nodes[i].Children)
	}
}

func cloneNodes(nodes []model.Node) []model.Node {
	if nodes == nil {
		return nil
	}
	out := make([]model.Node, len(nodes))
	for i, n := range nodes {
		out[i] = n
		out[i].Children = cloneNodes(n.Children)
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
