package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mj1618/dump-hierarchy/internal/action"
	"github.com/mj1618/dump-hierarchy/internal/config"
	"github.com/mj1618/dump-hierarchy/internal/input"
	"github.com/mj1618/dump-hierarchy/internal/model"
	"github.com/mj1618/dump-hierarchy/internal/platform"
	"github.com/mj1618/dump-hierarchy/internal/selector"
	"github.com/mj1618/dump-hierarchy/internal/watch"
)

// StatusOK is the liveness body of /status.
const StatusOK = "OK"

// Controller wires one device provider to the gesture, selector, action and
// watch components. Every transport (raw socket, MCP, CLI) drives the
// device through a Controller.
type Controller struct {
	provider *platform.Provider
	seq      *input.Sequencer
	tracker  *input.Tracker
	resolver *selector.Resolver
	exec     *action.Executor
	runner   *action.Runner
	watcher  *watch.Watcher
	cache    *DumpCache

	findTimeout time.Duration
	shot        platform.ScreenshotOptions
	log         *zap.Logger
}

// NewController builds a Controller. A nil clock uses the system clock.
func NewController(p *platform.Provider, cfg *config.Config, clock input.Clock, log *zap.Logger) (*Controller, error) {
	if p == nil || p.Tree == nil || p.Injector == nil {
		return nil, errors.New("provider must supply a UI tree and an input injector")
	}
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	if clock == nil {
		clock = input.SystemClock()
	}
	if log == nil {
		log = zap.NewNop()
	}

	synth := input.NewSynthesizer(p.Injector, clock, log)
	seq := input.NewSequencer(synth, input.Delays{
		Click:        cfg.Input.ClickDelay,
		MultiPointer: cfg.Input.MultiPointerDelay,
	})
	resolver := selector.NewResolver(p.Tree, cfg.Selector.PollInterval, log)
	exec := action.NewExecutor(seq, resolver, clock, action.Options{
		DefaultTimeout: cfg.Selector.DefaultTimeout,
		SettleDelay:    cfg.Input.SettleDelay,
		SwipeDuration:  cfg.Input.SwipeDuration,
	}, log)

	c := &Controller{
		provider:    p,
		seq:         seq,
		tracker:     input.NewTracker(seq),
		resolver:    resolver,
		exec:        exec,
		runner:      action.NewRunner(exec, log),
		cache:       NewDumpCache(cfg.Server.DumpCacheTTL),
		findTimeout: cfg.Selector.DefaultTimeout,
		shot: platform.ScreenshotOptions{
			Quality: cfg.Screenshot.DefaultQuality,
			Scale:   cfg.Screenshot.DefaultScale,
		},
		log: log.Named("controller"),
	}
	if p.Events != nil {
		c.watcher = watch.New(p.Events, cfg.Watch.EventTimeout, log)
		c.watcher.OnChange(func(model.AccessibilityEvent) { c.cache.InvalidateAll() })
	}
	return c, nil
}

// Watch runs the change-watch loop until ctx is done. Without an event
// source it just waits for ctx.
func (c *Controller) Watch(ctx context.Context) error {
	if c.watcher == nil {
		<-ctx.Done()
		return nil
	}
	return c.watcher.Run(ctx)
}

// OnChange registers fn for every content-changed event seen by Watch. It
// reports false when the backend has no event source.
func (c *Controller) OnChange(fn func(model.AccessibilityEvent)) bool {
	if c.watcher == nil {
		return false
	}
	c.watcher.OnChange(fn)
	return true
}

// Status returns the liveness string.
func (c *Controller) Status() string { return StatusOK }

// Nodes returns the window roots of the current hierarchy.
func (c *Controller) Nodes(compressed bool) ([]model.Node, error) {
	return c.cache.Dump(c.provider.Tree, compressed)
}

// Rotation returns the display rotation reported by the tree.
func (c *Controller) Rotation() int { return c.provider.Tree.Rotation() }

// Dump returns the current hierarchy as XML.
func (c *Controller) Dump(compressed bool) ([]byte, error) {
	roots, err := c.Nodes(compressed)
	if err != nil {
		return nil, fmt.Errorf("dump hierarchy: %w", err)
	}
	return model.HierarchyXML(roots, c.provider.Tree.Rotation())
}

// ScreenshotDefaults returns the configured screenshot options.
func (c *Controller) ScreenshotDefaults() platform.ScreenshotOptions { return c.shot }

// Screenshot captures the screen as JPEG.
func (c *Controller) Screenshot(opts platform.ScreenshotOptions) ([]byte, error) {
	if c.provider.Screenshotter == nil {
		return nil, fmt.Errorf("screenshot: %w", platform.ErrUnsupported)
	}
	if err := opts.Validate(); err != nil {
		return nil, &action.ParamError{Param: "quality/scale", Reason: err.Error()}
	}
	return c.provider.Screenshotter.Capture(opts)
}

// IsUIChange reports, once per change, whether screen content changed
// since the previous call.
func (c *Controller) IsUIChange() (bool, error) {
	if c.watcher == nil {
		return false, fmt.Errorf("change watch: %w", platform.ErrUnsupported)
	}
	return c.watcher.Consume(), nil
}

// LastChange returns the most recent content-changed event.
func (c *Controller) LastChange() (model.AccessibilityEvent, bool) {
	if c.watcher == nil {
		return model.AccessibilityEvent{}, false
	}
	return c.watcher.LastEvent()
}

// FindTimeout is the element wait used when a request does not pass one.
func (c *Controller) FindTimeout() time.Duration { return c.findTimeout }

// FindElement returns the first element matching typ/value within timeout.
func (c *Controller) FindElement(ctx context.Context, typ, value string, timeout time.Duration) (model.ElementInfo, error) {
	sel, err := selector.Build(typ, value)
	if err != nil {
		return model.ElementInfo{}, err
	}
	el, err := c.resolver.FindOne(ctx, sel, timeout)
	if err != nil {
		return model.ElementInfo{}, err
	}
	attrs, err := el.Attributes()
	if err != nil {
		return model.ElementInfo{}, err
	}
	return attrs.Info(), nil
}

// FindElements returns every element matching typ/value once at least one
// matches within timeout.
func (c *Controller) FindElements(ctx context.Context, typ, value string, timeout time.Duration) ([]model.ElementInfo, error) {
	sel, err := selector.Build(typ, value)
	if err != nil {
		return nil, err
	}
	els, err := c.resolver.FindAll(ctx, sel, timeout)
	if err != nil {
		return nil, err
	}
	infos := make([]model.ElementInfo, 0, len(els))
	for _, el := range els {
		attrs, err := el.Attributes()
		if errors.Is(err, platform.ErrStaleElement) {
			continue
		}
		if err != nil {
			return nil, err
		}
		infos = append(infos, attrs.Info())
	}
	if len(infos) == 0 {
		return nil, fmt.Errorf("%w: %s", selector.ErrNotFound, sel)
	}
	return infos, nil
}

// GetRoot describes every top-level window root.
func (c *Controller) GetRoot() (string, error) {
	lister, ok := c.provider.Tree.(platform.WindowRootLister)
	if !ok {
		return "", fmt.Errorf("window roots: %w", platform.ErrUnsupported)
	}
	roots, err := lister.WindowRoots()
	if err != nil {
		return "", err
	}
	return model.DescribeRoots(roots), nil
}

// Click taps (x, y).
func (c *Controller) Click(x, y int) action.Result {
	defer c.cache.InvalidateAll()
	return c.exec.Click(x, y)
}

// TouchDown starts a gesture on session.
func (c *Controller) TouchDown(session string, x, y int) bool {
	defer c.cache.InvalidateAll()
	return c.tracker.Down(session, x, y)
}

// TouchMove moves the session's pointer.
func (c *Controller) TouchMove(session string, x, y int) (bool, error) {
	defer c.cache.InvalidateAll()
	return c.tracker.Move(session, x, y)
}

// TouchUp lifts the session's pointer.
func (c *Controller) TouchUp(session string, x, y int) (bool, error) {
	defer c.cache.InvalidateAll()
	return c.tracker.Up(session, x, y)
}

// Input finds an element and replaces its text.
func (c *Controller) Input(ctx context.Context, params action.Params) (action.Result, error) {
	defer c.cache.InvalidateAll()
	return c.exec.Input(ctx, params)
}

// ExecuteScript parses and runs a JSON script body.
func (c *Controller) ExecuteScript(ctx context.Context, body []byte) (action.ScriptResult, error) {
	steps, err := action.ParseScript(body)
	if err != nil {
		return action.ScriptResult{}, err
	}
	return c.RunScript(ctx, steps), nil
}

// RunScript runs already parsed steps.
func (c *Controller) RunScript(ctx context.Context, steps []action.Step) action.ScriptResult {
	defer c.cache.InvalidateAll()
	return c.runner.Run(ctx, steps)
}
