// Package action executes single named actions and multi-step scripts
// against the gesture sequencer and the selector resolver.
package action

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mj1618/dump-hierarchy/internal/input"
	"github.com/mj1618/dump-hierarchy/internal/platform"
	"github.com/mj1618/dump-hierarchy/internal/selector"
	"go.uber.org/zap"
)

// Action types.
const (
	TypeClick        = "click"
	TypeFindAndClick = "find_and_click"
	TypeFindAndInput = "find_and_input"
	TypeSwipe        = "swipe_sequence"
	TypeSleep        = "sleep"
	TypeMultiPointer = "multi_pointer"
)

// Types lists every supported action type.
var Types = []string{TypeClick, TypeFindAndClick, TypeFindAndInput, TypeSwipe, TypeSleep, TypeMultiPointer}

// Options tune action defaults.
type Options struct {
	// DefaultTimeout bounds element lookups that do not pass "timeout".
	DefaultTimeout time.Duration
	// SettleDelay is the pause after clearing and after setting text.
	SettleDelay time.Duration
	// SwipeDuration is used when a swipe does not pass "duration".
	SwipeDuration time.Duration
}

// DefaultOptions are the standard action defaults.
var DefaultOptions = Options{
	DefaultTimeout: 5 * time.Second,
	SettleDelay:    100 * time.Millisecond,
	SwipeDuration:  500 * time.Millisecond,
}

// Executor runs single actions.
type Executor struct {
	seq      *input.Sequencer
	resolver *selector.Resolver
	clock    input.Clock
	opts     Options
	log      *zap.Logger
}

// NewExecutor creates an Executor.
func NewExecutor(seq *input.Sequencer, resolver *selector.Resolver, clock input.Clock, opts Options, log *zap.Logger) *Executor {
	if clock == nil {
		clock = input.SystemClock()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{seq: seq, resolver: resolver, clock: clock, opts: opts, log: log.Named("action")}
}

// Execute runs one action and folds every error into a failed Result.
func (e *Executor) Execute(ctx context.Context, actionType string, params Params, cache Cache) Result {
	res, err := e.Run(ctx, actionType, params, cache)
	if err != nil {
		res.Success = false
		if res.Message == "" {
			res.Message = err.Error()
		}
	}
	return res
}

// Run runs one action. Parameter problems come back as *ParamError,
// selector problems as selector.ErrUnknownType, selector.ErrInvalidValue or
// selector.ErrNotFound; an action that ran but failed is a Result with
// Success false and a nil error.
func (e *Executor) Run(ctx context.Context, actionType string, params Params, cache Cache) (Result, error) {
	if params == nil {
		params = Params{}
	}
	if cache == nil {
		cache = Cache{}
	}
	switch actionType {
	case TypeClick:
		return e.runClick(params)
	case TypeFindAndClick:
		return e.runFindAndClick(ctx, params, cache)
	case TypeFindAndInput:
		return e.runFindAndInput(ctx, params, cache)
	case TypeSwipe:
		return e.runSwipe(params)
	case TypeSleep:
		return e.runSleep(params)
	case TypeMultiPointer:
		return e.runMultiPointer(params)
	default:
		err := invalid("type", "unknown action type %q (supported: %v)", actionType, Types)
		return failure(err.Error()), err
	}
}

// Click taps (x, y).
func (e *Executor) Click(x, y int) Result {
	res := Result{X: intPtr(x), Y: intPtr(y)}
	if e.seq.Click(x, y) {
		res.Success = true
		res.Message = fmt.Sprintf("Clicked at (%d, %d)", x, y)
	} else {
		res.Message = fmt.Sprintf("Failed to inject click at (%d, %d)", x, y)
	}
	return res
}

func (e *Executor) runClick(params Params) (Result, error) {
	x, err := params.RequireInt("x")
	if err != nil {
		return failure(err.Error()), err
	}
	y, err := params.RequireInt("y")
	if err != nil {
		return failure(err.Error()), err
	}
	return e.Click(x, y), nil
}

// resolve returns the element named by params: a cached reference when
// "element" is given, otherwise the first match of type/value.
func (e *Executor) resolve(ctx context.Context, params Params, cache Cache) (platform.Element, error) {
	if name, err := params.StringOr("element", ""); err != nil {
		return nil, err
	} else if name != "" {
		el, ok := cache[name]
		if !ok {
			return nil, invalid("element", "no cached element named %q", name)
		}
		return el, nil
	}

	typ, err := params.RequireString("type")
	if err != nil {
		return nil, err
	}
	value, err := params.RequireString("value")
	if err != nil {
		return nil, err
	}
	timeoutMs, err := params.IntOr("timeout", int(e.opts.DefaultTimeout/time.Millisecond))
	if err != nil {
		return nil, err
	}
	if timeoutMs < 0 {
		return nil, invalid("timeout", "must not be negative")
	}
	sel, err := selector.Build(typ, value)
	if err != nil {
		return nil, err
	}
	return e.resolver.FindOne(ctx, sel, time.Duration(timeoutMs)*time.Millisecond)
}

func (e *Executor) remember(params Params, cache Cache, el platform.Element) error {
	name, err := params.StringOr("cache_as", "")
	if err != nil {
		return err
	}
	if name != "" {
		cache[name] = el
	}
	return nil
}

func (e *Executor) runFindAndClick(ctx context.Context, params Params, cache Cache) (Result, error) {
	el, err := e.resolve(ctx, params, cache)
	if err != nil {
		return failure(err.Error()), err
	}
	attrs, err := el.Attributes()
	if err != nil {
		return failure(fmt.Sprintf("Failed to read element: %v", err)), nil
	}
	cache[LastFoundKey] = el
	if err := e.remember(params, cache, el); err != nil {
		return failure(err.Error()), err
	}

	x, y := attrs.Bounds.CenterX(), attrs.Bounds.CenterY()
	res := e.Click(x, y)
	res.Bounds = attrs.Bounds.ShortString()
	info := attrs.Info()
	res.Element = &info
	if res.Success {
		res.Message = fmt.Sprintf("Found and clicked element at (%d, %d)", x, y)
	} else {
		res.Message = fmt.Sprintf("Found element but failed to click at (%d, %d)", x, y)
	}
	return res, nil
}

// Input finds an element and sets its text. It is the single-action form
// behind the /input route.
func (e *Executor) Input(ctx context.Context, params Params) (Result, error) {
	return e.runFindAndInput(ctx, params, Cache{})
}

func (e *Executor) runFindAndInput(ctx context.Context, params Params, cache Cache) (Result, error) {
	text, err := params.RequireString("text")
	if err != nil {
		return failure(err.Error()), err
	}
	clearFirst, err := params.BoolOr("clear", true)
	if err != nil {
		return failure(err.Error()), err
	}
	el, err := e.resolve(ctx, params, cache)
	if err != nil {
		return failure(err.Error()), err
	}
	if err := e.remember(params, cache, el); err != nil {
		return failure(err.Error()), err
	}

	if clearFirst {
		if err := el.Clear(); err != nil {
			return failure(fmt.Sprintf("Failed to clear element: %v", err)), nil
		}
		e.clock.Sleep(e.opts.SettleDelay)
	}
	if err := el.SetText(text); err != nil {
		return failure(fmt.Sprintf("Failed to set text: %v", err)), nil
	}
	e.clock.Sleep(e.opts.SettleDelay)

	attrs, err := el.Attributes()
	if err != nil {
		return failure(fmt.Sprintf("Failed to read back text: %v", err)), nil
	}
	actual := attrs.Text
	res := Result{ActualText: &actual, Bounds: attrs.Bounds.ShortString()}
	if actual == text {
		res.Success = true
		res.Message = "Text input successful"
	} else {
		res.Message = fmt.Sprintf("Text mismatch: expected %q, got %q", text, actual)
	}
	return res, nil
}

func (e *Executor) runSwipe(params Params) (Result, error) {
	startX, err := params.RequireInt("startX")
	if err != nil {
		return failure(err.Error()), err
	}
	startY, err := params.RequireInt("startY")
	if err != nil {
		return failure(err.Error()), err
	}
	steps, err := params.points("steps")
	if err != nil {
		return failure(err.Error()), err
	}
	durationMs, err := params.IntOr("duration", int(e.opts.SwipeDuration/time.Millisecond))
	if err != nil {
		return failure(err.Error()), err
	}
	if durationMs < 0 {
		err := invalid("duration", "must not be negative")
		return failure(err.Error()), err
	}

	ok, err := e.seq.Swipe(input.Point{X: startX, Y: startY}, steps, time.Duration(durationMs)*time.Millisecond)
	if err != nil {
		return failure(err.Error()), err
	}
	res := Result{Success: ok, X: intPtr(startX), Y: intPtr(startY), Steps: len(steps)}
	if ok {
		res.Message = fmt.Sprintf("Swiped through %d steps", len(steps))
	} else {
		res.Message = "Failed to inject swipe"
	}
	return res, nil
}

func (e *Executor) runSleep(params Params) (Result, error) {
	ms, err := params.RequireInt("ms")
	if err != nil {
		return failure(err.Error()), err
	}
	if ms <= 0 {
		err := invalid("ms", "must be > 0")
		return failure(err.Error()), err
	}
	e.clock.Sleep(time.Duration(ms) * time.Millisecond)
	return Result{Success: true, Message: "Slept", Elapsed: fmt.Sprintf("%dms", ms)}, nil
}

func (e *Executor) runMultiPointer(params Params) (Result, error) {
	tracks, err := params.tracks("pointers")
	if err != nil {
		return failure(err.Error()), err
	}
	if len(tracks) < 2 {
		err := invalid("pointers", "need at least 2 pointer tracks, got %d", len(tracks))
		return failure(err.Error()), err
	}
	ok, err := e.seq.MultiPointer(tracks...)
	if err != nil {
		return failure(err.Error()), err
	}
	res := Result{Success: ok}
	if ok {
		res.Message = fmt.Sprintf("Performed %d-pointer gesture", len(tracks))
	} else {
		res.Message = "Failed to inject multi-pointer gesture"
	}
	return res, nil
}

// IsClientError reports whether err was caused by the request rather than
// by the device.
func IsClientError(err error) bool {
	var pe *ParamError
	return errors.As(err, &pe) ||
		errors.Is(err, selector.ErrUnknownType) ||
		errors.Is(err, selector.ErrInvalidValue) ||
		errors.Is(err, ErrInvalidScript)
}
