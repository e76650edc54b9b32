package selector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mj1618/dump-hierarchy/internal/platform"
	"go.uber.org/zap"
)

// ErrNotFound is returned when nothing matches before the timeout.
var ErrNotFound = errors.New("no element matched")

// DefaultPollInterval is the pause between tree queries while waiting.
const DefaultPollInterval = 100 * time.Millisecond

// Resolver waits for selectors to match elements in a UI tree.
type Resolver struct {
	tree     platform.UITree
	interval time.Duration
	log      *zap.Logger
}

// NewResolver creates a Resolver polling tree every interval.
func NewResolver(tree platform.UITree, interval time.Duration, log *zap.Logger) *Resolver {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{tree: tree, interval: interval, log: log.Named("selector")}
}

// FindOne returns the first element matching sel, waiting up to timeout.
func (r *Resolver) FindOne(ctx context.Context, sel Selector, timeout time.Duration) (platform.Element, error) {
	els, err := r.FindAll(ctx, sel, timeout)
	if err != nil {
		return nil, err
	}
	return els[0], nil
}

// FindAll returns every element matching sel once at least one matches,
// waiting up to timeout. A zero timeout queries the tree exactly once.
func (r *Resolver) FindAll(ctx context.Context, sel Selector, timeout time.Duration) ([]platform.Element, error) {
	start := time.Now()
	deadline := start.Add(timeout)
	attempts := 0
	var lastErr error
	for {
		attempts++
		els, err := r.tree.FindAll(sel)
		if err == nil && len(els) > 0 {
			r.log.Debug("selector matched",
				zap.Stringer("selector", sel),
				zap.Int("matches", len(els)),
				zap.Int("attempts", attempts),
				zap.Duration("elapsed", time.Since(start)))
			return els, nil
		}
		if err != nil {
			lastErr = err
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		wait := min(r.interval, remaining)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %s within %s (last error: %v)", ErrNotFound, sel, timeout, lastErr)
	}
	return nil, fmt.Errorf("%w: %s within %s", ErrNotFound, sel, timeout)
}
