package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mj1618/dump-hierarchy/internal/model"
	"github.com/mj1618/dump-hierarchy/internal/output"
	"github.com/mj1618/dump-hierarchy/internal/selector"
	"github.com/mj1618/dump-hierarchy/internal/server"
)

// WaitResult is the output of a wait command.
type WaitResult struct {
	OK       bool                      `yaml:"ok"                  json:"ok"`
	Action   string                    `yaml:"action"              json:"action"`
	Elapsed  string                    `yaml:"elapsed"             json:"elapsed"`
	Match    string                    `yaml:"match,omitempty"     json:"match,omitempty"`
	Element  *model.ElementInfo        `yaml:"element,omitempty"   json:"element,omitempty"`
	Event    *model.AccessibilityEvent `yaml:"event,omitempty"     json:"event,omitempty"`
	TimedOut bool                      `yaml:"timed_out,omitempty" json:"timed_out,omitempty"`
}

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait for an element or a UI change",
	Long: `Wait until an element matching --type/--value appears, until it is gone
(--gone), or until the device reports a content change (--change).`,
	RunE: runWait,
}

func init() {
	rootCmd.AddCommand(waitCmd)
	addSelectorFlags(waitCmd)
	waitCmd.Flags().Bool("gone", false, "Wait until no element matches")
	waitCmd.Flags().Bool("change", false, "Wait for the next UI content change instead of an element")
	waitCmd.Flags().Int("interval", 0, "Polling interval in milliseconds (0 = configured default)")
}

func runWait(cmd *cobra.Command, args []string) error {
	cfg := loadedConfig()
	gone, _ := cmd.Flags().GetBool("gone")
	change, _ := cmd.Flags().GetBool("change")
	intervalMs, _ := cmd.Flags().GetInt("interval")
	interval := cfg.Selector.PollInterval
	if intervalMs > 0 {
		interval = time.Duration(intervalMs) * time.Millisecond
	}

	ctrl, err := newController(cfg)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	if change {
		ms, _ := cmd.Flags().GetInt("timeout")
		timeout := cfg.Selector.DefaultTimeout
		if ms >= 0 {
			timeout = time.Duration(ms) * time.Millisecond
		}
		ev, err := waitForChange(ctx, ctrl, timeout)
		return reportWait(start, "ui change", nil, ev, err)
	}

	typ, value, timeout, err := getSelectorFlags(cmd, cfg.Selector.DefaultTimeout)
	if err != nil {
		return err
	}
	match := describeSelector(typ, value, gone)
	if gone {
		err := waitGone(ctx, ctrl, typ, value, timeout, interval)
		return reportWait(start, match, nil, nil, err)
	}
	info, err := ctrl.FindElement(ctx, typ, value, timeout)
	if err != nil {
		return reportWait(start, match, nil, nil, err)
	}
	return reportWait(start, match, &info, nil, nil)
}

// waitForChange runs the watch loop until the first content-changed event.
func waitForChange(ctx context.Context, ctrl *server.Controller, timeout time.Duration) (*model.AccessibilityEvent, error) {
	changed := make(chan model.AccessibilityEvent, 1)
	if !ctrl.OnChange(func(ev model.AccessibilityEvent) {
		select {
		case changed <- ev:
		default:
		}
	}) {
		return nil, errors.New("this backend does not report UI changes")
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = ctrl.Watch(ctx)
	}()
	defer func() { <-done }()
	defer cancel()

	select {
	case ev := <-changed:
		return &ev, nil
	case <-ctx.Done():
		return nil, errWaitTimeout
	}
}

var errWaitTimeout = errors.New("timed out")

// waitGone polls until no element matches typ/value.
func waitGone(ctx context.Context, ctrl *server.Controller, typ, value string, timeout, interval time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		_, err := ctrl.FindElement(ctx, typ, value, 0)
		if errors.Is(err, selector.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if !time.Now().Before(deadline) {
			return errWaitTimeout
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

func reportWait(start time.Time, match string, info *model.ElementInfo, ev *model.AccessibilityEvent, err error) error {
	res := WaitResult{
		OK:      err == nil,
		Action:  "wait",
		Elapsed: fmt.Sprintf("%.1fs", time.Since(start).Seconds()),
		Match:   match,
		Element: info,
		Event:   ev,
	}
	if err == nil {
		return output.Print(res)
	}
	res.TimedOut = errors.Is(err, errWaitTimeout) || errors.Is(err, selector.ErrNotFound)
	if !res.TimedOut {
		return err
	}
	_ = output.Print(res)
	return fmt.Errorf("timed out waiting for %s", match)
}

// describeSelector returns a readable description of a selector condition.
func describeSelector(typ, value string, gone bool) string {
	desc := fmt.Sprintf("%s=%q", typ, value)
	if gone {
		desc += " (gone)"
	}
	return desc
}
