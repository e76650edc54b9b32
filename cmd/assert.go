package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mj1618/dump-hierarchy/internal/model"
	"github.com/mj1618/dump-hierarchy/internal/output"
	"github.com/mj1618/dump-hierarchy/internal/selector"
)

// AssertResult is the output of an assert command.
type AssertResult struct {
	OK      bool               `yaml:"ok"                json:"ok"`
	Action  string             `yaml:"action"            json:"action"`
	Pass    bool               `yaml:"pass"              json:"pass"`
	Error   string             `yaml:"error,omitempty"   json:"error,omitempty"`
	Element *model.ElementInfo `yaml:"element,omitempty" json:"element,omitempty"`
}

var assertCmd = &cobra.Command{
	Use:   "assert",
	Short: "Assert a UI condition is met",
	Long: `Check that an element matching --type/--value exists with the expected
properties.

Returns pass/fail with structured output and exit code 0 (pass) or 1 (fail).
--timeout polls for conditions that take time to become true.`,
	RunE: runAssert,
}

func init() {
	rootCmd.AddCommand(assertCmd)
	addSelectorFlags(assertCmd)

	assertCmd.Flags().String("text-equals", "", "Assert the element text equals this string")
	assertCmd.Flags().String("text-contains", "", "Assert the element text contains this substring")
	assertCmd.Flags().Bool("checked", false, "Assert element is checked")
	assertCmd.Flags().Bool("unchecked", false, "Assert element is NOT checked")
	assertCmd.Flags().Bool("disabled", false, "Assert element is disabled")
	assertCmd.Flags().Bool("enabled", false, "Assert element is enabled")
	assertCmd.Flags().Bool("focused", false, "Assert element has input focus")
	assertCmd.Flags().Bool("gone", false, "Assert no element matches")
	assertCmd.Flags().Int("interval", 0, "Polling interval in milliseconds (0 = configured default)")
}

// assertion is the set of property checks requested on the command line.
type assertion struct {
	textEquals   *string
	textContains string
	checked      bool
	unchecked    bool
	disabled     bool
	enabled      bool
	focused      bool
}

// check returns a description of the first failed property, or "".
func (a assertion) check(info model.ElementInfo) string {
	if a.textEquals != nil && info.Text != *a.textEquals {
		return fmt.Sprintf("expected text %q, got %q", *a.textEquals, info.Text)
	}
	if a.textContains != "" && !strings.Contains(info.Text, a.textContains) {
		return fmt.Sprintf("expected text containing %q, got %q", a.textContains, info.Text)
	}
	if a.checked && !info.Checked {
		return "expected element to be checked"
	}
	if a.unchecked && info.Checked {
		return "expected element to be unchecked"
	}
	if a.disabled && info.Enabled {
		return "expected element to be disabled"
	}
	if a.enabled && !info.Enabled {
		return "expected element to be enabled"
	}
	if a.focused && !info.Focused {
		return "expected element to be focused"
	}
	return ""
}

func runAssert(cmd *cobra.Command, args []string) error {
	cfg := loadedConfig()
	// Without --timeout an assertion is a single check.
	typ, value, timeout, err := getSelectorFlags(cmd, 0)
	if err != nil {
		return err
	}
	gone, _ := cmd.Flags().GetBool("gone")
	intervalMs, _ := cmd.Flags().GetInt("interval")
	interval := cfg.Selector.PollInterval
	if intervalMs > 0 {
		interval = time.Duration(intervalMs) * time.Millisecond
	}

	var a assertion
	if cmd.Flags().Changed("text-equals") {
		s, _ := cmd.Flags().GetString("text-equals")
		a.textEquals = &s
	}
	a.textContains, _ = cmd.Flags().GetString("text-contains")
	a.checked, _ = cmd.Flags().GetBool("checked")
	a.unchecked, _ = cmd.Flags().GetBool("unchecked")
	a.disabled, _ = cmd.Flags().GetBool("disabled")
	a.enabled, _ = cmd.Flags().GetBool("enabled")
	a.focused, _ = cmd.Flags().GetBool("focused")
	if a.checked && a.unchecked {
		return fmt.Errorf("--checked and --unchecked are mutually exclusive")
	}
	if a.enabled && a.disabled {
		return fmt.Errorf("--enabled and --disabled are mutually exclusive")
	}

	ctrl, err := newController(cfg)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if gone {
		err := waitGone(ctx, ctrl, typ, value, timeout, interval)
		if errors.Is(err, errWaitTimeout) {
			return failAssert(fmt.Sprintf("element %s still present", describeSelector(typ, value, false)), nil)
		}
		if err != nil {
			return err
		}
		return output.Print(AssertResult{OK: true, Action: "assert", Pass: true})
	}

	deadline := time.Now().Add(timeout)
	for {
		info, err := ctrl.FindElement(ctx, typ, value, 0)
		var reason string
		switch {
		case errors.Is(err, selector.ErrNotFound):
			reason = fmt.Sprintf("no element matches %s", describeSelector(typ, value, false))
		case err != nil:
			return err
		default:
			reason = a.check(info)
			if reason == "" {
				return output.Print(AssertResult{OK: true, Action: "assert", Pass: true, Element: &info})
			}
		}

		if !time.Now().Before(deadline) {
			if err != nil {
				return failAssert(reason, nil)
			}
			return failAssert(reason, &info)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

func failAssert(reason string, info *model.ElementInfo) error {
	_ = output.Print(AssertResult{OK: false, Action: "assert", Pass: false, Error: reason, Element: info})
	return fmt.Errorf("assertion failed: %s", reason)
}
