package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mj1618/dump-hierarchy/internal/config"
	"github.com/mj1618/dump-hierarchy/internal/input"
	"github.com/mj1618/dump-hierarchy/internal/observability"
	"github.com/mj1618/dump-hierarchy/internal/platform"
	_ "github.com/mj1618/dump-hierarchy/internal/platform/sim"
	"github.com/mj1618/dump-hierarchy/internal/server"
)

// newController opens the configured device backend and wires a controller
// around it.
func newController(cfg *config.Config) (*server.Controller, error) {
	provider, err := platform.NewProvider(cfg.Device.Backend, platform.ProviderOptions{Fixture: cfg.Device.Fixture})
	if err != nil {
		return nil, err
	}
	return server.NewController(provider, cfg, input.SystemClock(), observability.GetLogger())
}

// addSelectorFlags adds --type, --value and --timeout for element lookups.
func addSelectorFlags(cmd *cobra.Command) {
	cmd.Flags().String("type", "", "Selector type: text, textContains, textStartsWith, id, className, description, descriptionContains, package, checked, ...")
	cmd.Flags().String("value", "", "Selector value")
	cmd.Flags().Int("timeout", -1, "Max milliseconds to wait for a match (-1 = configured default, 0 = single check)")
}

// getSelectorFlags reads the selector flags. A negative timeout selects def.
func getSelectorFlags(cmd *cobra.Command, def time.Duration) (typ, value string, timeout time.Duration, err error) {
	typ, _ = cmd.Flags().GetString("type")
	value, _ = cmd.Flags().GetString("value")
	ms, _ := cmd.Flags().GetInt("timeout")
	if typ == "" {
		return "", "", 0, fmt.Errorf("--type is required")
	}
	if !cmd.Flags().Changed("value") {
		return "", "", 0, fmt.Errorf("--value is required")
	}
	timeout = def
	if ms >= 0 {
		timeout = time.Duration(ms) * time.Millisecond
	}
	return typ, value, timeout, nil
}

// parsePoint parses "x,y".
func parsePoint(s string) (input.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return input.Point{}, fmt.Errorf("invalid point %q: expected x,y", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return input.Point{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return input.Point{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	return input.Point{X: x, Y: y}, nil
}

// interpolate returns n evenly spaced points from just after from up to
// and including to.
func interpolate(from, to input.Point, n int) []input.Point {
	if n < 1 {
		n = 1
	}
	points := make([]input.Point, n)
	for i := 1; i <= n; i++ {
		points[i-1] = input.Point{
			X: from.X + (to.X-from.X)*i/n,
			Y: from.Y + (to.Y-from.Y)*i/n,
		}
	}
	return points
}

// readStdin reads all of stdin, or the file named by path when set.
func readStdin(path string) ([]byte, error) {
	var r io.Reader = os.Stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}
