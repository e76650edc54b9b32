package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mj1618/dump-hierarchy/internal/action"
	"github.com/mj1618/dump-hierarchy/internal/input"
	"github.com/mj1618/dump-hierarchy/internal/output"
)

var swipeCmd = &cobra.Command{
	Use:   "swipe",
	Short: "Swipe between two screen coordinates",
	Long: `Press at --from, move through --steps evenly spaced points to --to over
--duration milliseconds, then release.

Example:
  dump-hierarchy swipe --from 540,1800 --to 540,600 --steps 10 --duration 300`,
	RunE: runSwipe,
}

func init() {
	rootCmd.AddCommand(swipeCmd)
	swipeCmd.Flags().String("from", "", "Start point as x,y")
	swipeCmd.Flags().String("to", "", "End point as x,y")
	swipeCmd.Flags().Int("steps", 10, "Number of intermediate move events")
	swipeCmd.Flags().Int("duration", -1, "Gesture duration in milliseconds (-1 = configured default)")
	_ = swipeCmd.MarkFlagRequired("from")
	_ = swipeCmd.MarkFlagRequired("to")
}

func runSwipe(cmd *cobra.Command, args []string) error {
	fromStr, _ := cmd.Flags().GetString("from")
	toStr, _ := cmd.Flags().GetString("to")
	steps, _ := cmd.Flags().GetInt("steps")
	durationMs, _ := cmd.Flags().GetInt("duration")

	from, err := parsePoint(fromStr)
	if err != nil {
		return err
	}
	to, err := parsePoint(toStr)
	if err != nil {
		return err
	}
	if steps < 1 {
		return fmt.Errorf("--steps must be at least 1")
	}

	params := swipeParams(from, interpolate(from, to, steps))
	if durationMs >= 0 {
		params["duration"] = durationMs
	}

	ctrl, err := newController(loadedConfig())
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	res := ctrl.RunScript(ctx, []action.Step{{Type: action.TypeSwipe, Params: params}})
	if len(res.Results) == 1 {
		if err := output.Print(res.Results[0].Result); err != nil {
			return err
		}
	}
	if !res.Success {
		return fmt.Errorf("swipe from %s to %s failed", fromStr, toStr)
	}
	return nil
}

// swipeParams builds swipe_sequence parameters in script form.
func swipeParams(start input.Point, points []input.Point) action.Params {
	list := make([]interface{}, len(points))
	for i, p := range points {
		list[i] = map[string]interface{}{"x": p.X, "y": p.Y}
	}
	return action.Params{"startX": start.X, "startY": start.Y, "steps": list}
}
