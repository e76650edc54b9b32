package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mj1618/dump-hierarchy/internal/output"
)

var clickCmd = &cobra.Command{
	Use:   "click",
	Short: "Tap a screen coordinate",
	Long:  "Inject a single tap (touch down then up) at --x, --y in device pixels.",
	RunE:  runClick,
}

func init() {
	rootCmd.AddCommand(clickCmd)
	clickCmd.Flags().Int("x", 0, "X coordinate in device pixels")
	clickCmd.Flags().Int("y", 0, "Y coordinate in device pixels")
	_ = clickCmd.MarkFlagRequired("x")
	_ = clickCmd.MarkFlagRequired("y")
}

func runClick(cmd *cobra.Command, args []string) error {
	x, _ := cmd.Flags().GetInt("x")
	y, _ := cmd.Flags().GetInt("y")

	ctrl, err := newController(loadedConfig())
	if err != nil {
		return err
	}
	res := ctrl.Click(x, y)
	if err := output.Print(res); err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("click at (%d, %d) failed", x, y)
	}
	return nil
}
