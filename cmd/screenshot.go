package cmd

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var screenshotCmd = &cobra.Command{
	Use:   "screenshot",
	Short: "Capture a screenshot",
	Long:  "Capture the device screen as JPEG, written to --output or to stdout as base64.",
	RunE:  runScreenshot,
}

func init() {
	rootCmd.AddCommand(screenshotCmd)
	screenshotCmd.Flags().String("output", "", "Output file path (default: stdout as base64)")
	screenshotCmd.Flags().Int("quality", 0, "JPEG quality 1-100 (0 = configured default)")
	screenshotCmd.Flags().Float64("scale", 0, "Scale factor 0.1-1.0 (0 = configured default)")
}

func runScreenshot(cmd *cobra.Command, args []string) error {
	outPath, _ := cmd.Flags().GetString("output")

	ctrl, err := newController(loadedConfig())
	if err != nil {
		return err
	}
	data, err := captureScreenshot(cmd, ctrl.ScreenshotDefaults(), ctrl.Screenshot)
	if err != nil {
		return err
	}

	if outPath != "" {
		return os.WriteFile(outPath, data, 0644)
	}

	encoder := base64.NewEncoder(base64.StdEncoding, os.Stdout)
	if _, err := encoder.Write(data); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}
	fmt.Println()
	return nil
}
