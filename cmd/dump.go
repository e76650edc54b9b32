package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mj1618/dump-hierarchy/internal/platform"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the UI hierarchy as XML",
	Long: `Print the device's UI hierarchy as the same XML document served by the
/dump route. --screenshot also saves a JPEG of the screen.`,
	RunE: runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().Bool("compressed", false, "Drop layout-only containers from the tree")
	dumpCmd.Flags().String("screenshot", "", "Also save a JPEG screenshot to this path")
	dumpCmd.Flags().Int("quality", 0, "JPEG quality 1-100 (0 = configured default)")
	dumpCmd.Flags().Float64("scale", 0, "Scale factor 0.1-1.0 (0 = configured default)")
}

func runDump(cmd *cobra.Command, args []string) error {
	compressed, _ := cmd.Flags().GetBool("compressed")
	shotPath, _ := cmd.Flags().GetString("screenshot")

	ctrl, err := newController(loadedConfig())
	if err != nil {
		return err
	}
	xml, err := ctrl.Dump(compressed)
	if err != nil {
		return err
	}
	if _, err := os.Stdout.Write(xml); err != nil {
		return err
	}
	fmt.Println()

	if shotPath == "" {
		return nil
	}
	data, err := captureScreenshot(cmd, ctrl.ScreenshotDefaults(), ctrl.Screenshot)
	if err != nil {
		return fmt.Errorf("screenshot: %w", err)
	}
	return os.WriteFile(shotPath, data, 0644)
}

// captureScreenshot applies --quality and --scale over defs and captures.
func captureScreenshot(cmd *cobra.Command, defs platform.ScreenshotOptions, capture func(platform.ScreenshotOptions) ([]byte, error)) ([]byte, error) {
	opts := defs
	if q, _ := cmd.Flags().GetInt("quality"); q != 0 {
		opts.Quality = q
	}
	if s, _ := cmd.Flags().GetFloat64("scale"); s != 0 {
		opts.Scale = s
	}
	return capture(opts)
}
