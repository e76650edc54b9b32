package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/mj1618/dump-hierarchy/internal/output"
	"github.com/mj1618/dump-hierarchy/internal/platform"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List device backends and window roots",
	Long:  "List the registered device backends, or the top-level window roots of the configured device with --roots.",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().Bool("roots", false, "Describe the window roots of the configured device")
}

// listResult is the output of the list command.
type listResult struct {
	Backends []string `yaml:"backends,omitempty" json:"backends,omitempty"`
	Current  string   `yaml:"current"            json:"current"`
	Roots    string   `yaml:"roots,omitempty"    json:"roots,omitempty"`
}

func runList(cmd *cobra.Command, args []string) error {
	roots, _ := cmd.Flags().GetBool("roots")
	cfg := loadedConfig()

	res := listResult{Current: cfg.Device.Backend}
	if !roots {
		res.Backends = platform.Backends()
		return output.Print(res)
	}

	ctrl, err := newController(cfg)
	if err != nil {
		return err
	}
	desc, err := ctrl.GetRoot()
	if errors.Is(err, platform.ErrUnsupported) {
		desc = "unsupported by backend " + cfg.Device.Backend
	} else if err != nil {
		return err
	}
	res.Roots = desc
	return output.Print(res)
}
