package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mj1618/dump-hierarchy/internal/model"
	"github.com/mj1618/dump-hierarchy/internal/output"
)

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Find elements by selector",
	Long: `Find the first element matching --type/--value, or every match with --all.

Waits up to --timeout milliseconds for a match to appear. Exits non-zero
when nothing matches.`,
	RunE: runFind,
}

func init() {
	rootCmd.AddCommand(findCmd)
	addSelectorFlags(findCmd)
	findCmd.Flags().Bool("all", false, "Return every matching element")
}

// findResult is the output of the find command.
type findResult struct {
	OK       bool                `yaml:"ok"       json:"ok"`
	Action   string              `yaml:"action"   json:"action"`
	Selector string              `yaml:"selector" json:"selector"`
	Total    int                 `yaml:"total"    json:"total"`
	Elements []model.ElementInfo `yaml:"elements" json:"elements"`
}

func runFind(cmd *cobra.Command, args []string) error {
	cfg := loadedConfig()
	typ, value, timeout, err := getSelectorFlags(cmd, cfg.Selector.DefaultTimeout)
	if err != nil {
		return err
	}
	all, _ := cmd.Flags().GetBool("all")

	ctrl, err := newController(cfg)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var elements []model.ElementInfo
	if all {
		elements, err = ctrl.FindElements(ctx, typ, value, timeout)
	} else {
		var info model.ElementInfo
		info, err = ctrl.FindElement(ctx, typ, value, timeout)
		elements = []model.ElementInfo{info}
	}
	if err != nil {
		return err
	}
	return output.Print(findResult{
		OK:       true,
		Action:   "find",
		Selector: describeSelector(typ, value, false),
		Total:    len(elements),
		Elements: elements,
	})
}
