package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mj1618/dump-hierarchy/internal/action"
	"github.com/mj1618/dump-hierarchy/internal/output"
)

var inputCmd = &cobra.Command{
	Use:   "input",
	Short: "Replace the text of an element",
	Long: `Find an element by --type/--value, replace its text with --text and verify
the text the element reports afterwards.`,
	RunE: runInput,
}

func init() {
	rootCmd.AddCommand(inputCmd)
	addSelectorFlags(inputCmd)
	inputCmd.Flags().String("text", "", "Text to set")
	inputCmd.Flags().Bool("clear", true, "Clear the existing text first")
	_ = inputCmd.MarkFlagRequired("text")
}

func runInput(cmd *cobra.Command, args []string) error {
	cfg := loadedConfig()
	typ, value, timeout, err := getSelectorFlags(cmd, cfg.Selector.DefaultTimeout)
	if err != nil {
		return err
	}
	text, _ := cmd.Flags().GetString("text")
	clearFirst, _ := cmd.Flags().GetBool("clear")

	ctrl, err := newController(cfg)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	res, err := ctrl.Input(ctx, action.Params{
		"type":    typ,
		"value":   value,
		"text":    text,
		"clear":   clearFirst,
		"timeout": int(timeout.Milliseconds()),
	})
	if err != nil {
		return err
	}
	if err := output.Print(res); err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("input failed: %s", res.Message)
	}
	return nil
}
