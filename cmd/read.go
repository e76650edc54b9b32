package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mj1618/dump-hierarchy/internal/output"
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Read the UI element tree",
	Long: `Read the device's UI hierarchy and print it as YAML, JSON or the compact
agent format. Use "dump" for the raw XML document.`,
	RunE: runRead,
}

func init() {
	rootCmd.AddCommand(readCmd)
	readCmd.Flags().Bool("compressed", false, "Drop layout-only containers from the tree")
}

func runRead(cmd *cobra.Command, args []string) error {
	compressed, _ := cmd.Flags().GetBool("compressed")

	ctrl, err := newController(loadedConfig())
	if err != nil {
		return err
	}
	roots, err := ctrl.Nodes(compressed)
	if err != nil {
		return err
	}
	return output.Print(output.DumpResult{
		TS:       time.Now().Unix(),
		Rotation: ctrl.Rotation(),
		Windows:  roots,
	})
}
