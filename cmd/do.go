package cmd

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mj1618/dump-hierarchy/internal/action"
	"github.com/mj1618/dump-hierarchy/internal/output"
)

var doCmd = &cobra.Command{
	Use:   "do",
	Short: "Run an action script against the device",
	Long: `Run a sequence of actions read from stdin (or --file).

The script is a JSON array or a YAML list of {type, params} entries. Every
step runs even when an earlier one fails; the command exits non-zero when
any step failed.

Supported step types: ` + strings.Join(action.Types, ", ") + `

Example:
  dump-hierarchy do <<'EOF'
  - type: find_and_input
    params: {type: id, value: "com.example.app:id/username", text: "alice"}
  - type: find_and_click
    params: {type: text, value: "Sign in", timeout: 2000}
  - type: sleep
    params: {ms: 500}
  EOF`,
	RunE: runDo,
}

func init() {
	rootCmd.AddCommand(doCmd)
	doCmd.Flags().String("file", "", "Read the script from a file instead of stdin")
}

func runDo(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	data, err := readStdin(path)
	if err != nil {
		return err
	}
	steps, err := parseScriptInput(data)
	if err != nil {
		return err
	}

	ctrl, err := newController(loadedConfig())
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	res := ctrl.RunScript(ctx, steps)
	if err := output.Print(res); err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("%d of %d actions failed", countFailed(res), res.TotalActions)
	}
	return nil
}

// parseScriptInput accepts a JSON array or a YAML list.
func parseScriptInput(data []byte) ([]action.Step, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("no actions provided: pipe a JSON array or YAML list of actions")
	}
	if trimmed[0] == '[' {
		return action.ParseScript(trimmed)
	}
	return action.ParseYAMLScript(trimmed)
}

func countFailed(res action.ScriptResult) int {
	n := 0
	for _, r := range res.Results {
		if !r.Success {
			n++
		}
	}
	return n
}
