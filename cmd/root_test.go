package cmd

import (
	"testing"

	"github.com/mj1618/dump-hierarchy/internal/output"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	expected := []string{"serve", "read", "dump", "find", "click", "input", "swipe", "screenshot", "wait", "observe", "assert", "do", "list"}
	found := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		found[c.Name()] = true
	}
	for _, name := range expected {
		if !found[name] {
			t.Errorf("expected subcommand %q not found", name)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	if rootCmd.Version == "" {
		t.Error("root command version should be set")
	}
}

func TestSetOutputFormat(t *testing.T) {
	prev := output.OutputFormat
	defer func() { output.OutputFormat = prev }()

	for _, f := range []string{"yaml", "json", "agent"} {
		if err := setOutputFormat(f); err != nil {
			t.Errorf("setOutputFormat(%q): %v", f, err)
		}
		if string(output.OutputFormat) != f {
			t.Errorf("expected format %q, got %q", f, output.OutputFormat)
		}
	}
	if err := setOutputFormat("xml"); err == nil {
		t.Error("expected an error for an unsupported format")
	}
}
