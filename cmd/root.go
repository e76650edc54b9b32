package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mj1618/dump-hierarchy/internal/config"
	"github.com/mj1618/dump-hierarchy/internal/observability"
	"github.com/mj1618/dump-hierarchy/internal/output"
	"github.com/mj1618/dump-hierarchy/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "dump-hierarchy",
	Short: "Remote control plane for device UI automation",
	Long: `Serve a device's UI hierarchy, screenshots and input injection over a
loopback control socket, or drive the device directly from the command line.`,
	SilenceUsage: true,
}

// vp holds defaults, the config file, DUMP_HIERARCHY_* variables and bound flags.
var vp = config.NewViper()

// appConfig is loaded in PersistentPreRunE before any command runs.
var appConfig *config.Config

func Execute() {
	defer observability.Sync()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("config", "", "Config file (YAML)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: console, json")
	rootCmd.PersistentFlags().String("backend", "", "Device backend (default: sim)")
	rootCmd.PersistentFlags().String("fixture", "", "Device fixture file for the sim backend")
	rootCmd.PersistentFlags().String("format", "", "Output format: yaml, json, agent")
	rootCmd.PersistentFlags().Bool("pretty", false, "Pretty-print JSON output")

	_ = vp.BindPFlag("logger.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = vp.BindPFlag("logger.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = vp.BindPFlag("device.backend", rootCmd.PersistentFlags().Lookup("backend"))
	_ = vp.BindPFlag("device.fixture", rootCmd.PersistentFlags().Lookup("fixture"))

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		path, _ := rootCmd.PersistentFlags().GetString("config")
		cfg, err := config.Load(vp, path)
		if err != nil {
			return err
		}
		appConfig = cfg
		observability.InitializeLogger(cfg.Logger)

		format, _ := rootCmd.PersistentFlags().GetString("format")
		return setOutputFormat(format)
	}
}

// setOutputFormat selects the printer. Without an explicit format, piped
// output gets the agent format and a terminal gets YAML.
func setOutputFormat(format string) error {
	if format == "" {
		if output.IsOutputPiped() {
			format = string(output.FormatAgent)
		} else {
			format = string(output.FormatYAML)
		}
	}
	switch output.Format(format) {
	case output.FormatYAML, output.FormatJSON, output.FormatAgent:
		output.OutputFormat = output.Format(format)
	default:
		return fmt.Errorf("unsupported format: %s (use yaml, json, or agent)", format)
	}
	pretty, _ := rootCmd.PersistentFlags().GetBool("pretty")
	output.PrettyOutput = pretty
	return nil
}

// loadedConfig returns the configuration loaded for this run, or the
// defaults when a command runs without the root pre-run (as in tests).
func loadedConfig() *config.Config {
	if appConfig != nil {
		return appConfig
	}
	cfg, err := config.NewConfigFromViper(vp)
	if err != nil {
		return config.NewDefaultConfig()
	}
	return cfg
}

// bindFlag binds a command flag to a config key.
func bindFlag(key string, cmd *cobra.Command, name string) {
	if err := vp.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", name, err))
	}
}
