package cli

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/yildizm/DiagSum/internal/config"
	"github.com/yildizm/DiagSum/internal/emoji"
	"github.com/yildizm/DiagSum/internal/logger"
	"github.com/yildizm/DiagSum/internal/ui/theme"
)

var (
	cfgFile   string
	verbose   bool
	noColor   bool
	noEmoji   bool
	outputFmt string
	themeName string

	globalConfig *config.Config
)

var log = logger.NewWithCallback("cli", isVerbose)

// NewRootCommand creates the root command
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "diagsum",
		Short: "Cosmos DB diagnostics latency analyzer",
		Long: `DiagSum reads newline-delimited Cosmos DB client diagnostics, finds the
records that exceeded a latency threshold, and breaks their backend calls
down by resource, status, exception, transport event and bottleneck phase.

Malformed or truncated diagnostics lines are repaired where possible.
Input can come from files (plain, .gz, .zst or .br) or stdin.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Auto-disable emojis on Windows if not explicitly set
			if runtime.GOOS == "windows" && !cmd.Flag("no-emoji").Changed {
				noEmoji = true
			}
			emoji.SetEmojiDisabled(noEmoji)

			cfg, err := config.NewLoader().LoadConfig(cfgFile)
			if err != nil {
				// config subcommands report load errors themselves
				if !isConfigCommand(cmd) {
					return err
				}
				cfg = config.DefaultConfig()
			}
			applyGlobalConfig(cmd, cfg)

			if themeName != "" && !theme.SetByName(themeName) {
				return fmt.Errorf("unknown theme %q (available: %v)", themeName, theme.Available())
			}

			configureLogging(cfg)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&noEmoji, "no-emoji", false, "disable emoji output (useful for Windows terminals)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "output format (text, json, markdown, csv)")
	rootCmd.PersistentFlags().StringVar(&themeName, "theme", "", "interactive UI theme (default, high-contrast, minimal)")

	rootCmd.AddCommand(newAnalyzeCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newVersionCommand(version, commit, date))

	return rootCmd
}

func isConfigCommand(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "config" {
			return true
		}
	}
	return false
}

// applyGlobalConfig stores cfg and fills global flags the user did not set
func applyGlobalConfig(cmd *cobra.Command, cfg *config.Config) {
	globalConfig = cfg

	if f := cmd.Flag("output"); f != nil && !f.Changed && cfg.Output.DefaultFormat != "" {
		outputFmt = cfg.Output.DefaultFormat
	}
	if f := cmd.Flag("verbose"); f != nil && !f.Changed {
		verbose = cfg.Output.Verbose
	}
	if f := cmd.Flag("no-color"); f != nil && !f.Changed {
		noColor = cfg.Output.ColorMode == "never"
	}
}

func configureLogging(cfg *config.Config) {
	if cfg.Logging.File == "" {
		logger.Configure(os.Stderr, nil)
		return
	}
	logger.Configure(os.Stderr, &logger.FileOptions{
		Path:       config.ExpandPath(cfg.Logging.File),
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
}

func newVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display version number, build commit, date, and runtime information",
		Run: func(cmd *cobra.Command, args []string) {
			displayVersion := version
			displayCommit := commit
			displayDate := date

			if version == "dev" || version == "" {
				displayVersion = "development"
			}
			if commit == "none" || commit == "" {
				displayCommit = "local-build"
			}
			if date == "unknown" || date == "" {
				displayDate = "local-build"
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "DiagSum %s (%s) built on %s\n", displayVersion, displayCommit, displayDate)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

// GetGlobalConfig returns the configuration loaded for the running command,
// or the defaults when none was loaded
func GetGlobalConfig() *config.Config {
	if globalConfig == nil {
		return config.DefaultConfig()
	}
	return globalConfig
}

// Global helpers
func isVerbose() bool {
	return verbose
}

func getOutputFormat() string {
	return outputFmt
}

func colorEnabled() bool {
	switch GetGlobalConfig().Output.ColorMode {
	case "always":
		return !noColor
	default:
		return !noColor && !theme.IsColorDisabled()
	}
}
