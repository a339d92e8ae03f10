package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"scenarist/internal/config"
	"scenarist/pkg/logging"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scenarist",
	Short: "Run declarative YAML scenarios against live systems",
	Long: `scenarist discovers YAML scenario files, executes their steps against
live systems (shell commands, HTTP endpoints, Kubernetes resources)
and reports the outcome through a pluggable reporter.`,
	SilenceUsage: true,
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "scenarist version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// initLogging configures the process logger from the resolved settings.
// Logs go to stderr so stdout stays reserved for reporter output.
func initLogging(settings config.Config) {
	level, err := logging.ParseLogLevel(settings.LogLevel)
	if err != nil {
		level = logging.LevelInfo
	}
	logging.InitForCLI(level, os.Stderr)
}

func init() {
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newMCPServerCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
