package cmd

import (
	"errors"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"scenarist/internal/config"
	"scenarist/internal/harness"
)

// exitFunc is a variable so tests can intercept the exit
var exitFunc = os.Exit

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Discover and run the scenarios",
		Long: `Run discovers YAML scenario files under the scenarios directory and
executes them in order, printing progress through the selected
reporter. The process exits non-zero when any scenario fails.

Flag parsing is handled by the run pipeline itself so plugins can
register their own flags; 'scenarist run --help' prints the full set.`,
		// The run pipeline owns the flag surface (plugins register flags
		// during startup), so cobra must hand the raw arguments through.
		DisableFlagParsing: true,
		RunE:               runScenarios,
	}
}

func runScenarios(cmd *cobra.Command, args []string) error {
	settings, configPath, err := config.Load()
	if err != nil {
		return err
	}
	initLogging(settings)

	fwCfg := harness.DefaultFrameworkConfig()
	fwCfg.Settings = settings
	fwCfg.ConfigPath = configPath
	fwCfg.Args = args
	fwCfg.NoColor = resolveNoColor(settings, args)

	f, err := harness.New(fwCfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := f.Run(ctx)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if report.Failed() > 0 {
		exitFunc(1)
	}
	return nil
}

// resolveNoColor decides styling before the framework is built, since the
// reporter palettes are constructed ahead of flag parsing. The --no-color
// flag itself is still registered and parsed inside the run pipeline.
func resolveNoColor(settings config.Config, args []string) bool {
	if settings.NoColor || slices.Contains(args, "--no-color") {
		return true
	}
	if os.Getenv("NO_COLOR") != "" {
		return true
	}
	return !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd())
}
