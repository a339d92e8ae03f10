// Package harness assembles the kernel, the stock plugins, and the
// YAML loader into one runnable framework. The CLI builds a Framework
// per invocation; every Run wires a fresh dispatcher and defer stack so
// nothing leaks between runs.
package harness

import (
	"context"
	"errors"
	"io"
	"os"

	"scenarist/internal/actions"
	"scenarist/internal/config"
	"scenarist/internal/loader"
	"scenarist/pkg/core"
	"scenarist/pkg/logging"
	"scenarist/pkg/plugins/deferrer"
	"scenarist/pkg/plugins/director"
	"scenarist/pkg/plugins/repeater"
)

const appName = "scenarist"

// FrameworkConfig holds everything a Framework needs to run scenarios.
type FrameworkConfig struct {
	Settings   config.Config // layered file configuration
	ConfigPath string        // file the settings came from, empty for defaults
	Args       []string      // raw command-line arguments for the kernel parser
	Stdout     io.Writer     // reporter output (default: os.Stdout)
	ReportPath string        // json reporter target file, empty prints to Stdout
	NoColor    bool          // strip styling from reporter output
}

// DefaultFrameworkConfig returns a config with built-in settings and
// stdout output.
func DefaultFrameworkConfig() FrameworkConfig {
	return FrameworkConfig{
		Settings: config.Default(),
		Stdout:   os.Stdout,
	}
}

// Validate checks the parts that cannot be defaulted away.
func (c *FrameworkConfig) Validate() error {
	if c.Settings.ScenariosDir == "" {
		return errors.New("scenarios directory must not be empty")
	}
	if c.Settings.Reporter == "" {
		return errors.New("default reporter must not be empty")
	}
	if c.Settings.Repeats < 1 {
		return errors.New("repeats must be at least 1")
	}
	return nil
}

// Framework runs, lists, and validates scenario files. Create one with
// New; the zero value is not usable.
type Framework struct {
	cfg      FrameworkConfig
	registry *actions.Registry
}

// New creates a framework with the builtin actions registered. It does
// not touch the filesystem; discovery happens per operation.
func New(cfg FrameworkConfig) (*Framework, error) {
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	registry := actions.NewRegistry()
	builtins := actions.Builtins(actions.Defaults{
		HTTPTimeout:   cfg.Settings.HTTP.Timeout,
		KubeContext:   cfg.Settings.Kube.Context,
		KubeNamespace: cfg.Settings.Kube.Namespace,
	})
	for _, a := range builtins {
		if err := registry.Register(a); err != nil {
			return nil, err
		}
	}

	return &Framework{cfg: cfg, registry: registry}, nil
}

// Actions returns the registry so callers can add their own actions
// before running.
func (f *Framework) Actions() *actions.Registry {
	return f.registry
}

// Run discovers and executes the scenarios, blocking until the run
// finishes. Scenario failures land in the report, not in the error; a
// non-nil error means the run itself broke and the report may be
// partial.
func (f *Framework) Run(ctx context.Context) (*core.Report, error) {
	dispatcher := core.NewDispatcher()
	stack := core.NewDeferStack()
	runner := core.NewMonotonicRunner(dispatcher, core.RunnerWithDeferStack(stack))
	parser := core.NewFlagParser(appName, f.cfg.Args)

	kernelCfg := core.DefaultConfig()
	kernelCfg.Path = f.cfg.ConfigPath
	kernelCfg.ScenariosDir = f.cfg.Settings.ScenariosDir

	for _, s := range f.subscribers(stack, kernelCfg) {
		s.Subscribe(dispatcher)
	}

	logging.Debug("harness", "Starting run with scenarios from %s", kernelCfg.ScenariosDir)
	lc := core.NewLifecycle(dispatcher, loader.New(f.registry), runner, parser, kernelCfg)
	return lc.Start(ctx)
}

// subscribers builds the plugin set in firing order: cleanup flushes
// first on terminal scenario events, then repeats are scheduled, then
// the chosen reporter prints.
func (f *Framework) subscribers(stack *core.DeferStack, kernelCfg *core.Config) []core.Subscriber {
	palette := director.NewPalette(!f.cfg.NoColor)
	console := director.NewConsoleReporter(
		director.ConsoleWithWriter(f.cfg.Stdout),
		director.ConsoleWithPalette(palette),
	)
	jsonOpts := []director.JSONOption{director.JSONWithWriter(f.cfg.Stdout)}
	if f.cfg.ReportPath != "" {
		jsonOpts = append(jsonOpts, director.JSONWithPath(f.cfg.ReportPath))
	}
	tui := director.NewTUIReporter(
		director.TUIWithWriter(f.cfg.Stdout),
		director.TUIWithPalette(palette),
	)

	return []core.Subscriber{
		&settingsBinder{settings: f.cfg.Settings, kernelCfg: kernelCfg},
		deferrer.New(stack),
		repeater.New(),
		director.New(f.cfg.Settings.Reporter,
			console,
			director.NewSilentReporter(),
			director.NewJSONReporter(jsonOpts...),
			tui,
		),
	}
}

// List discovers the scenarios without running them.
func (f *Framework) List(ctx context.Context) ([]*core.VirtualScenario, error) {
	return loader.New(f.registry).Discover(ctx, f.cfg.Settings.ScenariosDir)
}

// Validate parses every scenario file under the configured directory
// and returns how many scenarios it found. The first malformed file
// surfaces as the error.
func (f *Framework) Validate(ctx context.Context) (int, error) {
	scenarios, err := f.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(scenarios), nil
}
