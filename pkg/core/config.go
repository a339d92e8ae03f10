package core

import "context"

// SchedulerFactory builds the scheduler for one run from the discovered
// scenarios.
type SchedulerFactory func(discovered []*VirtualScenario) ScenarioScheduler

// Factories is the pluggable-construction registry carried by Config.
// Handlers of ConfigLoaded may replace entries before Startup.
type Factories struct {
	Scheduler SchedulerFactory
}

// Config is the loaded run configuration published via ConfigLoaded.
type Config struct {
	// Path names the file the configuration was loaded from, empty for
	// built-in defaults.
	Path string

	// ScenariosDir is the discovery root.
	ScenariosDir string

	// Factories selects kernel collaborators.
	Factories Factories
}

// DefaultConfig returns a config with the monotonic scheduler and the
// conventional scenarios directory.
func DefaultConfig() *Config {
	return &Config{
		ScenariosDir: "scenarios",
		Factories: Factories{
			Scheduler: func(discovered []*VirtualScenario) ScenarioScheduler {
				return NewMonotonicScheduler(discovered)
			},
		},
	}
}

// Discoverer locates scenarios under a root. The YAML loader is the
// production implementation.
type Discoverer interface {
	Discover(ctx context.Context, root string) ([]*VirtualScenario, error)
}

// DiscovererFunc adapts a function to the Discoverer interface.
type DiscovererFunc func(ctx context.Context, root string) ([]*VirtualScenario, error)

// Discover calls f.
func (f DiscovererFunc) Discover(ctx context.Context, root string) ([]*VirtualScenario, error) {
	return f(ctx, root)
}
