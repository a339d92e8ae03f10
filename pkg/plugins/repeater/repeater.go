// Package repeater re-enqueues each scenario N-1 extra times when runs
// are requested with --repeats N. Repeats are scheduled the first time
// a scenario reaches a terminal outcome, so they run back to back and
// the scheduler aggregates them into one reported result.
package repeater

import (
	"context"

	"scenarist/pkg/core"
)

// Plugin implements the repeat policy on top of the scheduler.
type Plugin struct {
	repeats   int
	scheduler core.ScenarioScheduler
	lastID    string
}

var _ core.Subscriber = (*Plugin)(nil)

// New creates a disabled plugin; --repeats 2 or higher enables it.
func New() *Plugin {
	return &Plugin{repeats: 1}
}

// Subscribe registers the lifecycle handlers.
func (p *Plugin) Subscribe(d *core.Dispatcher) {
	d.On(core.KindArgParse, p.onArgParse)
	d.On(core.KindArgParsed, p.onArgParsed)
	d.On(core.KindStartup, p.onStartup)
	d.On(core.KindScenarioPassed, p.onScenarioEnd)
	d.On(core.KindScenarioFailed, p.onScenarioEnd)
}

func (p *Plugin) onArgParse(ctx context.Context, e core.Event) error {
	e.(core.ArgParseEvent).Flags.Int("repeats", 1, "run each scenario N times")
	return nil
}

func (p *Plugin) onArgParsed(ctx context.Context, e core.Event) error {
	if opts := e.(core.ArgParsedEvent).Options; opts.Repeats > 1 {
		p.repeats = opts.Repeats
	}
	return nil
}

func (p *Plugin) onStartup(ctx context.Context, e core.Event) error {
	p.scheduler = e.(core.StartupEvent).Scheduler
	return nil
}

// onScenarioEnd schedules the remaining repeats once per scenario. The
// last-ID guard keeps the terminal events of the repeats themselves
// from scheduling further rounds.
func (p *Plugin) onScenarioEnd(ctx context.Context, e core.Event) error {
	if p.repeats < 2 || p.scheduler == nil {
		return nil
	}

	var result *core.ScenarioResult
	switch ev := e.(type) {
	case core.ScenarioPassedEvent:
		result = ev.Result
	case core.ScenarioFailedEvent:
		result = ev.Result
	default:
		return nil
	}

	scenario := result.Scenario()
	if scenario.ID() == p.lastID {
		return nil
	}
	p.lastID = scenario.ID()

	for i := 1; i < p.repeats; i++ {
		p.scheduler.Schedule(scenario)
	}
	return nil
}
