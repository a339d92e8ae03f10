package core

import (
	"context"
	"errors"
	"sync/atomic"
)

// Lifecycle drives one full run: the fixed event ladder, discovery,
// the scheduling loop, aggregation and the final report.
//
// Event order:
//
//	Init -> ArgParse -> ArgParsed -> ConfigLoaded -> Startup ->
//	  (per unit: ScenarioRun/StepRun... -> ScenarioPassed|Failed|Skipped,
//	   per aggregate: ScenarioReported) -> Cleanup
//
// Any handler error aborts the run immediately; the report returned
// alongside it may be partial and unsealed.
type Lifecycle struct {
	dispatcher *Dispatcher
	discoverer Discoverer
	runner     ScenarioRunner
	parser     OptionsParser
	config     *Config

	started atomic.Bool
}

// NewLifecycle wires the collaborators for a run. A nil config selects
// DefaultConfig.
func NewLifecycle(d *Dispatcher, discoverer Discoverer, runner ScenarioRunner, parser OptionsParser, config *Config) *Lifecycle {
	if config == nil {
		config = DefaultConfig()
	}
	return &Lifecycle{
		dispatcher: d,
		discoverer: discoverer,
		runner:     runner,
		parser:     parser,
		config:     config,
	}
}

// Start runs the lifecycle to completion. It is single-use; a second
// call returns ErrLifecycleStarted.
func (l *Lifecycle) Start(ctx context.Context) (*Report, error) {
	if !l.started.CompareAndSwap(false, true) {
		return nil, ErrLifecycleStarted
	}

	report := NewReport()

	if err := l.dispatcher.Fire(ctx, InitEvent{}); err != nil {
		return report, err
	}

	if err := l.dispatcher.Fire(ctx, ArgParseEvent{Flags: l.parser.FlagSet()}); err != nil {
		return report, err
	}
	options, err := l.parser.Parse()
	if err != nil {
		return report, err
	}
	if err := l.dispatcher.Fire(ctx, ArgParsedEvent{Options: options}); err != nil {
		return report, err
	}

	if err := l.dispatcher.Fire(ctx, ConfigLoadedEvent{Path: l.config.Path, Config: l.config}); err != nil {
		return report, err
	}

	discovered, err := l.discoverer.Discover(ctx, l.config.ScenariosDir)
	if err != nil {
		return report, err
	}

	factory := l.config.Factories.Scheduler
	if factory == nil {
		factory = func(scenarios []*VirtualScenario) ScenarioScheduler {
			return NewMonotonicScheduler(scenarios)
		}
	}
	scheduler := factory(discovered)

	if err := l.dispatcher.Fire(ctx, StartupEvent{Scheduler: scheduler}); err != nil {
		return report, err
	}

	// Consecutive runs of the same scenario form one aggregation chain;
	// the chain closes when a different scenario comes up or the queue
	// drains.
	var chain []*ScenarioResult
	flushChain := func() error {
		if len(chain) == 0 {
			return nil
		}
		aggregate, err := scheduler.Aggregate(chain)
		if err != nil {
			return err
		}
		chain = nil
		if err := report.AddResult(aggregate); err != nil {
			return err
		}
		return l.dispatcher.Fire(ctx, ScenarioReportedEvent{Result: aggregate})
	}

	var loopErr error
	for scheduler.HasNext() {
		if err := ctx.Err(); err != nil {
			loopErr = err
			break
		}
		scenario, err := scheduler.Next()
		if err != nil {
			if errors.Is(err, ErrQueueEmpty) {
				break
			}
			return report, err
		}

		if len(chain) > 0 && chain[len(chain)-1].Scenario().ID() != scenario.ID() {
			if err := flushChain(); err != nil {
				return report, err
			}
		}

		result, err := l.runner.Run(ctx, scenario)
		if err != nil {
			return report, err
		}
		chain = append(chain, result)
	}

	if err := flushChain(); err != nil {
		return report, err
	}

	report.Seal()
	if err := l.dispatcher.Fire(ctx, CleanupEvent{Report: report}); err != nil {
		return report, err
	}
	return report, loopErr
}
