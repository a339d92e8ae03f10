// Package deferrer owns the deferred-cleanup stack across a run: it
// empties the stack when a scenario starts and flushes it, last
// registered first, when the scenario passes or fails. Skipped
// scenarios never execute steps, so nothing is flushed for them.
package deferrer

import (
	"context"

	"scenarist/pkg/core"
)

// Plugin wires the defer stack into the scenario lifecycle.
type Plugin struct {
	stack *core.DeferStack
}

var _ core.Subscriber = (*Plugin)(nil)

// New creates the plugin around the stack the runner was built with.
func New(stack *core.DeferStack) *Plugin {
	return &Plugin{stack: stack}
}

// Subscribe registers the lifecycle handlers.
func (p *Plugin) Subscribe(d *core.Dispatcher) {
	d.On(core.KindScenarioRun, p.onScenarioRun)
	d.On(core.KindScenarioPassed, p.onScenarioEnd)
	d.On(core.KindScenarioFailed, p.onScenarioEnd)
}

func (p *Plugin) onScenarioRun(ctx context.Context, e core.Event) error {
	p.stack.Clear()
	return nil
}

// onScenarioEnd flushes the stack. A failing deferred callable aborts
// the flush and its error propagates through the dispatcher.
func (p *Plugin) onScenarioEnd(ctx context.Context, e core.Event) error {
	return p.stack.Flush(ctx)
}
