// Package core implements the scenario orchestration kernel: an ordered
// event dispatcher, a lifecycle state machine, a scenario scheduler with
// dynamic re-enqueueing, a step runner that converts arbitrary step
// failures into structured results, and a deferred-cleanup stack.
//
// Architecture:
//
// The kernel is a single-threaded run loop. A Lifecycle drives the run:
// it fires lifecycle events through the Dispatcher, obtains scenarios
// from an external Discoverer, hands them to a ScenarioScheduler, and
// executes them one at a time through a ScenarioRunner. Plugins subscribe
// to events and react; they may schedule additional executions through
// the scheduler reference carried by the startup event. Results
// accumulate in a Report returned to the caller.
//
// Ordering guarantees:
//
//   - Event handlers run in subscription order, each to completion before
//     the next. A handler error stops propagation and surfaces to the
//     caller of Fire.
//   - The scheduler hands out units in a strict forward-only order; units
//     scheduled mid-run land immediately after the cursor so repeated
//     executions of one scenario stay consecutive.
//   - Steps within a scenario run strictly in declared order and never
//     interleave with another scenario's steps.
//
// Failure isolation:
//
// Errors and panics raised by step bodies are always caught and converted
// into failed step results carrying structured exception info. Errors
// raised by event handlers, deferred cleanup callables, or the scheduler
// contract are never caught; they abort the run and surface to the
// caller.
package core
