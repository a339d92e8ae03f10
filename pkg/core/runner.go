package core

import (
	"context"
	"time"
)

// ScenarioRunner executes one scenario unit, firing lifecycle events
// through the dispatcher as it goes. The returned error is only ever a
// handler failure surfaced by Fire; step failures are converted into
// the result and never propagate.
type ScenarioRunner interface {
	Run(ctx context.Context, scenario *VirtualScenario) (*ScenarioResult, error)
}

// MonotonicRunner runs steps strictly in declared order, never starting
// step i+1 before step i settles, and fails fast within a scenario: the
// first failing step stops the loop.
type MonotonicRunner struct {
	dispatcher *Dispatcher
	stack      *DeferStack
	now        func() time.Time
}

var _ ScenarioRunner = (*MonotonicRunner)(nil)

// RunnerOption configures a MonotonicRunner.
type RunnerOption func(*MonotonicRunner)

// RunnerWithDeferStack installs the deferred-cleanup stack the runner
// exposes to step bodies through their context.
func RunnerWithDeferStack(stack *DeferStack) RunnerOption {
	return func(r *MonotonicRunner) { r.stack = stack }
}

// RunnerWithNow replaces the clock, for tests.
func RunnerWithNow(now func() time.Time) RunnerOption {
	return func(r *MonotonicRunner) { r.now = now }
}

// NewMonotonicRunner creates a runner firing through d.
func NewMonotonicRunner(d *Dispatcher, opts ...RunnerOption) *MonotonicRunner {
	r := &MonotonicRunner{dispatcher: d, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one scenario. Skipped scenarios produce a skipped result
// with zero step results and fire only ScenarioSkippedEvent.
func (r *MonotonicRunner) Run(ctx context.Context, scenario *VirtualScenario) (*ScenarioResult, error) {
	result := NewScenarioResult(scenario)

	if scenario.Skipped() {
		result.MarkSkipped()
		if err := r.dispatcher.Fire(ctx, ScenarioSkippedEvent{Result: result}); err != nil {
			return result, err
		}
		return result, nil
	}

	result.SetStartedAt(r.now())
	if err := r.dispatcher.Fire(ctx, ScenarioRunEvent{Result: result}); err != nil {
		return result, err
	}

	stepCtx := ctx
	if r.stack != nil {
		stepCtx = WithDeferStack(ctx, r.stack)
	}

	scope := NewScope()
	var failedStep *StepResult
	for _, step := range scenario.Steps() {
		stepResult := NewStepResult(step)
		result.AddStepResult(stepResult)
		stepResult.SetStartedAt(r.now())
		if err := r.dispatcher.Fire(ctx, StepRunEvent{Result: stepResult}); err != nil {
			return result, err
		}

		exc := r.invoke(stepCtx, step, scope)
		stepResult.SetEndedAt(r.now())

		if exc != nil {
			stepResult.SetExcInfo(exc).MarkFailed()
			if err := r.dispatcher.Fire(ctx, StepFailedEvent{Result: stepResult}); err != nil {
				return result, err
			}
			failedStep = stepResult
			break
		}

		stepResult.MarkPassed()
		if err := r.dispatcher.Fire(ctx, StepPassedEvent{Result: stepResult}); err != nil {
			return result, err
		}
	}

	result.SetEndedAt(r.now())

	if failedStep != nil {
		result.SetScope(scope.Snapshot())
		result.SetExcInfo(failedStep.ExcInfo())
		result.MarkFailed()
		if err := r.dispatcher.Fire(ctx, ScenarioFailedEvent{Result: result}); err != nil {
			return result, err
		}
		return result, nil
	}

	if len(result.StepResults()) == 0 {
		// Discovery validates against stepless scenarios; if one gets
		// through anyway it cannot legally pass.
		result.SetExcInfo(&ExcInfo{Kind: "error", Message: "scenario has no steps"})
		result.MarkFailed()
		if err := r.dispatcher.Fire(ctx, ScenarioFailedEvent{Result: result}); err != nil {
			return result, err
		}
		return result, nil
	}

	result.MarkPassed()
	if err := r.dispatcher.Fire(ctx, ScenarioPassedEvent{Result: result}); err != nil {
		return result, err
	}
	return result, nil
}

// invoke runs one step body, converting error returns and panics into
// captured exception info.
func (r *MonotonicRunner) invoke(ctx context.Context, step *VirtualStep, scope *Scope) (exc *ExcInfo) {
	defer func() {
		if v := recover(); v != nil {
			exc = capturePanicInfo(v)
		}
	}()
	if err := step.Call(ctx, scope); err != nil {
		return CaptureExcInfo(err)
	}
	return nil
}
