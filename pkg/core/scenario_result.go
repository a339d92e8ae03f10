package core

import "time"

// ScenarioStatus is the terminal verdict of a scenario execution.
type ScenarioStatus int

const (
	ScenarioPending ScenarioStatus = iota
	ScenarioPassed
	ScenarioFailed
	ScenarioSkipped
)

func (s ScenarioStatus) String() string {
	switch s {
	case ScenarioPending:
		return "pending"
	case ScenarioPassed:
		return "passed"
	case ScenarioFailed:
		return "failed"
	case ScenarioSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// ScenarioResult tracks one scenario execution: status, ordered step
// results (insertion order is execution order), timing, and the scope
// snapshot taken at a failure point. Owned by the runner while the
// scenario runs, then by the scheduler and report.
//
// Invariant: failed iff at least one step result failed; passed iff all
// executed steps passed and at least one ran; skipped results carry zero
// step results. Status transitions leave pending exactly once.
type ScenarioResult struct {
	scenario    *VirtualScenario
	status      ScenarioStatus
	stepResults []*StepResult
	startedAt   time.Time
	endedAt     time.Time
	scope       *Scope
	excInfo     *ExcInfo
}

// NewScenarioResult creates a pending result for a scenario.
func NewScenarioResult(scenario *VirtualScenario) *ScenarioResult {
	return &ScenarioResult{scenario: scenario, status: ScenarioPending}
}

// Scenario returns the scenario descriptor.
func (r *ScenarioResult) Scenario() *VirtualScenario { return r.scenario }

// Status returns the current status.
func (r *ScenarioResult) Status() ScenarioStatus { return r.status }

// MarkPassed transitions pending to passed.
func (r *ScenarioResult) MarkPassed() *ScenarioResult {
	if r.status == ScenarioPending {
		r.status = ScenarioPassed
	}
	return r
}

// MarkFailed transitions pending to failed.
func (r *ScenarioResult) MarkFailed() *ScenarioResult {
	if r.status == ScenarioPending {
		r.status = ScenarioFailed
	}
	return r
}

// MarkSkipped transitions pending to skipped.
func (r *ScenarioResult) MarkSkipped() *ScenarioResult {
	if r.status == ScenarioPending {
		r.status = ScenarioSkipped
	}
	return r
}

// IsPassed reports whether the scenario passed.
func (r *ScenarioResult) IsPassed() bool { return r.status == ScenarioPassed }

// IsFailed reports whether the scenario failed.
func (r *ScenarioResult) IsFailed() bool { return r.status == ScenarioFailed }

// IsSkipped reports whether the scenario was skipped.
func (r *ScenarioResult) IsSkipped() bool { return r.status == ScenarioSkipped }

// AddStepResult appends a step result in execution order.
func (r *ScenarioResult) AddStepResult(sr *StepResult) *ScenarioResult {
	r.stepResults = append(r.stepResults, sr)
	return r
}

// StepResults returns the step results in execution order.
func (r *ScenarioResult) StepResults() []*StepResult { return r.stepResults }

// SetStartedAt records when the scenario began.
func (r *ScenarioResult) SetStartedAt(t time.Time) *ScenarioResult {
	r.startedAt = t
	return r
}

// SetEndedAt records when the scenario settled.
func (r *ScenarioResult) SetEndedAt(t time.Time) *ScenarioResult {
	r.endedAt = t
	return r
}

// StartedAt returns the start timestamp, zero if never started.
func (r *ScenarioResult) StartedAt() time.Time { return r.startedAt }

// EndedAt returns the end timestamp, zero if never settled.
func (r *ScenarioResult) EndedAt() time.Time { return r.endedAt }

// Elapsed returns the execution duration, zero while timestamps are
// incomplete.
func (r *ScenarioResult) Elapsed() time.Duration {
	if r.startedAt.IsZero() || r.endedAt.IsZero() {
		return 0
	}
	return r.endedAt.Sub(r.startedAt)
}

// SetScope attaches the scope snapshot taken at a failure point.
func (r *ScenarioResult) SetScope(scope *Scope) *ScenarioResult {
	r.scope = scope
	return r
}

// Scope returns the snapshot, nil unless one was taken.
func (r *ScenarioResult) Scope() *Scope { return r.scope }

// SetExcInfo attaches the failure's exception info (the first failing
// step's).
func (r *ScenarioResult) SetExcInfo(exc *ExcInfo) *ScenarioResult {
	r.excInfo = exc
	return r
}

// ExcInfo returns the failure's exception info, nil unless failed.
func (r *ScenarioResult) ExcInfo() *ExcInfo { return r.excInfo }
