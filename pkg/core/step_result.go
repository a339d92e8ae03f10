package core

import "time"

// StepStatus is the execution status of a step.
type StepStatus int

const (
	StepPending StepStatus = iota
	StepPassed
	StepFailed
)

func (s StepStatus) String() string {
	switch s {
	case StepPending:
		return "pending"
	case StepPassed:
		return "passed"
	case StepFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// StepResult tracks one step execution. Status moves one way from
// pending to passed or failed and never reverts; mutators after the
// first terminal transition are no-ops.
type StepResult struct {
	step      *VirtualStep
	status    StepStatus
	excInfo   *ExcInfo
	startedAt time.Time
	endedAt   time.Time
}

// NewStepResult creates a pending result for a step.
func NewStepResult(step *VirtualStep) *StepResult {
	return &StepResult{step: step, status: StepPending}
}

// Step returns the step descriptor.
func (r *StepResult) Step() *VirtualStep { return r.step }

// StepName returns the step's name.
func (r *StepResult) StepName() string { return r.step.Name() }

// Status returns the current status.
func (r *StepResult) Status() StepStatus { return r.status }

// MarkPassed transitions pending to passed.
func (r *StepResult) MarkPassed() *StepResult {
	if r.status == StepPending {
		r.status = StepPassed
	}
	return r
}

// MarkFailed transitions pending to failed.
func (r *StepResult) MarkFailed() *StepResult {
	if r.status == StepPending {
		r.status = StepFailed
	}
	return r
}

// IsPassed reports whether the step passed.
func (r *StepResult) IsPassed() bool { return r.status == StepPassed }

// IsFailed reports whether the step failed.
func (r *StepResult) IsFailed() bool { return r.status == StepFailed }

// SetExcInfo attaches captured exception info.
func (r *StepResult) SetExcInfo(exc *ExcInfo) *StepResult {
	r.excInfo = exc
	return r
}

// ExcInfo returns the captured exception info, nil unless failed.
func (r *StepResult) ExcInfo() *ExcInfo { return r.excInfo }

// SetStartedAt records when the step began.
func (r *StepResult) SetStartedAt(t time.Time) *StepResult {
	r.startedAt = t
	return r
}

// SetEndedAt records when the step settled.
func (r *StepResult) SetEndedAt(t time.Time) *StepResult {
	r.endedAt = t
	return r
}

// StartedAt returns the start timestamp, zero if never started.
func (r *StepResult) StartedAt() time.Time { return r.startedAt }

// EndedAt returns the end timestamp, zero if never settled.
func (r *StepResult) EndedAt() time.Time { return r.endedAt }

// Elapsed returns the execution duration, zero while timestamps are
// incomplete.
func (r *StepResult) Elapsed() time.Duration {
	if r.startedAt.IsZero() || r.endedAt.IsZero() {
		return 0
	}
	return r.endedAt.Sub(r.startedAt)
}
