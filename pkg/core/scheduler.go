package core

// ScenarioScheduler holds the ordered work queue of scenario execution
// units and combines the results of repeated executions into one
// representative verdict.
type ScenarioScheduler interface {
	// HasNext reports whether any unit remains.
	HasNext() bool

	// Next removes and returns the earliest queued unit's scenario.
	// It fails with ErrQueueEmpty when nothing remains.
	Next() (*VirtualScenario, error)

	// Schedule enqueues one more execution of a scenario. Units
	// scheduled while unit k is processing land immediately after the
	// cursor, so repeats of the current scenario run consecutively.
	Schedule(scenario *VirtualScenario)

	// Aggregate combines the results of repeated executions of one
	// scenario into a single representative result.
	Aggregate(results []*ScenarioResult) (*ScenarioResult, error)

	// Discovered returns the scenarios the queue was seeded with.
	Discovered() []*VirtualScenario
}

// unit is one queue entry: a scenario and how many chained executions of
// it remain.
type unit struct {
	scenario  *VirtualScenario
	remaining int
}

// MonotonicScheduler hands out units in strict forward-only order: a
// unit returned by Next is never revisited, and scheduling during the
// processing of a unit affects only positions after the cursor.
//
// Single run loop ownership is assumed; there is no locking.
type MonotonicScheduler struct {
	discovered []*VirtualScenario
	queue      []*unit
}

var _ ScenarioScheduler = (*MonotonicScheduler)(nil)

// NewMonotonicScheduler seeds the queue from the discovered list in
// FIFO order. An empty list is a valid, immediately exhausted queue.
func NewMonotonicScheduler(scenarios []*VirtualScenario) *MonotonicScheduler {
	queue := make([]*unit, 0, len(scenarios))
	for _, s := range scenarios {
		queue = append(queue, &unit{scenario: s, remaining: 1})
	}
	return &MonotonicScheduler{discovered: scenarios, queue: queue}
}

// Discovered returns the seed list.
func (m *MonotonicScheduler) Discovered() []*VirtualScenario { return m.discovered }

// prune drops exhausted head units. The head is kept at zero remaining
// until the next query so that a Schedule call arriving between the
// current unit's executions can extend its chain.
func (m *MonotonicScheduler) prune() {
	for len(m.queue) > 0 && m.queue[0].remaining <= 0 {
		m.queue = m.queue[1:]
	}
}

// HasNext reports whether any execution remains.
func (m *MonotonicScheduler) HasNext() bool {
	m.prune()
	return len(m.queue) > 0
}

// Next returns the next scenario to execute.
func (m *MonotonicScheduler) Next() (*VirtualScenario, error) {
	m.prune()
	if len(m.queue) == 0 {
		return nil, ErrQueueEmpty
	}
	head := m.queue[0]
	head.remaining--
	return head.scenario, nil
}

// Schedule enqueues one more execution. When the head unit holds the
// same scenario the chain is extended in place; otherwise a fresh unit
// is inserted at the cursor.
func (m *MonotonicScheduler) Schedule(scenario *VirtualScenario) {
	if len(m.queue) > 0 && m.queue[0].scenario.ID() == scenario.ID() {
		m.queue[0].remaining++
		return
	}
	m.queue = append([]*unit{{scenario: scenario, remaining: 1}}, m.queue...)
}

// Aggregate combines repeat results into one representative: failed if
// any repeat failed (carrying the first failing repeat's steps, scope
// and exception info), otherwise passed if any passed (carrying the
// last passing repeat's), otherwise skipped. The timing span covers the
// earliest start to the latest end across all repeats.
func (m *MonotonicScheduler) Aggregate(results []*ScenarioResult) (*ScenarioResult, error) {
	if len(results) == 0 {
		return nil, ErrNoResults
	}
	if len(results) == 1 {
		return results[0], nil
	}

	var firstFailed, lastPassed *ScenarioResult
	for _, res := range results {
		if res.IsFailed() && firstFailed == nil {
			firstFailed = res
		}
		if res.IsPassed() {
			lastPassed = res
		}
	}

	rep := firstFailed
	if rep == nil {
		rep = lastPassed
	}

	agg := NewScenarioResult(results[0].Scenario())
	switch {
	case firstFailed != nil:
		agg.MarkFailed()
	case lastPassed != nil:
		agg.MarkPassed()
	default:
		rep = results[len(results)-1]
		agg.MarkSkipped()
	}
	for _, sr := range rep.StepResults() {
		agg.AddStepResult(sr)
	}
	agg.SetScope(rep.Scope())
	agg.SetExcInfo(rep.ExcInfo())

	for _, res := range results {
		started, ended := res.StartedAt(), res.EndedAt()
		if !started.IsZero() && (agg.StartedAt().IsZero() || started.Before(agg.StartedAt())) {
			agg.SetStartedAt(started)
		}
		if ended.After(agg.EndedAt()) {
			agg.SetEndedAt(ended)
		}
	}
	return agg, nil
}
