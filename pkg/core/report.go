package core

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Report is the ordered accumulation of scenario results for one run.
// It is a passive read model: counters update on AddResult and no policy
// logic lives here. The lifecycle seals it when the run finishes; a
// sealed report accepts no further results.
type Report struct {
	runID   string
	results []*ScenarioResult
	total   int
	passed  int
	failed  int
	skipped int
	sealed  bool
}

// NewReport creates an empty report with a fresh run identity.
func NewReport() *Report {
	return &Report{runID: uuid.NewString()}
}

// RunID returns the identity correlating artifacts of this run.
func (r *Report) RunID() string { return r.runID }

// AddResult appends a result and updates counters by its terminal
// status; a pending result is appended without counting. Returns
// ErrReportSealed once the report is sealed.
func (r *Report) AddResult(res *ScenarioResult) error {
	if r.sealed {
		return ErrReportSealed
	}
	r.results = append(r.results, res)
	switch res.Status() {
	case ScenarioPassed:
		r.total++
		r.passed++
	case ScenarioFailed:
		r.total++
		r.failed++
	case ScenarioSkipped:
		r.total++
		r.skipped++
	}
	return nil
}

// Results returns the contained results in insertion order.
func (r *Report) Results() []*ScenarioResult { return r.results }

// Total returns the count of terminal results added.
func (r *Report) Total() int { return r.total }

// Passed returns the count of passed results.
func (r *Report) Passed() int { return r.passed }

// Failed returns the count of failed results.
func (r *Report) Failed() int { return r.failed }

// Skipped returns the count of skipped results.
func (r *Report) Skipped() int { return r.skipped }

// StartedAt returns the earliest start across contained results, zero
// when none carries a start time.
func (r *Report) StartedAt() time.Time {
	var earliest time.Time
	for _, res := range r.results {
		t := res.StartedAt()
		if t.IsZero() {
			continue
		}
		if earliest.IsZero() || t.Before(earliest) {
			earliest = t
		}
	}
	return earliest
}

// EndedAt returns the latest end across contained results, zero when
// none carries an end time.
func (r *Report) EndedAt() time.Time {
	var latest time.Time
	for _, res := range r.results {
		t := res.EndedAt()
		if t.After(latest) {
			latest = t
		}
	}
	return latest
}

// Elapsed returns the earliest-to-latest span across contained results.
// Overlapping result windows are not summed; the span is the
// presentation duration.
func (r *Report) Elapsed() time.Duration {
	started, ended := r.StartedAt(), r.EndedAt()
	if started.IsZero() || ended.IsZero() {
		return 0
	}
	return ended.Sub(started)
}

// ElapsedSeconds returns the span in seconds rounded half-up to two
// decimals, the figure reporters print.
func (r *Report) ElapsedSeconds() float64 {
	return math.Round(r.Elapsed().Seconds()*100) / 100
}

// Seal freezes the report; further AddResult calls fail.
func (r *Report) Seal() { r.sealed = true }

// Sealed reports whether the report is sealed.
func (r *Report) Sealed() bool { return r.sealed }
