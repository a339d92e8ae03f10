package director

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"scenarist/pkg/core"
)

// JSONReporter writes the machine-readable run document: run identity,
// counters, span, and per-scenario detail down to step errors and the
// failure scope. It renders once, at Cleanup, from the sealed report.
type JSONReporter struct {
	out  io.Writer
	path string
}

var _ Reporter = (*JSONReporter)(nil)

// JSONOption configures a JSONReporter.
type JSONOption func(*JSONReporter)

// JSONWithWriter redirects output away from stdout.
func JSONWithWriter(w io.Writer) JSONOption {
	return func(r *JSONReporter) { r.out = w }
}

// JSONWithPath writes the document to a file instead of the writer.
func JSONWithPath(path string) JSONOption {
	return func(r *JSONReporter) { r.path = path }
}

// NewJSONReporter creates a reporter writing to stdout.
func NewJSONReporter(opts ...JSONOption) *JSONReporter {
	r := &JSONReporter{out: os.Stdout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name implements Reporter.
func (r *JSONReporter) Name() string { return "json" }

// Subscribe implements Reporter.
func (r *JSONReporter) Subscribe(d *core.Dispatcher) {
	d.On(core.KindCleanup, r.onCleanup)
}

type jsonRun struct {
	RunID          string         `json:"run_id"`
	Total          int            `json:"total"`
	Passed         int            `json:"passed"`
	Failed         int            `json:"failed"`
	Skipped        int            `json:"skipped"`
	StartedAt      *time.Time     `json:"started_at,omitempty"`
	EndedAt        *time.Time     `json:"ended_at,omitempty"`
	ElapsedSeconds float64        `json:"elapsed_seconds"`
	Scenarios      []jsonScenario `json:"scenarios"`
}

type jsonScenario struct {
	ID             string         `json:"id"`
	Path           string         `json:"path"`
	Namespace      string         `json:"namespace,omitempty"`
	Subject        string         `json:"subject"`
	Status         string         `json:"status"`
	SkipReason     string         `json:"skip_reason,omitempty"`
	ElapsedSeconds float64        `json:"elapsed_seconds"`
	Steps          []jsonStep     `json:"steps,omitempty"`
	Scope          map[string]any `json:"scope,omitempty"`
	Error          *core.ExcInfo  `json:"error,omitempty"`
}

type jsonStep struct {
	Name           string        `json:"name"`
	Status         string        `json:"status"`
	ElapsedSeconds float64       `json:"elapsed_seconds"`
	Error          *core.ExcInfo `json:"error,omitempty"`
}

func (r *JSONReporter) onCleanup(ctx context.Context, e core.Event) error {
	report := e.(core.CleanupEvent).Report

	doc := jsonRun{
		RunID:          report.RunID(),
		Total:          report.Total(),
		Passed:         report.Passed(),
		Failed:         report.Failed(),
		Skipped:        report.Skipped(),
		ElapsedSeconds: report.ElapsedSeconds(),
		Scenarios:      make([]jsonScenario, 0, len(report.Results())),
	}
	if t := report.StartedAt(); !t.IsZero() {
		doc.StartedAt = &t
	}
	if t := report.EndedAt(); !t.IsZero() {
		doc.EndedAt = &t
	}
	for _, result := range report.Results() {
		doc.Scenarios = append(doc.Scenarios, scenarioToJSON(result))
	}

	encoded, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding run report: %w", err)
	}
	encoded = append(encoded, '\n')

	if r.path != "" {
		if err := os.WriteFile(r.path, encoded, 0o644); err != nil {
			return fmt.Errorf("writing run report: %w", err)
		}
		return nil
	}
	_, err = r.out.Write(encoded)
	return err
}

func scenarioToJSON(result *core.ScenarioResult) jsonScenario {
	scenario := result.Scenario()
	out := jsonScenario{
		ID:             scenario.ID(),
		Path:           scenario.Path(),
		Namespace:      scenario.Namespace(),
		Subject:        scenario.Subject(),
		Status:         result.Status().String(),
		SkipReason:     scenario.SkipReason(),
		ElapsedSeconds: result.Elapsed().Seconds(),
		Error:          result.ExcInfo(),
	}
	for _, sr := range result.StepResults() {
		out.Steps = append(out.Steps, jsonStep{
			Name:           sr.StepName(),
			Status:         sr.Status().String(),
			ElapsedSeconds: sr.Elapsed().Seconds(),
			Error:          sr.ExcInfo(),
		})
	}
	if scope := result.Scope(); scope != nil && scope.Len() > 0 {
		out.Scope = scope.Map()
	}
	return out
}
