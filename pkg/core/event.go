package core

import "github.com/spf13/pflag"

// EventKind identifies a lifecycle moment.
type EventKind string

const (
	// Lifecycle events
	KindInit         EventKind = "lifecycle.init"
	KindArgParse     EventKind = "args.parse"
	KindArgParsed    EventKind = "args.parsed"
	KindConfigLoaded EventKind = "config.loaded"
	KindStartup      EventKind = "lifecycle.startup"
	KindCleanup      EventKind = "lifecycle.cleanup"

	// Scenario events
	KindScenarioRun      EventKind = "scenario.run"
	KindScenarioPassed   EventKind = "scenario.passed"
	KindScenarioFailed   EventKind = "scenario.failed"
	KindScenarioSkipped  EventKind = "scenario.skipped"
	KindScenarioReported EventKind = "scenario.reported"

	// Step events
	KindStepRun    EventKind = "step.run"
	KindStepPassed EventKind = "step.passed"
	KindStepFailed EventKind = "step.failed"
)

// Event is a lifecycle moment with an immutable identity payload.
// Subscribers must not replace the payload; they may interact with the
// mutable state a payload explicitly exposes (e.g. the scheduler).
type Event interface {
	Kind() EventKind
}

// InitEvent is fired once before anything else happens.
type InitEvent struct{}

// ArgParseEvent carries the mutable flag set; handlers may register
// additional flags before the collaborator parses.
type ArgParseEvent struct {
	Flags *pflag.FlagSet
}

// ArgParsedEvent carries the parsed options, read-only to handlers.
type ArgParsedEvent struct {
	Options *Options
}

// ConfigLoadedEvent carries the loaded configuration.
type ConfigLoadedEvent struct {
	Path   string
	Config *Config
}

// StartupEvent carries the populated scheduler. Handlers may keep the
// reference and call Schedule on it while the run loop is processing.
type StartupEvent struct {
	Scheduler ScenarioScheduler
}

// ScenarioRunEvent is fired before a scenario's first step executes.
type ScenarioRunEvent struct {
	Result *ScenarioResult
}

// ScenarioPassedEvent is fired after all steps of a scenario passed.
type ScenarioPassedEvent struct {
	Result *ScenarioResult
}

// ScenarioFailedEvent is fired after a step of a scenario failed.
type ScenarioFailedEvent struct {
	Result *ScenarioResult
}

// ScenarioSkippedEvent is fired for scenarios marked skipped; no steps
// run and no ScenarioRunEvent precedes it.
type ScenarioSkippedEvent struct {
	Result *ScenarioResult
}

// ScenarioReportedEvent is fired after an aggregated result has been
// added to the report.
type ScenarioReportedEvent struct {
	Result *ScenarioResult
}

// StepRunEvent is fired before a step body executes.
type StepRunEvent struct {
	Result *StepResult
}

// StepPassedEvent is fired after a step body returned without error.
type StepPassedEvent struct {
	Result *StepResult
}

// StepFailedEvent is fired after a step body returned an error or
// panicked.
type StepFailedEvent struct {
	Result *StepResult
}

// CleanupEvent carries the final sealed report.
type CleanupEvent struct {
	Report *Report
}

func (InitEvent) Kind() EventKind             { return KindInit }
func (ArgParseEvent) Kind() EventKind         { return KindArgParse }
func (ArgParsedEvent) Kind() EventKind        { return KindArgParsed }
func (ConfigLoadedEvent) Kind() EventKind     { return KindConfigLoaded }
func (StartupEvent) Kind() EventKind          { return KindStartup }
func (ScenarioRunEvent) Kind() EventKind      { return KindScenarioRun }
func (ScenarioPassedEvent) Kind() EventKind   { return KindScenarioPassed }
func (ScenarioFailedEvent) Kind() EventKind   { return KindScenarioFailed }
func (ScenarioSkippedEvent) Kind() EventKind  { return KindScenarioSkipped }
func (ScenarioReportedEvent) Kind() EventKind { return KindScenarioReported }
func (StepRunEvent) Kind() EventKind          { return KindStepRun }
func (StepPassedEvent) Kind() EventKind       { return KindStepPassed }
func (StepFailedEvent) Kind() EventKind       { return KindStepFailed }
func (CleanupEvent) Kind() EventKind          { return KindCleanup }

var (
	_ Event = InitEvent{}
	_ Event = ArgParseEvent{}
	_ Event = ArgParsedEvent{}
	_ Event = ConfigLoadedEvent{}
	_ Event = StartupEvent{}
	_ Event = ScenarioRunEvent{}
	_ Event = ScenarioPassedEvent{}
	_ Event = ScenarioFailedEvent{}
	_ Event = ScenarioSkippedEvent{}
	_ Event = ScenarioReportedEvent{}
	_ Event = StepRunEvent{}
	_ Event = StepPassedEvent{}
	_ Event = StepFailedEvent{}
	_ Event = CleanupEvent{}
)
