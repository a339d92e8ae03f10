package director

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"scenarist/pkg/core"
)

// ConsoleReporter renders the classic streaming view: one line per
// scenario grouped under namespace headers, more failure detail with
// each -v, and a one-line summary at the end.
//
// Verbosity ladder for failures: 0 is the subject line only, 1 adds the
// executed step lines, 2 adds the traceback, 3 adds the scope dump.
type ConsoleReporter struct {
	out     io.Writer
	palette *Palette

	verbosity       int
	tbShowInternals bool

	namespace      string
	namespaceShown bool
}

var (
	_ Reporter     = (*ConsoleReporter)(nil)
	_ OptionsAware = (*ConsoleReporter)(nil)
)

// ConsoleOption configures a ConsoleReporter.
type ConsoleOption func(*ConsoleReporter)

// ConsoleWithWriter redirects output, for tests and the JSON tee.
func ConsoleWithWriter(w io.Writer) ConsoleOption {
	return func(r *ConsoleReporter) { r.out = w }
}

// ConsoleWithPalette replaces the default colored palette.
func ConsoleWithPalette(p *Palette) ConsoleOption {
	return func(r *ConsoleReporter) { r.palette = p }
}

// NewConsoleReporter creates a reporter writing colored output to
// stdout.
func NewConsoleReporter(opts ...ConsoleOption) *ConsoleReporter {
	r := &ConsoleReporter{out: os.Stdout, palette: NewPalette(true)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name implements Reporter.
func (r *ConsoleReporter) Name() string { return "console" }

// ApplyOptions implements OptionsAware.
func (r *ConsoleReporter) ApplyOptions(opts *core.Options) {
	r.verbosity = opts.Verbosity
	r.tbShowInternals = opts.TbShowInternals
}

// Subscribe implements Reporter.
func (r *ConsoleReporter) Subscribe(d *core.Dispatcher) {
	d.On(core.KindStartup, r.onStartup)
	d.On(core.KindScenarioRun, r.onScenarioRun)
	d.On(core.KindScenarioPassed, r.onScenarioPassed)
	d.On(core.KindScenarioFailed, r.onScenarioFailed)
	d.On(core.KindScenarioSkipped, r.onScenarioSkipped)
	d.On(core.KindCleanup, r.onCleanup)
}

func (r *ConsoleReporter) onStartup(ctx context.Context, e core.Event) error {
	fmt.Fprintln(r.out, "Scenarios")
	return nil
}

func (r *ConsoleReporter) onScenarioRun(ctx context.Context, e core.Event) error {
	r.printNamespace(e.(core.ScenarioRunEvent).Result.Scenario().Namespace())
	return nil
}

func (r *ConsoleReporter) onScenarioPassed(ctx context.Context, e core.Event) error {
	result := e.(core.ScenarioPassedEvent).Result
	fmt.Fprintln(r.out, r.palette.Green(" ✔ "+result.Scenario().Subject()))
	return nil
}

func (r *ConsoleReporter) onScenarioSkipped(ctx context.Context, e core.Event) error {
	result := e.(core.ScenarioSkippedEvent).Result
	scenario := result.Scenario()
	r.printNamespace(scenario.Namespace())

	line := " ○ " + scenario.Subject()
	if reason := scenario.SkipReason(); reason != "" {
		line += " (" + reason + ")"
	}
	fmt.Fprintln(r.out, r.palette.Grey(line))
	return nil
}

func (r *ConsoleReporter) onScenarioFailed(ctx context.Context, e core.Event) error {
	result := e.(core.ScenarioFailedEvent).Result
	fmt.Fprintln(r.out, r.palette.Red(" ✗ "+result.Scenario().Subject()))

	if r.verbosity >= 1 {
		r.printSteps(result)
	}
	if r.verbosity >= 2 {
		if exc := result.ExcInfo(); exc != nil {
			fmt.Fprintln(r.out, r.palette.Yellow(r.formatTraceback(exc)))
		}
	}
	if r.verbosity >= 3 {
		r.printScope(result.Scope())
	}
	return nil
}

func (r *ConsoleReporter) onCleanup(ctx context.Context, e core.Event) error {
	report := e.(core.CleanupEvent).Report

	summary := fmt.Sprintf("# %d scenarios, %d passed, %d failed, %d skipped",
		report.Total(), report.Passed(), report.Failed(), report.Skipped())
	style := r.palette.BoldRed
	if report.Failed() == 0 && report.Passed() > 0 {
		style = r.palette.BoldGreen
	}
	duration := fmt.Sprintf(" (%.2fs)", report.ElapsedSeconds())

	fmt.Fprintln(r.out, " ")
	fmt.Fprintln(r.out, style(summary)+r.palette.Blue(duration))
	return nil
}

// printNamespace prints the group header when the namespace changes.
func (r *ConsoleReporter) printNamespace(ns string) {
	if r.namespaceShown && ns == r.namespace {
		return
	}
	r.namespace = ns
	r.namespaceShown = true
	fmt.Fprintln(r.out, r.palette.Bold(strings.TrimRight("* "+ns, " ")))
}

// printSteps prints the executed steps; steps the failure prevented
// from running have no line.
func (r *ConsoleReporter) printSteps(result *core.ScenarioResult) {
	for _, sr := range result.StepResults() {
		switch {
		case sr.IsPassed():
			fmt.Fprintln(r.out, r.palette.Green("    ✔ "+sr.StepName()))
		case sr.IsFailed():
			fmt.Fprintln(r.out, r.palette.Red("    ✗ "+sr.StepName()))
		}
	}
}

func (r *ConsoleReporter) formatTraceback(exc *core.ExcInfo) string {
	var lines []string
	for _, frame := range exc.Frames {
		if !r.tbShowInternals && isInternalFrame(frame) {
			continue
		}
		lines = append(lines, "  at "+frame.Function)
		lines = append(lines, fmt.Sprintf("      %s:%d", frame.File, frame.Line))
	}
	lines = append(lines, exc.String())
	return strings.Join(lines, "\n")
}

// isInternalFrame hides runtime and kernel frames the failure merely
// passed through.
func isInternalFrame(f core.Frame) bool {
	if strings.HasPrefix(f.Function, "runtime.") || strings.HasPrefix(f.Function, "testing.") {
		return true
	}
	return strings.Contains(f.Function, "scenarist/pkg/core.")
}

func (r *ConsoleReporter) printScope(scope *core.Scope) {
	if scope == nil || scope.Len() == 0 {
		return
	}
	fmt.Fprintln(r.out, r.palette.BoldBlue("Scope:"))
	for _, key := range scope.Keys() {
		value, _ := scope.Get(key)
		fmt.Fprintf(r.out, "%s%s\n", r.palette.Blue(" "+key+": "), formatScopeValue(value))
	}
	fmt.Fprintln(r.out, " ")
}

func formatScopeValue(v any) string {
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(encoded)
}
