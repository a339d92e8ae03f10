package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenarist/pkg/core"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func passingScenario(subject string) string {
	return fmt.Sprintf(`subject: %s
steps:
  - name: seed
    action: set
    with:
      values:
        answer: 42
  - name: check
    action: assert
    with:
      that: answer == 42
`, subject)
}

func failingScenario(subject string) string {
	return fmt.Sprintf(`subject: %s
steps:
  - name: check
    action: assert
    with:
      that: 1 == 2
`, subject)
}

func newTestFramework(t *testing.T, dir string, buf *bytes.Buffer, mutate func(*FrameworkConfig)) *Framework {
	t.Helper()
	cfg := DefaultFrameworkConfig()
	cfg.Settings.ScenariosDir = dir
	cfg.Stdout = buf
	cfg.NoColor = true
	if mutate != nil {
		mutate(&cfg)
	}
	f, err := New(cfg)
	require.NoError(t, err)
	return f
}

func TestFramework_RunAllPassing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", passingScenario("first"))
	writeFile(t, dir, "b.yaml", passingScenario("second"))
	var buf bytes.Buffer

	report, err := newTestFramework(t, dir, &buf, nil).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, report.Sealed())
	assert.Equal(t, 2, report.Total())
	assert.Equal(t, 2, report.Passed())
	assert.Contains(t, buf.String(), " ✔ first")
	assert.Contains(t, buf.String(), "# 2 scenarios, 2 passed, 0 failed, 0 skipped")
}

func TestFramework_RunCollectsFailures(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.yaml", failingScenario("broken"))
	writeFile(t, dir, "good.yaml", passingScenario("fine"))
	var buf bytes.Buffer

	report, err := newTestFramework(t, dir, &buf, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Failed())
	assert.Equal(t, 1, report.Passed())
	assert.Contains(t, buf.String(), " ✗ broken")
	assert.Contains(t, buf.String(), "1 passed, 1 failed")
}

func TestFramework_ReporterFlagSelectsSilent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", passingScenario("quiet"))
	var buf bytes.Buffer

	f := newTestFramework(t, dir, &buf, func(cfg *FrameworkConfig) {
		cfg.Args = []string{"--reporter", "silent"}
	})
	report, err := f.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Passed())
	assert.Empty(t, buf.String())
}

func TestFramework_JSONReporter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", passingScenario("structured"))
	var buf bytes.Buffer

	f := newTestFramework(t, dir, &buf, func(cfg *FrameworkConfig) {
		cfg.Args = []string{"--reporter", "json"}
	})
	_, err := f.Run(context.Background())
	require.NoError(t, err)

	var doc struct {
		Total  int `json:"total"`
		Passed int `json:"passed"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, 1, doc.Total)
	assert.Equal(t, 1, doc.Passed)
}

func TestFramework_JSONReportFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", passingScenario("filed"))
	target := filepath.Join(t.TempDir(), "report.json")
	var buf bytes.Buffer

	f := newTestFramework(t, dir, &buf, func(cfg *FrameworkConfig) {
		cfg.Args = []string{"--reporter", "json"}
		cfg.ReportPath = target
	})
	_, err := f.Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"total": 1`)
}

func TestFramework_UnknownReporter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", passingScenario("never runs"))
	var buf bytes.Buffer

	f := newTestFramework(t, dir, &buf, func(cfg *FrameworkConfig) {
		cfg.Args = []string{"--reporter", "teletype"}
	})
	_, err := f.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown reporter "teletype"`)
}

func TestFramework_ScenariosDirFlagOverridesSettings(t *testing.T) {
	actual := t.TempDir()
	writeFile(t, actual, "a.yaml", passingScenario("relocated"))
	var buf bytes.Buffer

	f := newTestFramework(t, filepath.Join(t.TempDir(), "absent"), &buf, func(cfg *FrameworkConfig) {
		cfg.Args = []string{"--scenarios-dir", actual}
	})
	report, err := f.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Passed())
}

func TestFramework_PositionalScenariosDirWinsOverFlag(t *testing.T) {
	actual := t.TempDir()
	writeFile(t, actual, "a.yaml", passingScenario("positional"))
	var buf bytes.Buffer

	f := newTestFramework(t, filepath.Join(t.TempDir(), "absent"), &buf, func(cfg *FrameworkConfig) {
		cfg.Args = []string{"--scenarios-dir", filepath.Join(t.TempDir(), "also-absent"), actual}
	})
	report, err := f.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Passed())
}

type countingAction struct {
	calls int
}

func (a *countingAction) Name() string { return "count" }

func (a *countingAction) Run(ctx context.Context, args map[string]any, scope *core.Scope) error {
	a.calls++
	return nil
}

func countedScenario() string {
	return `subject: counted
steps:
  - name: bump
    action: count
`
}

func TestFramework_RepeatsFromSettings(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", countedScenario())
	var buf bytes.Buffer

	counter := &countingAction{}
	f := newTestFramework(t, dir, &buf, func(cfg *FrameworkConfig) {
		cfg.Settings.Repeats = 3
	})
	require.NoError(t, f.Actions().Register(counter))

	report, err := f.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, counter.calls)
	// Repeats aggregate into one reported result.
	assert.Equal(t, 1, report.Total())
}

func TestFramework_RepeatsFlagBeatsSettings(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", countedScenario())
	var buf bytes.Buffer

	counter := &countingAction{}
	f := newTestFramework(t, dir, &buf, func(cfg *FrameworkConfig) {
		cfg.Settings.Repeats = 5
		cfg.Args = []string{"--repeats", "2"}
	})
	require.NoError(t, f.Actions().Register(counter))

	_, err := f.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, counter.calls)
}

func TestFramework_VerbosityFromSettings(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.yaml", failingScenario("broken"))
	var buf bytes.Buffer

	f := newTestFramework(t, dir, &buf, func(cfg *FrameworkConfig) {
		cfg.Settings.Verbosity = 1
	})
	_, err := f.Run(context.Background())
	require.NoError(t, err)

	// Verbosity 1 prints per-step outcomes under the failed scenario.
	assert.Contains(t, buf.String(), "    ✗ check")
}

type deferringAction struct {
	cleaned bool
}

func (a *deferringAction) Name() string { return "leave_trace" }

func (a *deferringAction) Run(ctx context.Context, args map[string]any, scope *core.Scope) error {
	return core.Defer(ctx, func(ctx context.Context) error {
		a.cleaned = true
		return nil
	})
}

func TestFramework_DeferredCleanupRuns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", `subject: leaves a trace
steps:
  - name: arm
    action: leave_trace
  - name: fail anyway
    action: assert
    with:
      that: 1 == 2
`)
	var buf bytes.Buffer

	tracer := &deferringAction{}
	f := newTestFramework(t, dir, &buf, nil)
	require.NoError(t, f.Actions().Register(tracer))

	report, err := f.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, tracer.cleaned)
	assert.Equal(t, 1, report.Failed())
}

func TestFramework_List(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yaml", passingScenario("second"))
	writeFile(t, dir, "auth/a.yaml", passingScenario("first"))
	var buf bytes.Buffer

	scenarios, err := newTestFramework(t, dir, &buf, nil).List(context.Background())
	require.NoError(t, err)
	require.Len(t, scenarios, 2)
	assert.Equal(t, "auth", scenarios[0].Namespace())
	assert.Equal(t, "second", scenarios[1].Subject())
}

func TestFramework_Validate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", passingScenario("ok"))
	writeFile(t, dir, "b.yaml", passingScenario("also ok"))
	var buf bytes.Buffer

	count, err := newTestFramework(t, dir, &buf, nil).Validate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	writeFile(t, dir, "c.yaml", "subject: broken\n")
	_, err = newTestFramework(t, dir, &buf, nil).Validate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "c.yaml")
}

func TestFrameworkConfig_Validate(t *testing.T) {
	cfg := DefaultFrameworkConfig()
	cfg.Settings.ScenariosDir = ""
	_, err := New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenarios directory")

	cfg = DefaultFrameworkConfig()
	cfg.Settings.Reporter = ""
	_, err = New(cfg)
	require.Error(t, err)

	cfg = DefaultFrameworkConfig()
	cfg.Settings.Repeats = 0
	_, err = New(cfg)
	require.Error(t, err)
}
