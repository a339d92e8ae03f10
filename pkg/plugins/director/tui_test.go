package director

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenarist/pkg/core"
)

func TestTUIReporter_FallsBackWithoutTTY(t *testing.T) {
	var buf bytes.Buffer
	r := NewTUIReporter(
		TUIWithWriter(&buf),
		TUIWithPalette(NewPalette(false)),
		TUIWithTTYCheck(func() bool { return false }),
	)
	assert.Equal(t, "tui", r.Name())

	d := core.NewDispatcher()
	r.ApplyOptions(&core.Options{})
	r.Subscribe(d)

	base := time.Now()
	result := passedResult("auth", "signs in with valid password", base, base.Add(time.Second))
	report := core.NewReport()
	require.NoError(t, report.AddResult(result))
	report.Seal()

	ctx := context.Background()
	require.NoError(t, d.Fire(ctx, core.StartupEvent{}))
	require.NoError(t, d.Fire(ctx, core.ScenarioRunEvent{Result: result}))
	require.NoError(t, d.Fire(ctx, core.ScenarioPassedEvent{Result: result}))
	require.NoError(t, d.Fire(ctx, core.CleanupEvent{Report: report}))

	out := buf.String()
	assert.Contains(t, out, "Scenarios")
	assert.Contains(t, out, " ✔ signs in with valid password")
	assert.Contains(t, out, "# 1 scenarios, 1 passed, 0 failed, 0 skipped")
}

func keyPress(r rune) tea.Msg {
	return tea.KeyMsg(tea.Key{Type: tea.KeyRunes, Runes: []rune{r}})
}

func TestTUIModel_TracksScenarioLifecycle(t *testing.T) {
	m := newTUIModel(2)

	m.Update(scenarioStartedMsg{namespace: "auth", subject: "signs in with valid password"})
	require.Len(t, m.rows, 1)
	assert.Equal(t, rowRunning, m.rows[0].status)

	m.Update(scenarioEndedMsg{
		namespace: "auth",
		subject:   "signs in with valid password",
		status:    rowPassed,
		elapsed:   time.Second,
	})
	require.Len(t, m.rows, 1)
	assert.Equal(t, rowPassed, m.rows[0].status)
	assert.Equal(t, 1, m.passed)

	view := m.View()
	assert.Contains(t, view, "* auth")
	assert.Contains(t, view, "✔ signs in with valid password")
	assert.Contains(t, view, "1 passed · 0 failed · 0 skipped")
	assert.Contains(t, view, "1/2")
}

func TestTUIModel_SettlesLatestMatchingRow(t *testing.T) {
	m := newTUIModel(2)
	m.Update(scenarioStartedMsg{namespace: "auth", subject: "retries"})
	m.Update(scenarioEndedMsg{namespace: "auth", subject: "retries", status: rowFailed, detail: "error: boom"})
	m.Update(scenarioStartedMsg{namespace: "auth", subject: "retries"})
	m.Update(scenarioEndedMsg{namespace: "auth", subject: "retries", status: rowPassed})

	require.Len(t, m.rows, 2)
	assert.Equal(t, rowFailed, m.rows[0].status)
	assert.Equal(t, rowPassed, m.rows[1].status)
}

func TestTUIModel_SkipArrivesWithoutStart(t *testing.T) {
	m := newTUIModel(1)
	m.Update(scenarioEndedMsg{
		namespace: "billing",
		subject:   "refunds a charge",
		status:    rowSkipped,
		detail:    "flaky upstream",
	})

	require.Len(t, m.rows, 1)
	assert.Equal(t, rowSkipped, m.rows[0].status)
	assert.Equal(t, 1, m.skipped)
	assert.Contains(t, m.View(), "○ refunds a charge (flaky upstream)")
}

func TestTUIModel_FailureDetail(t *testing.T) {
	m := newTUIModel(1)
	m.Update(scenarioStartedMsg{namespace: "billing", subject: "charges a saved card"})
	m.Update(scenarioEndedMsg{
		namespace: "billing",
		subject:   "charges a saved card",
		status:    rowFailed,
		detail:    "billing.declinedError: card declined",
	})

	assert.Equal(t, "charges a saved card: billing.declinedError: card declined", m.latestFailure())
	assert.Equal(t,
		[]string{" ✗ charges a saved card: billing.declinedError: card declined"},
		m.failureLines())
	assert.Contains(t, m.View(), "1 failed")
}

func TestTUIModel_QuitKeys(t *testing.T) {
	m := newTUIModel(1)

	_, cmd := m.Update(keyPress('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	_, cmd = m.Update(tea.KeyMsg(tea.Key{Type: tea.KeyCtrlC}))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestTUIModel_RunEndedQuits(t *testing.T) {
	m := newTUIModel(1)
	m.Update(scenarioEndedMsg{subject: "boots", status: rowPassed})

	_, cmd := m.Update(runEndedMsg{})
	assert.True(t, m.done)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Contains(t, m.renderHeader(), "PASS")
}

func TestTUIModel_HeaderShowsFailure(t *testing.T) {
	m := newTUIModel(1)
	m.Update(scenarioEndedMsg{subject: "boots", status: rowFailed})
	m.Update(runEndedMsg{})
	assert.Contains(t, m.renderHeader(), "FAIL")
}

func TestTUIModel_ResizeAndTruncation(t *testing.T) {
	m := newTUIModel(1)
	m.Update(tea.WindowSizeMsg{Width: 20, Height: 10})
	assert.Equal(t, 20, m.width)
	assert.Equal(t, 10, m.height)

	m.Update(scenarioEndedMsg{
		namespace: "auth",
		subject:   "a very long subject line that cannot possibly fit",
		status:    rowPassed,
	})
	for _, line := range strings.Split(strings.TrimSuffix(m.View(), "\n"), "\n") {
		assert.True(t, strings.HasSuffix(line, clearEOL), "line %q misses clear sequence", line)
	}
	assert.Contains(t, m.View(), "…")
}

func TestTUIModel_ProgressBarCapsAtTotal(t *testing.T) {
	m := newTUIModel(1)
	m.Update(scenarioEndedMsg{subject: "a", status: rowPassed})
	m.Update(scenarioEndedMsg{subject: "b", status: rowPassed})

	// Rescheduled scenarios can settle more often than discovery
	// counted; the denominator stretches instead of overflowing.
	assert.Contains(t, m.renderProgress(), "2/2")
}

func TestTUIModel_LogTailKeepsNewest(t *testing.T) {
	m := newTUIModel(1)
	for i := 0; i < tuiLogLines+2; i++ {
		m.Update(logLineMsg{line: fmt.Sprintf("INFO actions: step %d", i)})
	}

	require.Len(t, m.logs, tuiLogLines)
	view := m.View()
	assert.NotContains(t, view, "step 0")
	assert.Contains(t, view, fmt.Sprintf("step %d", tuiLogLines+1))
}
