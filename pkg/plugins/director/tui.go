package director

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"

	"scenarist/pkg/core"
	"scenarist/pkg/logging"
)

// TUIReporter renders a live alternate-screen view of the run: spinner
// on the scenario in flight, a growing result list, progress counters,
// and key bindings (q quits the view, c copies the latest failure to
// the clipboard). When stdout is not a terminal it degrades to the
// console reporter.
type TUIReporter struct {
	out      io.Writer
	palette  *Palette
	isTTY    func() bool
	fallback *ConsoleReporter

	program *tea.Program
	model   *tuiModel
	done    chan struct{}
}

var (
	_ Reporter     = (*TUIReporter)(nil)
	_ OptionsAware = (*TUIReporter)(nil)
)

// TUIOption configures a TUIReporter.
type TUIOption func(*TUIReporter)

// TUIWithWriter redirects output, for tests.
func TUIWithWriter(w io.Writer) TUIOption {
	return func(r *TUIReporter) { r.out = w }
}

// TUIWithTTYCheck replaces terminal detection, for tests.
func TUIWithTTYCheck(isTTY func() bool) TUIOption {
	return func(r *TUIReporter) { r.isTTY = isTTY }
}

// TUIWithPalette replaces the default colored palette.
func TUIWithPalette(p *Palette) TUIOption {
	return func(r *TUIReporter) { r.palette = p }
}

// NewTUIReporter creates the live reporter.
func NewTUIReporter(opts ...TUIOption) *TUIReporter {
	r := &TUIReporter{
		out:     os.Stdout,
		palette: NewPalette(true),
		isTTY: func() bool {
			return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.fallback = NewConsoleReporter(ConsoleWithWriter(r.out), ConsoleWithPalette(r.palette))
	return r
}

// Name implements Reporter.
func (r *TUIReporter) Name() string { return "tui" }

// ApplyOptions implements OptionsAware.
func (r *TUIReporter) ApplyOptions(opts *core.Options) {
	r.fallback.ApplyOptions(opts)
}

// Subscribe implements Reporter. Without a TTY the console fallback
// takes over wholesale.
func (r *TUIReporter) Subscribe(d *core.Dispatcher) {
	if !r.isTTY() {
		r.fallback.Subscribe(d)
		return
	}
	d.On(core.KindStartup, r.onStartup)
	d.On(core.KindScenarioRun, r.onScenarioRun)
	d.On(core.KindScenarioPassed, r.onScenarioEnd)
	d.On(core.KindScenarioFailed, r.onScenarioEnd)
	d.On(core.KindScenarioSkipped, r.onScenarioEnd)
	d.On(core.KindCleanup, r.onCleanup)
}

func (r *TUIReporter) onStartup(ctx context.Context, e core.Event) error {
	total := len(e.(core.StartupEvent).Scheduler.Discovered())
	r.model = newTUIModel(total)

	// The alternate screen keeps the animation out of the scrollback;
	// the final summary is printed statically after the view exits.
	r.program = tea.NewProgram(r.model,
		tea.WithOutput(r.out),
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	// Log entries are routed into the view while the alt screen is up,
	// keeping slog output off the terminal.
	logCh := logging.InitForTUI(logging.CurrentLevel())
	go func() {
		for entry := range logCh {
			r.program.Send(logLineMsg{line: fmt.Sprintf("%s %s: %s", entry.Level, entry.Subsystem, entry.Message)})
		}
	}()

	r.done = make(chan struct{})
	go func() {
		defer close(r.done)
		_, _ = r.program.Run()
	}()
	return nil
}

func (r *TUIReporter) onScenarioRun(ctx context.Context, e core.Event) error {
	if r.program == nil {
		return nil
	}
	scenario := e.(core.ScenarioRunEvent).Result.Scenario()
	r.program.Send(scenarioStartedMsg{
		namespace: scenario.Namespace(),
		subject:   scenario.Subject(),
	})
	return nil
}

func (r *TUIReporter) onScenarioEnd(ctx context.Context, e core.Event) error {
	if r.program == nil {
		return nil
	}

	msg := scenarioEndedMsg{}
	switch ev := e.(type) {
	case core.ScenarioPassedEvent:
		msg.status = rowPassed
		msg.subject = ev.Result.Scenario().Subject()
		msg.namespace = ev.Result.Scenario().Namespace()
		msg.elapsed = ev.Result.Elapsed()
	case core.ScenarioFailedEvent:
		msg.status = rowFailed
		msg.subject = ev.Result.Scenario().Subject()
		msg.namespace = ev.Result.Scenario().Namespace()
		msg.elapsed = ev.Result.Elapsed()
		if exc := ev.Result.ExcInfo(); exc != nil {
			msg.detail = exc.String()
		}
	case core.ScenarioSkippedEvent:
		msg.status = rowSkipped
		msg.subject = ev.Result.Scenario().Subject()
		msg.namespace = ev.Result.Scenario().Namespace()
		msg.detail = ev.Result.Scenario().SkipReason()
	default:
		return nil
	}
	r.program.Send(msg)
	return nil
}

func (r *TUIReporter) onCleanup(ctx context.Context, e core.Event) error {
	report := e.(core.CleanupEvent).Report
	if r.program == nil {
		return nil
	}

	r.program.Send(runEndedMsg{})
	<-r.done

	logging.CloseTUIChannel()
	logging.InitForCLI(logging.CurrentLevel(), os.Stderr)

	// Static recap on the main screen, console style.
	summary := fmt.Sprintf("# %d scenarios, %d passed, %d failed, %d skipped",
		report.Total(), report.Passed(), report.Failed(), report.Skipped())
	style := r.palette.BoldRed
	if report.Failed() == 0 && report.Passed() > 0 {
		style = r.palette.BoldGreen
	}
	fmt.Fprintln(r.out, style(summary)+r.palette.Blue(fmt.Sprintf(" (%.2fs)", report.ElapsedSeconds())))

	for _, line := range r.model.failureLines() {
		fmt.Fprintln(r.out, r.palette.Red(line))
	}
	return nil
}

type rowStatus int

const (
	rowRunning rowStatus = iota
	rowPassed
	rowFailed
	rowSkipped
)

type scenarioRow struct {
	namespace string
	subject   string
	status    rowStatus
	detail    string
	elapsed   time.Duration
}

// Messages
type (
	scenarioStartedMsg struct {
		namespace string
		subject   string
	}
	scenarioEndedMsg struct {
		namespace string
		subject   string
		status    rowStatus
		detail    string
		elapsed   time.Duration
	}
	logLineMsg struct {
		line string
	}
	runEndedMsg struct{}
)

// tuiLogLines is how many recent log entries stay visible.
const tuiLogLines = 3

// tuiModel is the bubbletea model behind the live view.
type tuiModel struct {
	spinner spinner.Model

	rows    []scenarioRow
	logs    []string
	total   int
	passed  int
	failed  int
	skipped int

	width  int
	height int

	startTime time.Time
	done      bool
	copied    bool
}

func newTUIModel(total int) *tuiModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return &tuiModel{
		spinner:   s,
		total:     total,
		width:     80,
		height:    24,
		startTime: time.Now(),
	}
}

func (m *tuiModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "c":
			if text := m.latestFailure(); text != "" {
				if err := clipboard.WriteAll(text); err == nil {
					m.copied = true
				}
			}
		}
		return m, nil

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case scenarioStartedMsg:
		m.rows = append(m.rows, scenarioRow{
			namespace: msg.namespace,
			subject:   msg.subject,
			status:    rowRunning,
		})
		return m, nil

	case scenarioEndedMsg:
		m.applyEnd(msg)
		return m, nil

	case logLineMsg:
		m.logs = append(m.logs, msg.line)
		if len(m.logs) > tuiLogLines {
			m.logs = m.logs[len(m.logs)-tuiLogLines:]
		}
		return m, nil

	case runEndedMsg:
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

// applyEnd settles the matching running row, or appends one for
// scenarios that never got a start event (skips).
func (m *tuiModel) applyEnd(msg scenarioEndedMsg) {
	switch msg.status {
	case rowPassed:
		m.passed++
	case rowFailed:
		m.failed++
	case rowSkipped:
		m.skipped++
	}

	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].status == rowRunning && m.rows[i].subject == msg.subject {
			m.rows[i].status = msg.status
			m.rows[i].detail = msg.detail
			m.rows[i].elapsed = msg.elapsed
			return
		}
	}
	m.rows = append(m.rows, scenarioRow{
		namespace: msg.namespace,
		subject:   msg.subject,
		status:    msg.status,
		detail:    msg.detail,
		elapsed:   msg.elapsed,
	})
}

func (m *tuiModel) latestFailure() string {
	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].status == rowFailed {
			return m.rows[i].subject + ": " + m.rows[i].detail
		}
	}
	return ""
}

// failureLines lists the failed subjects for the static recap.
func (m *tuiModel) failureLines() []string {
	var lines []string
	for _, row := range m.rows {
		if row.status == rowFailed {
			lines = append(lines, " ✗ "+row.subject+": "+row.detail)
		}
	}
	return lines
}

const clearEOL = "\033[K"

func (m *tuiModel) View() string {
	var lines []string
	lines = append(lines, m.renderHeader(), m.renderProgress(), "")

	// Keep the newest rows on screen when the list outgrows the
	// terminal; header, progress, log tail and footer are reserved.
	visible := m.rows
	if keep := m.height - 5 - len(m.logs); keep > 0 && len(visible) > keep {
		visible = visible[len(visible)-keep:]
	}
	namespace := ""
	first := true
	for _, row := range visible {
		if first || row.namespace != namespace {
			namespace = row.namespace
			first = false
			lines = append(lines, strings.TrimRight("* "+namespace, " "))
		}
		lines = append(lines, m.renderRow(row))
	}

	lines = append(lines, "")
	for _, entry := range m.logs {
		lines = append(lines, runewidth.Truncate("  "+entry, maxInt(m.width-1, 10), "…"))
	}
	lines = append(lines, m.renderFooter())
	for i := range lines {
		lines[i] += clearEOL
	}
	return strings.Join(lines, "\n") + "\n"
}

func (m *tuiModel) renderHeader() string {
	status := "running"
	if m.done {
		if m.failed > 0 {
			status = "FAIL"
		} else {
			status = "PASS"
		}
	}
	return "scenarist  " + status
}

func (m *tuiModel) renderProgress() string {
	settled := m.passed + m.failed + m.skipped
	total := m.total
	if total < settled {
		total = settled
	}
	if total == 0 {
		total = 1
	}

	barWidth := 30
	filled := barWidth * settled / total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	elapsed := time.Since(m.startTime).Round(100 * time.Millisecond)
	return fmt.Sprintf("[%s] %s %d/%d", elapsed, bar, settled, total)
}

func (m *tuiModel) renderRow(row scenarioRow) string {
	var symbol string
	switch row.status {
	case rowRunning:
		symbol = m.spinner.View()
	case rowPassed:
		symbol = "✔"
	case rowFailed:
		symbol = "✗"
	case rowSkipped:
		symbol = "○"
	}

	line := " " + symbol + " " + row.subject
	if row.status == rowFailed && row.detail != "" {
		line += "  " + row.detail
	}
	if row.status == rowSkipped && row.detail != "" {
		line += " (" + row.detail + ")"
	}
	return runewidth.Truncate(line, maxInt(m.width-1, 10), "…")
}

func (m *tuiModel) renderFooter() string {
	counts := fmt.Sprintf("%d passed · %d failed · %d skipped", m.passed, m.failed, m.skipped)
	help := "q quit · c copy failure"
	if m.copied {
		help = "copied ✔ · q quit"
	}
	return counts + "   " + help
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
