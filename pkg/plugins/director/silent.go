package director

import "scenarist/pkg/core"

// SilentReporter renders nothing. Useful when the exit code or a JSON
// artifact is the only output that matters.
type SilentReporter struct{}

var _ Reporter = (*SilentReporter)(nil)

// NewSilentReporter creates the no-op reporter.
func NewSilentReporter() *SilentReporter { return &SilentReporter{} }

// Name implements Reporter.
func (r *SilentReporter) Name() string { return "silent" }

// Subscribe implements Reporter.
func (r *SilentReporter) Subscribe(d *core.Dispatcher) {}
