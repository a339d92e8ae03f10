package core

import "github.com/spf13/pflag"

// Options carries the parsed command-line options the kernel and the
// stock plugins consume. Plugin-specific flags registered during
// ArgParse surface here after Parse when they use the well-known names;
// anything else stays on the flag set.
type Options struct {
	// Verbosity is the count of -v occurrences. Reporters use it to
	// decide how much failure detail to print.
	Verbosity int

	// TbShowInternals includes runtime and kernel frames in rendered
	// tracebacks instead of trimming to user code.
	TbShowInternals bool

	// Repeats is the requested number of executions per scenario,
	// always >= 1.
	Repeats int
}

// OptionsParser owns the argument-parsing collaboration: the lifecycle
// exposes FlagSet during ArgParse so handlers can register flags, then
// calls Parse exactly once and publishes the result via ArgParsed.
type OptionsParser interface {
	FlagSet() *pflag.FlagSet
	Parse() (*Options, error)
}

// FlagParser is the standard OptionsParser over a pflag set.
type FlagParser struct {
	fs   *pflag.FlagSet
	args []string
}

var _ OptionsParser = (*FlagParser)(nil)

// NewFlagParser builds a parser for args (excluding the program name).
// The set starts with the kernel's own flags; plugins add theirs while
// handling ArgParse.
func NewFlagParser(name string, args []string) *FlagParser {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.CountP("verbose", "v", "increase verbosity of failure output")
	fs.Bool("tb-show-internals", false, "keep runtime frames in tracebacks")
	return &FlagParser{fs: fs, args: args}
}

// FlagSet returns the mutable flag set.
func (p *FlagParser) FlagSet() *pflag.FlagSet {
	return p.fs
}

// Parse parses the arguments and extracts the well-known options.
// Lookups are guarded so a flag left unregistered keeps its default.
func (p *FlagParser) Parse() (*Options, error) {
	if err := p.fs.Parse(p.args); err != nil {
		return nil, err
	}
	opts := &Options{Repeats: 1}
	if v, err := p.fs.GetCount("verbose"); err == nil {
		opts.Verbosity = v
	}
	if b, err := p.fs.GetBool("tb-show-internals"); err == nil {
		opts.TbShowInternals = b
	}
	if n, err := p.fs.GetInt("repeats"); err == nil {
		opts.Repeats = n
	}
	return opts, nil
}
