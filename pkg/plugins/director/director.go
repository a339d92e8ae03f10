// Package director selects and drives the run's reporter. Reporters
// register with the director by name; the chosen one (config default,
// overridable with --reporter) is subscribed once the options are
// parsed, so it sees every event from ConfigLoaded onward.
package director

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/pflag"

	"scenarist/pkg/core"
)

// Director is the reporter-selection plugin.
type Director struct {
	reporters   map[string]Reporter
	defaultName string

	dispatcher *core.Dispatcher
	flags      *pflag.FlagSet
	chosen     Reporter
}

var _ core.Subscriber = (*Director)(nil)

// New creates a director over the given reporters. defaultName is used
// when --reporter is absent.
func New(defaultName string, reporters ...Reporter) *Director {
	byName := make(map[string]Reporter, len(reporters))
	for _, r := range reporters {
		byName[r.Name()] = r
	}
	return &Director{reporters: byName, defaultName: defaultName}
}

// Names returns the registered reporter names, sorted.
func (dir *Director) Names() []string {
	names := make([]string, 0, len(dir.reporters))
	for name := range dir.reporters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Chosen returns the selected reporter, nil before ArgParsed.
func (dir *Director) Chosen() Reporter { return dir.chosen }

// Subscribe registers the selection handlers.
func (dir *Director) Subscribe(d *core.Dispatcher) {
	dir.dispatcher = d
	d.On(core.KindArgParse, dir.onArgParse)
	d.On(core.KindArgParsed, dir.onArgParsed)
}

func (dir *Director) onArgParse(ctx context.Context, e core.Event) error {
	dir.flags = e.(core.ArgParseEvent).Flags
	dir.flags.String("reporter", dir.defaultName,
		fmt.Sprintf("reporter to use (%s)", strings.Join(dir.Names(), ", ")))
	return nil
}

func (dir *Director) onArgParsed(ctx context.Context, e core.Event) error {
	name := dir.defaultName
	if dir.flags != nil {
		if v, err := dir.flags.GetString("reporter"); err == nil && v != "" {
			name = v
		}
	}

	reporter, ok := dir.reporters[name]
	if !ok {
		return fmt.Errorf("director: unknown reporter %q (available: %s)",
			name, strings.Join(dir.Names(), ", "))
	}

	if aware, ok := reporter.(OptionsAware); ok {
		aware.ApplyOptions(e.(core.ArgParsedEvent).Options)
	}
	reporter.Subscribe(dir.dispatcher)
	dir.chosen = reporter
	return nil
}
