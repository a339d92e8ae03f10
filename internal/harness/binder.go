package harness

import (
	"context"

	"github.com/spf13/pflag"

	"scenarist/internal/config"
	"scenarist/pkg/core"
)

// settingsBinder bridges the file configuration into the kernel run: it
// registers the harness-owned flags during ArgParse, seeds the parsed
// options with file defaults for flags the user left untouched, and
// points discovery at the resolved scenarios directory.
//
// It must subscribe before the other plugins so its ArgParsed handler
// runs before anyone consumes the options.
type settingsBinder struct {
	settings  config.Config
	kernelCfg *core.Config

	flags *pflag.FlagSet
}

var _ core.Subscriber = (*settingsBinder)(nil)

func (b *settingsBinder) Subscribe(d *core.Dispatcher) {
	d.On(core.KindArgParse, b.onArgParse)
	d.On(core.KindArgParsed, b.onArgParsed)
}

func (b *settingsBinder) onArgParse(ctx context.Context, e core.Event) error {
	b.flags = e.(core.ArgParseEvent).Flags
	b.flags.String("scenarios-dir", b.settings.ScenariosDir, "directory scanned for scenario files")
	// Parsed here so the flag is accepted; color is resolved before the
	// framework is built.
	b.flags.Bool("no-color", false, "disable styled output")
	return nil
}

func (b *settingsBinder) onArgParsed(ctx context.Context, e core.Event) error {
	opts := e.(core.ArgParsedEvent).Options

	if !b.flags.Changed("verbose") && b.settings.Verbosity > 0 {
		opts.Verbosity = b.settings.Verbosity
	}
	if !b.flags.Changed("tb-show-internals") {
		opts.TbShowInternals = b.settings.TbShowInternals
	}
	if repeatsFlag := b.flags.Lookup("repeats"); repeatsFlag != nil && !repeatsFlag.Changed && b.settings.Repeats > 1 {
		opts.Repeats = b.settings.Repeats
	}

	if dir, err := b.flags.GetString("scenarios-dir"); err == nil && dir != "" {
		b.kernelCfg.ScenariosDir = dir
	}
	// A positional argument names the scenarios directory directly and
	// wins over both the flag and the configured default.
	if rest := b.flags.Args(); len(rest) > 0 {
		b.kernelCfg.ScenariosDir = rest[0]
	}
	return nil
}
