package director

import "scenarist/pkg/core"

// Reporter renders run progress and results. A reporter stays inert
// until the director chooses it and calls Subscribe.
type Reporter interface {
	// Name is the identifier used for selection (--reporter <name>).
	Name() string

	// Subscribe registers the reporter's event handlers.
	Subscribe(d *core.Dispatcher)
}

// OptionsAware reporters receive the parsed options when chosen, before
// any scenario events arrive.
type OptionsAware interface {
	ApplyOptions(opts *core.Options)
}
