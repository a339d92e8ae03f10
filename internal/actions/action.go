package actions

import (
	"context"
	"fmt"
	"sort"
	"time"

	"scenarist/pkg/core"
)

// Action is one executable step behavior. Run receives the step's
// arguments as decoded from YAML, after scope interpolation of string
// values.
type Action interface {
	Name() string
	Run(ctx context.Context, args map[string]any, scope *core.Scope) error
}

// Registry maps action names to implementations.
type Registry struct {
	actions map[string]Action
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{actions: make(map[string]Action)}
}

// Register adds an action; registering a name twice is an error.
func (r *Registry) Register(a Action) error {
	name := a.Name()
	if _, exists := r.actions[name]; exists {
		return fmt.Errorf("actions: %q already registered", name)
	}
	r.actions[name] = a
	return nil
}

// Lookup returns the action registered under name.
func (r *Registry) Lookup(name string) (Action, bool) {
	a, ok := r.actions[name]
	return a, ok
}

// Names returns the registered action names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Defaults carries the config-derived settings builtins start from.
type Defaults struct {
	HTTPTimeout   time.Duration
	KubeContext   string
	KubeNamespace string
}

// Builtins returns one instance of every shipped action.
func Builtins(d Defaults) []Action {
	return []Action{
		NewExecAction(),
		NewHTTPAction(d.HTTPTimeout),
		NewAssertAction(),
		NewSetAction(),
		NewWaitAction(),
		NewKubeReadyAction(d.KubeContext, d.KubeNamespace),
	}
}
