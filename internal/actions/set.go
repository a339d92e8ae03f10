package actions

import (
	"context"
	"errors"
	"sort"

	"scenarist/pkg/core"
)

// SetAction stores values in the scenario scope.
type SetAction struct{}

func NewSetAction() *SetAction {
	return &SetAction{}
}

func (a *SetAction) Name() string {
	return "set"
}

func (a *SetAction) Run(ctx context.Context, args map[string]any, scope *core.Scope) error {
	values, ok, err := optMap(args, "values")
	if err != nil {
		return err
	}
	if !ok || len(values) == 0 {
		return errors.New("values is required")
	}

	// Sorted so the scope's insertion order is stable across runs.
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		scope.Set(k, values[k])
	}
	return nil
}
