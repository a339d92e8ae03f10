package actions

import (
	"context"
	"fmt"

	"github.com/expr-lang/expr"

	"scenarist/pkg/core"
)

// AssertAction evaluates a boolean expression against the scenario scope.
type AssertAction struct{}

func NewAssertAction() *AssertAction {
	return &AssertAction{}
}

func (a *AssertAction) Name() string {
	return "assert"
}

func (a *AssertAction) Run(ctx context.Context, args map[string]any, scope *core.Scope) error {
	that, err := reqString(args, "that")
	if err != nil {
		return err
	}

	env := scope.Map()
	program, err := expr.Compile(that, expr.Env(env), expr.AsBool())
	if err != nil {
		return fmt.Errorf("compiling %q: %w", that, err)
	}
	result, err := expr.Run(program, env)
	if err != nil {
		return fmt.Errorf("evaluating %q: %w", that, err)
	}
	if !result.(bool) {
		return fmt.Errorf("assertion failed: %s", that)
	}
	return nil
}
