package actions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/expr-lang/expr"

	"scenarist/pkg/core"
)

// WaitAction sleeps for a fixed duration or polls an expression until it
// becomes true.
type WaitAction struct{}

func NewWaitAction() *WaitAction {
	return &WaitAction{}
}

func (a *WaitAction) Name() string {
	return "wait"
}

func (a *WaitAction) Run(ctx context.Context, args map[string]any, scope *core.Scope) error {
	sleep, hasFor, err := optDuration(args, "for")
	if err != nil {
		return err
	}
	until, hasUntil, err := optString(args, "until")
	if err != nil {
		return err
	}
	if hasFor == hasUntil {
		return errors.New("exactly one of for or until is required")
	}

	if hasFor {
		timer := time.NewTimer(sleep)
		defer timer.Stop()
		select {
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	interval, hasInterval, err := optDuration(args, "interval")
	if err != nil {
		return err
	}
	if !hasInterval {
		interval = 250 * time.Millisecond
	}
	timeout, hasTimeout, err := optDuration(args, "timeout")
	if err != nil {
		return err
	}
	if !hasTimeout {
		timeout = 10 * time.Second
	}

	env := scope.Map()
	program, err := expr.Compile(until, expr.Env(env), expr.AsBool())
	if err != nil {
		return fmt.Errorf("compiling %q: %w", until, err)
	}

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		env = scope.Map()
		result, err := expr.Run(program, env)
		if err != nil {
			return fmt.Errorf("evaluating %q: %w", until, err)
		}
		if result.(bool) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("condition %q not met after %s", until, timeout)
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
