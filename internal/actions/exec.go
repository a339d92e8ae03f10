package actions

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"scenarist/pkg/core"
	"scenarist/pkg/logging"
)

// ExecAction runs a command on the host and checks its outcome.
type ExecAction struct{}

func NewExecAction() *ExecAction {
	return &ExecAction{}
}

func (a *ExecAction) Name() string {
	return "exec"
}

func (a *ExecAction) Run(ctx context.Context, args map[string]any, scope *core.Scope) error {
	argv, hasArgv, err := optStringSlice(args, "argv")
	if err != nil {
		return err
	}
	shell, hasShell, err := optString(args, "shell")
	if err != nil {
		return err
	}
	if hasArgv == hasShell {
		return errors.New("exactly one of argv or shell is required")
	}
	if hasShell {
		argv = []string{"sh", "-c", shell}
	}
	if len(argv) == 0 {
		return errors.New("argv must not be empty")
	}

	dir, _, err := optString(args, "dir")
	if err != nil {
		return err
	}
	env, _, err := optStringMap(args, "env")
	if err != nil {
		return err
	}
	timeout, hasTimeout, err := optDuration(args, "timeout")
	if err != nil {
		return err
	}
	expectExit, _, err := optInt(args, "expect_exit")
	if err != nil {
		return err
	}
	expectContains, hasContains, err := optString(args, "expect_contains")
	if err != nil {
		return err
	}
	saveStdout, hasSave, err := optString(args, "save_stdout")
	if err != nil {
		return err
	}
	cleanup, hasCleanup, err := optStringSlice(args, "cleanup")
	if err != nil {
		return err
	}

	// The cleanup command is registered before the main command runs, so
	// it fires even when the command itself fails.
	if hasCleanup {
		if len(cleanup) == 0 {
			return errors.New("cleanup must not be empty")
		}
		deferErr := core.Defer(ctx, func(ctx context.Context) error {
			cmd := exec.CommandContext(ctx, cleanup[0], cleanup[1:]...)
			cmd.Dir = dir
			cmd.Env = buildEnv(env)
			var out bytes.Buffer
			cmd.Stdout = &out
			cmd.Stderr = &out
			if err := cmd.Run(); err != nil {
				return fmt.Errorf("cleanup %s: %w: %s", cleanup[0], err, strings.TrimSpace(out.String()))
			}
			return nil
		})
		if deferErr != nil {
			return deferErr
		}
	}

	runCtx := ctx
	if hasTimeout {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Env = buildEnv(env)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logging.Debug("actions", "Running command: %s", strings.Join(argv, " "))
	runErr := cmd.Run()

	if runCtx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("%s timed out after %s", argv[0], timeout)
	}

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return fmt.Errorf("running %s: %w", argv[0], runErr)
		}
		exitCode = exitErr.ExitCode()
	}

	if exitCode != expectExit {
		return fmt.Errorf("%s exited %d, expected %d: %s",
			argv[0], exitCode, expectExit, strings.TrimSpace(stderr.String()))
	}

	combined := stdout.String()
	if hasContains && !strings.Contains(combined, expectContains) {
		return fmt.Errorf("%s output does not contain %q", argv[0], expectContains)
	}

	if hasSave {
		scope.Set(saveStdout, strings.TrimRight(combined, "\n"))
	}
	return nil
}

func buildEnv(extra map[string]string) []string {
	env := os.Environ()
	for k, v := range extra {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	return env
}
