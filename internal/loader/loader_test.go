package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenarist/internal/actions"
	"scenarist/pkg/core"
)

func newTestLoader(t *testing.T) *Loader {
	t.Helper()
	registry := actions.NewRegistry()
	for _, a := range actions.Builtins(actions.Defaults{}) {
		require.NoError(t, registry.Register(a))
	}
	return New(registry)
}

func writeScenario(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func minimalScenario(subject string) string {
	return fmt.Sprintf(`subject: %s
steps:
  - name: noop
    action: set
    with:
      values:
        ok: true
`, subject)
}

func TestLoader_DiscoversInLexicalOrder(t *testing.T) {
	root := t.TempDir()
	writeScenario(t, root, "b.yaml", minimalScenario("second root"))
	writeScenario(t, root, "a.yaml", minimalScenario("first root"))
	writeScenario(t, root, "auth/login.yml", minimalScenario("signs in"))

	scenarios, err := newTestLoader(t).Discover(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, scenarios, 3)

	assert.Equal(t, "a.yaml", scenarios[0].ID())
	assert.Equal(t, "auth/login.yml", scenarios[1].ID())
	assert.Equal(t, "b.yaml", scenarios[2].ID())

	assert.Equal(t, "", scenarios[0].Namespace())
	assert.Equal(t, "auth", scenarios[1].Namespace())
	assert.Equal(t, "signs in", scenarios[1].Subject())
}

func TestLoader_NestedNamespace(t *testing.T) {
	root := t.TempDir()
	writeScenario(t, root, "billing/cards/charge.yaml", minimalScenario("charges"))

	scenarios, err := newTestLoader(t).Discover(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, scenarios, 1)
	assert.Equal(t, "billing/cards", scenarios[0].Namespace())
	assert.Equal(t, "billing/cards/charge.yaml", scenarios[0].Path())
}

func TestLoader_MultiDocumentFile(t *testing.T) {
	root := t.TempDir()
	writeScenario(t, root, "multi.yaml", `subject: first
steps:
  - name: one
    action: set
    with:
      values: {k: 1}
---
subject: second
skip: true
skip_reason: pending rollout
`)

	scenarios, err := newTestLoader(t).Discover(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, scenarios, 2)

	assert.Equal(t, "multi.yaml", scenarios[0].ID())
	assert.Equal(t, "multi.yaml#1", scenarios[1].ID())
	assert.True(t, scenarios[1].Skipped())
	assert.Equal(t, "pending rollout", scenarios[1].SkipReason())
}

func TestLoader_StepsRunActions(t *testing.T) {
	root := t.TempDir()
	writeScenario(t, root, "flow.yaml", `subject: seeds and checks scope
steps:
  - name: seed
    action: set
    with:
      values:
        base: 40
  - name: copy
    action: set
    with:
      values:
        copied: ${base}
  - name: check
    action: assert
    with:
      that: copied + 2 == 42
`)

	scenarios, err := newTestLoader(t).Discover(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, scenarios, 1)
	require.Len(t, scenarios[0].Steps(), 3)

	scope := core.NewScope()
	for _, step := range scenarios[0].Steps() {
		require.NoError(t, step.Call(context.Background(), scope))
	}

	copied, ok := scope.Get("copied")
	require.True(t, ok)
	assert.Equal(t, 40, copied)
}

func TestLoader_StepFailureNamesArguments(t *testing.T) {
	root := t.TempDir()
	writeScenario(t, root, "bad.yaml", `subject: uses a missing reference
steps:
  - name: broken
    action: set
    with:
      values:
        v: ${nope}
`)

	scenarios, err := newTestLoader(t).Discover(context.Background(), root)
	require.NoError(t, err)

	err = scenarios[0].Steps()[0].Call(context.Background(), core.NewScope())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolving arguments")
	assert.Contains(t, err.Error(), "unknown reference ${nope}")
}

func TestLoader_SkipIf(t *testing.T) {
	t.Setenv("SCENARIST_LOADER_CI", "true")

	root := t.TempDir()
	writeScenario(t, root, "cond.yaml", `subject: conditional
skip_if: env.SCENARIST_LOADER_CI == "true"
steps:
  - name: one
    action: set
    with:
      values: {k: 1}
`)

	scenarios, err := newTestLoader(t).Discover(context.Background(), root)
	require.NoError(t, err)
	require.True(t, scenarios[0].Skipped())
	assert.Equal(t, `env.SCENARIST_LOADER_CI == "true"`, scenarios[0].SkipReason())

	t.Setenv("SCENARIST_LOADER_CI", "false")
	scenarios, err = newTestLoader(t).Discover(context.Background(), root)
	require.NoError(t, err)
	assert.False(t, scenarios[0].Skipped())
}

func TestLoader_SkipIfReasonOverride(t *testing.T) {
	t.Setenv("SCENARIST_LOADER_CI", "true")

	root := t.TempDir()
	writeScenario(t, root, "cond.yaml", `subject: conditional
skip_if: env.SCENARIST_LOADER_CI == "true"
skip_reason: not on CI
steps:
  - name: one
    action: set
    with:
      values: {k: 1}
`)

	scenarios, err := newTestLoader(t).Discover(context.Background(), root)
	require.NoError(t, err)
	require.True(t, scenarios[0].Skipped())
	assert.Equal(t, "not on CI", scenarios[0].SkipReason())
}

func TestLoader_SkipIfCompileError(t *testing.T) {
	root := t.TempDir()
	writeScenario(t, root, "cond.yaml", `subject: conditional
skip_if: "env.X =="
steps:
  - name: one
    action: set
    with:
      values: {k: 1}
`)

	_, err := newTestLoader(t).Discover(context.Background(), root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "skip_if")
	assert.Contains(t, err.Error(), "cond.yaml")
}

func TestLoader_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "missing subject",
			content: "steps:\n  - name: n\n    action: set\n    with: {values: {k: 1}}\n",
			want:    "subject is required",
		},
		{
			name:    "zero steps",
			content: "subject: empty\n",
			want:    "at least one step is required",
		},
		{
			name:    "missing step name",
			content: "subject: s\nsteps:\n  - action: set\n    with: {values: {k: 1}}\n",
			want:    "step 0: name is required",
		},
		{
			name:    "missing action",
			content: "subject: s\nsteps:\n  - name: n\n",
			want:    "step 0: action is required",
		},
		{
			name:    "unknown action",
			content: "subject: s\nsteps:\n  - name: n\n    action: teleport\n",
			want:    `unknown action "teleport"`,
		},
		{
			name:    "stray skip_reason",
			content: minimalScenario("s") + "skip_reason: because\n",
			want:    "skip_reason requires skip or skip_if",
		},
		{
			name:    "unknown field",
			content: minimalScenario("s") + "retries: 3\n",
			want:    "field retries not found",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeScenario(t, root, "bad.yaml", tt.content)

			_, err := newTestLoader(t).Discover(context.Background(), root)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Contains(t, err.Error(), "bad.yaml")
			assert.Contains(t, err.Error(), "document 0")
		})
	}
}

func TestLoader_IgnoresUnrelatedFiles(t *testing.T) {
	root := t.TempDir()
	writeScenario(t, root, "a.yaml", minimalScenario("kept"))
	writeScenario(t, root, "README.md", "# notes\n")
	writeScenario(t, root, ".hidden/skipped.yaml", minimalScenario("never loaded"))

	scenarios, err := newTestLoader(t).Discover(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, scenarios, 1)
	assert.Equal(t, "kept", scenarios[0].Subject())
}

func TestLoader_MissingRoot(t *testing.T) {
	_, err := newTestLoader(t).Discover(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading scenarios from")
}

func TestLoader_SkipWithoutStepsIsValid(t *testing.T) {
	root := t.TempDir()
	writeScenario(t, root, "skip.yaml", "subject: parked\nskip: true\n")

	scenarios, err := newTestLoader(t).Discover(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, scenarios, 1)
	assert.True(t, scenarios[0].Skipped())
	assert.Empty(t, scenarios[0].SkipReason())
}
