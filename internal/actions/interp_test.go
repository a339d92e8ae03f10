package actions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenarist/pkg/core"
)

func interpScope(t *testing.T) *core.Scope {
	t.Helper()
	scope := core.NewScope()
	scope.Set("host", "api.internal")
	scope.Set("port", 8080)
	scope.Set("retries", 3)
	return scope
}

func TestInterpolate_PlainValuesPassThrough(t *testing.T) {
	out, err := Interpolate(map[string]any{"url": "http://example.com", "count": 2}, interpScope(t))
	require.NoError(t, err)
	assert.Equal(t, "http://example.com", out["url"])
	assert.Equal(t, 2, out["count"])
}

func TestInterpolate_SingleReferenceKeepsType(t *testing.T) {
	out, err := Interpolate(map[string]any{"count": "${retries}"}, interpScope(t))
	require.NoError(t, err)
	assert.Equal(t, 3, out["count"])
}

func TestInterpolate_MixedStringRenders(t *testing.T) {
	out, err := Interpolate(map[string]any{"url": "http://${host}:${port}/health"}, interpScope(t))
	require.NoError(t, err)
	assert.Equal(t, "http://api.internal:8080/health", out["url"])
}

func TestInterpolate_EnvReference(t *testing.T) {
	t.Setenv("SCENARIST_TEST_TOKEN", "s3cret")

	out, err := Interpolate(map[string]any{"token": "${env.SCENARIST_TEST_TOKEN}"}, interpScope(t))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", out["token"])
}

func TestInterpolate_NestedStructures(t *testing.T) {
	args := map[string]any{
		"headers": map[string]any{"Host": "${host}"},
		"targets": []any{"${host}", "static"},
	}

	out, err := Interpolate(args, interpScope(t))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"Host": "api.internal"}, out["headers"])
	assert.Equal(t, []any{"api.internal", "static"}, out["targets"])
}

func TestInterpolate_UnknownReference(t *testing.T) {
	_, err := Interpolate(map[string]any{"url": "${nope}"}, interpScope(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown reference ${nope}")
}

func TestInterpolate_DoesNotMutateInput(t *testing.T) {
	args := map[string]any{"url": "${host}"}

	_, err := Interpolate(args, interpScope(t))
	require.NoError(t, err)
	assert.Equal(t, "${host}", args["url"])
}
