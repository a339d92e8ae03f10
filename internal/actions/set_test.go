package actions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenarist/pkg/core"
)

func TestSetAction_StoresValuesSorted(t *testing.T) {
	scope := core.NewScope()
	action := NewSetAction()

	err := action.Run(context.Background(), map[string]any{
		"values": map[string]any{"zone": "eu-1", "attempts": 2, "mode": "fast"},
	}, scope)
	require.NoError(t, err)

	assert.Equal(t, []string{"attempts", "mode", "zone"}, scope.Keys())
	got, _ := scope.Get("attempts")
	assert.Equal(t, 2, got)
}

func TestSetAction_OverwritesExisting(t *testing.T) {
	scope := core.NewScope()
	scope.Set("mode", "slow")
	action := NewSetAction()

	err := action.Run(context.Background(), map[string]any{
		"values": map[string]any{"mode": "fast"},
	}, scope)
	require.NoError(t, err)

	got, _ := scope.Get("mode")
	assert.Equal(t, "fast", got)
}

func TestSetAction_ValuesRequired(t *testing.T) {
	action := NewSetAction()

	err := action.Run(context.Background(), map[string]any{}, core.NewScope())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "values is required")

	err = action.Run(context.Background(), map[string]any{"values": map[string]any{}}, core.NewScope())
	require.Error(t, err)
}
