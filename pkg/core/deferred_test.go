package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeferStack_FlushIsLIFO(t *testing.T) {
	stack := NewDeferStack()

	var order []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		stack.Push(func(ctx context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	require.NoError(t, stack.Flush(context.Background()))
	assert.Equal(t, []string{"third", "second", "first"}, order)
	assert.Equal(t, 0, stack.Len())
}

func TestDeferStack_FlushStopsOnFirstError(t *testing.T) {
	stack := NewDeferStack()
	boom := errors.New("release failed")

	var order []string
	stack.Push(func(ctx context.Context) error {
		order = append(order, "bottom")
		return nil
	})
	stack.Push(func(ctx context.Context) error {
		order = append(order, "middle")
		return boom
	})
	stack.Push(func(ctx context.Context) error {
		order = append(order, "top")
		return nil
	})

	err := stack.Flush(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"top", "middle"}, order)

	// The entry below the failure stays registered.
	assert.Equal(t, 1, stack.Len())
}

func TestDeferStack_PushDuringFlush(t *testing.T) {
	stack := NewDeferStack()

	var order []string
	stack.Push(func(ctx context.Context) error {
		order = append(order, "outer")
		stack.Push(func(ctx context.Context) error {
			order = append(order, "nested")
			return nil
		})
		return nil
	})

	require.NoError(t, stack.Flush(context.Background()))
	assert.Equal(t, []string{"outer", "nested"}, order)
	assert.Equal(t, 0, stack.Len())
}

func TestDeferStack_Clear(t *testing.T) {
	stack := NewDeferStack()

	var ran bool
	stack.Push(func(ctx context.Context) error {
		ran = true
		return nil
	})
	stack.Clear()

	require.NoError(t, stack.Flush(context.Background()))
	assert.False(t, ran)
}

func TestDefer_OutsideScenario(t *testing.T) {
	err := Defer(context.Background(), func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrOutOfContext)
}

func TestMustDefer_PanicsOutsideScenario(t *testing.T) {
	assert.Panics(t, func() {
		MustDefer(context.Background(), func(ctx context.Context) error { return nil })
	})
}

func TestDefer_WithInstalledStack(t *testing.T) {
	stack := NewDeferStack()
	ctx := WithDeferStack(context.Background(), stack)

	require.NoError(t, Defer(ctx, func(ctx context.Context) error { return nil }))
	assert.Equal(t, 1, stack.Len())

	got, ok := DeferStackFrom(ctx)
	require.True(t, ok)
	assert.Same(t, stack, got)
}

func TestDeferStack_FlushEmpty(t *testing.T) {
	stack := NewDeferStack()
	assert.NoError(t, stack.Flush(context.Background()))
}
