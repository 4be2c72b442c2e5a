package solver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomaskeller79/rddlc/internal/ast"
)

func TestBridgeHasSolutionWithNoConstraints(t *testing.T) {
	b, err := NewBridge([]int{0, 1}, map[int]int{0: 2, 1: 2})
	require.NoError(t, err)

	ok, err := b.HasSolution(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestBridgeAddConstraintRestrictsSolutions(t *testing.T) {
	b, err := NewBridge([]int{0}, map[int]int{0: 2})
	require.NoError(t, err)

	b.AddConstraint(func(assignment []int) bool { return assignment[0] == 1 })

	model, ok, err := b.GetActionModel(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []int{1}, model)
}

func TestBridgePushPopRestoresPriorConstraintSet(t *testing.T) {
	b, err := NewBridge([]int{0}, map[int]int{0: 2})
	require.NoError(t, err)

	b.Push()
	b.AddConstraint(func(assignment []int) bool { return assignment[0] == 1 })
	model, ok, err := b.GetActionModel(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []int{1}, model)

	require.NoError(t, b.Pop())
	ok, err = b.HasSolution(context.Background())
	require.NoError(t, err)
	assert.True(t, ok) // both 0 and 1 legal again
}

func TestBridgeInvalidateActionModelExcludesPriorSolution(t *testing.T) {
	b, err := NewBridge([]int{0}, map[int]int{0: 2})
	require.NoError(t, err)

	first, ok, err := b.GetActionModel(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	b.InvalidateActionModel(first)
	second, ok, err := b.GetActionModel(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEqual(t, first, second)

	b.InvalidateActionModel(second)
	_, ok, err = b.GetActionModel(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTranslatePreconditionAgainstFixedState(t *testing.T) {
	// precondition: action fluent 2 must be true (index 2 in the full
	// action vector, but the bridge only tracks fluents {2} locally as
	// solver-variable 0).
	precondition := &ast.ActionFluentRef{Index: 2, Name: "a2"}
	pred := Translate(precondition, nil, []int{2}, 3)

	assert.True(t, pred([]int{1}))
	assert.False(t, pred([]int{0}))
}

func TestPopBaseLayerFails(t *testing.T) {
	b, err := NewBridge(nil, nil)
	require.NoError(t, err)
	assert.Error(t, b.Pop())
}
