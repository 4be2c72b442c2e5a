package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomaskeller79/rddlc/internal/ast"
	"github.com/thomaskeller79/rddlc/internal/eval"
	"github.com/thomaskeller79/rddlc/internal/state"
)

func TestSortCPFsOrdersByDependency(t *testing.T) {
	// fluent 1's CPF depends on fluent 0, so 0 must sort before 1.
	cpf0 := eval.NewCPF(0, "s0'", &ast.Constant{Value: 1})
	cpf1 := eval.NewCPF(1, "s1'", &ast.StateFluentRef{Index: 0, Name: "s0"})

	tk := &Task{CPFs: []*eval.CPF{cpf1, cpf0}}
	require.NoError(t, tk.SortCPFs())

	require.Len(t, tk.CPFs, 2)
	assert.Equal(t, 0, tk.CPFs[0].HeadFluentIndex)
	assert.Equal(t, 1, tk.CPFs[1].HeadFluentIndex)
}

func TestSortCPFsDetectsCycle(t *testing.T) {
	cpf0 := eval.NewCPF(0, "s0'", &ast.StateFluentRef{Index: 1, Name: "s1"})
	cpf1 := eval.NewCPF(1, "s1'", &ast.StateFluentRef{Index: 0, Name: "s0"})

	tk := &Task{CPFs: []*eval.CPF{cpf0, cpf1}}
	err := tk.SortCPFs()
	assert.Error(t, err)
}

func TestSortCPFsBreaksTiesByIndex(t *testing.T) {
	cpf2 := eval.NewCPF(2, "s2'", &ast.Constant{Value: 1})
	cpf0 := eval.NewCPF(0, "s0'", &ast.Constant{Value: 1})
	cpf1 := eval.NewCPF(1, "s1'", &ast.Constant{Value: 1})

	tk := &Task{CPFs: []*eval.CPF{cpf2, cpf0, cpf1}}
	require.NoError(t, tk.SortCPFs())

	assert.Equal(t, 0, tk.CPFs[0].HeadFluentIndex)
	assert.Equal(t, 1, tk.CPFs[1].HeadFluentIndex)
	assert.Equal(t, 2, tk.CPFs[2].HeadFluentIndex)
}

func TestSortActionStatesAssignsIndexInOrder(t *testing.T) {
	tk := &Task{ActionStates: []state.ActionState{
		state.NewActionState([]int{1, 0}, nil),
		state.NewActionState([]int{0, 0}, nil),
	}}
	tk.SortActionStates()
	assert.Equal(t, 0, tk.ActionStates[0].Index)
	assert.Equal(t, []int{0, 0}, tk.ActionStates[0].Values)
	assert.Equal(t, 1, tk.ActionStates[1].Index)
}

func TestSortActionFluentsByIndex(t *testing.T) {
	tk := &Task{ActionFluents: []Fluent{{Index: 2}, {Index: 0}, {Index: 1}}}
	tk.SortActionFluents()
	assert.Equal(t, 0, tk.ActionFluents[0].Index)
	assert.Equal(t, 1, tk.ActionFluents[1].Index)
	assert.Equal(t, 2, tk.ActionFluents[2].Index)
}
