package compile

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomaskeller79/rddlc/internal/ast"
	"github.com/thomaskeller79/rddlc/internal/eval"
	"github.com/thomaskeller79/rddlc/internal/state"
	"github.com/thomaskeller79/rddlc/internal/task"
)

func TestCompileRunsPipelineAndInitializesCaches(t *testing.T) {
	tk := &task.Task{
		StateFluents:  []task.Fluent{{Index: 0, Name: "on(x1)", DomainSize: 2}},
		ActionFluents: []task.Fluent{{Index: 0, Name: "push(x1)", DomainSize: 2, NOOPValue: 0}},
		CPFs:          []*eval.CPF{eval.NewCPF(0, "on(x1)'", &ast.ActionFluentRef{Index: 0, Name: "push(x1)"})},
		Reward:        eval.NewRewardCPF(&ast.Constant{Value: 0}),
		InitialState:  state.State{Values: []float64{0}},
	}

	var progress bytes.Buffer
	err := Compile(tk, Options{Progress: &progress})
	require.NoError(t, err)

	assert.NotEmpty(t, tk.ActionStates)
	assert.NotEmpty(t, progress.String())
}

func TestCompilePropagatesInfeasibleError(t *testing.T) {
	tk := &task.Task{
		StateFluents:  []task.Fluent{{Index: 0, Name: "on(x1)", DomainSize: 2}},
		ActionFluents: []task.Fluent{{Index: 0, Name: "push(x1)", DomainSize: 2, NOOPValue: 0}},
		StaticSACs:    []*eval.ActionPrecondition{eval.NewActionPrecondition(0, &ast.Constant{Value: 0})},
		Reward:        eval.NewRewardCPF(&ast.Constant{Value: 0}),
		InitialState:  state.State{Values: []float64{0}},
	}

	err := Compile(tk, Options{})
	assert.Error(t, err)
}
