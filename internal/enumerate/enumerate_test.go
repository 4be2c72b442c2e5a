package enumerate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomaskeller79/rddlc/internal/ast"
	"github.com/thomaskeller79/rddlc/internal/compile"
	"github.com/thomaskeller79/rddlc/internal/eval"
	"github.com/thomaskeller79/rddlc/internal/state"
	"github.com/thomaskeller79/rddlc/internal/task"
)

func deterministicTask() *task.Task {
	push := &ast.ActionFluentRef{Index: 0, Name: "push(x1)"}
	onRef := &ast.StateFluentRef{Index: 0, Name: "on(x1)"}
	return &task.Task{
		StateFluents:  []task.Fluent{{Index: 0, Name: "on(x1)", DomainSize: 2}},
		ActionFluents: []task.Fluent{{Index: 0, Name: "push(x1)", DomainSize: 2, NOOPValue: 0}},
		CPFs:          []*eval.CPF{eval.NewCPF(0, "on(x1)'", push)},
		Reward: eval.NewRewardCPF(&ast.IfThenElse{
			Cond: onRef,
			Then: &ast.Constant{Value: 1},
			Else: &ast.Constant{Value: 0},
		}),
		InitialState: state.State{Values: []float64{0}},
		ActionStates: []state.ActionState{
			state.NewActionState([]int{0}, nil).WithNOOPValues([]int{0}),
			state.NewActionState([]int{1}, nil).WithNOOPValues([]int{0}),
		},
	}
}

func TestGenerateExpandsDeterministicReachableStates(t *testing.T) {
	tk := deterministicTask()

	result, err := Generate(tk, 100)
	require.NoError(t, err)

	assert.Len(t, result.States, 2)
	assert.Len(t, result.Transitions, 4) // 2 states * 2 actions
	assert.Empty(t, result.NeverApplicable)
}

func TestGenerateReportsNeverApplicableAction(t *testing.T) {
	tk := deterministicTask()
	push := &ast.ActionFluentRef{Index: 0, Name: "push(x1)"}
	tk.Preconditions = []*eval.ActionPrecondition{
		eval.NewActionPrecondition(0, &ast.Negation{Operand: push}),
	}
	noop := state.NewActionState([]int{0}, nil).WithNOOPValues([]int{0})
	noop.Index = 0
	push1 := state.NewActionState([]int{1}, []int{0}).WithNOOPValues([]int{0})
	push1.Index = 1
	tk.ActionStates = []state.ActionState{noop, push1}

	result, err := Generate(tk, 100)
	require.NoError(t, err)
	assert.Contains(t, result.NeverApplicable, 1)
}

func TestGenerateAbortsWhenStateSpaceExceedsLimit(t *testing.T) {
	tk := deterministicTask()

	_, err := Generate(tk, 1)
	assert.Error(t, err)
}

func TestGenerateExpandsProbabilisticCPF(t *testing.T) {
	discrete := &ast.Discrete{Outcomes: []ast.DiscreteOutcome{
		{Value: &ast.Constant{Value: 0}, Prob: &ast.Constant{Value: 0.5}},
		{Value: &ast.Constant{Value: 1}, Prob: &ast.Constant{Value: 0.5}},
	}}
	tk := &task.Task{
		StateFluents:  []task.Fluent{{Index: 0, Name: "on(x1)", DomainSize: 2}},
		ActionFluents: []task.Fluent{{Index: 0, Name: "push(x1)", DomainSize: 2, NOOPValue: 0}},
		CPFs:          []*eval.CPF{eval.NewCPF(0, "on(x1)'", discrete)},
		Reward:        eval.NewRewardCPF(&ast.Constant{Value: 0}),
		InitialState:  state.State{Values: []float64{0}},
		ActionStates: []state.ActionState{
			state.NewActionState([]int{0}, nil).WithNOOPValues([]int{0}),
		},
	}

	result, err := Generate(tk, 100)
	require.NoError(t, err)
	assert.Len(t, result.States, 2)
	for _, tr := range result.Transitions {
		require.Len(t, tr.Probs, 2)
		assert.InDelta(t, 1.0, tr.Probs[0]+tr.Probs[1], 1e-9)
	}
}

// Generate must route reward/CPF evaluation through the cached Evaluable
// path once a task has actually been through compile.Compile (rather than
// the CacheNone default of a hand-built *task.Task). A reward that reads
// its action fluent only through negative polarity (if (~a) ...) is the
// shape that previously composed the same cache index for every value of
// a, once the hash-key scheme was built from PositiveActionDeps alone --
// this pins both that the scheme now varies with a and that Generate
// actually consults the per-state hash keys Compile produces.
func TestGenerateUsesCompiledCacheForNegativeOnlyActionDependency(t *testing.T) {
	tk := &task.Task{
		StateFluents:  []task.Fluent{{Index: 0, Name: "on(x1)", DomainSize: 2}},
		ActionFluents: []task.Fluent{{Index: 0, Name: "a", DomainSize: 2, NOOPValue: 0}},
		CPFs:          []*eval.CPF{eval.NewCPF(0, "on(x1)'", &ast.StateFluentRef{Index: 0, Name: "on(x1)"})},
		Reward: eval.NewRewardCPF(&ast.IfThenElse{
			Cond: &ast.Negation{Operand: &ast.ActionFluentRef{Index: 0, Name: "a"}},
			Then: &ast.Constant{Value: 1},
			Else: &ast.Constant{Value: 0},
		}),
		InitialState: state.State{Values: []float64{0}},
	}

	require.NoError(t, compile.Compile(tk, compile.Options{}))
	require.Len(t, tk.ActionStates, 2)

	result, err := Generate(tk, 100)
	require.NoError(t, err)

	rewardByAction := map[int]float64{}
	for _, tr := range result.Transitions {
		rewardByAction[tr.ActionID] = tr.Reward
	}
	require.Len(t, rewardByAction, 2)

	var noopID, setID int
	for _, as := range tk.ActionStates {
		if as.Values[0] == 0 {
			noopID = as.Index
		} else {
			setID = as.Index
		}
	}
	assert.Equal(t, 1.0, rewardByAction[noopID])
	assert.Equal(t, 0.0, rewardByAction[setID])
}

func TestWriteTextFormatsHeaderAndTransitions(t *testing.T) {
	tk := deterministicTask()
	result, err := Generate(tk, 100)
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, WriteText(&buf, result, len(tk.ActionStates)))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.True(t, len(lines) >= 2)
	assert.Equal(t, "2", lines[0])
	assert.Equal(t, "2", lines[1])
}
