package simplify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomaskeller79/rddlc/internal/ast"
	"github.com/thomaskeller79/rddlc/internal/eval"
	"github.com/thomaskeller79/rddlc/internal/task"
)

// A surviving CPF or reward formula that reads a merged fluent positively
// (outside the mutex-triggering constraint itself) must come out of the
// merge depending on the new FDR fluent instead of the deleted index --
// otherwise compile.initializeHashKeys later fails building that
// evaluable's hash-key scheme, since the post-merge action-domain-size
// table has no entry for the deleted index.
func TestMergeIntoFDRFluentRewritesSurvivingReferences(t *testing.T) {
	tk := &task.Task{
		ActionFluents: []task.Fluent{
			{Index: 0, Name: "a", DomainSize: 2},
			{Index: 1, Name: "b", DomainSize: 2},
		},
		Reward: eval.NewRewardCPF(&ast.ActionFluentRef{Index: 0, Name: "a"}),
	}
	a := &ast.ActionFluentRef{Index: 0, Name: "a"}
	b := &ast.ActionFluentRef{Index: 1, Name: "b"}
	mutex := &ast.Negation{Operand: &ast.Conjunction{Operands: []ast.Expr{a, b}}}
	tk.StaticSACs = []*eval.ActionPrecondition{eval.NewActionPrecondition(0, mutex)}
	tk.CPFs = []*eval.CPF{eval.NewCPF(0, "s'", &ast.ActionFluentRef{Index: 0, Name: "a"})}

	pass := &DetermineFiniteDomainActionFluents{}
	changed, err := pass.Apply(tk)
	require.NoError(t, err)
	assert.True(t, changed)

	require.Len(t, tk.ActionFluents, 1)
	newIndex := tk.ActionFluents[0].Index

	require.Len(t, tk.CPFs, 1)
	deps := tk.CPFs[0].ActionDependencies()
	assert.NotContains(t, deps, 0)
	assert.NotContains(t, deps, 1)
	assert.Contains(t, deps, newIndex)

	rewardDeps := tk.Reward.ActionDependencies()
	assert.NotContains(t, rewardDeps, 0)
	assert.Contains(t, rewardDeps, newIndex)
}

// The mutex-triggering static SAC itself also reads both merged fluents
// positively/negatively and must be rewritten rather than left dangling.
func TestMergeIntoFDRFluentRewritesTriggeringConstraint(t *testing.T) {
	tk := &task.Task{
		ActionFluents: []task.Fluent{
			{Index: 0, Name: "a", DomainSize: 2},
			{Index: 1, Name: "b", DomainSize: 2},
		},
		Reward: eval.NewRewardCPF(&ast.Constant{Value: 0}),
	}
	a := &ast.ActionFluentRef{Index: 0, Name: "a"}
	b := &ast.ActionFluentRef{Index: 1, Name: "b"}
	mutex := &ast.Negation{Operand: &ast.Conjunction{Operands: []ast.Expr{a, b}}}
	tk.StaticSACs = []*eval.ActionPrecondition{eval.NewActionPrecondition(0, mutex)}

	pass := &DetermineFiniteDomainActionFluents{}
	_, err := pass.Apply(tk)
	require.NoError(t, err)

	newIndex := tk.ActionFluents[0].Index
	deps := tk.StaticSACs[0].ActionDependencies()
	assert.NotContains(t, deps, 0)
	assert.NotContains(t, deps, 1)
	assert.Contains(t, deps, newIndex)
}
