package eval

import "github.com/thomaskeller79/rddlc/internal/ast"

// CPF is the conditional probability function for one state fluent's
// successor value: an Evaluable whose formula may be a Discrete node.
type CPF struct {
	*Evaluable
	HeadFluentIndex int
}

// NewCPF builds a CPF for the given head fluent's successor formula.
func NewCPF(headFluentIndex int, name string, formula ast.Expr) *CPF {
	e := NewEvaluable(name, formula)
	if _, ok := formula.(*ast.Discrete); ok {
		e.IsProbabilistic = true
	}
	return &CPF{Evaluable: e, HeadFluentIndex: headFluentIndex}
}

// RewardCPF is the Evaluable computing the immediate reward.
type RewardCPF struct {
	*Evaluable
}

// NewRewardCPF builds the reward Evaluable.
func NewRewardCPF(formula ast.Expr) *RewardCPF {
	return &RewardCPF{Evaluable: NewEvaluable("reward", formula)}
}

// ActionPrecondition is a state-action constraint (SAC) classified during
// simplification: it is either action-independent (a static SAC, checked
// once), trivially forbids a single action fluent, or is a genuine
// precondition that must be checked per candidate action.
type ActionPrecondition struct {
	*Evaluable
	Index int
}

// NewActionPrecondition builds an ActionPrecondition Evaluable from a SAC
// formula, which must evaluate to 0/1 (false forbids the assignment).
func NewActionPrecondition(index int, formula ast.Expr) *ActionPrecondition {
	return &ActionPrecondition{Evaluable: NewEvaluable("precondition", formula), Index: index}
}

// ForbidsSingleActionFluent reports whether this precondition has the
// shape ~a for a single action fluent a, the classification the original
// uses to mark an action fluent inapplicable outright rather than keep it
// around as a runtime-checked precondition. It returns the forbidden
// fluent's index and true when this shape matches.
func ForbidsSingleActionFluent(formula ast.Expr) (int, bool) {
	neg, ok := formula.(*ast.Negation)
	if !ok {
		return 0, false
	}
	ref, ok := neg.Operand.(*ast.ActionFluentRef)
	if !ok {
		return 0, false
	}
	return ref.Index, true
}
