package solver

import "github.com/thomaskeller79/rddlc/internal/ast"

// Translate builds a RowPredicate from a precondition expression, a fixed
// current state, and the action-fluent index ordering the Bridge uses.
// numActionFluents is the total number of action fluents in the task (the
// size of the full action vector the expression tree indexes into); values
// not covered by actionFluentIndices are held at 0, which is safe because
// a precondition's Dependencies never reference an action fluent outside
// that set.
func Translate(precondition ast.Expr, state []float64, actionFluentIndices []int, numActionFluents int) RowPredicate {
	return func(assignment []int) bool {
		full := make([]int, numActionFluents)
		for i, idx := range actionFluentIndices {
			full[idx] = assignment[i]
		}
		v, err := precondition.Evaluate(state, full)
		if err != nil {
			return false
		}
		return v != 0
	}
}
